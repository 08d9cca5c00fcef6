package entity

import "errors"

// Domain errors
var (
	// Gateway errors
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
	ErrInvalidRequest     = errors.New("invalid request")

	// Input validation errors (user-correctable, never logged as failures)
	ErrMessageTooLong     = errors.New("message too long")
	ErrEmptyTranscription = errors.New("empty transcription")
	ErrEmptyAudio         = errors.New("empty audio data")

	// Session errors
	ErrSessionNotActive = errors.New("no active brief session")
	ErrUnknownField     = errors.New("unknown brief field")

	// Rate admission
	ErrRateLimited = errors.New("rate limit exceeded")

	// Document generation
	ErrUnsupportedFormat = errors.New("unsupported document format")
)
