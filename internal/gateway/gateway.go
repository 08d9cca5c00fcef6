package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/ashabalin/brief-refiner/internal/config"
	"github.com/ashabalin/brief-refiner/internal/entity"
	pkghttp "github.com/ashabalin/brief-refiner/pkg/http"
)

const (
	chatCompletionsEndpoint = "/v1/chat/completions"
	transcriptionsEndpoint  = "/v1/audio/transcriptions"
)

// Gateway talks to the external model service. Implementations never leak
// transport errors: callers see the entity error taxonomy.
type Gateway interface {
	Complete(ctx context.Context, messages []entity.ChatMessage) (string, error)
	VisionComplete(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

type Client struct {
	config    config.LLMConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewClient(cfg config.LLMConfig, logger *zap.Logger) *Client {
	opts := []pkghttp.ClientOpt{
		pkghttp.WithRequestTimeout(cfg.RequestTimeout),
		pkghttp.WithTransportLogging(logger),
	}
	if cfg.Token != "" {
		opts = append(opts, pkghttp.WithAuthToken(cfg.Token))
	}

	return &Client{
		config: cfg,
		connector: pkghttp.NewConnector(&pkghttp.ConnectorConfig{
			BaseURL: cfg.ServiceURL,
			Logger:  logger,
		}, opts...),
		logger: logger,
	}
}

// Complete runs a chat completion over the given messages.
func (c *Client) Complete(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	ctxzap.Info(ctx, "requesting chat completion", zap.Int("messages", len(messages)))
	return c.complete(ctx, c.config.ChatModel, messages)
}

// VisionComplete sends the prompt together with an inline image.
func (c *Client) VisionComplete(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	ctxzap.Info(ctx, "requesting vision completion", zap.Int("image_bytes", len(image)))

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	messages := []entity.ChatMessage{
		{
			Role: entity.RoleUser,
			Content: []entity.ContentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &entity.ImageURL{URL: dataURL}},
			},
		},
	}
	return c.complete(ctx, c.config.VisionModel, messages)
}

func (c *Client) complete(ctx context.Context, model string, messages []entity.ChatMessage) (string, error) {
	req := &entity.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	var resp entity.ChatCompletionResponse
	err := c.withRetry(ctx, func() error {
		resp = entity.ChatCompletionResponse{}
		return c.connector.DoJSON(ctx, http.MethodPost, chatCompletionsEndpoint, req, &resp)
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices: %w", entity.ErrServiceUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe converts recorded speech to text.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	ctxzap.Info(ctx, "requesting transcription", zap.Int("audio_bytes", len(audio)))

	if len(audio) == 0 {
		return "", entity.ErrEmptyAudio
	}

	var resp entity.TranscriptionResponse
	err := c.withRetry(ctx, func() error {
		resp = entity.TranscriptionResponse{}
		return c.connector.DoMultipart(ctx, http.MethodPost, transcriptionsEndpoint, func(w *multipart.Writer) error {
			if err := w.WriteField("model", c.config.SpeechModel); err != nil {
				return err
			}
			if err := w.WriteField("language", "ru"); err != nil {
				return err
			}
			part, err := w.CreateFormFile("file", filename)
			if err != nil {
				return err
			}
			_, err = part.Write(audio)
			return err
		}, &resp)
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", entity.ErrEmptyTranscription
	}
	return text, nil
}

// withRetry retries transient failures with backoff and maps the final
// transport error into the entity taxonomy.
func (c *Client) withRetry(ctx context.Context, op func() error) error {
	opts := append(
		c.config.Retry.ToRetryOptions(),
		retry.Context(ctx),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(attempt uint, err error) {
			c.logger.Warn("retrying model request",
				zap.Uint("attempt", attempt+1),
				zap.Error(err),
			)
		}),
	)

	err := retry.Do(op, opts...)
	if err == nil {
		return nil
	}
	return classify(err)
}

// isRetryable admits connection failures, throttling and server errors.
func isRetryable(err error) bool {
	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return false
}

func classify(err error) error {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized,
			http.StatusPaymentRequired, http.StatusForbidden:
			return fmt.Errorf("model service rejected request (%d): %w", httpErr.StatusCode, entity.ErrInvalidRequest)
		}
	}
	if isRetryable(err) {
		return fmt.Errorf("model service gave no usable answer: %w", entity.ErrServiceUnavailable)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("model request failed: %w", err)
}
