package http

import (
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultRequestTimeout      = 90 * time.Second
	defaultDialTimeout         = 10 * time.Second
	defaultTLSHandshakeTimeout = 10 * time.Second
	defaultIdleConnTimeout     = 90 * time.Second
	defaultMaxIdleConns        = 32
)

type clientSettings struct {
	requestTimeout      time.Duration
	dialTimeout         time.Duration
	tlsHandshakeTimeout time.Duration
	idleConnTimeout     time.Duration
	maxIdleConns        int
	authToken           string
	logger              *zap.Logger
}

type ClientOpt func(*clientSettings)

// WithRequestTimeout bounds a single request end to end, including body read.
func WithRequestTimeout(d time.Duration) ClientOpt {
	return func(s *clientSettings) {
		s.requestTimeout = d
	}
}

func WithDialTimeout(d time.Duration) ClientOpt {
	return func(s *clientSettings) {
		s.dialTimeout = d
	}
}

func WithIdleConnTimeout(d time.Duration) ClientOpt {
	return func(s *clientSettings) {
		s.idleConnTimeout = d
	}
}

func WithMaxIdleConns(n int) ClientOpt {
	return func(s *clientSettings) {
		s.maxIdleConns = n
	}
}

// WithAuthToken adds a Bearer token to every outgoing request.
func WithAuthToken(token string) ClientOpt {
	return func(s *clientSettings) {
		s.authToken = token
	}
}

// WithTransportLogging logs request/response metadata at debug level.
func WithTransportLogging(logger *zap.Logger) ClientOpt {
	return func(s *clientSettings) {
		s.logger = logger
	}
}

func newClient(options ...ClientOpt) *http.Client {
	settings := &clientSettings{
		requestTimeout:      defaultRequestTimeout,
		dialTimeout:         defaultDialTimeout,
		tlsHandshakeTimeout: defaultTLSHandshakeTimeout,
		idleConnTimeout:     defaultIdleConnTimeout,
		maxIdleConns:        defaultMaxIdleConns,
	}
	for _, opt := range options {
		opt(settings)
	}

	dialer := net.Dialer{Timeout: settings.dialTimeout}
	var transport http.RoundTripper = &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        settings.maxIdleConns,
		IdleConnTimeout:     settings.idleConnTimeout,
		TLSHandshakeTimeout: settings.tlsHandshakeTimeout,
	}
	if settings.authToken != "" {
		transport = &authTransport{token: settings.authToken, next: transport}
	}
	if settings.logger != nil {
		transport = &logTransport{logger: settings.logger, next: transport}
	}

	return &http.Client{
		Timeout:   settings.requestTimeout,
		Transport: transport,
	}
}
