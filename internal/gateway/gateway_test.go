package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ashabalin/brief-refiner/internal/config"
	"github.com/ashabalin/brief-refiner/internal/entity"
	pkgRetry "github.com/ashabalin/brief-refiner/internal/pkg/retry"
)

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return NewClient(config.LLMConfig{
		ServiceURL:     serverURL,
		ChatModel:      "test-chat",
		VisionModel:    "test-vision",
		SpeechModel:    "test-speech",
		Temperature:    0.4,
		MaxTokens:      256,
		RequestTimeout: 5 * time.Second,
		Retry: pkgRetry.RetryConfig{
			Attempts: 3,
			Delay:    time.Millisecond,
			MaxDelay: 5 * time.Millisecond,
		},
	}, zap.NewNop())
}

func completionResponse(content string) entity.ChatCompletionResponse {
	var resp entity.ChatCompletionResponse
	resp.Choices = []entity.ChatChoice{{}}
	resp.Choices[0].Message.Role = entity.RoleAssistant
	resp.Choices[0].Message.Content = content
	return resp
}

func TestCompleteSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req entity.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-chat", req.Model)

		json.NewEncoder(w).Encode(completionResponse("Ответ модели"))
	}))
	defer srv.Close()

	got, err := testClient(t, srv.URL).Complete(context.Background(), []entity.ChatMessage{
		entity.TextMessage(entity.RoleUser, "привет"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Ответ модели", got)
}

func TestCompleteRetriesThrottling(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(completionResponse("после ретраев"))
	}))
	defer srv.Close()

	got, err := testClient(t, srv.URL).Complete(context.Background(), []entity.ChatMessage{
		entity.TextMessage(entity.RoleUser, "привет"),
	})

	require.NoError(t, err)
	assert.Equal(t, "после ретраев", got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCompleteExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Complete(context.Background(), []entity.ChatMessage{
		entity.TextMessage(entity.RoleUser, "привет"),
	})

	assert.ErrorIs(t, err, entity.ErrServiceUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCompleteInvalidRequestNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Complete(context.Background(), []entity.ChatMessage{
		entity.TextMessage(entity.RoleUser, "привет"),
	})

	assert.ErrorIs(t, err, entity.ErrInvalidRequest)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCompleteNetworkErrorMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := testClient(t, srv.URL).Complete(context.Background(), []entity.ChatMessage{
		entity.TextMessage(entity.RoleUser, "привет"),
	})

	assert.ErrorIs(t, err, entity.ErrServiceUnavailable)
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(entity.ChatCompletionResponse{})
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Complete(context.Background(), []entity.ChatMessage{
		entity.TextMessage(entity.RoleUser, "привет"),
	})

	assert.ErrorIs(t, err, entity.ErrServiceUnavailable)
}

func TestVisionCompleteEncodesImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []entity.ContentPart `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		assert.Equal(t, "test-vision", req.Model)
		require.Len(t, req.Messages, 1)
		require.Len(t, req.Messages[0].Content, 2)
		assert.Equal(t, "text", req.Messages[0].Content[0].Type)
		assert.Contains(t, req.Messages[0].Content[1].ImageURL.URL, "data:image/png;base64,")

		json.NewEncoder(w).Encode(completionResponse("описание изображения"))
	}))
	defer srv.Close()

	got, err := testClient(t, srv.URL).VisionComplete(context.Background(), "что на картинке?", []byte{1, 2, 3}, "image/png")

	require.NoError(t, err)
	assert.Equal(t, "описание изображения", got)
}

func TestTranscribeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "test-speech", r.FormValue("model"))
		assert.Equal(t, "ru", r.FormValue("language"))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "voice.ogg", header.Filename)

		json.NewEncoder(w).Encode(entity.TranscriptionResponse{Text: "Хочу сайт-визитку"})
	}))
	defer srv.Close()

	got, err := testClient(t, srv.URL).Transcribe(context.Background(), []byte("ogg-data"), "voice.ogg")

	require.NoError(t, err)
	assert.Equal(t, "Хочу сайт-визитку", got)
}

func TestTranscribeEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(entity.TranscriptionResponse{Text: "   "})
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Transcribe(context.Background(), []byte("ogg-data"), "voice.ogg")

	assert.ErrorIs(t, err, entity.ErrEmptyTranscription)
}

func TestTranscribeEmptyAudio(t *testing.T) {
	_, err := testClient(t, "http://unused").Transcribe(context.Background(), nil, "voice.ogg")

	assert.ErrorIs(t, err, entity.ErrEmptyAudio)
}
