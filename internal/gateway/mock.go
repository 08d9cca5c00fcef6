package gateway

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"

	"github.com/ashabalin/brief-refiner/internal/entity"
)

// MockGateway returns canned answers for local runs without a model
// service behind it.
type MockGateway struct{}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) Complete(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	ctxzap.Info(ctx, "[MOCK] chat completion")
	return "Понял. Расскажите подробнее о целях проекта.", nil
}

func (m *MockGateway) VisionComplete(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] vision completion")
	return "На изображении макет интерфейса. Добавил его описание в референсы.", nil
}

func (m *MockGateway) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] transcription")
	if len(audio) == 0 {
		return "", entity.ErrEmptyAudio
	}
	return "Хочу мобильное приложение для доставки еды.", nil
}
