package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashabalin/brief-refiner/internal/config"
	"github.com/ashabalin/brief-refiner/internal/document"
	"github.com/ashabalin/brief-refiner/internal/entity"
	"github.com/ashabalin/brief-refiner/internal/session"
)

type stubGateway struct {
	completeReply  string
	completeErr    error
	lastMessages   []entity.ChatMessage
	transcription  string
	transcribeErr  error
	visionReply    string
	completeCalled int
}

func (g *stubGateway) Complete(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	g.completeCalled++
	g.lastMessages = messages
	return g.completeReply, g.completeErr
}

func (g *stubGateway) VisionComplete(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	return g.visionReply, nil
}

func (g *stubGateway) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	return g.transcription, g.transcribeErr
}

type stubSearcher struct {
	results []entity.SearchResult
}

func (s *stubSearcher) Search(query string, topK int) []entity.SearchResult {
	if len(s.results) > topK {
		return s.results[:topK]
	}
	return s.results
}

func (s *stubSearcher) Stats() entity.IndexStats {
	return entity.IndexStats{TotalChunks: len(s.results), DistinctSources: 1}
}

func newTestService(gw *stubGateway, search *stubSearcher) *Service {
	return NewService(
		session.NewManager(20),
		gw,
		search,
		document.NewFactory(),
		config.LimitsConfig{
			RateLimitMessages: 10,
			RateLimitWindow:   time.Minute,
			MaxInputLength:    10000,
			MaxMessageLength:  4000,
			MaxHistoryLength:  20,
		},
		config.KnowledgeConfig{TopK: 3, CacheTTL: time.Minute},
	)
}

func systemMessage(t *testing.T, messages []entity.ChatMessage) string {
	t.Helper()
	require.NotEmpty(t, messages)
	require.Equal(t, entity.RoleSystem, messages[0].Role)
	content, ok := messages[0].Content.(string)
	require.True(t, ok)
	return content
}

func TestHandleTextFillsGoalOnFirstMessage(t *testing.T) {
	gw := &stubGateway{completeReply: "Отлично, расскажите про платформу."}
	svc := newTestService(gw, &stubSearcher{})
	svc.StartBrief(1)

	reply, err := svc.HandleText(context.Background(), 1, "Нужен интернет-магазин косметики")
	require.NoError(t, err)

	assert.Equal(t, "Отлично, расскажите про платформу.", reply)
	assert.Equal(t, "Нужен интернет-магазин косметики", svc.Session(1).Data.ProjectGoal)
	assert.Equal(t, []string{"Нужен интернет-магазин косметики"}, svc.Session(1).Data.RawMessages)
}

func TestHandleTextHonorsFocus(t *testing.T) {
	gw := &stubGateway{completeReply: "Записал."}
	svc := newTestService(gw, &stubSearcher{})
	svc.StartBrief(1)
	require.NoError(t, svc.FocusField(1, entity.FieldMustHaveFeatures))

	_, err := svc.HandleText(context.Background(), 1, "Login\nSignup\nCheckout")
	require.NoError(t, err)

	data := svc.Session(1).Data
	assert.Equal(t, []string{"Login", "Signup", "Checkout"}, data.MustHaveFeatures)
	assert.Empty(t, data.ProjectGoal)
	// Focus is consumed by a single answer.
	assert.Equal(t, entity.FieldID(""), svc.Session(1).Focus)
}

func TestHandleTextRejectsOversizedInput(t *testing.T) {
	svc := newTestService(&stubGateway{}, &stubSearcher{})

	_, err := svc.HandleText(context.Background(), 1, strings.Repeat("а", 10001))

	assert.ErrorIs(t, err, entity.ErrMessageTooLong)
}

func TestHandleTextAttachesKnowledgeContext(t *testing.T) {
	gw := &stubGateway{completeReply: "Вот как составить бриф."}
	search := &stubSearcher{results: []entity.SearchResult{
		{Chunk: entity.Chunk{ID: "guide.md_0", Content: "Бриф начинается с цели.", Source: "guide.md"}, Score: 1},
	}}
	svc := newTestService(gw, search)

	_, err := svc.HandleText(context.Background(), 1, "Как правильно составить бриф?")
	require.NoError(t, err)

	prompt := systemMessage(t, gw.lastMessages)
	assert.Contains(t, prompt, "КОНТЕКСТ ИЗ БАЗЫ ЗНАНИЙ")
	assert.Contains(t, prompt, "[guide.md]")
	assert.Contains(t, prompt, "Бриф начинается с цели.")
}

func TestHandleTextSkipsRetrievalForPlainAnswers(t *testing.T) {
	gw := &stubGateway{completeReply: "Принято."}
	search := &stubSearcher{results: []entity.SearchResult{
		{Chunk: entity.Chunk{Content: "нерелевантно", Source: "x.md"}, Score: 1},
	}}
	svc := newTestService(gw, search)

	_, err := svc.HandleText(context.Background(), 1, "да, подходит")
	require.NoError(t, err)

	assert.NotContains(t, systemMessage(t, gw.lastMessages), "КОНТЕКСТ ИЗ БАЗЫ ЗНАНИЙ")
}

func TestHandleTextKeepsHistory(t *testing.T) {
	gw := &stubGateway{completeReply: "ответ"}
	svc := newTestService(gw, &stubSearcher{})

	_, err := svc.HandleText(context.Background(), 1, "первое сообщение")
	require.NoError(t, err)
	_, err = svc.HandleText(context.Background(), 1, "второе сообщение")
	require.NoError(t, err)

	// system + 2 history entries + current message
	require.Len(t, gw.lastMessages, 4)
	assert.Equal(t, "первое сообщение", gw.lastMessages[1].Content)
	assert.Equal(t, "ответ", gw.lastMessages[2].Content)
	assert.Equal(t, "второе сообщение", gw.lastMessages[3].Content)
}

func TestHandleTextGatewayErrorLeavesHistoryClean(t *testing.T) {
	gw := &stubGateway{completeErr: entity.ErrServiceUnavailable}
	svc := newTestService(gw, &stubSearcher{})

	_, err := svc.HandleText(context.Background(), 1, "привет")
	assert.ErrorIs(t, err, entity.ErrServiceUnavailable)

	gw.completeErr = nil
	gw.completeReply = "ответ"
	_, err = svc.HandleText(context.Background(), 1, "ещё раз")
	require.NoError(t, err)

	// Failed turn is not replayed to the model.
	require.Len(t, gw.lastMessages, 2)
}

func TestHandleVoice(t *testing.T) {
	gw := &stubGateway{transcription: "Хочу мобильное приложение", completeReply: "Понял."}
	svc := newTestService(gw, &stubSearcher{})
	svc.StartBrief(1)

	transcription, reply, err := svc.HandleVoice(context.Background(), 1, []byte("ogg"), "voice.ogg")
	require.NoError(t, err)

	assert.Equal(t, "Хочу мобильное приложение", transcription)
	assert.Equal(t, "Понял.", reply)
	assert.Equal(t, "Хочу мобильное приложение", svc.Session(1).Data.ProjectGoal)
}

func TestHandleVoiceTranscriptionError(t *testing.T) {
	gw := &stubGateway{transcribeErr: entity.ErrEmptyTranscription}
	svc := newTestService(gw, &stubSearcher{})

	_, _, err := svc.HandleVoice(context.Background(), 1, []byte("ogg"), "voice.ogg")

	assert.ErrorIs(t, err, entity.ErrEmptyTranscription)
	assert.Zero(t, gw.completeCalled)
}

func TestHandleImageStoresReference(t *testing.T) {
	gw := &stubGateway{visionReply: "Макет главной страницы с крупным баннером."}
	svc := newTestService(gw, &stubSearcher{})
	svc.StartBrief(1)

	description, err := svc.HandleImage(context.Background(), 1, []byte{1}, "image/png", "референс")
	require.NoError(t, err)

	assert.Equal(t, "Макет главной страницы с крупным баннером.", description)
	assert.Equal(t, []string{"Макет главной страницы с крупным баннером."}, svc.Session(1).Data.References)
}

func TestFinalizeRefusesWithoutRequiredFields(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw, &stubSearcher{})
	svc.StartBrief(1)
	require.NoError(t, svc.SetField(1, entity.FieldProjectGoal, "Сайт-визитка"))

	result, err := svc.Finalize(context.Background(), 1, entity.FormatMarkdown)
	require.NoError(t, err)

	assert.Equal(t, []entity.FieldID{entity.FieldProjectType, entity.FieldPlatform}, result.MissingRequired)
	assert.Nil(t, result.Document)
	assert.Zero(t, gw.completeCalled)
}

func TestFinalizeGeneratesDocument(t *testing.T) {
	gw := &stubGateway{completeReply: "РИСКИ:\n- Сжатые сроки\n- нет\n\nВОПРОСЫ:\n- Кто готовит контент?"}
	svc := newTestService(gw, &stubSearcher{})
	svc.StartBrief(1)
	require.NoError(t, svc.SetField(1, entity.FieldProjectGoal, "Запустить маркетплейс"))
	require.NoError(t, svc.SetField(1, entity.FieldProjectType, "веб-приложение"))
	require.NoError(t, svc.SetField(1, entity.FieldPlatform, "web"))

	result, err := svc.Finalize(context.Background(), 1, entity.FormatMarkdown)
	require.NoError(t, err)

	require.NotNil(t, result.Document)
	assert.Empty(t, result.MissingRequired)
	assert.Equal(t, entity.BriefStatusReady, svc.Session(1).Status)

	data := svc.Session(1).Data
	assert.Equal(t, []string{"Сжатые сроки"}, data.Risks)
	assert.Equal(t, []string{"Кто готовит контент?"}, data.OpenQuestions)
	assert.Contains(t, string(result.Document.Data), "Запустить маркетплейс")
}

func TestFinalizeWithoutSession(t *testing.T) {
	svc := newTestService(&stubGateway{}, &stubSearcher{})

	_, err := svc.Finalize(context.Background(), 1, entity.FormatMarkdown)

	assert.ErrorIs(t, err, entity.ErrSessionNotActive)
}

func TestFinalizeSurvivesAnalysisFailure(t *testing.T) {
	gw := &stubGateway{completeErr: entity.ErrServiceUnavailable}
	svc := newTestService(gw, &stubSearcher{})
	svc.StartBrief(1)
	require.NoError(t, svc.SetField(1, entity.FieldProjectGoal, "Запустить маркетплейс"))
	require.NoError(t, svc.SetField(1, entity.FieldProjectType, "веб-приложение"))
	require.NoError(t, svc.SetField(1, entity.FieldPlatform, "web"))

	result, err := svc.Finalize(context.Background(), 1, entity.FormatMarkdown)
	require.NoError(t, err)

	require.NotNil(t, result.Document)
	assert.Empty(t, svc.Session(1).Data.Risks)
}

func TestParseAnalysis(t *testing.T) {
	risks, questions := parseAnalysis("РИСКИ:\n- риск один\n• риск два\nнет\n\nВОПРОСЫ:\n- вопрос один")

	assert.Equal(t, []string{"риск один", "риск два"}, risks)
	assert.Equal(t, []string{"вопрос один"}, questions)
}

func TestParseAnalysisCapsEntries(t *testing.T) {
	var b strings.Builder
	b.WriteString("РИСКИ:\n")
	for i := 0; i < 8; i++ {
		b.WriteString("- очень серьёзный риск\n")
	}
	b.WriteString("ВОПРОСЫ:\nнет\n")

	risks, questions := parseAnalysis(b.String())

	assert.Len(t, risks, 5)
	assert.Empty(t, questions)
}

func TestParseAnalysisMalformed(t *testing.T) {
	risks, questions := parseAnalysis("свободный текст без структуры")

	assert.Empty(t, risks)
	assert.Empty(t, questions)
}

func TestFinalizeRenderFailureKeepsSessionCollecting(t *testing.T) {
	gw := &stubGateway{completeReply: "РИСКИ:\n- нет\n\nВОПРОСЫ:\n- нет"}
	svc := newTestService(gw, &stubSearcher{})
	svc.StartBrief(1)
	require.NoError(t, svc.SetField(1, entity.FieldProjectGoal, "Запустить маркетплейс"))
	require.NoError(t, svc.SetField(1, entity.FieldProjectType, "веб-приложение"))
	require.NoError(t, svc.SetField(1, entity.FieldPlatform, "web"))

	_, err := svc.Finalize(context.Background(), 1, entity.DocumentFormat("bogus"))
	require.Error(t, err)

	// A failed render must not complete the session: the user retries
	// with another format instead of starting over.
	require.Equal(t, entity.BriefStatusCollecting, svc.Session(1).Status)

	result, err := svc.Finalize(context.Background(), 1, entity.FormatMarkdown)
	require.NoError(t, err)
	require.NotNil(t, result.Document)
	assert.Equal(t, entity.BriefStatusReady, svc.Session(1).Status)
}
