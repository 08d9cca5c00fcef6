package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/ashabalin/brief-refiner/internal/config"
	"github.com/ashabalin/brief-refiner/internal/document"
	"github.com/ashabalin/brief-refiner/internal/entity"
	"github.com/ashabalin/brief-refiner/internal/gateway"
	"github.com/ashabalin/brief-refiner/internal/rag/trigger"
	"github.com/ashabalin/brief-refiner/internal/session"
)

// Searcher is the knowledge-base lookup the service needs.
type Searcher interface {
	Search(query string, topK int) []entity.SearchResult
	Stats() entity.IndexStats
}

// Service orchestrates one interview turn: session state, knowledge
// retrieval and the model call.
type Service struct {
	sessions  *session.Manager
	gw        gateway.Gateway
	search    Searcher
	cache     *gocache.Cache
	docs      *document.Factory
	limits    config.LimitsConfig
	knowledge config.KnowledgeConfig
}

func NewService(
	sessions *session.Manager,
	gw gateway.Gateway,
	search Searcher,
	docs *document.Factory,
	limits config.LimitsConfig,
	knowledge config.KnowledgeConfig,
) *Service {
	return &Service{
		sessions:  sessions,
		gw:        gw,
		search:    search,
		cache:     gocache.New(knowledge.CacheTTL, 2*knowledge.CacheTTL),
		docs:      docs,
		limits:    limits,
		knowledge: knowledge,
	}
}

// StartBrief opens a fresh interview session for the user.
func (s *Service) StartBrief(userID int64) *entity.BriefSession {
	return s.sessions.Start(userID)
}

// CancelBrief drops the user's session.
func (s *Service) CancelBrief(userID int64) error {
	return s.sessions.Cancel(userID)
}

// Session exposes the current session for rendering.
func (s *Service) Session(userID int64) *entity.BriefSession {
	return s.sessions.Get(userID)
}

// FocusField points the next free-text answer at the given field.
func (s *Service) FocusField(userID int64, field entity.FieldID) error {
	return s.sessions.SetFocus(userID, field)
}

// SetField writes a single value chosen from a keyboard.
func (s *Service) SetField(userID int64, field entity.FieldID, value string) error {
	_, err := s.sessions.ApplyInput(userID, field, value)
	return err
}

// HandleText processes one text message: routes it into the brief when a
// session is collecting, optionally pulls knowledge-base context, and
// asks the model for the next reply.
func (s *Service) HandleText(ctx context.Context, userID int64, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", entity.ErrInvalidRequest
	}
	if len([]rune(text)) > s.limits.MaxInputLength {
		return "", entity.ErrMessageTooLong
	}

	active := s.routeIntoBrief(ctx, userID, text)

	knowledgeContext := ""
	if trigger.ShouldRetrieve(text) && s.search.Stats().TotalChunks > 0 {
		knowledgeContext = s.knowledgeContext(ctx, text)
	}

	var briefState *entity.BriefData
	if active != nil {
		briefState = active.Data
	}

	messages := append(
		[]entity.ChatMessage{entity.TextMessage(entity.RoleSystem, buildSystemPrompt(knowledgeContext, briefState))},
		s.sessions.History(userID)...,
	)
	messages = append(messages, entity.TextMessage(entity.RoleUser, text))

	reply, err := s.gw.Complete(ctx, messages)
	if err != nil {
		return "", err
	}

	s.sessions.RecordMessage(userID, entity.RoleUser, text)
	s.sessions.RecordMessage(userID, entity.RoleAssistant, reply)
	return reply, nil
}

// HandleVoice transcribes the recording and feeds the text through the
// regular pipeline. The transcription is returned so the caller can echo
// it back to the user.
func (s *Service) HandleVoice(ctx context.Context, userID int64, audio []byte, filename string) (transcription, reply string, err error) {
	transcription, err = s.gw.Transcribe(ctx, audio, filename)
	if err != nil {
		return "", "", err
	}

	ctxzap.Info(ctx, "voice transcribed", zap.Int("chars", len(transcription)))

	reply, err = s.HandleText(ctx, userID, transcription)
	if err != nil {
		return transcription, "", err
	}
	return transcription, reply, nil
}

// HandleImage describes the image with the vision model and, during an
// active session, keeps the description as a reference.
func (s *Service) HandleImage(ctx context.Context, userID int64, image []byte, mimeType, caption string) (string, error) {
	prompt := imagePrompt
	if caption = strings.TrimSpace(caption); caption != "" {
		prompt += "\n\nКомментарий клиента: " + caption
	}

	description, err := s.gw.VisionComplete(ctx, prompt, image, mimeType)
	if err != nil {
		return "", err
	}

	if _, err := s.sessions.Active(userID); err == nil {
		s.sessions.RecordRaw(userID, "[изображение] "+description)
		if _, err := s.sessions.ApplyInput(userID, entity.FieldReferences, firstLine(description)); err != nil {
			ctxzap.Warn(ctx, "failed to store image reference", zap.Error(err))
		}
	}

	s.sessions.RecordMessage(userID, entity.RoleUser, "[изображение] "+caption)
	s.sessions.RecordMessage(userID, entity.RoleAssistant, description)
	return description, nil
}

// FinalizeResult is the outcome of a document generation attempt.
type FinalizeResult struct {
	// MissingRequired is non-empty when generation was refused.
	MissingRequired []entity.FieldID
	Document        *entity.Document
}

// Finalize gates on the required fields, enriches the brief with a risk
// and open-question analysis, and renders the final document.
func (s *Service) Finalize(ctx context.Context, userID int64, format entity.DocumentFormat) (*FinalizeResult, error) {
	active, err := s.sessions.Active(userID)
	if err != nil {
		return nil, err
	}

	if missing := active.Data.MissingRequired(); len(missing) > 0 {
		return &FinalizeResult{MissingRequired: missing}, nil
	}

	// Model analysis enriches the document but never blocks it.
	analysis, err := s.gw.Complete(ctx, []entity.ChatMessage{
		entity.TextMessage(entity.RoleSystem, analysisSystemPrompt),
		entity.TextMessage(entity.RoleUser, buildAnalysisPrompt(active.Data)),
	})
	if err != nil {
		ctxzap.Warn(ctx, "skipping risk analysis", zap.Error(err))
	} else {
		risks, questions := parseAnalysis(analysis)
		active.Data.Risks = risks
		active.Data.OpenQuestions = questions
		active.Data.LLMAnalysis = analysis
	}

	doc, err := s.docs.Render(active.Data, format)
	if err != nil {
		// Session stays collecting so the user can retry with
		// another format.
		return nil, fmt.Errorf("generate final document: %w", err)
	}

	if _, err := s.sessions.MarkReady(userID); err != nil {
		return nil, err
	}
	return &FinalizeResult{Document: doc}, nil
}

// routeIntoBrief stores the message on an active session and fills the
// focused field. With no focus, the first substantial message becomes the
// project goal, mirroring how clients describe a project up front.
func (s *Service) routeIntoBrief(ctx context.Context, userID int64, text string) *entity.BriefSession {
	active, err := s.sessions.Active(userID)
	if err != nil {
		return nil
	}

	s.sessions.RecordRaw(userID, text)

	field := s.sessions.ConsumeFocus(userID)
	if field == "" {
		if active.Data.ProjectGoal != "" || trigger.ShouldRetrieve(text) {
			return active
		}
		field = entity.FieldProjectGoal
	}

	if _, err := s.sessions.ApplyInput(userID, field, text); err != nil {
		ctxzap.Warn(ctx, "failed to apply field input",
			zap.String("field", string(field)),
			zap.Error(err),
		)
	}
	return active
}

// knowledgeContext returns formatted retrieval results, cached per query
// to avoid rescoring the corpus for repeated questions.
func (s *Service) knowledgeContext(ctx context.Context, query string) string {
	if cached, ok := s.cache.Get(query); ok {
		return cached.(string)
	}

	results := s.search.Search(query, s.knowledge.TopK)
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("[%s]\n%s", r.Chunk.Source, r.Chunk.Content))
	}
	context := strings.Join(parts, "\n\n---\n\n")

	s.cache.SetDefault(query, context)
	ctxzap.Info(ctx, "knowledge context attached", zap.Int("chunks", len(results)))
	return context
}

func firstLine(text string) string {
	line := strings.TrimSpace(text)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	runes := []rune(line)
	if len(runes) > 200 {
		line = string(runes[:200])
	}
	return line
}
