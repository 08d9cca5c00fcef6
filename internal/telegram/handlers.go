package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/ashabalin/brief-refiner/internal/entity"
	"github.com/ashabalin/brief-refiner/internal/telegram/keyboard"
	"github.com/ashabalin/brief-refiner/internal/telegram/render"
)

const (
	msgUnknownCommand     = "Не знаю такую команду. Посмотри /help"
	msgServiceUnavailable = "😔 Сервис временно недоступен. Попробуй ещё раз через минуту."
	msgMessageTooLong     = "Сообщение слишком длинное. Попробуй разбить его на части."
	msgBadTranscription   = "🎤 Не удалось распознать голосовое сообщение. Попробуй ещё раз или напиши текстом."
	msgGenericError       = "Что-то пошло не так. Попробуй ещё раз."
	msgAdminOnly          = "Эта команда доступна только администраторам."
	msgFieldSaved         = "✅ Записал!"
	msgChooseFormat       = "В каком формате подготовить бриф?"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	switch msg.Command() {
	case "start":
		b.replyWithKeyboard(chatID, render.Welcome, b.keyboard.MainMenuKeyboard())
	case "help":
		b.reply(chatID, render.Help)
	case "new":
		b.svc.StartBrief(userID)
		b.reply(chatID, render.NewBrief)
	case "summary":
		b.sendSummary(chatID, userID)
	case "final":
		b.startFinalization(chatID, userID)
	case "cancel":
		if err := b.svc.CancelBrief(userID); err != nil {
			b.reply(chatID, render.NoActiveSession)
			return
		}
		b.reply(chatID, render.Cancelled)
	case "index":
		b.handleAdminIndex(ctx, chatID, userID)
	case "stats":
		b.handleAdminStats(chatID, userID)
	case "clearkb":
		b.handleAdminClear(chatID, userID)
	default:
		b.reply(chatID, msgUnknownCommand)
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	b.sendTyping(chatID)

	reply, err := b.svc.HandleText(ctx, msg.From.ID, msg.Text)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendReplyWithActions(chatID, msg.From.ID, reply)
}

func (b *Bot) handleVoice(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	b.sendTyping(chatID)

	audio, err := b.downloadFile(msg.Voice.FileID)
	if err != nil {
		ctxzap.Error(ctx, "failed to download voice file", zap.Error(err))
		b.reply(chatID, msgBadTranscription)
		return
	}

	transcription, reply, err := b.svc.HandleVoice(ctx, msg.From.ID, audio, "voice.ogg")
	if err != nil {
		if errors.Is(err, entity.ErrEmptyTranscription) || errors.Is(err, entity.ErrEmptyAudio) {
			b.reply(chatID, msgBadTranscription)
			return
		}
		b.replyError(ctx, chatID, err)
		return
	}

	b.reply(chatID, render.Transcribed(transcription))
	b.sendReplyWithActions(chatID, msg.From.ID, reply)
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	b.sendTyping(chatID)

	// Telegram sorts photo sizes ascending; the last one is the original.
	photo := msg.Photo[len(msg.Photo)-1]
	image, err := b.downloadFile(photo.FileID)
	if err != nil {
		ctxzap.Error(ctx, "failed to download photo", zap.Error(err))
		b.reply(chatID, msgGenericError)
		return
	}

	description, err := b.svc.HandleImage(ctx, msg.From.ID, image, "image/jpeg", msg.Caption)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.reply(chatID, description)
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		ctxzap.Debug(ctx, "failed to answer callback query", zap.Error(err))
	}

	cb, err := keyboard.ParseCallback(query.Data)
	if err != nil {
		ctxzap.Warn(ctx, "malformed callback data", zap.String("data", query.Data))
		return
	}

	chatID := query.Message.Chat.ID
	userID := query.From.ID

	switch cb.Action {
	case "action":
		b.handleMenuAction(ctx, chatID, userID, cb.Value)
	case "fill":
		b.handleFillField(chatID, userID, entity.FieldID(cb.Value))
	case "type":
		b.handlePresetAnswer(chatID, userID, entity.FieldProjectType, cb.Value)
	case "platform":
		b.handlePresetAnswer(chatID, userID, entity.FieldPlatform, cb.Value)
	case "deadline":
		b.handlePresetAnswer(chatID, userID, entity.FieldDeadline, cb.Value)
	case "budget":
		b.handlePresetAnswer(chatID, userID, entity.FieldBudgetRange, cb.Value)
	case "format":
		b.handleFormatChosen(ctx, chatID, userID, entity.DocumentFormat(cb.Value))
	default:
		ctxzap.Warn(ctx, "unknown callback action", zap.String("action", cb.Action))
	}
}

func (b *Bot) handleMenuAction(ctx context.Context, chatID, userID int64, value string) {
	switch value {
	case "new":
		b.svc.StartBrief(userID)
		b.reply(chatID, render.NewBrief)
	case "help":
		b.reply(chatID, render.Help)
	case "summary", "continue":
		b.sendSummary(chatID, userID)
	case "final":
		b.startFinalization(chatID, userID)
	case "cancel":
		if err := b.svc.CancelBrief(userID); err != nil {
			b.reply(chatID, render.NoActiveSession)
			return
		}
		b.reply(chatID, render.Cancelled)
	default:
		ctxzap.Warn(ctx, "unknown menu action", zap.String("value", value))
	}
}

// handleFillField puts the session into focused mode so the next free-text
// answer lands in the chosen field. Fields with preset answers get a
// keyboard instead of a text prompt.
func (b *Bot) handleFillField(chatID, userID int64, field entity.FieldID) {
	if err := b.svc.FocusField(userID, field); err != nil {
		b.reply(chatID, render.NoActiveSession)
		return
	}

	prompt := render.FieldPrompt(field)
	switch field {
	case entity.FieldProjectType:
		b.replyWithKeyboard(chatID, prompt, b.keyboard.ProjectTypeKeyboard())
	case entity.FieldPlatform:
		b.replyWithKeyboard(chatID, prompt, b.keyboard.PlatformKeyboard())
	case entity.FieldDeadline:
		b.replyWithKeyboard(chatID, prompt, b.keyboard.DeadlineKeyboard())
	case entity.FieldBudgetRange:
		b.replyWithKeyboard(chatID, prompt, b.keyboard.BudgetKeyboard())
	default:
		b.reply(chatID, prompt)
	}
}

func (b *Bot) handlePresetAnswer(chatID, userID int64, field entity.FieldID, value string) {
	if err := b.svc.SetField(userID, field, value); err != nil {
		b.reply(chatID, render.NoActiveSession)
		return
	}
	b.reply(chatID, msgFieldSaved)
	b.sendSummary(chatID, userID)
}

// startFinalization checks the required fields before offering a format
// choice, so the user is told what is missing instead of getting a refusal
// after picking a format.
func (b *Bot) startFinalization(chatID, userID int64) {
	session := b.svc.Session(userID)
	if session == nil || session.Status != entity.BriefStatusCollecting {
		b.reply(chatID, render.NoActiveSession)
		return
	}

	if missing := session.Data.MissingRequired(); len(missing) > 0 {
		b.replyWithKeyboard(chatID, render.MissingFields(missing), b.keyboard.MissingFieldsKeyboard(missing))
		return
	}
	b.replyWithKeyboard(chatID, msgChooseFormat, b.keyboard.FormatKeyboard())
}

func (b *Bot) handleFormatChosen(ctx context.Context, chatID, userID int64, format entity.DocumentFormat) {
	b.reply(chatID, render.Generating)
	b.sendTyping(chatID)

	result, err := b.svc.Finalize(ctx, userID, format)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	if len(result.MissingRequired) > 0 {
		b.replyWithKeyboard(chatID, render.MissingFields(result.MissingRequired), b.keyboard.MissingFieldsKeyboard(result.MissingRequired))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  result.Document.FileName,
		Bytes: result.Document.Data,
	})
	if _, err := b.api.Send(doc); err != nil {
		ctxzap.Error(ctx, "failed to send document", zap.Error(err))
		b.reply(chatID, msgGenericError)
		return
	}

	session := b.svc.Session(userID)
	if session != nil {
		b.reply(chatID, render.DocumentReady(session.Data))
	}
}

func (b *Bot) sendSummary(chatID, userID int64) {
	session := b.svc.Session(userID)
	if session == nil || session.Status == entity.BriefStatusIdle {
		b.reply(chatID, render.NoActiveSession)
		return
	}
	b.replyWithKeyboard(chatID, render.Summary(session.Data), b.keyboard.SummaryActionsKeyboard(session.Data.ValidForGeneration()))
}

// sendReplyWithActions attaches the summary action keyboard to the last
// part of an assistant reply when a brief is being collected.
func (b *Bot) sendReplyWithActions(chatID, userID int64, reply string) {
	parts := render.SplitMessage(reply, b.limits.MaxMessageLength)
	session := b.svc.Session(userID)

	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = tgbotapi.ModeHTML
		if i == len(parts)-1 && session != nil && session.Status == entity.BriefStatusCollecting {
			msg.ReplyMarkup = b.keyboard.SummaryActionsKeyboard(session.Data.ValidForGeneration())
		}
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Error("failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
		}
	}
}

func (b *Bot) replyError(ctx context.Context, chatID int64, err error) {
	switch {
	case errors.Is(err, entity.ErrMessageTooLong):
		b.reply(chatID, msgMessageTooLong)
	case errors.Is(err, entity.ErrServiceUnavailable):
		b.reply(chatID, msgServiceUnavailable)
	case errors.Is(err, entity.ErrInvalidRequest):
		b.reply(chatID, msgGenericError)
	default:
		ctxzap.Error(ctx, "unexpected handler error", zap.Error(err))
		b.reply(chatID, msgGenericError)
	}
}

func (b *Bot) handleAdminIndex(ctx context.Context, chatID, userID int64) {
	if !b.isAdmin(userID) {
		b.reply(chatID, msgAdminOnly)
		return
	}

	b.sendTyping(chatID)
	stats, err := b.kb.Rebuild(ctx, b.dataDir)
	if err != nil {
		ctxzap.Error(ctx, "index rebuild failed", zap.Error(err))
		b.reply(chatID, fmt.Sprintf("Ошибка переиндексации: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("📚 Переиндексация завершена: файлов %d, фрагментов %d.", stats.FilesIndexed, stats.ChunksCreated))
}

func (b *Bot) handleAdminStats(chatID, userID int64) {
	if !b.isAdmin(userID) {
		b.reply(chatID, msgAdminOnly)
		return
	}

	stats := b.kb.Stats()
	b.reply(chatID, fmt.Sprintf("📊 База знаний: фрагментов %d, источников %d.", stats.TotalChunks, stats.DistinctSources))
}

func (b *Bot) handleAdminClear(chatID, userID int64) {
	if !b.isAdmin(userID) {
		b.reply(chatID, msgAdminOnly)
		return
	}

	if err := b.kb.Clear(); err != nil {
		b.reply(chatID, fmt.Sprintf("Ошибка очистки: %v", err))
		return
	}
	b.reply(chatID, "🧹 База знаний очищена.")
}
