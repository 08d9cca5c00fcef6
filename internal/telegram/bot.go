package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/ashabalin/brief-refiner/internal/config"
	"github.com/ashabalin/brief-refiner/internal/entity"
	"github.com/ashabalin/brief-refiner/internal/ratelimit"
	"github.com/ashabalin/brief-refiner/internal/telegram/keyboard"
	"github.com/ashabalin/brief-refiner/internal/telegram/middleware"
	"github.com/ashabalin/brief-refiner/internal/telegram/render"
	"github.com/ashabalin/brief-refiner/internal/usecase/chat"
)

// KnowledgeBase is the admin surface over the retrieval index.
type KnowledgeBase interface {
	Rebuild(ctx context.Context, dataDir string) (entity.RebuildStats, error)
	Stats() entity.IndexStats
	Clear() error
}

// Bot runs the Telegram long-poll loop and routes updates into the chat
// service.
type Bot struct {
	api        *tgbotapi.BotAPI
	cfg        *config.TelegramConfig
	limits     config.LimitsConfig
	svc        *chat.Service
	kb         KnowledgeBase
	dataDir    string
	keyboard   *keyboard.Builder
	logger     *zap.Logger
	loggingMW  *middleware.LoggingMiddleware
	recoveryMW *middleware.RecoveryMiddleware
	rateMW     *middleware.RateLimitMiddleware
	fileClient *http.Client
	stopChan   chan struct{}
	wg         sync.WaitGroup
}

func New(
	cfg *config.TelegramConfig,
	limits config.LimitsConfig,
	svc *chat.Service,
	kb KnowledgeBase,
	dataDir string,
	limiter *ratelimit.Limiter,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}
	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	b := &Bot{
		api:        api,
		cfg:        cfg,
		limits:     limits,
		svc:        svc,
		kb:         kb,
		dataDir:    dataDir,
		keyboard:   keyboard.NewBuilder(),
		logger:     logger,
		fileClient: &http.Client{Timeout: 60 * time.Second},
		stopChan:   make(chan struct{}),
	}

	b.loggingMW = middleware.NewLoggingMiddleware(logger)
	b.recoveryMW = middleware.NewRecoveryMiddleware(logger, api)
	b.rateMW = middleware.NewRateLimitMiddleware(limiter, logger, api)

	return b, nil
}

// Start begins processing updates. It returns immediately; the loop runs
// until Stop.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx, updates)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop shuts the bot down, waiting for in-flight handlers up to the
// configured timeout.
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(b.cfg.ShutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", b.cfg.ShutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

func (b *Bot) processUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update := <-updates:
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(u)
			}(update)
		}
	}
}

func (b *Bot) handleUpdateWithMiddleware(update tgbotapi.Update) {
	b.rateMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(u3)
			})
		})
	})
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx := ctxzap.ToContext(context.Background(), b.logger)

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	msg := update.Message
	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case msg.Voice != nil:
		b.handleVoice(ctx, msg)
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, msg)
	case msg.Text != "":
		b.handleText(ctx, msg)
	}
}

// downloadFile fetches a Telegram-hosted file by its ID.
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}

	resp, err := b.fileClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// reply sends a possibly long HTML message in parts.
func (b *Bot) reply(chatID int64, text string) {
	for _, part := range render.SplitMessage(text, b.limits.MaxMessageLength) {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Error("failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
		}
	}
}

func (b *Bot) replyWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendTyping(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug("failed to send chat action", zap.Error(err))
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	for _, id := range b.cfg.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
