package middleware

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ashabalin/brief-refiner/internal/ratelimit"
)

// RateLimitMiddleware rejects updates from users that exceeded their
// sliding-window quota. Callback taps are cheap and stay exempt so a
// throttled user can still navigate menus.
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
	logger  *zap.Logger
	api     *tgbotapi.BotAPI
}

func NewRateLimitMiddleware(limiter *ratelimit.Limiter, logger *zap.Logger, api *tgbotapi.BotAPI) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
		api:     api,
	}
}

// Handle admits or drops the update.
func (m *RateLimitMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	if update.Message == nil {
		next(update)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	decision := m.limiter.Admit(userID)
	if !decision.Allowed {
		m.logger.Warn("rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Duration("reset_after", decision.ResetAfter),
		)
		m.sendThrottleNotice(chatID, decision.ResetAfter)
		return
	}

	next(update)
}

func (m *RateLimitMiddleware) sendThrottleNotice(chatID int64, resetAfter time.Duration) {
	seconds := int(resetAfter.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("⏳ Слишком много сообщений. Подожди %d сек.", seconds))
	if _, err := m.api.Send(msg); err != nil {
		m.logger.Error("failed to send throttle notice",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}
