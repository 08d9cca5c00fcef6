package builder

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ashabalin/brief-refiner/internal/ratelimit"
	"github.com/ashabalin/brief-refiner/internal/telegram"
)

// App represents the application with all its components
type App struct {
	server  *http.Server
	bot     *telegram.Bot
	limiter *ratelimit.Limiter
	logger  *zap.Logger
}

// Run starts the bot and the admin HTTP server, then blocks until a
// shutdown signal or a fatal server error.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.limiter.StartCleanup(ctx, time.Minute)

	errChan := make(chan error, 2)

	go func() {
		a.logger.Info("starting admin HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	if err := a.bot.Start(ctx); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		a.logger.Error("server error", zap.Error(err))
		cancel()
		a.shutdown()
		return err
	case sig := <-sigChan:
		a.logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	}

	cancel()
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a.logger.Info("shutting down gracefully")

	if err := a.bot.Stop(); err != nil {
		a.logger.Error("bot shutdown error", zap.Error(err))
	}

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	a.logger.Info("application stopped gracefully")
	return nil
}
