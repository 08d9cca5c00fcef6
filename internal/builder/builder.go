package builder

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ashabalin/brief-refiner/internal/api"
	"github.com/ashabalin/brief-refiner/internal/api/knowledge"
	"github.com/ashabalin/brief-refiner/internal/config"
	"github.com/ashabalin/brief-refiner/internal/document"
	"github.com/ashabalin/brief-refiner/internal/gateway"
	"github.com/ashabalin/brief-refiner/internal/pkg/logger"
	"github.com/ashabalin/brief-refiner/internal/rag/index"
	"github.com/ashabalin/brief-refiner/internal/ratelimit"
	"github.com/ashabalin/brief-refiner/internal/session"
	"github.com/ashabalin/brief-refiner/internal/telegram"
	"github.com/ashabalin/brief-refiner/internal/usecase/chat"
)

// Build assembles the whole application: the retrieval index, the model
// gateway, the chat service, the Telegram bot, and the admin HTTP server.
func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	production := cfg.Environment == "prod" || cfg.Environment == "production"
	log, err := logger.New(cfg.LogLevel, production)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	log.Info("building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Retrieval index: loads its persisted snapshot when one exists.
	idx, err := index.New(cfg.KnowledgeCfg.PersistDir, cfg.KnowledgeCfg.ChunkSize)
	if err != nil {
		return nil, fmt.Errorf("setup knowledge index: %w", err)
	}
	stats := idx.Stats()
	log.Info("knowledge index ready",
		zap.Int("chunks", stats.TotalChunks),
		zap.Int("sources", stats.DistinctSources),
	)

	var gw gateway.Gateway
	if cfg.EnableMocks {
		log.Info("using mock model gateway")
		gw = gateway.NewMockGateway()
	} else {
		gw = gateway.NewClient(cfg.LLMCfg, log)
	}

	sessions := session.NewManager(cfg.LimitsCfg.MaxHistoryLength)
	limiter := ratelimit.New(cfg.LimitsCfg.RateLimitMessages, cfg.LimitsCfg.RateLimitWindow)
	docs := document.NewFactory()

	svc := chat.NewService(sessions, gw, idx, docs, cfg.LimitsCfg, cfg.KnowledgeCfg)
	log.Info("chat service initialized")

	bot, err := telegram.New(&cfg.TelegramCfg, cfg.LimitsCfg, svc, idx, cfg.KnowledgeCfg.DataDir, limiter, log)
	if err != nil {
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	knowledgeHandler := knowledge.NewHandler(idx, cfg.KnowledgeCfg)
	router := api.SetupRouter(knowledgeHandler, log)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:  server,
		bot:     bot,
		limiter: limiter,
		logger:  log,
	}, nil
}
