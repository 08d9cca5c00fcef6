package knowledge

import (
	"net/http"
	"strconv"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/ashabalin/brief-refiner/internal/config"
	"github.com/ashabalin/brief-refiner/internal/pkg/logger"
	"github.com/ashabalin/brief-refiner/internal/pkg/response"
)

type Handler struct {
	index Index
	cfg   config.KnowledgeConfig
}

func NewHandler(index Index, cfg config.KnowledgeConfig) *Handler {
	return &Handler{
		index: index,
		cfg:   cfg,
	}
}

// Rebuild handles POST /knowledge/rebuild
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "RebuildIndex")

	stats, err := h.index.Rebuild(ctx, h.cfg.DataDir)
	if err != nil {
		ctxzap.Error(ctx, "failed to rebuild index", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to rebuild index")
		return
	}

	ctxzap.Info(ctx, "index rebuilt",
		zap.Int("files_indexed", stats.FilesIndexed),
		zap.Int("chunks_created", stats.ChunksCreated),
	)
	response.Success(w, stats)
}

// Search handles GET /knowledge/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SearchIndex")

	query := r.URL.Query().Get("q")
	if query == "" {
		response.Error(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	topK, _ := strconv.Atoi(r.URL.Query().Get("top_k"))
	if topK <= 0 {
		topK = h.cfg.TopK
	}

	results := h.index.Search(query, topK)

	ctxzap.Debug(ctx, "search completed",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)
	response.Success(w, map[string]any{
		"query":   query,
		"results": results,
	})
}

// Stats handles GET /knowledge/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.index.Stats())
}

// Clear handles POST /knowledge/clear
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ClearIndex")

	if err := h.index.Clear(); err != nil {
		ctxzap.Error(ctx, "failed to clear index", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to clear index")
		return
	}

	ctxzap.Info(ctx, "index cleared")
	response.NoContent(w)
}
