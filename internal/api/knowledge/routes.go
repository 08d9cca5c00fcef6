package knowledge

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers knowledge base routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/knowledge", func(r chi.Router) {
		r.Get("/stats", h.Stats)
		r.Get("/search", h.Search)
		r.Post("/rebuild", h.Rebuild)
		r.Post("/clear", h.Clear)
	})
}
