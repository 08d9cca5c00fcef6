package knowledge

import (
	"context"

	"github.com/ashabalin/brief-refiner/internal/entity"
)

// Index is the retrieval index surface the handler drives.
type Index interface {
	Rebuild(ctx context.Context, dataDir string) (entity.RebuildStats, error)
	Search(query string, topK int) []entity.SearchResult
	Stats() entity.IndexStats
	Clear() error
}
