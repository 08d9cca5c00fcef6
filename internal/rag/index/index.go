package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/ashabalin/brief-refiner/internal/entity"
	"github.com/ashabalin/brief-refiner/internal/rag/chunker"
	"github.com/ashabalin/brief-refiner/internal/rag/score"
)

const indexFileName = "index.json"

var supportedExtensions = map[string]struct{}{
	".txt": {},
	".md":  {},
}

// Index is an in-memory chunk store with a JSON snapshot on disk.
// All methods are safe for concurrent use.
type Index struct {
	mu         sync.RWMutex
	chunks     []entity.Chunk
	persistDir string
	chunker    *chunker.Chunker
}

func New(persistDir string, chunkSize int) (*Index, error) {
	if err := os.MkdirAll(persistDir, 0o755); err != nil {
		return nil, fmt.Errorf("create persist dir: %w", err)
	}

	idx := &Index{
		persistDir: persistDir,
		chunker:    chunker.New(chunkSize),
	}
	idx.load()
	return idx, nil
}

// load restores the snapshot. A missing or corrupt snapshot yields an
// empty index rather than a startup failure.
func (idx *Index) load() {
	data, err := os.ReadFile(filepath.Join(idx.persistDir, indexFileName))
	if err != nil {
		return
	}

	var chunks []entity.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		idx.chunks = nil
		return
	}
	idx.chunks = chunks
}

func (idx *Index) save() error {
	data, err := json.MarshalIndent(idx.chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(idx.persistDir, indexFileName), data, 0o644); err != nil {
		return fmt.Errorf("write index snapshot: %w", err)
	}
	return nil
}

// Rebuild re-indexes every supported document under dataDir, replacing
// the previous contents. A file that fails to read is skipped, it never
// aborts the rebuild.
func (idx *Index) Rebuild(ctx context.Context, dataDir string) (entity.RebuildStats, error) {
	logger := ctxzap.Extract(ctx)

	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return entity.RebuildStats{}, fmt.Errorf("create data dir: %w", err)
		}
		logger.Info("created empty knowledge dir", zap.String("dir", dataDir))
	}

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return entity.RebuildStats{}, fmt.Errorf("read data dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := supportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var stats entity.RebuildStats
	chunks := make([]entity.Chunk, 0, len(names))

	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dataDir, name))
		if err != nil {
			logger.Error("skipping unreadable file", zap.String("file", name), zap.Error(err))
			continue
		}
		if strings.TrimSpace(string(content)) == "" {
			continue
		}

		pieces := idx.chunker.Split(string(content))
		for i, piece := range pieces {
			chunks = append(chunks, entity.Chunk{
				ID:      fmt.Sprintf("%s_%d", name, i),
				Content: piece,
				Source:  name,
			})
		}

		stats.FilesIndexed++
		stats.ChunksCreated += len(pieces)
		logger.Info("indexed file", zap.String("file", name), zap.Int("chunks", len(pieces)))
	}

	idx.mu.Lock()
	idx.chunks = chunks
	err = idx.save()
	idx.mu.Unlock()
	if err != nil {
		return stats, err
	}

	return stats, nil
}

// Search returns up to topK chunks with a positive relevance score,
// ordered best first. Ties keep the index order, so results are
// deterministic for a given corpus.
func (idx *Index) Search(query string, topK int) []entity.SearchResult {
	queryTokens := chunker.Tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var results []entity.SearchResult
	for _, chunk := range idx.chunks {
		s := score.Relevance(queryTokens, chunk.Content)
		if s > 0 {
			results = append(results, entity.SearchResult{Chunk: chunk, Score: s})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Stats reports chunk and source counts for the current index.
func (idx *Index) Stats() entity.IndexStats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	sources := make(map[string]struct{})
	for _, chunk := range idx.chunks {
		sources[chunk.Source] = struct{}{}
	}
	return entity.IndexStats{
		TotalChunks:     len(idx.chunks),
		DistinctSources: len(sources),
	}
}

// Clear drops every chunk and persists the empty snapshot.
func (idx *Index) Clear() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.chunks = nil
	return idx.save()
}
