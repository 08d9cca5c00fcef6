package entity

// Chunk is a bounded-size fragment of a source document, the unit of
// retrieval. Immutable once indexed; identity is (source, ordinal).
type Chunk struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

// SearchResult is one scored chunk. Results are returned in strictly
// descending score order with original insertion order breaking ties.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// RebuildStats summarizes a completed index rebuild.
type RebuildStats struct {
	FilesIndexed  int `json:"files_indexed"`
	ChunksCreated int `json:"chunks_created"`
}

// IndexStats describes the current state of the retrieval index.
type IndexStats struct {
	TotalChunks     int `json:"total_chunks"`
	DistinctSources int `json:"distinct_sources"`
}
