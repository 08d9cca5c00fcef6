package score

import (
	"math"

	"github.com/ashabalin/brief-refiner/internal/rag/chunker"
)

// Relevance computes a term-frequency score of a chunk against the query
// tokens, with a rarity bonus per matched term. Zero means no overlap.
func Relevance(queryTokens []string, content string) float64 {
	docTokens := chunker.Tokenize(content)
	if len(docTokens) == 0 {
		return 0
	}

	counts := make(map[string]int, len(docTokens))
	for _, token := range docTokens {
		counts[token]++
	}

	score := 0.0
	for _, token := range queryTokens {
		count, ok := counts[token]
		if !ok {
			continue
		}
		tf := float64(count) / float64(len(docTokens))
		idf := 1.0 + math.Log(1.0+1.0/(1.0+float64(count)))
		score += tf * idf
	}

	return score
}
