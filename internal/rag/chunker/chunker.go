package chunker

import (
	"regexp"
	"strings"
)

const DefaultChunkSize = 500

// Chunker splits documents into retrieval-sized pieces along paragraph
// boundaries, falling back to sentence boundaries for oversized paragraphs.
type Chunker struct {
	chunkSize int
}

func New(chunkSize int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Chunker{chunkSize: chunkSize}
}

// Split breaks text into chunks of at most the configured size. Chunk
// boundaries never fall inside a paragraph unless the paragraph itself
// exceeds the limit; a single sentence longer than the limit is emitted
// as its own chunk rather than cut mid-sentence.
func (c *Chunker) Split(text string) []string {
	var chunks []string
	paragraphs := strings.Split(text, "\n\n")
	current := ""

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(current)+len(para)+2 <= c.chunkSize {
			if current != "" {
				current += "\n\n"
			}
			current += para
			continue
		}

		if current != "" {
			chunks = append(chunks, current)
		}

		if len(para) > c.chunkSize {
			current = ""
			for _, sentence := range splitSentences(para) {
				if len(current)+len(sentence)+1 <= c.chunkSize {
					if current != "" {
						current += " "
					}
					current += sentence
				} else {
					if current != "" {
						chunks = append(chunks, current)
					}
					current = sentence
				}
			}
		} else {
			current = para
		}
	}

	if current != "" {
		chunks = append(chunks, current)
	}

	return chunks
}

// splitSentences splits on ". " keeping the period with the preceding
// sentence.
func splitSentences(text string) []string {
	return strings.Split(strings.ReplaceAll(text, ". ", ".|"), "|")
}

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize lowercases the text, extracts word tokens and drops the ones
// too short to carry meaning.
func Tokenize(text string) []string {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) > 2 {
			tokens = append(tokens, w)
		}
	}
	return tokens
}
