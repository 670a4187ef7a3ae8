package chunker

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"

	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/extractor"
)

const (
	chunkSize = 1000 // characters per chunk
	overlap   = 100  // characters shared between consecutive chunks
)

// Chunk is a bounded span of one page's extracted text, the unit of embedding.
type Chunk struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Page   int    `json:"page"`
	Source string `json:"source"`
}

// Split produces the flat chunk sequence for a sequence of extracted pages.
// Chunks are at most chunkSize characters with overlap characters shared
// between consecutive chunks of the same page. The output is fully
// determined by the input: re-chunking identical pages yields identical
// chunks, which the processed-file ledger relies on.
func Split(pages []extractor.PageText) []Chunk {
	var out []Chunk
	for _, page := range pages {
		runes := []rune(page.Text)
		for i := 0; i < len(runes); i += chunkSize - overlap {
			end := min(i+chunkSize, len(runes))
			text := string(runes[i:end])
			out = append(out, Chunk{
				ID:     chunkID(page.Source, page.Page, text),
				Text:   text,
				Page:   page.Page,
				Source: page.Source,
			})
			if end == len(runes) {
				break
			}
		}
	}
	return out
}

func chunkID(source string, page int, text string) string {
	id := sha1.Sum([]byte(source + ":" + strconv.Itoa(page) + ":" + text))
	return hex.EncodeToString(id[:])
}
