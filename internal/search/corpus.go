package search

import (
	"encoding/json"
	"fmt"
	"os"
)

// DocChunk is one unit of pre-embedded policy text from the static corpus
// file. The embeddings are computed offline with the same model the engine
// uses for queries.
type DocChunk struct {
	Text      string    `json:"chunk"`
	Embedding []float32 `json:"embedding"`
	Document  string    `json:"document"`
}

// LoadCorpus reads the corpus file: a JSON array of chunks. Chunks with an
// empty embedding are dropped since they can never score.
func LoadCorpus(path string) ([]DocChunk, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file failed: %w", err)
	}
	var chunks []DocChunk
	if err := json.Unmarshal(raw, &chunks); err != nil {
		return nil, fmt.Errorf("parse corpus json failed: %w", err)
	}
	usable := chunks[:0]
	for _, c := range chunks {
		if len(c.Embedding) > 0 {
			usable = append(usable, c)
		}
	}
	return usable, nil
}
