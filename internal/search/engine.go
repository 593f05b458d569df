package search

import (
	"context"
	"log"
	"math"
	"sort"

	"leavebot/internal/ai"
)

// Embedder turns a query into a vector. *ai.OpenAICompatibleClient
// satisfies it via a thin adapter in bootstrap; tests substitute fakes.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Result is one scored corpus chunk.
type Result struct {
	Similarity float32 `json:"similarity"`
	Text       string  `json:"chunk"`
	Document   string  `json:"document"`
}

// Engine ranks the static corpus against query embeddings by cosine
// similarity. The corpus is loaded once and never mutated.
type Engine struct {
	corpus   []DocChunk
	embedder Embedder
}

func NewEngine(corpus []DocChunk, embedder Embedder) *Engine {
	return &Engine{corpus: corpus, embedder: embedder}
}

// Search returns the topK most similar chunks, best first. It degrades to
// an empty result set when the embedding call fails (credential problems
// included); callers must read empty as "no relevant information", not as
// an error.
func (e *Engine) Search(ctx context.Context, query string, topK int) []Result {
	if topK <= 0 || len(e.corpus) == 0 {
		return nil
	}
	queryEmb, err := e.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("query embedding failed, returning no results: %v", err)
		return nil
	}

	results := make([]Result, len(e.corpus))
	for i, chunk := range e.corpus {
		results[i] = Result{
			Similarity: cosineSimilarity(queryEmb, chunk.Embedding),
			Text:       chunk.Text,
			Document:   chunk.Document,
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK]
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// ClientEmbedder adapts the shared OpenAI-compatible client to the Embedder
// interface with a fixed embedding configuration.
type ClientEmbedder struct {
	Client *ai.OpenAICompatibleClient
	Config ai.EmbeddingConfig
}

func (c ClientEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return c.Client.Embed(ctx, c.Config, text)
}
