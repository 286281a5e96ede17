// Package evidence provides similarity search over the chunked, embedded
// document a request analyzes. Ingestion and embedding happen upstream;
// this package only retrieves.
package evidence

import "context"

// Passage is one retrieved document chunk with its similarity score.
type Passage struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Searcher retrieves the k passages most relevant to a query.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]Passage, error)
}

// Embedder turns a query into the vector space the passages live in.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
