package dat

import (
	"context"

	"github.com/helicon-ai/datrieval/internal/domain/query"
	"github.com/helicon-ai/datrieval/internal/domain/retrieval/result"
)

// DenseRetriever queries the vector store for embedding-similarity candidates.
type DenseRetriever interface {
	Retrieve(ctx context.Context, queryText, collectionName string, limit int) ([]result.Result, error)
}

// SparseRetriever queries the lexical index for BM25 candidates.
type SparseRetriever interface {
	Search(ctx context.Context, indexName, queryText string, size int) ([]result.Result, error)
}

// Judge completes an evaluation prompt with an external language model.
type Judge interface {
	Complete(ctx context.Context, prompt, model string, temperature float32) (string, error)
}

// EffectivenessScorer rates the top-1 result of each retrieval method.
type EffectivenessScorer interface {
	Score(ctx context.Context, q query.Query, topDense, topSparse *result.Result) (Scores, error)
}
