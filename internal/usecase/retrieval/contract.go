package retrieval

import (
	"context"

	"github.com/helicon-ai/datrieval/internal/domain/query"
	"github.com/helicon-ai/datrieval/internal/domain/retrieval/result"
)

// Strategy produces a ranked result list for a query against a collection.
type Strategy interface {
	Retrieve(ctx context.Context, q query.Query, collectionName string, topK int) ([]result.Result, error)
}
