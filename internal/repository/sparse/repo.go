// Package sparse retrieves documents by BM25 lexical match.
package sparse

import (
	"context"
	"fmt"
	"strings"

	"github.com/helicon-ai/datrieval/internal/db"
	"github.com/helicon-ai/datrieval/internal/domain/document"
	"github.com/helicon-ai/datrieval/internal/domain/retrieval/method"
	"github.com/helicon-ai/datrieval/internal/domain/retrieval/result"
)

type store interface {
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo performs BM25 retrieval over the collection's full-text index.
// BM25 scores are unbounded and returned as-is; normalization against the
// dense side happens in the fusion layer.
type Repo struct {
	store     store
	keyPrefix string
}

// NewRepo creates a sparse retrieval repository. keyPrefix matches the
// document key namespace used by the dense side.
func NewRepo(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

var returnFields = []string{"__content", "__source", "__title"}

// Search returns the size best lexical matches for queryText in the
// collection.
func (r *Repo) Search(
	ctx context.Context, collectionName, queryText string, size int,
) ([]result.Result, error) {
	res, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    fmt.Sprintf("%s%s:idx", r.keyPrefix, collectionName),
		Query:        queryText,
		TopK:         size,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("sparse search on %q: %w", collectionName, err)
	}

	results := make([]result.Result, 0, len(res.Entries))
	docPrefix := fmt.Sprintf("%s%s:", r.keyPrefix, collectionName)
	for _, entry := range res.Entries {
		doc, err := document.New(strings.TrimPrefix(entry.Key, docPrefix), entry.Fields["__content"])
		if err != nil {
			continue
		}
		doc = doc.WithProvenance(entry.Fields["__source"], entry.Fields["__title"])

		rr, err := result.New(doc, entry.Score, method.Sparse, nil)
		if err != nil {
			continue
		}
		results = append(results, rr)
	}
	return results, nil
}
