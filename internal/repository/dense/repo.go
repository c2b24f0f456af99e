// Package dense retrieves documents by embedding similarity.
package dense

import (
	"context"
	"fmt"
	"strings"

	"github.com/helicon-ai/datrieval/internal/db"
	"github.com/helicon-ai/datrieval/internal/domain"
	"github.com/helicon-ai/datrieval/internal/domain/document"
	"github.com/helicon-ai/datrieval/internal/domain/retrieval/method"
	"github.com/helicon-ai/datrieval/internal/domain/retrieval/result"
)

type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo performs KNN vector retrieval: the query text is embedded, then
// searched against the collection's vector index.
type Repo struct {
	store     store
	embed     domain.Embedder
	keyPrefix string
}

// NewRepo creates a dense retrieval repository. keyPrefix is the document
// key namespace shared with the ingestion service, e.g. "doc:".
func NewRepo(s store, embed domain.Embedder, keyPrefix string) *Repo {
	return &Repo{store: s, embed: embed, keyPrefix: keyPrefix}
}

var returnFields = []string{"__content", "__source", "__title", "__vector_score"}

// Retrieve embeds the query and returns the limit nearest documents from the
// collection, scored by cosine similarity in [0,1]. An entry the store did
// not score defaults to 1.0 so it is never dropped by downstream weighting.
func (r *Repo) Retrieve(
	ctx context.Context, queryText, collectionName string, limit int,
) ([]result.Result, error) {
	emb, err := r.embed.Embed(ctx, queryText)
	if err != nil {
		return nil, err
	}

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(collectionName),
		Vector:       emb.Embedding,
		K:            limit,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("dense search on %q: %w", collectionName, err)
	}

	results := make([]result.Result, 0, len(res.Entries))
	docPrefix := r.docKeyPrefix(collectionName)
	for _, entry := range res.Entries {
		doc, err := document.New(strings.TrimPrefix(entry.Key, docPrefix), entry.Fields["__content"])
		if err != nil {
			continue
		}
		doc = doc.WithProvenance(entry.Fields["__source"], entry.Fields["__title"])

		score := 1.0
		if entry.HasScore {
			score = entry.Score
		}

		rr, err := result.New(doc, score, method.Dense, nil)
		if err != nil {
			continue
		}
		results = append(results, rr)
	}
	return results, nil
}

func (r *Repo) indexName(collection string) string {
	return fmt.Sprintf("%s%s:idx", r.keyPrefix, collection)
}

func (r *Repo) docKeyPrefix(collection string) string {
	return fmt.Sprintf("%s%s:", r.keyPrefix, collection)
}
