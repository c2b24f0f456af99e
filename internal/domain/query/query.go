// Package query defines the immutable retrieval query value object.
package query

import (
	"fmt"

	"github.com/helicon-ai/datrieval/internal/domain"
)

// Query is a validated user query.
type Query struct {
	text     string
	metadata map[string]any
}

// New validates and creates a query.
func New(text string, metadata map[string]any) (Query, error) {
	if text == "" {
		return Query{}, fmt.Errorf("%w: query text cannot be empty", domain.ErrInvalidQuery)
	}
	return Query{text: text, metadata: metadata}, nil
}

// Text returns the query text.
func (q Query) Text() string { return q.text }

// Metadata returns the query metadata.
func (q Query) Metadata() map[string]any { return q.metadata }
