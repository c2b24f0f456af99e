// Package db defines the storage contract for the retrieval plane.
//
// Only read-side search operations live here: index lifecycle and document
// ingestion belong to a separate ingestion service.
package db

import (
	"context"
	"time"
)

// Store is the retrieval database facade.
type Store interface {
	Pinger
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KNNQuery describes a vector similarity search over an FT index.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery describes a BM25 full-text search over an FT index.
type TextQuery struct {
	IndexName    string
	Query        string
	TopK         int
	ReturnFields []string
}

// SearchEntry is one raw hit returned by the store.
// HasScore is false when the store did not report a score for the entry.
type SearchEntry struct {
	Key      string
	Score    float64
	HasScore bool
	Fields   map[string]string
}

// SearchResult is the raw outcome of an FT.SEARCH call.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchBM25(ctx context.Context, q *TextQuery) (*SearchResult, error)
}
