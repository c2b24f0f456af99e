// Package result defines the immutable retrieval result value object.
package result

import (
	"fmt"

	"github.com/helicon-ai/datrieval/internal/domain/document"
	"github.com/helicon-ai/datrieval/internal/domain/retrieval/method"
)

// Result is a single scored retrieval hit.
type Result struct {
	doc      document.Document
	score    float64
	method   method.Method
	metadata map[string]any
}

// New validates and creates a retrieval result. The score must not be negative.
func New(doc document.Document, score float64, m method.Method, metadata map[string]any) (Result, error) {
	if score < 0 {
		return Result{}, fmt.Errorf("score cannot be negative, got %g", score)
	}
	if m == "" {
		m = method.Unknown
	}
	if !m.IsValid() {
		return Result{}, fmt.Errorf("invalid retrieval method: %q", m)
	}
	return Result{doc: doc, score: score, method: m, metadata: metadata}, nil
}

// Reconstruct rebuilds a result from trusted values, bypassing validation.
// Used by the fusion step, which only produces non-negative weighted scores.
func Reconstruct(doc document.Document, score float64, m method.Method, metadata map[string]any) Result {
	return Result{doc: doc, score: score, method: m, metadata: metadata}
}

// Document returns the underlying document.
func (r Result) Document() document.Document { return r.doc }

// ID returns the underlying document identifier.
func (r Result) ID() string { return r.doc.ID() }

// Score returns the relevance score.
func (r Result) Score() float64 { return r.score }

// Method returns the retrieval method that produced this result.
func (r Result) Method() method.Method { return r.method }

// Metadata returns the result metadata.
func (r Result) Metadata() map[string]any { return r.metadata }
