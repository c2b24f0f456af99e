// Package document defines the immutable document value object.
//
// Documents are owned by the storage layer; the retrieval core only reads
// them and never mutates one.
package document

import "fmt"

// Document is a chunk of indexed text with optional provenance and score.
type Document struct {
	id       string
	text     string
	source   string
	title    string
	score    float64
	hasScore bool
	metadata map[string]any
}

// New creates a document. The id is required.
func New(id, text string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document id is required")
	}
	return Document{id: id, text: text}, nil
}

// WithProvenance returns a copy carrying source and title.
func (d Document) WithProvenance(source, title string) Document {
	d.source = source
	d.title = title
	return d
}

// WithScore returns a copy carrying a store-assigned score.
func (d Document) WithScore(score float64) Document {
	d.score = score
	d.hasScore = true
	return d
}

// WithMetadata returns a copy carrying metadata.
func (d Document) WithMetadata(metadata map[string]any) Document {
	d.metadata = metadata
	return d
}

// ID returns the document identifier.
func (d Document) ID() string { return d.id }

// Text returns the raw document text.
func (d Document) Text() string { return d.text }

// Source returns the document source.
func (d Document) Source() string { return d.source }

// Title returns the document title.
func (d Document) Title() string { return d.title }

// Score returns the store-assigned score and whether one was set.
func (d Document) Score() (float64, bool) { return d.score, d.hasScore }

// Metadata returns the document metadata.
func (d Document) Metadata() map[string]any { return d.metadata }
