package query

import (
	"errors"
	"testing"

	"github.com/helicon-ai/datrieval/internal/domain"
)

func TestNew(t *testing.T) {
	q, err := New("what is the capital of France", map[string]any{"lang": "en"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if q.Text() != "what is the capital of France" {
		t.Errorf("Text() = %q", q.Text())
	}
	if q.Metadata()["lang"] != "en" {
		t.Errorf("Metadata()[lang] = %v", q.Metadata()["lang"])
	}
}

func TestNew_EmptyText(t *testing.T) {
	_, err := New("", nil)
	if err == nil {
		t.Fatal("New() expected error for empty text")
	}
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("error = %v, want ErrInvalidQuery", err)
	}
}

func TestNew_NilMetadata(t *testing.T) {
	q, err := New("hello", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if q.Metadata() != nil {
		t.Errorf("Metadata() = %v, want nil", q.Metadata())
	}
}
