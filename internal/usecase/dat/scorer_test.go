package dat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/helicon-ai/datrieval/internal/domain"
	"github.com/helicon-ai/datrieval/internal/domain/document"
	"github.com/helicon-ai/datrieval/internal/domain/query"
	"github.com/helicon-ai/datrieval/internal/domain/retrieval/method"
	"github.com/helicon-ai/datrieval/internal/domain/retrieval/result"
)

type stubJudge struct {
	response string
	err      error
	prompts  []string
	calls    int
}

func (j *stubJudge) Complete(_ context.Context, prompt, _ string, _ float32) (string, error) {
	j.calls++
	j.prompts = append(j.prompts, prompt)
	if j.err != nil {
		return "", j.err
	}
	return j.response, nil
}

func mustQuery(t *testing.T, text string) query.Query {
	t.Helper()
	q, err := query.New(text, nil)
	if err != nil {
		t.Fatalf("query.New() error = %v", err)
	}
	return q
}

func mustResult(t *testing.T, id, text string, score float64, m method.Method) result.Result {
	t.Helper()
	doc, err := document.New(id, text)
	if err != nil {
		t.Fatalf("document.New() error = %v", err)
	}
	r, err := result.New(doc, score, m, nil)
	if err != nil {
		t.Fatalf("result.New() error = %v", err)
	}
	return r
}

func TestScorer_Score(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     Scores
	}{
		{"plain pair", "4 3", Scores{Dense: 4, Sparse: 3}},
		{"extra whitespace", "  5\t0  ", Scores{Dense: 5, Sparse: 0}},
		{"trailing text tolerated", "3 4 extra", Scores{Dense: 3, Sparse: 4}},
		{"clamped above max", "9 7", Scores{Dense: 5, Sparse: 5}},
		{"clamped below min", "-2 3", Scores{Dense: 0, Sparse: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			judge := &stubJudge{response: tt.response}
			s := NewScorer(judge, "gpt-4o-mini", 0, zap.NewNop())

			dense := mustResult(t, "d1", "dense text", 0.9, method.Dense)
			sparse := mustResult(t, "s1", "sparse text", 4.2, method.Sparse)

			got, err := s.Score(context.Background(), mustQuery(t, "q"), &dense, &sparse)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Score() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestScorer_Score_MalformedFallsBackToNeutral(t *testing.T) {
	for _, resp := range []string{"", "great results!", "five four", "3"} {
		judge := &stubJudge{response: resp}
		s := NewScorer(judge, "gpt-4o-mini", 0, zap.NewNop())

		dense := mustResult(t, "d1", "dense text", 0.9, method.Dense)
		sparse := mustResult(t, "s1", "sparse text", 4.2, method.Sparse)

		got, err := s.Score(context.Background(), mustQuery(t, "q"), &dense, &sparse)
		if err != nil {
			t.Fatalf("Score(%q) error = %v", resp, err)
		}
		if got != (Scores{Dense: neutralScore, Sparse: neutralScore}) {
			t.Errorf("Score(%q) = %+v, want neutral {2 2}", resp, got)
		}
	}
}

func TestScorer_Score_JudgeError(t *testing.T) {
	judge := &stubJudge{err: errors.New("connection refused")}
	s := NewScorer(judge, "gpt-4o-mini", 0, zap.NewNop())

	dense := mustResult(t, "d1", "dense text", 0.9, method.Dense)
	sparse := mustResult(t, "s1", "sparse text", 4.2, method.Sparse)

	_, err := s.Score(context.Background(), mustQuery(t, "q"), &dense, &sparse)
	if err == nil {
		t.Fatal("Score() expected error")
	}
	if !errors.Is(err, domain.ErrJudgeUnavailable) {
		t.Errorf("error = %v, want ErrJudgeUnavailable", err)
	}
}

func TestScorer_Score_PromptContents(t *testing.T) {
	judge := &stubJudge{response: "3 4"}
	s := NewScorer(judge, "gpt-4o-mini", 0, zap.NewNop())

	dense := mustResult(t, "d1", "the Eiffel Tower is in Paris", 0.9, method.Dense)

	_, err := s.Score(context.Background(), mustQuery(t, "where is the Eiffel Tower"), &dense, nil)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(judge.prompts) != 1 {
		t.Fatalf("judge called %d times, want 1", len(judge.prompts))
	}

	prompt := judge.prompts[0]
	for _, want := range []string{
		"where is the Eiffel Tower",
		"the Eiffel Tower is in Paris",
		noResultPlaceholder,
		"Scoring Criteria",
		"Do not output any other text.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestParseScores(t *testing.T) {
	tests := []struct {
		resp string
		want Scores
		ok   bool
	}{
		{"0 0", Scores{0, 0}, true},
		{"5 5", Scores{5, 5}, true},
		{"2 x", Scores{}, false},
		{"x 2", Scores{}, false},
		{"", Scores{}, false},
	}
	for _, tt := range tests {
		got, ok := parseScores(tt.resp)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseScores(%q) = (%+v, %v), want (%+v, %v)", tt.resp, got, ok, tt.want, tt.ok)
		}
	}
}
