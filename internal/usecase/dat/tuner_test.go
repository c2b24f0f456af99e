package dat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/helicon-ai/datrieval/internal/domain/retrieval/method"
	"github.com/helicon-ai/datrieval/internal/domain/query"
	"github.com/helicon-ai/datrieval/internal/domain/retrieval/result"
)

type stubScorer struct {
	scores Scores
	err    error
	calls  int
}

func (s *stubScorer) Score(context.Context, query.Query, *result.Result, *result.Result) (Scores, error) {
	s.calls++
	if s.err != nil {
		return Scores{}, s.err
	}
	return s.scores, nil
}

func TestCalculateAlpha_CaseRules(t *testing.T) {
	tests := []struct {
		dense, sparse int
		want          float64
	}{
		{0, 0, 0.5},
		{5, 0, 1.0},
		{5, 4, 1.0},
		{0, 5, 0.0},
		{4, 5, 0.0},
		{5, 5, 0.5},
		{4, 3, 0.6},
		{1, 2, 0.3},
		{2, 1, 0.7},
		{3, 4, 0.4},
		{3, 3, 0.5},
		{1, 4, 0.2},
		// 0.25 and 0.75 round half away from zero.
		{1, 3, 0.3},
		{3, 1, 0.8},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("d%d_s%d", tt.dense, tt.sparse), func(t *testing.T) {
			scorer := &stubScorer{scores: Scores{Dense: tt.dense, Sparse: tt.sparse}}
			tuner := NewTuner(scorer, 0.5, zap.NewNop())

			dense := []result.Result{mustResult(t, "d1", "dense", 0.9, method.Dense)}
			sparse := []result.Result{mustResult(t, "s1", "sparse", 4.2, method.Sparse)}

			alpha, err := tuner.CalculateAlpha(context.Background(), mustQuery(t, "q"), dense, sparse)
			if err != nil {
				t.Fatalf("CalculateAlpha() error = %v", err)
			}
			if math.Abs(alpha-tt.want) > 1e-9 {
				t.Errorf("CalculateAlpha() = %g, want %g", alpha, tt.want)
			}
		})
	}
}

func TestCalculateAlpha_EmptyShortcuts(t *testing.T) {
	dense := []result.Result{mustResult(t, "d1", "dense", 0.9, method.Dense)}
	sparse := []result.Result{mustResult(t, "s1", "sparse", 4.2, method.Sparse)}

	tests := []struct {
		name   string
		dense  []result.Result
		sparse []result.Result
		want   float64
	}{
		{"both empty uses default", nil, nil, 0.7},
		{"dense empty goes full sparse", nil, sparse, 0.0},
		{"sparse empty goes full dense", dense, nil, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := &stubScorer{scores: Scores{Dense: 3, Sparse: 3}}
			tuner := NewTuner(scorer, 0.7, zap.NewNop())

			alpha, err := tuner.CalculateAlpha(context.Background(), mustQuery(t, "q"), tt.dense, tt.sparse)
			if err != nil {
				t.Fatalf("CalculateAlpha() error = %v", err)
			}
			if alpha != tt.want {
				t.Errorf("CalculateAlpha() = %g, want %g", alpha, tt.want)
			}
			if scorer.calls != 0 {
				t.Errorf("judge scorer called %d times, want 0", scorer.calls)
			}
		})
	}
}

func TestCalculateAlpha_ScorerErrorPropagates(t *testing.T) {
	scorer := &stubScorer{err: errors.New("judge down")}
	tuner := NewTuner(scorer, 0.5, zap.NewNop())

	dense := []result.Result{mustResult(t, "d1", "dense", 0.9, method.Dense)}
	sparse := []result.Result{mustResult(t, "s1", "sparse", 4.2, method.Sparse)}

	if _, err := tuner.CalculateAlpha(context.Background(), mustQuery(t, "q"), dense, sparse); err == nil {
		t.Fatal("CalculateAlpha() expected error")
	}
}

func TestApplyAlpha_Overlap(t *testing.T) {
	tuner := NewTuner(&stubScorer{}, 0.5, zap.NewNop())

	dense := []result.Result{mustResult(t, "doc-1", "text", 0.9, method.Dense)}
	sparse := []result.Result{mustResult(t, "doc-1", "text", 5.0, method.Sparse)}

	merged := tuner.ApplyAlpha(0.6, dense, sparse)
	if len(merged) != 1 {
		t.Fatalf("len(merged) = %d, want 1", len(merged))
	}

	got := merged[0]
	want := 0.9*0.6 + 5.0*0.4
	if math.Abs(got.Score()-want) > 1e-9 {
		t.Errorf("Score() = %g, want %g", got.Score(), want)
	}
	if got.Method() != method.Hybrid {
		t.Errorf("Method() = %q, want hybrid", got.Method())
	}

	md := got.Metadata()
	if math.Abs(md["dense_score"].(float64)-0.9*0.6) > 1e-9 {
		t.Errorf("metadata dense_score = %v", md["dense_score"])
	}
	if math.Abs(md["sparse_score"].(float64)-5.0*0.4) > 1e-9 {
		t.Errorf("metadata sparse_score = %v", md["sparse_score"])
	}
	if md["alpha"] != 0.6 {
		t.Errorf("metadata alpha = %v", md["alpha"])
	}
}

func TestApplyAlpha_Disjoint(t *testing.T) {
	tuner := NewTuner(&stubScorer{}, 0.5, zap.NewNop())

	dense := []result.Result{mustResult(t, "d1", "dense text", 0.8, method.Dense)}
	sparse := []result.Result{mustResult(t, "s1", "sparse text", 3.0, method.Sparse)}

	merged := tuner.ApplyAlpha(0.5, dense, sparse)
	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, want 2", len(merged))
	}

	// sparse 3.0*0.5=1.5 outranks dense 0.8*0.5=0.4
	if merged[0].ID() != "s1" || merged[1].ID() != "d1" {
		t.Fatalf("order = [%s %s], want [s1 d1]", merged[0].ID(), merged[1].ID())
	}
	if merged[0].Method() != method.Sparse || merged[1].Method() != method.Dense {
		t.Errorf("methods = [%s %s]", merged[0].Method(), merged[1].Method())
	}

	if md := merged[1].Metadata(); md["original_score"] != 0.8 || md["alpha"] != 0.5 {
		t.Errorf("dense metadata = %v", md)
	}
	if md := merged[0].Metadata(); md["original_score"] != 3.0 {
		t.Errorf("sparse metadata = %v", md)
	}
}

func TestApplyAlpha_ExtremeWeights(t *testing.T) {
	tuner := NewTuner(&stubScorer{}, 0.5, zap.NewNop())

	dense := []result.Result{mustResult(t, "d1", "dense", 0.9, method.Dense)}
	sparse := []result.Result{mustResult(t, "s1", "sparse", 3.0, method.Sparse)}

	merged := tuner.ApplyAlpha(1.0, dense, sparse)
	if merged[0].ID() != "d1" || merged[0].Score() != 0.9 {
		t.Errorf("alpha=1.0: top = (%s, %g), want (d1, 0.9)", merged[0].ID(), merged[0].Score())
	}
	if merged[1].Score() != 0 {
		t.Errorf("alpha=1.0: sparse score = %g, want 0", merged[1].Score())
	}

	merged = tuner.ApplyAlpha(0.0, dense, sparse)
	if merged[0].ID() != "s1" || merged[0].Score() != 3.0 {
		t.Errorf("alpha=0.0: top = (%s, %g), want (s1, 3.0)", merged[0].ID(), merged[0].Score())
	}
}

func TestApplyAlpha_StableOrderOnTies(t *testing.T) {
	tuner := NewTuner(&stubScorer{}, 0.5, zap.NewNop())

	dense := []result.Result{
		mustResult(t, "d1", "a", 1.0, method.Dense),
		mustResult(t, "d2", "b", 1.0, method.Dense),
	}
	sparse := []result.Result{
		mustResult(t, "s1", "c", 1.0, method.Sparse),
	}

	merged := tuner.ApplyAlpha(0.5, dense, sparse)
	got := []string{merged[0].ID(), merged[1].ID(), merged[2].ID()}
	want := []string{"d1", "d2", "s1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestApplyAlpha_DeterministicOnRepeat(t *testing.T) {
	tuner := NewTuner(&stubScorer{}, 0.5, zap.NewNop())

	dense := []result.Result{
		mustResult(t, "doc-1", "shared", 0.9, method.Dense),
		mustResult(t, "d2", "dense only", 0.7, method.Dense),
	}
	sparse := []result.Result{
		mustResult(t, "doc-1", "shared", 5.0, method.Sparse),
		mustResult(t, "s2", "sparse only", 3.1, method.Sparse),
	}

	first := tuner.ApplyAlpha(0.6, dense, sparse)
	second := tuner.ApplyAlpha(0.6, dense, sparse)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID() != second[i].ID() {
			t.Errorf("merged[%d].ID() = %q vs %q", i, first[i].ID(), second[i].ID())
		}
		if first[i].Score() != second[i].Score() {
			t.Errorf("merged[%d].Score() = %g vs %g", i, first[i].Score(), second[i].Score())
		}
		if first[i].Method() != second[i].Method() {
			t.Errorf("merged[%d].Method() = %q vs %q", i, first[i].Method(), second[i].Method())
		}
	}
}

func TestApplyAlpha_Empty(t *testing.T) {
	tuner := NewTuner(&stubScorer{}, 0.5, zap.NewNop())

	if merged := tuner.ApplyAlpha(0.5, nil, nil); len(merged) != 0 {
		t.Errorf("ApplyAlpha(nil, nil) = %d results, want 0", len(merged))
	}
}
