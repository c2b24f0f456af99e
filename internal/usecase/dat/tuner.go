package dat

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/helicon-ai/datrieval/internal/domain/query"
	"github.com/helicon-ai/datrieval/internal/domain/retrieval/method"
	"github.com/helicon-ai/datrieval/internal/domain/retrieval/result"
)

// Tuner calibrates the fusion weight alpha for hybrid retrieval and merges
// the two result lists under it. Alpha weights dense scores; sparse scores
// get (1 - alpha).
type Tuner struct {
	scorer       EffectivenessScorer
	defaultAlpha float64
	logger       *zap.Logger
}

// NewTuner creates an alpha tuner. defaultAlpha is used when both result
// lists are empty and the judge has nothing to compare.
func NewTuner(scorer EffectivenessScorer, defaultAlpha float64, logger *zap.Logger) *Tuner {
	return &Tuner{scorer: scorer, defaultAlpha: defaultAlpha, logger: logger}
}

// CalculateAlpha computes the fusion weight for the query.
//
// Empty-list shortcuts skip the judge entirely. Otherwise the judge rates
// both top-1 results and a case-aware rule applies, in priority order:
//
//	d == 0 && s == 0        -> 0.5  (neither method useful, split evenly)
//	d == 5 && s < 5         -> 1.0  (dense nailed it, trust it exclusively)
//	s == 5 && d < 5         -> 0.0  (sparse nailed it)
//	otherwise               -> d / (d + s)
//
// d == 5 && s == 5 falls through to the proportional formula, which yields
// 0.5. The final value is rounded to one decimal place, half away from zero.
func (t *Tuner) CalculateAlpha(
	ctx context.Context, q query.Query, denseResults, sparseResults []result.Result,
) (float64, error) {
	switch {
	case len(denseResults) == 0 && len(sparseResults) == 0:
		return t.defaultAlpha, nil
	case len(denseResults) == 0:
		t.logger.Info("no dense results, using only sparse retrieval")
		return 0.0, nil
	case len(sparseResults) == 0:
		t.logger.Info("no sparse results, using only dense retrieval")
		return 1.0, nil
	}

	scores, err := t.scorer.Score(ctx, q, &denseResults[0], &sparseResults[0])
	if err != nil {
		return 0, err
	}

	var alpha float64
	switch {
	case scores.Dense == 0 && scores.Sparse == 0:
		alpha = 0.5
	case scores.Dense == maxScore && scores.Sparse < maxScore:
		alpha = 1.0
	case scores.Sparse == maxScore && scores.Dense < maxScore:
		alpha = 0.0
	default:
		alpha = float64(scores.Dense) / float64(scores.Dense+scores.Sparse)
	}

	alpha = math.Round(alpha*10) / 10

	t.logger.Info("calculated alpha",
		zap.Float64("alpha", alpha),
		zap.Int("dense_score", scores.Dense),
		zap.Int("sparse_score", scores.Sparse),
	)
	return alpha, nil
}

// ApplyAlpha weights, merges and re-ranks the two result lists.
//
// A document present in both lists becomes a single hybrid entry scoring
// alpha*dense + (1-alpha)*sparse; a document present in one list keeps its
// method tag with its score weighted. The merged list is sorted by score
// descending with a stable tie-break (dense input order first, then
// sparse-only entries in input order). Truncation is the caller's job.
func (t *Tuner) ApplyAlpha(alpha float64, denseResults, sparseResults []result.Result) []result.Result {
	merged := make([]result.Result, 0, len(denseResults)+len(sparseResults))
	position := make(map[string]int, len(denseResults))

	for _, r := range denseResults {
		weighted := r.Score() * alpha
		entry := result.Reconstruct(r.Document(), weighted, method.Dense, map[string]any{
			"original_score": r.Score(),
			"alpha":          alpha,
		})
		if i, ok := position[r.ID()]; ok {
			// Duplicate id within one list is an upstream contract
			// violation; last entry wins, matching the merge map.
			merged[i] = entry
			continue
		}
		position[r.ID()] = len(merged)
		merged = append(merged, entry)
	}

	sparseWeight := 1.0 - alpha
	for _, r := range sparseResults {
		weighted := r.Score() * sparseWeight

		if i, ok := position[r.ID()]; ok {
			denseWeighted := merged[i].Score()
			merged[i] = result.Reconstruct(r.Document(), denseWeighted+weighted, method.Hybrid, map[string]any{
				"dense_score":  denseWeighted,
				"sparse_score": weighted,
				"alpha":        alpha,
			})
			continue
		}

		position[r.ID()] = len(merged)
		merged = append(merged, result.Reconstruct(r.Document(), weighted, method.Sparse, map[string]any{
			"original_score": r.Score(),
			"alpha":          alpha,
		}))
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score() > merged[j].Score()
	})

	return merged
}
