package dat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/helicon-ai/datrieval/internal/domain"
	"github.com/helicon-ai/datrieval/internal/domain/query"
	"github.com/helicon-ai/datrieval/internal/domain/retrieval/result"
)

// Effectiveness score bounds and the neutral fallback for unparseable
// judge output.
const (
	minScore     = 0
	maxScore     = 5
	neutralScore = 2
)

// noResultPlaceholder stands in for an empty retrieval side in the prompt.
const noResultPlaceholder = "No result"

// Scores is the judge's rating of each method's top-1 result, both in [0,5].
type Scores struct {
	Dense  int
	Sparse int
}

// Scorer asks an external judge how well each retrieval method performed.
//
// Top-1 evaluation: only the single best result from each method is judged,
// as a cheap proxy for overall method quality on the query.
type Scorer struct {
	judge       Judge
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewScorer creates an effectiveness scorer.
func NewScorer(judge Judge, model string, temperature float32, logger *zap.Logger) *Scorer {
	return &Scorer{judge: judge, model: model, temperature: temperature, logger: logger}
}

// Score evaluates the top-1 dense and sparse results for the query.
//
// A transport failure of the judge surfaces as domain.ErrJudgeUnavailable.
// A malformed completion does not fail the call: it degrades to the neutral
// {2,2} pair, so one garbled response reads as "methods roughly equal"
// instead of aborting the whole query.
func (s *Scorer) Score(
	ctx context.Context, q query.Query, topDense, topSparse *result.Result,
) (Scores, error) {
	prompt := buildEvaluationPrompt(q.Text(), resultText(topDense), resultText(topSparse))

	resp, err := s.judge.Complete(ctx, prompt, s.model, s.temperature)
	if err != nil {
		if errors.Is(err, domain.ErrJudgeUnavailable) {
			return Scores{}, err
		}
		return Scores{}, fmt.Errorf("%w: %w", domain.ErrJudgeUnavailable, err)
	}

	scores, ok := parseScores(resp)
	if !ok {
		s.logger.Warn("malformed judge response, falling back to neutral scores",
			zap.String("response", resp),
		)
		return Scores{Dense: neutralScore, Sparse: neutralScore}, nil
	}

	s.logger.Debug("judge scores",
		zap.Int("dense", scores.Dense),
		zap.Int("sparse", scores.Sparse),
	)
	return scores, nil
}

func resultText(r *result.Result) string {
	if r == nil {
		return noResultPlaceholder
	}
	return r.Document().Text()
}

// parseScores extracts two whitespace-separated integers from the judge's
// completion and clamps them into [0,5].
func parseScores(resp string) (Scores, bool) {
	parts := strings.Fields(resp)
	if len(parts) < 2 {
		return Scores{}, false
	}
	dense, err := strconv.Atoi(parts[0])
	if err != nil {
		return Scores{}, false
	}
	sparse, err := strconv.Atoi(parts[1])
	if err != nil {
		return Scores{}, false
	}
	return Scores{Dense: clampScore(dense), Sparse: clampScore(sparse)}, true
}

func clampScore(v int) int {
	if v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}

// buildEvaluationPrompt renders the fixed evaluation prompt. The rubric text
// is kept verbatim so judge outputs stay comparable across deployments.
func buildEvaluationPrompt(questionText, denseText, sparseText string) string {
	return fmt.Sprintf(`You are an evaluator assessing the retrieval effectiveness of dense retrieval (Cosine Distance) and BM25 retrieval for finding the correct answer.

## Task:
Given a question and two top1 search results (one from dense retrieval, one from BM25 retrieval), score each retrieval method from **0 to 5** based on whether the correct answer is likely to appear in top2, top3, etc.

### **Scoring Criteria:**
1. **Direct hit --> 5 points**
   - If the retrieved document directly answers the question, assign **5 points**.

2. **Good wrong result (High likelihood correct answer is nearby) --> 3-4 points**
   - If the top1 result is **conceptually close** to the correct answer (e.g., mentions relevant entities, related events, partial answer), it indicates the search method is in the right direction.
   - Give **4** if it's very close, **3** if somewhat close.

3. **Bad wrong result (Low likelihood correct answer is nearby) --> 1-2 points**
   - If the top1 result is **loosely related but misleading** (e.g., shares keywords but changes context), correct answers might not be in top2, top3.
   - Give **2** if there's a small chance correct answers are nearby, **1** if unlikely.

4. **Completely off-track --> 0 points**
   - If the result is **totally unrelated**, it means the retrieval method is failing.

---

### **Given Data:**
- **Question:** "%s"
- **dense retrieval Top1 Result:** "%s"
- **BM25 retrieval Top1 Result:** "%s"

---

### **Output Format:**
Return two integers separated by a space:
- **First number:** dense retrieval score.
- **Second number:** BM25 retrieval score.
- Example output: 3 4
  (Vector: 3, BM25: 4)

**Do not output any other text.**`, questionText, denseText, sparseText)
}
