package retrieval

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/helicon-ai/datrieval/internal/domain"
	"github.com/helicon-ai/datrieval/internal/domain/query"
	"github.com/helicon-ai/datrieval/internal/domain/retrieval/result"
	"github.com/helicon-ai/datrieval/internal/usecase/dat"
)

// Strategy names accepted by New.
const (
	StrategyDense = "dense"
	StrategyDAT   = "dat"
)

const defaultTopK = 10

// Service is the retrieval entry point. It validates the incoming query,
// dispatches to the configured strategy and normalizes errors for callers.
type Service struct {
	strategy Strategy
	name     string
	logger   *zap.Logger
}

// New builds the retrieval service for the named strategy.
//
// "dense" runs vector search alone. "dat" runs the dynamically tuned hybrid
// pipeline and requires a sparse retriever; a judge is additionally required
// when dynamic tuning is enabled. An unknown name or a missing dependency
// returns domain.ErrStrategyNotFound.
func New(
	name string,
	dense dat.DenseRetriever,
	sparse dat.SparseRetriever,
	judge dat.Judge,
	cfg dat.Config,
	logger *zap.Logger,
) (*Service, error) {
	if dense == nil {
		return nil, fmt.Errorf("%w: %q requires a dense retriever", domain.ErrStrategyNotFound, name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var strategy Strategy
	switch name {
	case StrategyDense:
		strategy = &denseStrategy{dense: dense, topK: cfg.TopKDense}
	case StrategyDAT:
		if sparse == nil {
			return nil, fmt.Errorf("%w: %q requires a sparse retriever", domain.ErrStrategyNotFound, name)
		}
		if cfg.UseDynamicTuning && judge == nil {
			return nil, fmt.Errorf("%w: %q with dynamic tuning requires a judge", domain.ErrStrategyNotFound, name)
		}
		scorer := dat.NewScorer(judge, cfg.JudgeModel, cfg.JudgeTemperature, logger)
		tuner := dat.NewTuner(scorer, cfg.DenseWeightDefault, logger)
		strategy = dat.NewStrategy(dense, sparse, tuner, cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrStrategyNotFound, name)
	}

	return &Service{strategy: strategy, name: name, logger: logger}, nil
}

// StrategyName reports which strategy the service was built with.
func (s *Service) StrategyName() string {
	return s.name
}

// Retrieve runs the configured strategy for queryText against the
// collection. topK <= 0 falls back to the default of 10.
//
// Validation failures return domain.ErrInvalidQuery. Judge outages pass
// through as domain.ErrJudgeUnavailable, context cancellation passes
// through unchanged, and anything else is wrapped in
// domain.ErrRetrievalFailed.
func (s *Service) Retrieve(
	ctx context.Context, queryText, collectionName string, topK int,
) ([]result.Result, error) {
	q, err := query.New(queryText, nil)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	results, err := s.strategy.Retrieve(ctx, q, collectionName, topK)
	if err != nil {
		if errors.Is(err, domain.ErrJudgeUnavailable) ||
			errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, err)
	}

	s.logger.Debug("retrieval complete",
		zap.String("strategy", s.name),
		zap.String("collection", collectionName),
		zap.Int("count", len(results)),
	)
	return results, nil
}

// denseStrategy serves vector-only retrieval when hybrid fusion is not
// wanted. Results come back in store order with their similarity scores.
type denseStrategy struct {
	dense dat.DenseRetriever
	topK  int
}

func (d *denseStrategy) Retrieve(
	ctx context.Context, q query.Query, collectionName string, topK int,
) ([]result.Result, error) {
	limit := d.topK
	if topK > 0 && topK > limit {
		limit = topK
	}
	results, err := d.dense.Retrieve(ctx, q.Text(), collectionName, limit)
	if err != nil {
		return nil, err
	}
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
