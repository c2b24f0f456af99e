package dat

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/helicon-ai/datrieval/internal/domain/query"
	"github.com/helicon-ai/datrieval/internal/domain/retrieval/result"
	"github.com/helicon-ai/datrieval/internal/metrics"
)

// Strategy performs hybrid retrieval with dynamic alpha tuning: both
// retrieval methods run concurrently, a judge-calibrated alpha weights the
// two lists, and the merged ranking is truncated to the caller's top-k.
type Strategy struct {
	dense  DenseRetriever
	sparse SparseRetriever
	tuner  *Tuner
	cfg    Config
	logger *zap.Logger
}

// NewStrategy wires the hybrid DAT strategy. cfg must already be validated.
func NewStrategy(
	dense DenseRetriever, sparse SparseRetriever, tuner *Tuner, cfg Config, logger *zap.Logger,
) *Strategy {
	return &Strategy{dense: dense, sparse: sparse, tuner: tuner, cfg: cfg, logger: logger}
}

// Retrieve runs the full DAT pipeline for the query.
//
// Either retrieval side failing degrades to an empty list for that side
// rather than failing the request; the tuner's empty-list shortcuts then
// shift all weight to the surviving method. Judge failures, by contrast,
// do surface: a half-tuned ranking would be silently wrong.
func (s *Strategy) Retrieve(
	ctx context.Context, q query.Query, collectionName string, topK int,
) ([]result.Result, error) {
	var denseResults, sparseResults []result.Result

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.dense.Retrieve(gctx, q.Text(), collectionName, s.cfg.TopKDense)
		if err != nil {
			s.logger.Warn("dense retrieval failed, continuing with sparse only",
				zap.String("collection", collectionName),
				zap.Error(err),
			)
			return nil
		}
		denseResults = res
		return nil
	})
	g.Go(func() error {
		res, err := s.sparse.Search(gctx, collectionName, q.Text(), s.cfg.TopKSparse)
		if err != nil {
			s.logger.Warn("sparse retrieval failed, continuing with dense only",
				zap.String("collection", collectionName),
				zap.Error(err),
			)
			return nil
		}
		sparseResults = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Retrieval errors are absorbed above, so a cancelled parent context is
	// the only failure that must still propagate.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	alpha := s.cfg.DenseWeightDefault
	if s.cfg.UseDynamicTuning {
		var err error
		alpha, err = s.tuner.CalculateAlpha(ctx, q, denseResults, sparseResults)
		if err != nil {
			return nil, err
		}
	}
	metrics.RetrievalAlpha.Observe(alpha)

	merged := s.tuner.ApplyAlpha(alpha, denseResults, sparseResults)

	s.logger.Debug("hybrid retrieval complete",
		zap.Int("dense_count", len(denseResults)),
		zap.Int("sparse_count", len(sparseResults)),
		zap.Float64("alpha", alpha),
		zap.Int("merged_count", len(merged)),
	)

	if topK > 0 && len(merged) > topK {
		merged = merged[:topK]
	}
	return merged, nil
}
