package dat

import (
	"fmt"

	"github.com/helicon-ai/datrieval/internal/domain"
)

// Config holds the dynamic alpha tuning parameters.
// Validate must pass before the strategy is constructed; an invalid value is
// a startup failure, never a per-request one.
type Config struct {
	DenseWeightDefault  float64
	SparseWeightDefault float64
	TopKDense           int
	TopKSparse          int
	UseDynamicTuning    bool
	// EffectivenessThreshold is reserved for score gating; validated but not
	// yet consumed by the tuner.
	EffectivenessThreshold float64
	JudgeModel             string
	JudgeTemperature       float32
}

// DefaultConfig returns the standard DAT parameters.
func DefaultConfig() Config {
	return Config{
		DenseWeightDefault:     0.5,
		SparseWeightDefault:    0.5,
		TopKDense:              20,
		TopKSparse:             20,
		UseDynamicTuning:       true,
		EffectivenessThreshold: 0.3,
		JudgeModel:             "gpt-4o-mini",
		JudgeTemperature:       0.0,
	}
}

// Validate checks the configuration for correctness.
func (c Config) Validate() error {
	if c.DenseWeightDefault < 0 || c.DenseWeightDefault > 1 {
		return fmt.Errorf("%w: dense_weight_default must be between 0.0 and 1.0, got %g",
			domain.ErrInvalidConfig, c.DenseWeightDefault)
	}
	if c.SparseWeightDefault < 0 || c.SparseWeightDefault > 1 {
		return fmt.Errorf("%w: sparse_weight_default must be between 0.0 and 1.0, got %g",
			domain.ErrInvalidConfig, c.SparseWeightDefault)
	}
	if c.TopKDense < 1 {
		return fmt.Errorf("%w: top_k_dense must be at least 1, got %d",
			domain.ErrInvalidConfig, c.TopKDense)
	}
	if c.TopKSparse < 1 {
		return fmt.Errorf("%w: top_k_sparse must be at least 1, got %d",
			domain.ErrInvalidConfig, c.TopKSparse)
	}
	if c.EffectivenessThreshold < 0 || c.EffectivenessThreshold > 1 {
		return fmt.Errorf("%w: effectiveness_threshold must be between 0.0 and 1.0, got %g",
			domain.ErrInvalidConfig, c.EffectivenessThreshold)
	}
	if c.JudgeModel == "" {
		return fmt.Errorf("%w: judge model is required", domain.ErrInvalidConfig)
	}
	if c.JudgeTemperature < 0 {
		return fmt.Errorf("%w: judge temperature cannot be negative, got %g",
			domain.ErrInvalidConfig, c.JudgeTemperature)
	}
	return nil
}
