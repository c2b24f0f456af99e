package domain

import "errors"

var (
	// ErrInvalidQuery signals an empty or malformed query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrStrategyNotFound signals an unknown retrieval strategy or a missing collaborator.
	ErrStrategyNotFound = errors.New("retrieval strategy not found")
	// ErrJudgeUnavailable signals a transport or timeout failure of the effectiveness judge.
	ErrJudgeUnavailable = errors.New("effectiveness judge unavailable")
	// ErrRetrievalFailed signals an unexpected failure inside retrieval orchestration.
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrInvalidConfig signals an invalid configuration value.
	ErrInvalidConfig = errors.New("invalid configuration")
)
