package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/helicon-ai/datrieval/internal/domain"
	"github.com/helicon-ai/datrieval/internal/metrics"
)

// Judge completes evaluation prompts against an OpenAI-compatible chat API.
type Judge struct {
	client  *openai.Client
	timeout time.Duration
	logger  *zap.Logger
}

// JudgeConfig holds the judge provider settings.
type JudgeConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewJudge creates an OpenAI-compatible chat completion judge.
func NewJudge(cfg *JudgeConfig) *Judge {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Judge{
		client:  openai.NewClientWithConfig(clientCfg),
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
}

// Complete sends the prompt as a single user message and returns the raw
// completion text. All failures are wrapped with domain.ErrJudgeUnavailable
// for correct 502 mapping.
func (j *Judge) Complete(ctx context.Context, prompt, model string, temperature float32) (string, error) {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	start := time.Now()

	resp, err := j.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})

	duration := time.Since(start)

	if err != nil {
		metrics.JudgeRequestsTotal.WithLabelValues(model, "error").Inc()
		return "", parseAPIError("judge", err, domain.ErrJudgeUnavailable)
	}

	if len(resp.Choices) == 0 {
		metrics.JudgeRequestsTotal.WithLabelValues(model, "error").Inc()
		return "", fmt.Errorf("empty judge response: %w", domain.ErrJudgeUnavailable)
	}

	metrics.JudgeRequestsTotal.WithLabelValues(model, "success").Inc()
	metrics.JudgeRequestDuration.WithLabelValues(model).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.JudgeTokensTotal.WithLabelValues(model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.JudgeTokensTotal.WithLabelValues(model, "completion").Add(float64(resp.Usage.CompletionTokens))
		metrics.JudgeTokensTotal.WithLabelValues(model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return resp.Choices[0].Message.Content, nil
}
