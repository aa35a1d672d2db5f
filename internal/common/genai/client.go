// Package genai wraps the model-invocation collaborator behind a single
// Generate call: text in, text out, may fail.
package genai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"budget-assistant/internal/common/config"
	apperrors "budget-assistant/internal/common/errors"
	"budget-assistant/internal/common/logger"
	"budget-assistant/internal/common/metrics"
)

// Client talks to any OpenAI-compatible chat-completions endpoint. Production
// config points it at Gemini's compatibility endpoint.
type Client struct {
	api         openai.Client
	model       string
	timeout     time.Duration
	temperature float64
	logger      logger.Logger
}

func New(cfg config.GenAIConfig, log logger.Logger) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		api:         openai.NewClient(opts...),
		model:       cfg.Model,
		timeout:     time.Duration(cfg.Timeout) * time.Millisecond,
		temperature: cfg.Temperature,
		logger:      log.With(map[string]interface{}{"component": "genai"}),
	}
}

// Generate sends the composed context to the model and returns the response
// text. No retries: a failed generation surfaces immediately and nothing is
// persisted for the turn.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if c.temperature > 0 {
		params.Temperature = openai.Float(c.temperature)
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			c.logger.Error("model invocation timed out", map[string]interface{}{
				"model":   c.model,
				"elapsed": time.Since(start).String(),
			})
			return "", apperrors.NewGenerationTimeoutError()
		}
		c.logger.Error("model invocation failed", map[string]interface{}{
			"model": c.model,
			"error": err.Error(),
		})
		return "", apperrors.NewGenerationFailedError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", apperrors.NewGenerationFailedError(errors.New("empty completion"))
	}

	return resp.Choices[0].Message.Content, nil
}
