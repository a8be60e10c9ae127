// Package genai talks to the text generation service that phrases the next
// claim question.
package genai

import (
	"context"
	"strings"
	"time"

	"claim-intake/internal/common/errors"
	commonhttp "claim-intake/internal/common/http"
	"claim-intake/internal/common/logger"
	"claim-intake/internal/models"
)

type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Client implements responder.PromptGenerator. It makes a single attempt;
// the caller bounds it with a deadline.
type Client struct {
	config *Config
	http   *commonhttp.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		config: config,
		http:   commonhttp.NewClient(config.Timeout, config.APIKey),
		logger: log,
	}
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// NextPrompt asks the model for one short question about the missing slots.
func (c *Client) NextPrompt(ctx context.Context, utterance string, progress models.Progress) (string, error) {
	req := generateRequest{
		Prompt:      BuildPrompt(utterance, progress),
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	var resp generateResponse
	url := strings.TrimRight(c.config.BaseURL, "/") + "/api/ai/generate"
	if err := c.http.PostJSON(ctx, url, req, &resp); err != nil {
		if ctx.Err() != nil {
			return "", errors.NewGenerationUnavailableError(ctx.Err())
		}
		return "", errors.NewGenerationUnavailableError(err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errors.NewGenerationUnavailableError(nil)
	}

	c.logger.Debug("Follow-up question generated", map[string]interface{}{
		"missing": len(progress.Missing),
		"length":  len(text),
	})
	return text, nil
}
