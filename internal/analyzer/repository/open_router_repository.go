package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/pkg/logger"
)

type openRouterRepository struct {
	cfg  *config.Config
	log  *logger.Logger
	http *httpClient
}

// NewOpenRouterRepository creates an LLM repository backed by the OpenRouter chat API.
func NewOpenRouterRepository(cfg *config.Config, log *logger.Logger) LLMRepository {
	return &openRouterRepository{
		cfg:  cfg,
		log:  log,
		http: newHTTPClient("openrouter", log, 90*time.Second, cfg.OpenRouter.MaxRequestPerMinute),
	}
}

func (r *openRouterRepository) Name() string {
	return "openrouter"
}

func (r *openRouterRepository) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	payload, err := json.Marshal(dto.OpenRouterRequest{
		Model:    model,
		Messages: []dto.OpenRouterMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	body, err := r.http.sendRequest(ctx, http.MethodPost, strings.TrimRight(r.cfg.OpenRouter.BaseURL, "/")+"/chat/completions",
		bytes.NewReader(payload), map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + r.cfg.OpenRouter.APIKey,
		})
	if err != nil {
		return "", err
	}

	var resp dto.OpenRouterResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode OpenRouter response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("openrouter %s: %s", model, resp.Error.Message)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
