package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/pkg/logger"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates an LLM repository backed by the Gemini API.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) LLMRepository {
	maxRequestPerMinute := cfg.Gemini.MaxRequestPerMinute
	if maxRequestPerMinute <= 0 {
		maxRequestPerMinute = 10
	}
	secondsPerRequest := time.Minute / time.Duration(maxRequestPerMinute)
	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		genAiClient:    genAiClient,
	}
}

func (r *geminiAIRepository) Name() string {
	return "gemini"
}

func (r *geminiAIRepository) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}
	start := time.Now()
	resp, err := r.genAiClient.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		r.logger.WarnContext(ctx, "Gemini request failed", logger.StringField("model", model), logger.ErrorField(err))
		return "", fmt.Errorf("gemini %s: %w", model, err)
	}

	text, err := extractGeminiText(resp)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", model, err)
	}
	r.logger.DebugContext(ctx, "Gemini response received",
		logger.StringField("model", model),
		logger.DurationField("latency", time.Since(start)),
		logger.IntField("length", len(text)),
	)
	return text, nil
}

func extractGeminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
