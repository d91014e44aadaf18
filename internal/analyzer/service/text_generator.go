package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/internal/analyzer/repository"
	"golang-stock-watchlist/pkg/chain"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/utils"
)

// ErrNoModels is returned when no configured model has a backing provider.
var ErrNoModels = errors.New("no llm models configured")

// TextGenerator tries each configured model in order.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (text, model string, err error)
}

// promptKey keeps chain logs short.
type promptKey string

func (p promptKey) String() string {
	return utils.Truncate(string(p), 80)
}

type textGenerator struct {
	chain *chain.Chain[promptKey, string]
}

// NewTextGenerator builds the model fallback order from cfg.LLM.Models.
// Models whose provider has no repository are skipped.
func NewTextGenerator(cfg *config.Config, log *logger.Logger, repos ...repository.LLMRepository) TextGenerator {
	byName := make(map[string]repository.LLMRepository, len(repos))
	for _, r := range repos {
		if r != nil {
			byName[r.Name()] = r
		}
	}

	providers := make([]chain.Provider[promptKey, string], 0, len(cfg.LLM.Models))
	for _, m := range cfg.LLM.Models {
		repo, ok := byName[m.Provider]
		if !ok {
			log.Warn("Skipping model without provider",
				logger.StringField("provider", m.Provider),
				logger.StringField("model", m.Model),
			)
			continue
		}
		model := m.Model
		providers = append(providers, chain.Func(m.Provider+"/"+model, func(ctx context.Context, prompt promptKey) (string, error) {
			return repo.GenerateContent(ctx, model, string(prompt))
		}))
	}

	return &textGenerator{
		chain: chain.New("llm", log, providers...).
			WithEmpty(func(s string) bool { return strings.TrimSpace(s) == "" }).
			WithTimeout(cfg.Analysis.LLMTimeout),
	}
}

func (g *textGenerator) Generate(ctx context.Context, prompt string) (string, string, error) {
	if len(g.chain.Providers()) == 0 {
		return "", "", ErrNoModels
	}
	res := g.chain.Resolve(ctx, promptKey(prompt))
	if !res.OK() {
		return "", "", fmt.Errorf("text generation failed: %w", res.Err)
	}
	return res.Value, res.Provider, nil
}
