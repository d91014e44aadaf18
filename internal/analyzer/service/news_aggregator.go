package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/internal/analyzer/repository"
	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/chain"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"
	"golang-stock-watchlist/pkg/utils"
)

const (
	digestTitle        = "资深研究员市场动态综述"
	defaultDigestScore = 50
	maxSearchResults   = 10
)

var marketSearchHints = map[symbol.Market]string{
	symbol.MarketHK: " Hong Kong market",
	symbol.MarketUS: " US market",
	symbol.MarketSH: " China A-share market",
	symbol.MarketSZ: " China A-share market",
}

var sentimentLabels = map[entity.Sentiment]string{
	entity.SentimentPositive: "正面",
	entity.SentimentNegative: "负面",
	entity.SentimentNeutral:  "中性",
}

// NewsAggregator turns recent articles into at most one analyst digest item.
// It never fails; every failure yields an empty list.
type NewsAggregator interface {
	Fetch(ctx context.Context, c symbol.Canonical, name string, price *repository.PriceContext) []entity.NewsItem
}

type newsAggregator struct {
	cfg       *config.Config
	log       *logger.Logger
	search    *chain.Chain[string, []dto.SearchResult]
	articles  repository.ArticleRepository
	generator TextGenerator
	now       Clock
}

// NewNewsAggregator searches the given repositories in order. articles may be nil.
// A keyed repository contributes one chain provider per key, so a hanging key
// only spends its own attempt budget.
func NewNewsAggregator(
	cfg *config.Config,
	log *logger.Logger,
	generator TextGenerator,
	articles repository.ArticleRepository,
	now Clock,
	searchers ...repository.NewsSearchRepository,
) NewsAggregator {
	providers := make([]chain.Provider[string, []dto.SearchResult], 0, len(searchers))
	for _, s := range searchers {
		if s == nil {
			continue
		}
		if keyed, ok := s.(repository.KeyedSearchRepository); ok {
			for _, k := range keyed.PerKey() {
				providers = append(providers, chain.Func(k.Name(), k.Search))
			}
			continue
		}
		providers = append(providers, chain.Func(s.Name(), s.Search))
	}
	return &newsAggregator{
		cfg: cfg,
		log: log,
		search: chain.New("news_search", log, providers...).
			WithEmpty(func(r []dto.SearchResult) bool { return len(r) == 0 }).
			WithTimeout(cfg.Analysis.ProviderTimeout),
		articles:  articles,
		generator: generator,
		now:       now,
	}
}

// SearchQuery builds the search query for a symbol.
func SearchQuery(c symbol.Canonical) string {
	return c.Symbol + " stock business news analysis" + marketSearchHints[c.Market]
}

func (a *newsAggregator) Fetch(ctx context.Context, c symbol.Canonical, name string, price *repository.PriceContext) []entity.NewsItem {
	results := a.search.ResolveOr(ctx, SearchQuery(c), nil)
	if len(results) == 0 {
		a.log.InfoContext(ctx, "No news found", logger.StringField("symbol", c.Key()))
		return []entity.NewsItem{}
	}
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	results = a.enrich(ctx, results)

	identifier := c.Symbol
	if name != "" && name != c.Symbol {
		identifier = fmt.Sprintf("%s (%s)", name, c.Symbol)
	}
	prompt := repository.BuildNewsDigestPrompt(repository.BuildNewsContext(results), identifier, price, a.now())

	text, model, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		a.log.WarnContext(ctx, "News digest generation failed", logger.StringField("symbol", c.Key()), logger.ErrorField(err))
		return []entity.NewsItem{}
	}

	var digest dto.NewsDigestResult
	if err := json.Unmarshal([]byte(utils.StripCodeFence(text)), &digest); err != nil {
		a.log.WarnContext(ctx, "News digest is not valid JSON",
			logger.StringField("symbol", c.Key()),
			logger.StringField("model", model),
			logger.ErrorField(err),
		)
		return []entity.NewsItem{}
	}

	item, ok := a.render(ctx, c, digest)
	if !ok {
		return []entity.NewsItem{}
	}
	return []entity.NewsItem{item}
}

// enrich replaces short snippets with the readable article text.
func (a *newsAggregator) enrich(ctx context.Context, results []dto.SearchResult) []dto.SearchResult {
	if a.articles == nil || !a.cfg.Article.EnrichShortContent {
		return results
	}
	for i := range results {
		if results[i].URL == "" || utf8.RuneCountInString(results[i].Content) >= a.cfg.Article.MinContentLength {
			continue
		}
		if !utils.ShouldContinue(ctx, a.log) {
			break
		}
		content, err := a.articles.FetchContent(ctx, results[i].URL)
		if err != nil {
			a.log.DebugContext(ctx, "Article enrichment failed", logger.StringField("url", results[i].URL), logger.ErrorField(err))
			continue
		}
		if utf8.RuneCountInString(content) > utf8.RuneCountInString(results[i].Content) {
			results[i].Content = utils.Truncate(content, a.cfg.Article.MaxContentLength)
		}
	}
	return results
}

func (a *newsAggregator) render(ctx context.Context, c symbol.Canonical, digest dto.NewsDigestResult) (entity.NewsItem, bool) {
	if !digest.IsValid {
		a.log.InfoContext(ctx, "News digest marked invalid", logger.StringField("symbol", c.Key()))
		return entity.NewsItem{}, false
	}

	var lines []string
	for _, item := range digest.OverviewItems {
		content := strings.TrimSpace(item.Content)
		if err := ValidateNewsItem(content); err != nil {
			a.log.DebugContext(ctx, "Dropped news item", logger.StringField("symbol", c.Key()), logger.ErrorField(err))
			continue
		}
		lines = append(lines, fmt.Sprintf("• %s (%s)", content, sentimentLabels[ParseSentiment(item.Sentiment)]))
	}
	summary := strings.TrimSpace(digest.SentimentSummary)
	if len(lines) == 0 && summary == "" {
		return entity.NewsItem{}, false
	}

	score := ClampScore(digest.SentimentScore)
	var b strings.Builder
	if len(lines) > 0 {
		b.WriteString("【最新动态概述】\n")
		b.WriteString(strings.Join(lines, "\n"))
	}
	if summary != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(fmt.Sprintf("【最新动态总结】\n%s (综合情绪分: %d/100)", summary, score))
	}

	return entity.NewsItem{
		Title:     digestTitle,
		Content:   b.String(),
		Sentiment: ParseSentiment(digest.OverallSentiment),
		Score:     score,
	}, true
}

// ParseSentiment maps free-form labels onto the three sentiments.
func ParseSentiment(raw string) entity.Sentiment {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "正面", "积极", "positive", "bullish":
		return entity.SentimentPositive
	case "负面", "消极", "negative", "bearish":
		return entity.SentimentNegative
	default:
		return entity.SentimentNeutral
	}
}

// ClampScore bounds the score to 0..100, defaulting to 50.
func ClampScore(score *float64) int {
	if score == nil || math.IsNaN(*score) {
		return defaultDigestScore
	}
	return int(math.Round(math.Max(0, math.Min(100, *score))))
}
