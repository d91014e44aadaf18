package repository

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

type googleNewsRepository struct {
	cfg    *config.Config
	log    *logger.Logger
	parser *gofeed.Parser
}

// NewGoogleNewsRepository creates an RSS-backed news search.
func NewGoogleNewsRepository(cfg *config.Config, log *logger.Logger) NewsSearchRepository {
	return &googleNewsRepository{
		cfg:    cfg,
		log:    log,
		parser: gofeed.NewParser(),
	}
}

func (r *googleNewsRepository) Name() string {
	return "google_news"
}

func (r *googleNewsRepository) Search(ctx context.Context, query string) ([]dto.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query+" when:7d")
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")
	feedURL := strings.TrimRight(r.cfg.GoogleNews.BaseURL, "/") + "/search?" + params.Encode()

	r.log.DebugContext(ctx, "Processing RSS feed", logger.StringField("url", feedURL))
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rss feed: %w", err)
	}
	return feedToResults(feed, r.cfg.GoogleNews.MaxResults, r.Name()), nil
}

func feedToResults(feed *gofeed.Feed, limit int, source string) []dto.SearchResult {
	items := feed.Items
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].PublishedParsed == nil || items[j].PublishedParsed == nil {
			return false
		}
		return items[i].PublishedParsed.After(*items[j].PublishedParsed)
	})

	results := make([]dto.SearchResult, 0, len(items))
	for _, item := range items {
		if limit > 0 && len(results) >= limit {
			break
		}
		published := item.Published
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.Format(time.RFC3339)
		}
		content := htmlToText(item.Description)
		if content == "" {
			content = item.Title
		}
		results = append(results, dto.SearchResult{
			Title:         item.Title,
			URL:           item.Link,
			Content:       content,
			PublishedDate: published,
			Source:        source,
		})
	}
	return results
}

func htmlToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return utils.SafeText(fragment)
	}
	return utils.SafeText(strings.Join(strings.Fields(doc.Text()), " "))
}
