package repository

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
)

type articleRepository struct {
	cfg  *config.Config
	log  *logger.Logger
	http *httpClient
}

// NewArticleRepository creates a fetcher that extracts the main text of a page.
func NewArticleRepository(cfg *config.Config, log *logger.Logger) ArticleRepository {
	return &articleRepository{
		cfg:  cfg,
		log:  log,
		http: newHTTPClient("article", log, 15*time.Second, 120),
	}
}

func (r *articleRepository) FetchContent(ctx context.Context, url string) (string, error) {
	body, err := r.http.sendRequest(ctx, http.MethodGet, url, nil, map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
	})
	if err != nil {
		return "", err
	}

	content, err := extractReadableText(body)
	if err != nil {
		r.log.WarnContext(ctx, "Failed to parse article content", logger.ErrorField(err), logger.StringField("url", url))
		return "", err
	}
	return utils.Truncate(content, r.cfg.Article.MaxContentLength), nil
}

func extractReadableText(body []byte) (string, error) {
	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse article: %w", err)
	}
	html, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(doc.Content())))
	if err != nil {
		return "", fmt.Errorf("failed to parse article content: %w", err)
	}
	text := strings.Join(strings.Fields(html.Text()), " ")
	if text == "" {
		return "", ErrEmptyResponse
	}
	return utils.SafeText(text), nil
}
