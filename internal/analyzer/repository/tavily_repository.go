package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/pkg/logger"
)

type tavilyRepository struct {
	cfg  *config.Config
	log  *logger.Logger
	http *httpClient
}

// NewTavilyRepository creates a search repository that rotates through the configured API keys.
func NewTavilyRepository(cfg *config.Config, log *logger.Logger) NewsSearchRepository {
	return &tavilyRepository{
		cfg:  cfg,
		log:  log,
		http: newHTTPClient("tavily", log, upstreamTimeout(cfg, 30*time.Second), cfg.Tavily.MaxRequestPerMinute),
	}
}

func (r *tavilyRepository) Name() string {
	return "tavily"
}

// Search tries each key in order until one returns at least one result.
func (r *tavilyRepository) Search(ctx context.Context, query string) ([]dto.SearchResult, error) {
	if len(r.cfg.Tavily.APIKeys) == 0 {
		return nil, errors.New("no tavily api keys configured")
	}

	var errs []error
	for i, key := range r.cfg.Tavily.APIKeys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		results, err := r.search(ctx, key, query)
		if err != nil {
			r.log.WarnContext(ctx, "Tavily search failed", logger.IntField("key_index", i), logger.ErrorField(err))
			errs = append(errs, fmt.Errorf("key %d: %w", i, err))
			continue
		}
		if len(results) == 0 {
			errs = append(errs, fmt.Errorf("key %d: %w", i, ErrEmptyResponse))
			continue
		}
		return results, nil
	}
	return nil, errors.Join(errs...)
}

// PerKey returns one searcher per non-blank key, named "tavily#<index>".
func (r *tavilyRepository) PerKey() []NewsSearchRepository {
	searchers := make([]NewsSearchRepository, 0, len(r.cfg.Tavily.APIKeys))
	for i, key := range r.cfg.Tavily.APIKeys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		searchers = append(searchers, &tavilyKeySearcher{repo: r, index: i, key: key})
	}
	return searchers
}

type tavilyKeySearcher struct {
	repo  *tavilyRepository
	index int
	key   string
}

func (s *tavilyKeySearcher) Name() string {
	return fmt.Sprintf("%s#%d", s.repo.Name(), s.index)
}

func (s *tavilyKeySearcher) Search(ctx context.Context, query string) ([]dto.SearchResult, error) {
	results, err := s.repo.search(ctx, s.key, query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrEmptyResponse
	}
	return results, nil
}

func (r *tavilyRepository) search(ctx context.Context, apiKey, query string) ([]dto.SearchResult, error) {
	payload, err := json.Marshal(dto.TavilySearchRequest{
		Query:       query,
		SearchDepth: r.cfg.Tavily.SearchDepth,
		Topic:       "news",
		MaxResults:  r.cfg.Tavily.MaxResults,
	})
	if err != nil {
		return nil, err
	}

	body, err := r.http.sendRequest(ctx, http.MethodPost, strings.TrimRight(r.cfg.Tavily.BaseURL, "/")+"/search",
		bytes.NewReader(payload), map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + apiKey,
		})
	if err != nil {
		return nil, err
	}

	var resp dto.TavilySearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode tavily response: %w", err)
	}

	results := make([]dto.SearchResult, 0, len(resp.Results))
	for _, item := range resp.Results {
		results = append(results, dto.SearchResult{
			Title:         item.Title,
			URL:           item.URL,
			Content:       item.Content,
			PublishedDate: item.PublishedDate,
			Source:        r.Name(),
			Score:         item.Score,
		})
	}
	return results, nil
}
