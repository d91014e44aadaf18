package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"
)

type tencentRepository struct {
	cfg  *config.Config
	log  *logger.Logger
	http *httpClient
}

// NewTencentRepository creates a scraper for the Tencent quote endpoints.
func NewTencentRepository(cfg *config.Config, log *logger.Logger) TencentRepository {
	return &tencentRepository{
		cfg:  cfg,
		log:  log,
		http: newHTTPClient("tencent", log, 5*time.Second, cfg.Tencent.MaxRequestPerMinute),
	}
}

// GetName reads field 1 of a "~"-separated quote line.
func (r *tencentRepository) GetName(ctx context.Context, c symbol.Canonical) (string, error) {
	body, err := r.http.sendRequest(ctx, http.MethodGet, r.cfg.Tencent.QuoteURL+c.TencentCode(), nil, nil)
	if err != nil {
		return "", err
	}

	text, err := decodeGBK(body)
	if err != nil {
		return "", err
	}
	return parseTencentName(text)
}

func (r *tencentRepository) GetMinuteBars(ctx context.Context, c symbol.Canonical) ([]dto.MinuteBar, error) {
	code := c.TencentCode()
	endpoint := r.cfg.Tencent.MinuteURL + "?code=" + url.QueryEscape(code)

	body, err := r.http.sendRequest(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}
	return parseTencentMinutes(body, code)
}

func parseTencentName(text string) (string, error) {
	parts := strings.Split(text, "~")
	if len(parts) < 2 {
		return "", ErrNotFound
	}
	name := strings.TrimSpace(parts[1])
	if name == "" || isDigits(name) {
		return "", ErrNotFound
	}
	return name, nil
}

func parseTencentMinutes(body []byte, code string) ([]dto.MinuteBar, error) {
	var resp struct {
		Data map[string]struct {
			Data struct {
				Data []string `json:"data"`
			} `json:"data"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode minute response: %w", err)
	}

	entry, ok := resp.Data[code]
	if !ok || len(entry.Data.Data) == 0 {
		return nil, ErrEmptyResponse
	}

	bars := make([]dto.MinuteBar, 0, len(entry.Data.Data))
	for _, line := range entry.Data.Data {
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 4 {
			continue
		}
		price, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		bars = append(bars, dto.MinuteBar{Label: fields[0][:2] + ":" + fields[0][2:], Price: price})
	}
	if len(bars) == 0 {
		return nil, ErrEmptyResponse
	}
	return bars, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
