package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

var sinaNamePattern = regexp.MustCompile(`="([^,"]+)`)

type sinaRepository struct {
	cfg  *config.Config
	log  *logger.Logger
	http *httpClient
}

// NewSinaRepository creates a scraper for the Sina quote endpoint.
func NewSinaRepository(cfg *config.Config, log *logger.Logger) SinaRepository {
	return &sinaRepository{
		cfg:  cfg,
		log:  log,
		http: newHTTPClient("sina", log, 5*time.Second, cfg.Sina.MaxRequestPerMinute),
	}
}

func (r *sinaRepository) GetName(ctx context.Context, c symbol.Canonical) (string, error) {
	code := c.SinaCode()
	if code == "" {
		return "", fmt.Errorf("%w: sina has no quote for %s", ErrUnsupportedMarket, c.Market)
	}

	body, err := r.http.sendRequest(ctx, http.MethodGet, r.cfg.Sina.QuoteURL+code, nil,
		map[string]string{"Referer": "https://finance.sina.com.cn"})
	if err != nil {
		return "", err
	}

	text, err := decodeGBK(body)
	if err != nil {
		return "", err
	}
	return parseSinaName(text)
}

func parseSinaName(text string) (string, error) {
	m := sinaNamePattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", ErrNotFound
	}
	name := strings.TrimSpace(m[1])
	if name == "" || strings.Contains(name, "FAILED") || isDigits(name) {
		return "", ErrNotFound
	}
	return name, nil
}

// decodeGBK converts a GBK encoded body to UTF-8.
func decodeGBK(body []byte) (string, error) {
	reader := transform.NewReader(strings.NewReader(string(body)), simplifiedchinese.GBK.NewDecoder())
	out, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode gbk body: %w", err)
	}
	return string(out), nil
}
