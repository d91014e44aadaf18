package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// httpClient is a rate-limited client for one upstream.
type httpClient struct {
	name                string
	client              *http.Client
	log                 *logger.Logger
	requestLimiter      *rate.Limiter
	maxRequestPerMinute int
}

func newHTTPClient(name string, log *logger.Logger, timeout time.Duration, maxRequestPerMinute int) *httpClient {
	if maxRequestPerMinute <= 0 {
		maxRequestPerMinute = 60
	}
	secondsPerRequest := time.Minute / time.Duration(maxRequestPerMinute)
	return &httpClient{
		name:                name,
		client:              &http.Client{Timeout: timeout},
		log:                 log,
		requestLimiter:      rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		maxRequestPerMinute: maxRequestPerMinute,
	}
}

// upstreamTimeout keeps a client timeout within the per-attempt budget of the
// provider chains, so the client gives up before the chain does.
func upstreamTimeout(cfg *config.Config, timeout time.Duration) time.Duration {
	if budget := cfg.Analysis.ProviderTimeout; budget > 0 && budget < timeout {
		return budget
	}
	return timeout
}

// tableTimeout is the client timeout for full-table downloads, which run
// outside the provider chains.
func tableTimeout(cfg *config.Config) time.Duration {
	if cfg.Analysis.TableLoadTimeout > 0 {
		return cfg.Analysis.TableLoadTimeout
	}
	return 2 * time.Minute
}

func (c *httpClient) sendRequest(ctx context.Context, method, url string, body io.Reader, headers map[string]string) ([]byte, error) {
	fields := []zap.Field{
		zap.String("upstream", c.name),
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("max_request_per_minute", c.maxRequestPerMinute),
	}

	if err := c.requestLimiter.Wait(ctx); err != nil {
		fields = append(fields, zap.Error(err))
		c.log.ErrorContext(ctx, "Failed to wait for request limit", fields...)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		fields = append(fields, zap.Error(err))
		c.log.ErrorContext(ctx, "Failed to create new http request", fields...)
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		fields = append(fields, zap.Error(err))
		c.log.WarnContext(ctx, "Failed to send request", fields...)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		fields = append(fields, zap.Error(err))
		c.log.WarnContext(ctx, "Failed to read response body", fields...)
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		fields = append(fields, zap.Int("status_code", resp.StatusCode))
		c.log.WarnContext(ctx, "Received non-OK response", fields...)
		return nil, fmt.Errorf("%s returned status %d", c.name, resp.StatusCode)
	}

	c.log.DebugContext(ctx, "Upstream request completed", append(fields, zap.Int("bytes", len(respBody)))...)
	return respBody, nil
}
