package repository

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang-stock-watchlist/internal/analyzer/config"
)

const testRPM = 6000

// newTestConfig points every upstream at baseURL.
func newTestConfig(baseURL string) *config.Config {
	return &config.Config{
		AKTools:      config.AKTools{BaseURL: baseURL, MaxRequestPerMinute: testRPM},
		YahooFinance: config.YahooFinance{BaseURL: baseURL, MaxRequestPerMinute: testRPM},
		Tushare:      config.Tushare{BaseURL: baseURL, Token: "token", MaxRequestPerMinute: testRPM},
		Tencent:      config.Tencent{QuoteURL: baseURL + "/q=", MinuteURL: baseURL + "/minute", MaxRequestPerMinute: testRPM},
		Sina:         config.Sina{QuoteURL: baseURL + "/list=", MaxRequestPerMinute: testRPM},
		Tavily:       config.Tavily{BaseURL: baseURL, MaxResults: 5, SearchDepth: "basic", MaxRequestPerMinute: testRPM},
		GoogleNews:   config.GoogleNews{Enabled: true, BaseURL: baseURL, MaxResults: 2},
		Article:      config.Article{MinContentLength: 50, MaxContentLength: 1000},
		OpenRouter:   config.OpenRouter{BaseURL: baseURL, APIKey: "or-key", MaxRequestPerMinute: testRPM},
	}
}

// newTestServer serves handler and closes it with the test.
func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}
