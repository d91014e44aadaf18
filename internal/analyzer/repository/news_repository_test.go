package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/pkg/logger"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const googleNewsFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>"AAPL" - Google News</title>
<item>
  <title>Older headline - Reuters</title>
  <link>https://news.example.com/older</link>
  <pubDate>Mon, 26 Feb 2024 08:00:00 GMT</pubDate>
  <description><![CDATA[<a href="https://news.example.com/older">Older headline</a>&nbsp;&nbsp;<font color="#6f6f6f">Reuters</font>]]></description>
</item>
<item>
  <title>Newest headline - Bloomberg</title>
  <link>https://news.example.com/newest</link>
  <pubDate>Fri, 01 Mar 2024 08:00:00 GMT</pubDate>
  <description><![CDATA[<a href="https://news.example.com/newest">Apple expands services   bundle</a>]]></description>
</item>
<item>
  <title>Middle headline</title>
  <link>https://news.example.com/middle</link>
  <pubDate>Wed, 28 Feb 2024 08:00:00 GMT</pubDate>
  <description></description>
</item>
</channel></rss>`

func TestGoogleNews_Search(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "AAPL stock when:7d", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(googleNewsFeed))
	})
	repo := NewGoogleNewsRepository(newTestConfig(server.URL), logger.NewNop())

	results, err := repo.Search(context.Background(), "AAPL stock")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "Newest headline - Bloomberg", results[0].Title)
	assert.Equal(t, "Apple expands services bundle", results[0].Content)
	assert.Equal(t, "2024-03-01T08:00:00Z", results[0].PublishedDate)
	assert.Equal(t, "google_news", results[0].Source)
	assert.Equal(t, "Middle headline", results[1].Content)
}

func TestFeedToResults_NoLimit(t *testing.T) {
	feed, err := gofeed.NewParser().ParseString(googleNewsFeed)
	require.NoError(t, err)

	results := feedToResults(feed, 0, "rss")
	assert.Len(t, results, 3)
	assert.Equal(t, "https://news.example.com/older", results[2].URL)
}

func TestTavily_Search_RotatesKeys(t *testing.T) {
	var seen []string
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		auth := r.Header.Get("Authorization")
		seen = append(seen, auth)

		var req dto.TavilySearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "news", req.Topic)
		assert.Equal(t, 5, req.MaxResults)

		switch auth {
		case "Bearer exhausted":
			w.WriteHeader(http.StatusTooManyRequests)
		case "Bearer empty":
			w.Write([]byte(`{"results": []}`))
		default:
			w.Write([]byte(`{"results": [{"title": "Apple", "url": "https://a.example", "content": "Apple news", "published_date": "2024-03-01", "score": 0.9}]}`))
		}
	})
	cfg := newTestConfig(server.URL)
	cfg.Tavily.APIKeys = []string{"exhausted", " ", "empty", "good"}
	repo := NewTavilyRepository(cfg, logger.NewNop())

	results, err := repo.Search(context.Background(), "AAPL")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "tavily", results[0].Source)
	assert.Equal(t, 0.9, results[0].Score)
	assert.Equal(t, []string{"Bearer exhausted", "Bearer empty", "Bearer good"}, seen)
}

func TestTavily_Search_AllKeysFail(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	cfg := newTestConfig(server.URL)
	cfg.Tavily.APIKeys = []string{"a", "b"}
	repo := NewTavilyRepository(cfg, logger.NewNop())

	_, err := repo.Search(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key 0")
	assert.Contains(t, err.Error(), "key 1")

	cfg.Tavily.APIKeys = nil
	_, err = NewTavilyRepository(cfg, logger.NewNop()).Search(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestTavily_PerKey(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer empty" {
			w.Write([]byte(`{"results": []}`))
			return
		}
		w.Write([]byte(`{"results": [{"title": "Apple", "url": "https://a.example", "content": "Apple news"}]}`))
	})
	cfg := newTestConfig(server.URL)
	cfg.Tavily.APIKeys = []string{"empty", "", "good"}
	repo := NewTavilyRepository(cfg, logger.NewNop())

	keyed, ok := repo.(KeyedSearchRepository)
	require.True(t, ok)
	searchers := keyed.PerKey()
	require.Len(t, searchers, 2)
	assert.Equal(t, "tavily#0", searchers[0].Name())
	assert.Equal(t, "tavily#2", searchers[1].Name())

	_, err := searchers[0].Search(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	results, err := searchers[1].Search(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "tavily", results[0].Source)
}

func TestUpstreamTimeout(t *testing.T) {
	cfg := newTestConfig("http://localhost")
	cfg.Analysis.ProviderTimeout = 15 * time.Second
	assert.Equal(t, 15*time.Second, upstreamTimeout(cfg, 30*time.Second))
	assert.Equal(t, 10*time.Second, upstreamTimeout(cfg, 10*time.Second))

	cfg.Analysis.ProviderTimeout = 0
	assert.Equal(t, 30*time.Second, upstreamTimeout(cfg, 30*time.Second))
	assert.Equal(t, 2*time.Minute, tableTimeout(cfg))
}

const articlePage = `<html><head><title>Apple services</title></head><body>
<div id="nav"><a href="/">Home</a> <a href="/markets">Markets</a></div>
<div id="story"><article>
<p>Apple reported record services revenue in the quarter, driven by the App Store, iCloud storage and a growing base of paid subscriptions across its devices.</p>
<p>Analysts at several brokerages said the results, combined with steady iPhone demand in emerging markets, support a constructive view on margins for the rest of the year.</p>
<p>The company also confirmed that its next developer conference will focus on on-device intelligence features, which management expects to drive an upgrade cycle.</p>
</article></div>
<div id="footer">Copyright</div>
</body></html>`

func TestArticle_FetchContent(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articlePage))
	})
	cfg := newTestConfig(server.URL)
	repo := NewArticleRepository(cfg, logger.NewNop())

	content, err := repo.FetchContent(context.Background(), server.URL+"/story")
	require.NoError(t, err)

	assert.Contains(t, content, "Apple reported record services revenue")
	assert.NotContains(t, content, "\n")
	assert.LessOrEqual(t, len([]rune(content)), cfg.Article.MaxContentLength)
}

func TestArticle_FetchContent_Truncates(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(articlePage))
	})
	cfg := newTestConfig(server.URL)
	cfg.Article.MaxContentLength = 40
	repo := NewArticleRepository(cfg, logger.NewNop())

	content, err := repo.FetchContent(context.Background(), server.URL)
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(content)), 40)
}
