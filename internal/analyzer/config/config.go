package config

import (
	"time"

	"golang-stock-watchlist/pkg/config"
)

// Storage selects where the application snapshot lives.
type Storage struct {
	Backend    string `mapstructure:"backend"` // postgres | badger
	BadgerPath string `mapstructure:"badger_path"`
}

// Cache configures the name and table caches.
type Cache struct {
	Backend           string        `mapstructure:"backend"` // memory | redis
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
	NameTTL           time.Duration `mapstructure:"name_ttl"`
	ReferenceTableTTL time.Duration `mapstructure:"reference_table_ttl"`
	SpotTableTTL      time.Duration `mapstructure:"spot_table_ttl"`
}

// Analysis holds job and resolver tuning.
type Analysis struct {
	Timezone        string        `mapstructure:"timezone"`
	DefaultTimer    string        `mapstructure:"default_timer"`
	StockPause      time.Duration `mapstructure:"stock_pause"`
	ChainDelay      time.Duration `mapstructure:"chain_delay"`
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
	// TableLoadTimeout bounds a full spot or reference table download.
	TableLoadTimeout time.Duration `mapstructure:"table_load_timeout"`
	LLMTimeout      time.Duration `mapstructure:"llm_timeout"`
	HistorySessions int           `mapstructure:"history_sessions"`
	TriggerTimeout  time.Duration `mapstructure:"trigger_timeout"`
}

// AKTools is a self-hosted HTTP bridge exposing akshare tables.
type AKTools struct {
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// YahooFinance holds the configuration for the Yahoo Finance chart API.
type YahooFinance struct {
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Tushare holds the reference-data API settings.
type Tushare struct {
	BaseURL             string `mapstructure:"base_url"`
	Token               string `mapstructure:"token"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Tencent holds quote and minute-bar endpoints.
type Tencent struct {
	QuoteURL            string `mapstructure:"quote_url"`
	MinuteURL           string `mapstructure:"minute_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Sina holds the quote endpoint.
type Sina struct {
	QuoteURL            string `mapstructure:"quote_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Tavily holds the search API settings. Keys are tried in order.
type Tavily struct {
	BaseURL             string   `mapstructure:"base_url"`
	APIKeys             []string `mapstructure:"api_keys"`
	MaxResults          int      `mapstructure:"max_results"`
	SearchDepth         string   `mapstructure:"search_depth"`
	MaxRequestPerMinute int      `mapstructure:"max_request_per_minute"`
}

// GoogleNews configures the RSS fallback search.
type GoogleNews struct {
	Enabled    bool   `mapstructure:"enabled"`
	BaseURL    string `mapstructure:"base_url"`
	MaxResults int    `mapstructure:"max_results"`
}

// Article configures full-text enrichment of short search results.
type Article struct {
	EnrichShortContent bool `mapstructure:"enrich_short_content"`
	MinContentLength   int  `mapstructure:"min_content_length"`
	MaxContentLength   int  `mapstructure:"max_content_length"`
}

// ModelRef names one LLM in the fallback order.
type ModelRef struct {
	Provider string `mapstructure:"provider"` // gemini | openrouter
	Model    string `mapstructure:"model"`
}

// LLM holds the ordered model fallback list.
type LLM struct {
	Models []ModelRef `mapstructure:"models"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// OpenRouter holds the configuration for the OpenRouter API.
type OpenRouter struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the analysis service.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	Database     config.Database `mapstructure:"database"`
	Redis        config.Redis    `mapstructure:"redis"`
	API          config.API      `mapstructure:"api"`
	Storage      Storage         `mapstructure:"storage"`
	Cache        Cache           `mapstructure:"cache"`
	Analysis     Analysis        `mapstructure:"analysis"`
	AKTools      AKTools         `mapstructure:"aktools"`
	YahooFinance YahooFinance    `mapstructure:"yahoo_finance"`
	Tushare      Tushare         `mapstructure:"tushare"`
	Tencent      Tencent         `mapstructure:"tencent"`
	Sina         Sina            `mapstructure:"sina"`
	Tavily       Tavily          `mapstructure:"tavily"`
	GoogleNews   GoogleNews      `mapstructure:"google_news"`
	Article      Article         `mapstructure:"article"`
	LLM          LLM             `mapstructure:"llm"`
	Gemini       Gemini          `mapstructure:"gemini"`
	OpenRouter   OpenRouter      `mapstructure:"openrouter"`
	Telegram     Telegram        `mapstructure:"telegram"`
}

// Load loads the analysis service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// RedisEnabled reports whether a Redis host is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

func (c *Config) applyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = "badger"
	}
	if c.Storage.BadgerPath == "" {
		c.Storage.BadgerPath = "data/state"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.CleanupInterval <= 0 {
		c.Cache.CleanupInterval = 10 * time.Minute
	}
	if c.Cache.NameTTL <= 0 {
		c.Cache.NameTTL = time.Hour
	}
	if c.Cache.ReferenceTableTTL <= 0 {
		c.Cache.ReferenceTableTTL = 24 * time.Hour
	}
	if c.Cache.SpotTableTTL <= 0 {
		c.Cache.SpotTableTTL = time.Minute
	}
	if c.Analysis.DefaultTimer == "" {
		c.Analysis.DefaultTimer = "09:00"
	}
	if c.Analysis.StockPause <= 0 {
		c.Analysis.StockPause = 2 * time.Second
	}
	if c.Analysis.ChainDelay <= 0 {
		c.Analysis.ChainDelay = time.Second
	}
	if c.Analysis.ProviderTimeout <= 0 {
		c.Analysis.ProviderTimeout = 15 * time.Second
	}
	if c.Analysis.TableLoadTimeout <= 0 {
		c.Analysis.TableLoadTimeout = 2 * time.Minute
	}
	if c.Analysis.LLMTimeout <= 0 {
		c.Analysis.LLMTimeout = 90 * time.Second
	}
	if c.Analysis.HistorySessions <= 0 {
		c.Analysis.HistorySessions = 5
	}
	if c.Analysis.TriggerTimeout <= 0 {
		c.Analysis.TriggerTimeout = 2 * time.Hour
	}
	if c.AKTools.MaxRequestPerMinute <= 0 {
		c.AKTools.MaxRequestPerMinute = 60
	}
	if c.YahooFinance.BaseURL == "" {
		c.YahooFinance.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.YahooFinance.MaxRequestPerMinute <= 0 {
		c.YahooFinance.MaxRequestPerMinute = 60
	}
	if c.Tushare.BaseURL == "" {
		c.Tushare.BaseURL = "http://api.tushare.pro"
	}
	if c.Tushare.MaxRequestPerMinute <= 0 {
		c.Tushare.MaxRequestPerMinute = 30
	}
	if c.Tencent.QuoteURL == "" {
		c.Tencent.QuoteURL = "http://qt.gtimg.cn/q="
	}
	if c.Tencent.MinuteURL == "" {
		c.Tencent.MinuteURL = "https://web.ifzq.gtimg.cn/appstock/app/minute/query"
	}
	if c.Tencent.MaxRequestPerMinute <= 0 {
		c.Tencent.MaxRequestPerMinute = 60
	}
	if c.Sina.QuoteURL == "" {
		c.Sina.QuoteURL = "http://hq.sinajs.cn/list="
	}
	if c.Sina.MaxRequestPerMinute <= 0 {
		c.Sina.MaxRequestPerMinute = 60
	}
	if c.Tavily.BaseURL == "" {
		c.Tavily.BaseURL = "https://api.tavily.com"
	}
	if c.Tavily.MaxResults <= 0 {
		c.Tavily.MaxResults = 10
	}
	if c.Tavily.SearchDepth == "" {
		c.Tavily.SearchDepth = "advanced"
	}
	if c.Tavily.MaxRequestPerMinute <= 0 {
		c.Tavily.MaxRequestPerMinute = 30
	}
	if c.GoogleNews.BaseURL == "" {
		c.GoogleNews.BaseURL = "https://news.google.com/rss"
	}
	if c.GoogleNews.MaxResults <= 0 {
		c.GoogleNews.MaxResults = 10
	}
	if c.Article.MinContentLength <= 0 {
		c.Article.MinContentLength = 200
	}
	if c.Article.MaxContentLength <= 0 {
		c.Article.MaxContentLength = 4000
	}
	if len(c.LLM.Models) == 0 {
		c.LLM.Models = []ModelRef{
			{Provider: "gemini", Model: "gemini-2.0-flash"},
			{Provider: "gemini", Model: "gemini-1.5-flash"},
			{Provider: "gemini", Model: "gemini-1.5-pro"},
		}
	}
	if c.Gemini.MaxRequestPerMinute <= 0 {
		c.Gemini.MaxRequestPerMinute = 15
	}
	if c.OpenRouter.BaseURL == "" {
		c.OpenRouter.BaseURL = "https://openrouter.ai/api/v1"
	}
	if c.OpenRouter.MaxRequestPerMinute <= 0 {
		c.OpenRouter.MaxRequestPerMinute = 20
	}
}
