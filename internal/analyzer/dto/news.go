package dto

// SearchResult is one news search hit, independent of the search backend.
type SearchResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	PublishedDate string  `json:"published_date"`
	Source        string  `json:"source"`
	Score         float64 `json:"score"`
}

// TavilySearchRequest is the body of POST /search.
type TavilySearchRequest struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth,omitempty"`
	Topic             string `json:"topic,omitempty"`
	MaxResults        int    `json:"max_results,omitempty"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type TavilySearchResponse struct {
	Query   string `json:"query"`
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date"`
	} `json:"results"`
	ResponseTime float64 `json:"response_time"`
}

// NewsDigestItem is one bullet of the analyst digest.
type NewsDigestItem struct {
	Content   string `json:"content"`
	Sentiment string `json:"sentiment"`
}

// NewsDigestResult is the JSON contract of the news digest prompt.
type NewsDigestResult struct {
	IsValid          bool             `json:"is_valid"`
	OverviewItems    []NewsDigestItem `json:"overview_items"`
	SentimentSummary string           `json:"sentiment_summary"`
	SentimentScore   *float64         `json:"sentiment_score"`
	OverallSentiment string           `json:"overall_sentiment"`
}
