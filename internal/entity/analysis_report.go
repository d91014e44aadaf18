package entity

import (
	"time"

	"golang-stock-watchlist/pkg/symbol"
)

type Recommendation string

const (
	RecommendationBuy    Recommendation = "BUY"
	RecommendationSell   Recommendation = "SELL"
	RecommendationHold   Recommendation = "HOLD"
	RecommendationReview Recommendation = "REVIEW"
	RecommendationError  Recommendation = "ERROR"
)

// ParseRecommendation maps free LLM output to BUY, SELL or HOLD. Anything else is HOLD.
func ParseRecommendation(raw string) Recommendation {
	switch Recommendation(normalizeUpper(raw)) {
	case RecommendationBuy:
		return RecommendationBuy
	case RecommendationSell:
		return RecommendationSell
	default:
		return RecommendationHold
	}
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// NewsItem is a rendered news digest attached to a report.
type NewsItem struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Sentiment Sentiment `json:"sentiment"`
	Score     int       `json:"score"`
}

// AnalysisReport is one generated analysis for one owner and one stock.
type AnalysisReport struct {
	ID             string         `json:"id"`
	Owner          string         `json:"owner,omitempty"`
	Symbol         string         `json:"stock_symbol"`
	Market         symbol.Market  `json:"market"`
	Name           string         `json:"stock_name"`
	Content        string         `json:"report_content"`
	GeneratedAt    time.Time      `json:"generated_at"`
	Price          *float64       `json:"price"`
	Recommendation Recommendation `json:"recommendation"`
	NewsItems      []NewsItem     `json:"news_items"`
}

func (r AnalysisReport) Canonical() symbol.Canonical {
	return symbol.Normalize(r.Symbol, r.Market)
}
