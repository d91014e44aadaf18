package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-stock-watchlist/internal/entity"
)

const maxMessageLen = 4090

// FormatAnalysisRun renders the reports of one analysis run into Markdown
// messages, each within Telegram's length limit.
func FormatAnalysisRun(reports []entity.AnalysisReport, runAt time.Time) []string {
	if len(reports) == 0 {
		return []string{"No watchlist stocks were analyzed today."}
	}

	var messages []string
	var current strings.Builder
	part := 1

	startNewPart := func() {
		current.Reset()
		if part == 1 {
			current.WriteString(fmt.Sprintf("📊 *Daily Watchlist Analysis* (%s)\n\n", runAt.Format("2006-01-02 15:04")))
		} else {
			current.WriteString(fmt.Sprintf("---*Daily Watchlist Analysis Part %d*---\n\n", part))
		}
	}
	startNewPart()

	for _, r := range reports {
		entry := formatReportLine(r)
		if current.Len()+len(entry) > maxMessageLen {
			messages = append(messages, current.String())
			part++
			startNewPart()
		}
		current.WriteString(entry)
	}
	messages = append(messages, current.String())
	return messages
}

func formatReportLine(r entity.AnalysisReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s *%s* (%s:%s)\n", recommendationIcon(r.Recommendation), escapeMarkdown(r.Name), r.Market, r.Symbol))
	b.WriteString(fmt.Sprintf("• Recommendation: *%s*\n", r.Recommendation))
	if r.Price != nil {
		b.WriteString(fmt.Sprintf("• Price: %.2f\n", *r.Price))
	}
	if len(r.NewsItems) > 0 {
		b.WriteString(fmt.Sprintf("• News sentiment: %s (%d/100)\n", r.NewsItems[0].Sentiment, r.NewsItems[0].Score))
	}
	b.WriteString("\n")
	return b.String()
}

func recommendationIcon(r entity.Recommendation) string {
	switch r {
	case entity.RecommendationBuy:
		return "🟢"
	case entity.RecommendationSell:
		return "🔴"
	case entity.RecommendationHold:
		return "🟡"
	default:
		return "⚪"
	}
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[").Replace(s)
}
