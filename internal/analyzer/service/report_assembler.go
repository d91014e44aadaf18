package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/internal/analyzer/repository"
	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"
	"golang-stock-watchlist/pkg/utils"

	"github.com/google/uuid"
)

const (
	ErrorReportContent = `{"summary": "Error generating analysis. Please try again.", "recommendation": "ERROR"}`
	NoNewsText         = "No recent news available."
)

// ReportAssembler builds one report for one stock. It always returns a
// well-formed report, falling back to the REVIEW and ERROR recommendations.
type ReportAssembler interface {
	Assemble(ctx context.Context, c symbol.Canonical) entity.AnalysisReport
}

type reportAssembler struct {
	log       *logger.Logger
	price     PriceResolver
	history   HistoryResolver
	moneyFlow MoneyFlowResolver
	names     NameResolver
	news      NewsAggregator
	generator TextGenerator
	now       Clock
}

func NewReportAssembler(
	log *logger.Logger,
	price PriceResolver,
	history HistoryResolver,
	moneyFlow MoneyFlowResolver,
	names NameResolver,
	news NewsAggregator,
	generator TextGenerator,
	now Clock,
) ReportAssembler {
	return &reportAssembler{
		log:       log,
		price:     price,
		history:   history,
		moneyFlow: moneyFlow,
		names:     names,
		news:      news,
		generator: generator,
		now:       now,
	}
}

func (a *reportAssembler) Assemble(ctx context.Context, c symbol.Canonical) entity.AnalysisReport {
	ctx = logger.WithFields(ctx, logger.StringField("symbol", c.Key()))

	price := a.price.Resolve(ctx, c)
	history := a.history.Resolve(ctx, c)
	moneyFlow := a.moneyFlow.Resolve(ctx, c, history.Bars)
	name := a.names.Resolve(ctx, c)
	newsItems := a.news.Fetch(ctx, c, name, priceContext(price, history.Bars))

	prompt := repository.BuildReportPrompt(repository.ReportInput{
		Name:      name,
		Symbol:    c.Symbol,
		Market:    c.Market.String(),
		Price:     price,
		History:   history.Text,
		MoneyFlow: moneyFlow,
		News:      newsText(newsItems),
	})

	report := entity.AnalysisReport{
		ID:          uuid.NewString(),
		Symbol:      c.Symbol,
		Market:      c.Market,
		Name:        name,
		GeneratedAt: a.now(),
		Price:       price,
		NewsItems:   newsItems,
	}

	text, model, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		a.log.ErrorContext(ctx, "Every model failed to generate the report", logger.ErrorField(err))
		report.Content = ErrorReportContent
		report.Recommendation = entity.RecommendationError
		return report
	}

	cleaned := utils.StripCodeFence(text)
	var result dto.ReportResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		a.log.WarnContext(ctx, "Report is not valid JSON, keeping raw text",
			logger.StringField("model", model),
			logger.ErrorField(err),
		)
		report.Content = text
		report.Recommendation = entity.RecommendationReview
		return report
	}

	report.Content = cleaned
	report.Recommendation = entity.ParseRecommendation(result.Recommendation)
	a.log.InfoContext(ctx, "Report generated",
		logger.StringField("model", model),
		logger.StringField("recommendation", string(report.Recommendation)),
	)
	return report
}

func priceContext(price *float64, bars []dto.HistoryBar) *repository.PriceContext {
	pc := &repository.PriceContext{Price: price}
	if len(bars) > 0 {
		last := bars[len(bars)-1]
		pc.High = utils.ToPointer(last.High)
		pc.Low = utils.ToPointer(last.Low)
	}
	return pc
}

func newsText(items []entity.NewsItem) string {
	if len(items) == 0 {
		return NoNewsText
	}
	var b strings.Builder
	for i, item := range items {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, item.Content))
	}
	return strings.TrimRight(b.String(), "\n")
}
