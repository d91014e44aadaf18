package service

import (
	"context"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/internal/analyzer/repository"
	"golang-stock-watchlist/pkg/chain"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"
)

const (
	minuteSampleStep    = 5
	dateLabelMinimum    = 50
	timeLabelLayout     = "15:04"
	dateTimeLabelLayout = "01-02 15:04"
)

// IntradayResolver returns a chart series, or an empty series when no source
// has data.
type IntradayResolver interface {
	Resolve(ctx context.Context, c symbol.Canonical) []dto.IntradayPoint
}

type intradayResolver struct {
	chain *chain.Chain[symbol.Canonical, []dto.IntradayPoint]
}

func NewIntradayResolver(
	cfg *config.Config,
	log *logger.Logger,
	tencentRepo repository.TencentRepository,
	yahooRepo repository.YahooFinanceRepository,
) IntradayResolver {
	tencent := chain.Func("tencent_minute", func(ctx context.Context, c symbol.Canonical) ([]dto.IntradayPoint, error) {
		bars, err := tencentRepo.GetMinuteBars(ctx, c)
		if err != nil {
			return nil, err
		}
		return SampleMinuteBars(bars, minuteSampleStep), nil
	})
	yahoo := chain.Func("yahoo_intraday", func(ctx context.Context, c symbol.Canonical) ([]dto.IntradayPoint, error) {
		bars, err := yahooRepo.GetIntradayBars(ctx, c, "1d", "15m")
		if err != nil || len(bars) == 0 {
			bars, err = yahooRepo.GetIntradayBars(ctx, c, "5d", "60m")
		}
		if err != nil {
			return nil, err
		}
		return LabelIntradayBars(bars), nil
	})

	return &intradayResolver{
		chain: chain.New("intraday", log, tencent, yahoo).
			WithEmpty(func(p []dto.IntradayPoint) bool { return len(p) == 0 }).
			WithTimeout(cfg.Analysis.ProviderTimeout),
	}
}

func (r *intradayResolver) Resolve(ctx context.Context, c symbol.Canonical) []dto.IntradayPoint {
	return r.chain.ResolveOr(ctx, c, []dto.IntradayPoint{})
}

// SampleMinuteBars keeps every step-th minute bar.
func SampleMinuteBars(bars []dto.MinuteBar, step int) []dto.IntradayPoint {
	if step < 1 {
		step = 1
	}
	points := make([]dto.IntradayPoint, 0, len(bars)/step+1)
	for i := 0; i < len(bars); i += step {
		points = append(points, dto.IntradayPoint{Time: bars[i].Label, Price: bars[i].Price})
	}
	return points
}

// LabelIntradayBars formats bar times; long series carry the date as well.
func LabelIntradayBars(bars []dto.IntradayBar) []dto.IntradayPoint {
	layout := timeLabelLayout
	if len(bars) > dateLabelMinimum {
		layout = dateTimeLabelLayout
	}
	points := make([]dto.IntradayPoint, 0, len(bars))
	for _, b := range bars {
		points = append(points, dto.IntradayPoint{Time: b.Time.Format(layout), Price: b.Price})
	}
	return points
}
