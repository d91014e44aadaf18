package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/internal/analyzer/repository"
	"golang-stock-watchlist/pkg/chain"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const MoneyFlowUnavailableText = "资金流向数据暂时无法获取，将基于历史价格进行综合分析。"

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

var directionLabels = map[Direction]string{
	DirectionUp:   "价格上涨",
	DirectionDown: "价格下跌",
	DirectionFlat: "平盘",
}

var marketLabels = map[symbol.Market]string{
	symbol.MarketHK: "港股",
	symbol.MarketUS: "美股",
	symbol.MarketSH: "A股沪市",
	symbol.MarketSZ: "A股深市",
}

var numberPrinter = message.NewPrinter(language.English)

// MoneyFlowResolver produces a money-flow narrative. bars are the sessions
// already resolved by the HistoryResolver and back the synthesized fallback.
type MoneyFlowResolver interface {
	Resolve(ctx context.Context, c symbol.Canonical, bars []dto.HistoryBar) string
}

type moneyFlowKey struct {
	Canonical symbol.Canonical
	Bars      []dto.HistoryBar
}

func (k moneyFlowKey) String() string {
	return k.Canonical.Key()
}

type moneyFlowResolver struct {
	chain *chain.Chain[moneyFlowKey, string]
}

func NewMoneyFlowResolver(cfg *config.Config, log *logger.Logger, akToolsRepo repository.AKToolsRepository) MoneyFlowResolver {
	structured := chain.Func("aktools_fund_flow", func(ctx context.Context, k moneyFlowKey) (string, error) {
		flow, err := akToolsRepo.GetFundFlow(ctx, k.Canonical)
		if err != nil {
			return "", err
		}
		return FormatFundFlow(k.Canonical, flow), nil
	})
	synthesized := chain.Func("volume_synthesis", func(ctx context.Context, k moneyFlowKey) (string, error) {
		if len(k.Bars) == 0 {
			return "", chain.ErrNoData
		}
		return SynthesizeMoneyFlow(k.Canonical, k.Bars), nil
	})

	return &moneyFlowResolver{
		chain: chain.New("money_flow", log, structured, synthesized).
			WithEmpty(func(s string) bool { return strings.TrimSpace(s) == "" }).
			WithTimeout(cfg.Analysis.ProviderTimeout),
	}
}

func (r *moneyFlowResolver) Resolve(ctx context.Context, c symbol.Canonical, bars []dto.HistoryBar) string {
	return r.chain.ResolveOr(ctx, moneyFlowKey{Canonical: c, Bars: bars}, MoneyFlowUnavailableText)
}

// FormatFundFlow renders a structured fund-flow snapshot.
func FormatFundFlow(c symbol.Canonical, flow *dto.FundFlow) string {
	var b strings.Builder
	header := fmt.Sprintf("%s %s 资金流向", marketLabels[c.Market], c.Symbol)
	if flow.Date != "" {
		header += " (" + flow.Date + ")"
	} else {
		header += " (今日)"
	}
	b.WriteString(header + ":\n")
	b.WriteString("- 主力净流入: " + formatAmount(flow.MainNetInflow) + "\n")
	b.WriteString("- 超大单净流入: " + formatAmount(flow.SuperLargeNet) + "\n")
	b.WriteString("- 大单净流入: " + formatAmount(flow.LargeNet) + "\n")
	b.WriteString("- 中单净流入: " + formatAmount(flow.MediumNet) + "\n")
	b.WriteString("- 小单净流入: " + formatAmount(flow.SmallNet) + "\n")
	b.WriteString("- 主力净占比: " + formatPercent(flow.MainNetPercent))
	if flow.ClosePrice != nil {
		b.WriteString(fmt.Sprintf("\n- 收盘价: %.2f", *flow.ClosePrice))
	}
	if flow.ChangePercent != nil {
		b.WriteString("\n- 涨跌幅: " + formatPercent(flow.ChangePercent))
	}
	return b.String()
}

// VolumeDeltas returns the session-over-session volume change in percent.
// The first session and any session following a zero volume have no delta.
func VolumeDeltas(bars []dto.HistoryBar) []*float64 {
	deltas := make([]*float64, len(bars))
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Volume
		if prev == 0 {
			continue
		}
		d := (bars[i].Volume - prev) / prev * 100
		deltas[i] = &d
	}
	return deltas
}

// SessionDirection compares close against open.
func SessionDirection(bar dto.HistoryBar) Direction {
	switch {
	case bar.Close > bar.Open:
		return DirectionUp
	case bar.Close < bar.Open:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

// SynthesizeMoneyFlow describes volume and direction per session when no
// structured money-flow source is available.
func SynthesizeMoneyFlow(c symbol.Canonical, bars []dto.HistoryBar) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s 近%d个交易日成交量与价格变化（基于历史行情推算）:\n", marketLabels[c.Market], c.Symbol, len(bars)))

	deltas := VolumeDeltas(bars)
	for i, bar := range bars {
		line := fmt.Sprintf("- %s: 成交量 %s", bar.Date.Format(time.DateOnly), numberPrinter.Sprintf("%d", int64(math.Round(bar.Volume))))
		if deltas[i] != nil {
			line += fmt.Sprintf(" (较前日%+.1f%%)", *deltas[i])
		}
		line += fmt.Sprintf(", %s (收盘 %.2f)", directionLabels[SessionDirection(bar)], bar.Close)
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatAmount(v *float64) string {
	if v == nil {
		return "N/A"
	}
	abs := math.Abs(*v)
	switch {
	case abs >= 1e8:
		return fmt.Sprintf("%.2f亿", *v/1e8)
	case abs >= 1e4:
		return fmt.Sprintf("%.2f万", *v/1e4)
	default:
		return fmt.Sprintf("%.0f", *v)
	}
}

func formatPercent(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *v)
}
