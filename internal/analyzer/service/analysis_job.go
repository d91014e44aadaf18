package service

import (
	"context"
	"sort"
	"time"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"
	"golang-stock-watchlist/pkg/telegram"
	"golang-stock-watchlist/pkg/utils"

	"github.com/google/uuid"
)

// RunSummary describes one analysis run.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Purged     int
	Stocks     int
	Reports    []entity.AnalysisReport
}

// AnalysisJob analyzes every watched stock once and stores a report copy per owner.
type AnalysisJob interface {
	Run(ctx context.Context) RunSummary
}

type analysisJob struct {
	log       *logger.Logger
	state     StateService
	assembler ReportAssembler
	notifier  telegram.Notifier
	loc       *time.Location
	pause     time.Duration
	now       Clock
}

// WatchedStock is one distinct stock and everyone watching it.
type WatchedStock struct {
	Canonical symbol.Canonical
	Owners    []string
}

// NewAnalysisJob creates the job. notifier may be nil.
func NewAnalysisJob(
	log *logger.Logger,
	state StateService,
	assembler ReportAssembler,
	notifier telegram.Notifier,
	loc *time.Location,
	pause time.Duration,
	now Clock,
) AnalysisJob {
	return &analysisJob{
		log:       log,
		state:     state,
		assembler: assembler,
		notifier:  notifier,
		loc:       loc,
		pause:     pause,
		now:       now,
	}
}

func (j *analysisJob) Run(ctx context.Context) RunSummary {
	summary := RunSummary{RunID: uuid.NewString(), StartedAt: j.now()}
	ctx = logger.WithFields(ctx, logger.StringField("run_id", summary.RunID))
	j.log.InfoContext(ctx, "Analysis run started")

	if err := j.state.Update(ctx, func(state *entity.AppState) error {
		summary.Purged = PurgeReports(state, summary.StartedAt, j.loc)
		return nil
	}); err != nil {
		j.log.ErrorContext(ctx, "Failed to purge old reports", logger.ErrorField(err))
	}

	stocks := CollectWatchedStocks(j.state.Snapshot())
	summary.Stocks = len(stocks)
	j.log.InfoContext(ctx, "Collected watched stocks",
		logger.IntField("stocks", len(stocks)),
		logger.IntField("purged", summary.Purged),
	)

	for i, ws := range stocks {
		if !utils.ShouldContinue(ctx, j.log) {
			break
		}
		if i > 0 && j.pause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(j.pause):
			}
		}

		report := j.assembler.Assemble(ctx, ws.Canonical)
		summary.Reports = append(summary.Reports, report)

		if err := j.state.Update(ctx, func(state *entity.AppState) error {
			StoreReport(state, report, ws.Owners, j.loc)
			return nil
		}); err != nil {
			j.log.ErrorContext(ctx, "Failed to store report",
				logger.StringField("symbol", ws.Canonical.Key()),
				logger.ErrorField(err),
			)
		}
	}

	summary.FinishedAt = j.now()
	j.log.InfoContext(ctx, "Analysis run finished",
		logger.IntField("reports", len(summary.Reports)),
		logger.DurationField("duration", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	j.notify(ctx, summary)
	return summary
}

func (j *analysisJob) notify(ctx context.Context, summary RunSummary) {
	if j.notifier == nil {
		return
	}
	for _, msg := range telegram.FormatAnalysisRun(summary.Reports, summary.StartedAt.In(j.loc)) {
		if err := j.notifier.SendMessage(ctx, msg); err != nil {
			j.log.WarnContext(ctx, "Failed to send run summary", logger.ErrorField(err))
			return
		}
	}
}

// CollectWatchedStocks returns every distinct canonical stock with the owners
// watching it. The guest list comes first, then users in key order.
func CollectWatchedStocks(state *entity.AppState) []WatchedStock {
	owners := state.Owners()
	sort.Strings(owners[1:])

	index := make(map[string]int)
	var out []WatchedStock
	for _, owner := range owners {
		for _, s := range state.WatchlistOf(owner) {
			c := s.Canonical()
			key := c.Key()
			i, ok := index[key]
			if !ok {
				index[key] = len(out)
				out = append(out, WatchedStock{Canonical: c, Owners: []string{owner}})
				continue
			}
			if !utils.ContainsString(out[i].Owners, owner) {
				out[i].Owners = append(out[i].Owners, owner)
			}
		}
	}
	return out
}

// PurgeReports drops reports generated before yesterday and returns how many.
func PurgeReports(state *entity.AppState, now time.Time, loc *time.Location) int {
	cutoff := utils.StartOfDay(now.In(loc)).AddDate(0, 0, -1)
	kept := state.Reports[:0]
	purged := 0
	for _, r := range state.Reports {
		if r.GeneratedAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, r)
	}
	state.Reports = kept
	return purged
}

// StoreReport replaces same-day reports of the stock for each owner with a copy of report.
func StoreReport(state *entity.AppState, report entity.AnalysisReport, owners []string, loc *time.Location) {
	key := report.Canonical().Key()
	kept := state.Reports[:0]
	for _, r := range state.Reports {
		if r.Canonical().Key() == key &&
			utils.ContainsString(owners, r.Owner) &&
			utils.SameDay(r.GeneratedAt, report.GeneratedAt, loc) {
			continue
		}
		kept = append(kept, r)
	}
	state.Reports = kept

	for i, owner := range owners {
		copied := report
		copied.Owner = owner
		copied.NewsItems = append([]entity.NewsItem(nil), report.NewsItems...)
		if i > 0 {
			copied.ID = uuid.NewString()
		}
		state.Reports = append(state.Reports, copied)
	}
}
