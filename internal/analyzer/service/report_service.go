package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/utils"
)

type DateFilter string

const (
	DateFilterToday     DateFilter = "today"
	DateFilterYesterday DateFilter = "yesterday"
	DateFilterAll       DateFilter = "all"
)

// ParseDateFilter accepts today, yesterday or all; empty means today.
func ParseDateFilter(raw string) (DateFilter, error) {
	switch f := DateFilter(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return DateFilterToday, nil
	case DateFilterToday, DateFilterYesterday, DateFilterAll:
		return f, nil
	default:
		return "", ErrInvalidFilter
	}
}

// ReportService lists stored reports for one owner.
type ReportService interface {
	List(ctx context.Context, owner string, filter DateFilter) []entity.AnalysisReport
}

type reportService struct {
	state StateService
	loc   *time.Location
	now   Clock
}

func NewReportService(state StateService, loc *time.Location, now Clock) ReportService {
	return &reportService{state: state, loc: loc, now: now}
}

// List returns the owner's reports newest first.
func (s *reportService) List(ctx context.Context, owner string, filter DateFilter) []entity.AnalysisReport {
	now := s.now()
	yesterday := now.In(s.loc).AddDate(0, 0, -1)

	out := []entity.AnalysisReport{}
	for _, r := range s.state.Snapshot().Reports {
		if r.Owner != owner {
			continue
		}
		switch filter {
		case DateFilterToday:
			if !utils.SameDay(r.GeneratedAt, now, s.loc) {
				continue
			}
		case DateFilterYesterday:
			if !utils.SameDay(r.GeneratedAt, yesterday, s.loc) {
				continue
			}
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out
}
