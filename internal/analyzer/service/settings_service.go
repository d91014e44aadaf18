package service

import (
	"context"
	"fmt"
	"time"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/utils"
)

// DailyScheduler runs one job at a wall-clock time every day.
type DailyScheduler interface {
	RunDaily(at string, job func()) error
	Next(t time.Time) (time.Time, bool)
}

// SettingsService manages the daily analysis timer.
type SettingsService interface {
	// Start schedules the job at the persisted timer.
	Start(ctx context.Context) error
	GetTimer(ctx context.Context) (string, time.Time)
	SetTimer(ctx context.Context, at string) (time.Time, error)
}

type settingsService struct {
	log       *logger.Logger
	state     StateService
	scheduler DailyScheduler
	trigger   AnalysisTrigger
	now       Clock
}

func NewSettingsService(log *logger.Logger, state StateService, scheduler DailyScheduler, trigger AnalysisTrigger, now Clock) SettingsService {
	return &settingsService{
		log:       log,
		state:     state,
		scheduler: scheduler,
		trigger:   trigger,
		now:       now,
	}
}

func (s *settingsService) Start(ctx context.Context) error {
	at := s.state.Snapshot().Timer
	if err := s.schedule(at); err != nil {
		return fmt.Errorf("failed to schedule daily analysis at %q: %w", at, err)
	}
	return nil
}

func (s *settingsService) GetTimer(ctx context.Context) (string, time.Time) {
	next, _ := s.scheduler.Next(s.now())
	return s.state.Snapshot().Timer, next
}

func (s *settingsService) SetTimer(ctx context.Context, at string) (time.Time, error) {
	hour, minute, err := utils.ParseClock(at)
	if err != nil {
		return time.Time{}, ErrInvalidTimer
	}
	at = fmt.Sprintf("%02d:%02d", hour, minute)

	if err := s.schedule(at); err != nil {
		return time.Time{}, err
	}
	if err := s.state.Update(ctx, func(state *entity.AppState) error {
		state.Timer = at
		return nil
	}); err != nil {
		return time.Time{}, err
	}

	next, _ := s.scheduler.Next(s.now())
	s.log.InfoContext(ctx, "Daily analysis timer updated", logger.StringField("at", at), logger.Field("next_run", next))
	return next, nil
}

func (s *settingsService) schedule(at string) error {
	return s.scheduler.RunDaily(at, func() {
		if err := s.trigger.Trigger(context.Background(), "scheduler"); err != nil {
			s.log.Error("Scheduled analysis failed to start", logger.ErrorField(err))
		}
	})
}
