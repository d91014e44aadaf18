package service

import (
	"context"
	"fmt"
	"sync"

	"golang-stock-watchlist/internal/analyzer/repository"
	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/logger"
)

// StateService owns the in-memory application snapshot and persists it after
// every mutation.
type StateService interface {
	Load(ctx context.Context) error
	Snapshot() *entity.AppState
	Update(ctx context.Context, fn func(state *entity.AppState) error) error
}

type stateService struct {
	repo   repository.StateRepository
	log    *logger.Logger
	mu     sync.RWMutex
	saveMu sync.Mutex
	state  *entity.AppState
}

// NewStateService creates a StateService starting from an empty snapshot.
func NewStateService(repo repository.StateRepository, log *logger.Logger) StateService {
	return &stateService{
		repo:  repo,
		log:   log,
		state: entity.NewAppState(),
	}
}

func (s *stateService) Load(ctx context.Context) error {
	state, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load application state: %w", err)
	}
	state.Normalize()

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	s.log.InfoContext(ctx, "Application state loaded",
		logger.IntField("guest_watchlist", len(state.Watchlist)),
		logger.IntField("users", len(state.Users)),
		logger.IntField("reports", len(state.Reports)),
		logger.StringField("timer", state.Timer),
	)
	return nil
}

// Snapshot returns a deep copy that callers may read freely.
func (s *stateService) Snapshot() *entity.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Update applies fn and saves the result. When fn fails nothing is saved.
// A failed save leaves the in-memory mutation in place.
func (s *stateService) Update(ctx context.Context, fn func(state *entity.AppState) error) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if err := fn(s.state); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := s.state.Clone()
	s.mu.Unlock()

	if err := s.repo.Save(ctx, snapshot); err != nil {
		s.log.ErrorContext(ctx, "Failed to persist application state", logger.ErrorField(err))
		return fmt.Errorf("failed to persist application state: %w", err)
	}
	return nil
}
