package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/logger"

	"github.com/timshannon/badgerhold/v4"
)

const badgerStateKey = "app_state"

type badgerStateRecord struct {
	Data      []byte
	UpdatedAt time.Time
}

type badgerStateRepository struct {
	store *badgerhold.Store
	log   *logger.Logger
}

// NewBadgerStateRepository stores the snapshot in an embedded key/value store.
func NewBadgerStateRepository(store *badgerhold.Store, log *logger.Logger) StateRepository {
	return &badgerStateRepository{store: store, log: log}
}

func (r *badgerStateRepository) Load(ctx context.Context) (*entity.AppState, error) {
	var record badgerStateRecord
	err := r.store.Get(badgerStateKey, &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		r.log.InfoContext(ctx, "No persisted state found, starting empty")
		return entity.NewAppState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return decodeState(record.Data)
}

func (r *badgerStateRepository) Save(ctx context.Context, state *entity.AppState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := r.store.Upsert(badgerStateKey, badgerStateRecord{Data: data, UpdatedAt: time.Now()}); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}
