package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type postgresStateRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewPostgresStateRepository stores the snapshot as one JSONB row.
func NewPostgresStateRepository(db *gorm.DB, log *logger.Logger) StateRepository {
	return &postgresStateRepository{db: db, log: log}
}

func (r *postgresStateRepository) Load(ctx context.Context) (*entity.AppState, error) {
	var record entity.AppStateRecord
	err := r.db.WithContext(ctx).First(&record, entity.AppStateRecordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.log.InfoContext(ctx, "No persisted state found, starting empty")
		return entity.NewAppState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return decodeState(record.Data)
}

func (r *postgresStateRepository) Save(ctx context.Context, state *entity.AppState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	record := entity.AppStateRecord{ID: entity.AppStateRecordID, Data: data}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func decodeState(data []byte) (*entity.AppState, error) {
	state := entity.NewAppState()
	if len(data) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	state.Normalize()
	return state, nil
}
