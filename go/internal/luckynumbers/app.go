package luckynumbers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/0xpratik010/tridev/go/internal/models"
	"github.com/0xpratik010/tridev/go/internal/reveal"
)

// LuckyNumbersRepository defines what the app layer needs from the repository
type LuckyNumbersRepository interface {
	CreateLuckyNumber(ctx context.Context, draft Draft) (*models.LuckyNumber, error)
	GetLuckyNumber(ctx context.Context, id uuid.UUID) (*models.LuckyNumber, error)
	ListBySlotAndDate(ctx context.Context, slot models.Slot, dateKey string) ([]models.LuckyNumber, error)
	ListRecent(ctx context.Context, limit int) ([]models.LuckyNumber, error)
	UpdateLuckyNumber(ctx context.Context, id uuid.UUID, patch Patch) (*models.LuckyNumber, error)
	DeleteLuckyNumber(ctx context.Context, id uuid.UUID) error
}

// App handles lucky number business logic for operators and read paths
type App struct {
	repo LuckyNumbersRepository
}

// NewApp creates a new lucky numbers App
func NewApp(repo LuckyNumbersRepository) *App {
	return &App{
		repo: repo,
	}
}

// CreateLuckyNumber validates and stores a new record
func (a *App) CreateLuckyNumber(ctx context.Context, draft Draft) (*models.LuckyNumber, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	rec, err := a.repo.CreateLuckyNumber(ctx, draft)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("record_id", rec.ID.String()).
		Str("date", rec.Date).
		Str("slot", string(rec.Slot)).
		Str("reveal_time", rec.RevealTime).
		Msg("created lucky number")
	return rec, nil
}

// GetLuckyNumber retrieves a record by ID
func (a *App) GetLuckyNumber(ctx context.Context, id uuid.UUID) (*models.LuckyNumber, error) {
	return a.repo.GetLuckyNumber(ctx, id)
}

// UpdateLuckyNumber validates and applies a partial update
func (a *App) UpdateLuckyNumber(ctx context.Context, id uuid.UUID, patch Patch) (*models.LuckyNumber, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	rec, err := a.repo.UpdateLuckyNumber(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("record_id", rec.ID.String()).
		Str("date", rec.Date).
		Str("slot", string(rec.Slot)).
		Str("reveal_time", rec.RevealTime).
		Msg("updated lucky number")
	return rec, nil
}

// DeleteLuckyNumber removes a record by ID
func (a *App) DeleteLuckyNumber(ctx context.Context, id uuid.UUID) error {
	if err := a.repo.DeleteLuckyNumber(ctx, id); err != nil {
		return err
	}
	log.Info().Str("record_id", id.String()).Msg("deleted lucky number")
	return nil
}

// ListLuckyNumbers returns every record, newest date first, for the operator dashboard
func (a *App) ListLuckyNumbers(ctx context.Context) ([]models.LuckyNumber, error) {
	return a.repo.ListRecent(ctx, 0)
}

// ListBySlotAndDate returns the candidate records for one slot on one local date
func (a *App) ListBySlotAndDate(ctx context.Context, slot models.Slot, dateKey string) ([]models.LuckyNumber, error) {
	if !slot.Valid() {
		return nil, fmt.Errorf("%w: unknown slot %q", ErrInvalidDraft, slot)
	}
	if !reveal.ValidDateKey(dateKey) {
		return nil, fmt.Errorf("%w: invalid date key %q", ErrInvalidDraft, dateKey)
	}
	return a.repo.ListBySlotAndDate(ctx, slot, dateKey)
}

// ListRecent returns up to limit records by date descending; limit <= 0 means all
func (a *App) ListRecent(ctx context.Context, limit int) ([]models.LuckyNumber, error) {
	return a.repo.ListRecent(ctx, limit)
}
