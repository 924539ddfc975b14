package luckynumbers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/0xpratik010/tridev/go/internal/events"
	"github.com/0xpratik010/tridev/go/internal/luckynumbers/db"
	"github.com/0xpratik010/tridev/go/internal/models"
	"github.com/0xpratik010/tridev/go/internal/sqlutil"
)

// Repository implements lucky number data access. Every mutation writes its
// outbox event in the same transaction.
type Repository struct {
	db      *sql.DB
	queries *db.Queries
	clock   clockwork.Clock
}

// NewRepository creates a new lucky numbers repository. clock stamps delete
// events; nil uses the real clock.
func NewRepository(database *sql.DB, clock clockwork.Clock) *Repository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Repository{
		db:      database,
		queries: db.New(database),
		clock:   clock,
	}
}

func (r *Repository) newTxQueries(tx *sql.Tx) *db.Queries {
	return r.queries.WithTx(tx)
}

// CreateLuckyNumber inserts a record and its LuckyNumberCreated event
func (r *Repository) CreateLuckyNumber(ctx context.Context, draft Draft) (*models.LuckyNumber, error) {
	var created db.LuckyNumber
	err := sqlutil.Run(ctx, r.db, r.newTxQueries, func(q *db.Queries) error {
		var err error
		created, err = q.CreateLuckyNumber(ctx, db.CreateLuckyNumberParams{
			ID:         uuid.New(),
			DrawDate:   draft.Date,
			Slot:       string(draft.Slot),
			Number:     draft.Number,
			RevealTime: draft.RevealTime,
		})
		if err != nil {
			return err
		}
		rec := dbLuckyNumberToModel(created)
		return insertOutbox(ctx, q, rec.ID, events.EventTypeLuckyNumberCreated,
			events.NewLuckyNumberPayload(*rec, created.CreatedAt))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lucky number: %w", err)
	}
	return dbLuckyNumberToModel(created), nil
}

// GetLuckyNumber retrieves a record by ID
func (r *Repository) GetLuckyNumber(ctx context.Context, id uuid.UUID) (*models.LuckyNumber, error) {
	row, err := r.queries.GetLuckyNumber(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lucky number: %w", err)
	}
	return dbLuckyNumberToModel(row), nil
}

// ListBySlotAndDate returns every record for a slot on dateKey, in reveal order
func (r *Repository) ListBySlotAndDate(ctx context.Context, slot models.Slot, dateKey string) ([]models.LuckyNumber, error) {
	rows, err := r.queries.ListLuckyNumbersBySlotAndDate(ctx, db.ListLuckyNumbersBySlotAndDateParams{
		Slot:     string(slot),
		DrawDate: dateKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list lucky numbers for %s on %s: %w", slot, dateKey, err)
	}
	return dbLuckyNumbersToModels(rows), nil
}

// ListRecent returns the most recent records by date, newest first. A limit
// of zero or less returns everything.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]models.LuckyNumber, error) {
	var (
		rows []db.LuckyNumber
		err  error
	)
	if limit <= 0 {
		rows, err = r.queries.ListAllLuckyNumbers(ctx)
	} else {
		rows, err = r.queries.ListRecentLuckyNumbers(ctx, int32(limit))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list recent lucky numbers: %w", err)
	}
	return dbLuckyNumbersToModels(rows), nil
}

// UpdateLuckyNumber applies patch and records a LuckyNumberUpdated event
func (r *Repository) UpdateLuckyNumber(ctx context.Context, id uuid.UUID, patch Patch) (*models.LuckyNumber, error) {
	var slot *string
	if patch.Slot != nil {
		s := string(*patch.Slot)
		slot = &s
	}

	var updated db.LuckyNumber
	err := sqlutil.Run(ctx, r.db, r.newTxQueries, func(q *db.Queries) error {
		var err error
		updated, err = q.UpdateLuckyNumber(ctx, db.UpdateLuckyNumberParams{
			DrawDate:   sqlutil.ToSqlString(patch.Date),
			Slot:       sqlutil.ToSqlString(slot),
			Number:     sqlutil.ToSqlString(patch.Number),
			RevealTime: sqlutil.ToSqlString(patch.RevealTime),
			ID:         id,
		})
		if err != nil {
			return err
		}
		rec := dbLuckyNumberToModel(updated)
		return insertOutbox(ctx, q, rec.ID, events.EventTypeLuckyNumberUpdated,
			events.NewLuckyNumberPayload(*rec, updated.UpdatedAt))
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update lucky number: %w", err)
	}
	return dbLuckyNumberToModel(updated), nil
}

// DeleteLuckyNumber removes a record and records a LuckyNumberDeleted event
func (r *Repository) DeleteLuckyNumber(ctx context.Context, id uuid.UUID) error {
	err := sqlutil.Run(ctx, r.db, r.newTxQueries, func(q *db.Queries) error {
		existing, err := q.GetLuckyNumber(ctx, id)
		if err != nil {
			return err
		}
		if _, err := q.DeleteLuckyNumber(ctx, id); err != nil {
			return err
		}
		return insertOutbox(ctx, q, id, events.EventTypeLuckyNumberDeleted, r.deletedPayload(existing))
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete lucky number: %w", err)
	}
	return nil
}

func (r *Repository) deletedPayload(existing db.LuckyNumber) events.LuckyNumberDeletedPayload {
	return events.LuckyNumberDeletedPayload{
		LuckyNumberID: existing.ID.String(),
		Date:          existing.DrawDate,
		Slot:          existing.Slot,
		DeletedAt:     r.clock.Now().UTC(),
	}
}

func insertOutbox(ctx context.Context, q *db.Queries, luckyNumberID uuid.UUID, eventType string, payload any) error {
	raw, err := sqlutil.ToNullRawMessage(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	if err := q.InsertOutboxEvent(ctx, db.InsertOutboxEventParams{
		ID:            uuid.New(),
		LuckyNumberID: luckyNumberID,
		EventType:     eventType,
		Payload:       raw,
	}); err != nil {
		return fmt.Errorf("insert %s outbox event: %w", eventType, err)
	}
	return nil
}

// dbLuckyNumberToModel converts a database row to the domain model
func dbLuckyNumberToModel(row db.LuckyNumber) *models.LuckyNumber {
	return &models.LuckyNumber{
		ID:         row.ID,
		Date:       row.DrawDate,
		Slot:       models.Slot(row.Slot),
		Number:     row.Number,
		RevealTime: row.RevealTime,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func dbLuckyNumbersToModels(rows []db.LuckyNumber) []models.LuckyNumber {
	out := make([]models.LuckyNumber, 0, len(rows))
	for _, row := range rows {
		out = append(out, *dbLuckyNumberToModel(row))
	}
	return out
}
