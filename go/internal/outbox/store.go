package outbox

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/0xpratik010/tridev/go/internal/luckynumbers/db"
	"github.com/0xpratik010/tridev/go/internal/sqlutil"
)

// SQLStore reads the lucky_number_outbox table.
type SQLStore struct {
	queries *db.Queries
}

func NewSQLStore(database *sql.DB) *SQLStore {
	return &SQLStore{queries: db.New(database)}
}

func (s *SQLStore) FetchUnsent(ctx context.Context, limit int32) ([]Event, error) {
	rows, err := s.queries.FetchUnsentOutbox(ctx, limit)
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, dbOutboxToEvent(row))
	}
	return events, nil
}

func (s *SQLStore) FetchByID(ctx context.Context, id uuid.UUID) (Event, error) {
	row, err := s.queries.FetchOutboxByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	return dbOutboxToEvent(row), nil
}

func (s *SQLStore) CountUnsent(ctx context.Context) (int64, error) {
	return s.queries.CountUnsentOutbox(ctx)
}

func (s *SQLStore) MarkSent(ctx context.Context, id uuid.UUID) error {
	return s.queries.MarkOutboxSent(ctx, id)
}

func dbOutboxToEvent(row db.LuckyNumberOutbox) Event {
	return Event{
		ID:            row.ID,
		LuckyNumberID: row.LuckyNumberID,
		EventType:     row.EventType,
		Payload:       sqlutil.FromNullRawMessage(row.Payload),
		CreatedAt:     row.CreatedAt,
	}
}
