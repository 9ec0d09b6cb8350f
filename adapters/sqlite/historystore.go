package sqlite

import (
	"context"

	"github.com/operatorhq/creditwatch/ports"
)

// UsageHistoryStore implements ports.UsageHistoryStore using SQLite.
// The table is a write-only audit log; nothing in the core reads it.
type UsageHistoryStore struct {
	db *DB
}

// NewUsageHistoryStore creates a new SQLite usage history store.
func NewUsageHistoryStore(db *DB) *UsageHistoryStore {
	return &UsageHistoryStore{db: db}
}

// Append stores one usage audit row.
func (s *UsageHistoryStore) Append(ctx context.Context, rec ports.UsageRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_history (id, tool_name, date, credits_consumed, events_count)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, rec.ToolName, rec.Date.UTC().Format(dateLayout), rec.CreditsConsumed, rec.EventsCount)

	return err
}

// Ensure interface compliance.
var _ ports.UsageHistoryStore = (*UsageHistoryStore)(nil)
