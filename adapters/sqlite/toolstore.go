package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/operatorhq/creditwatch/domain/credit"
	"github.com/operatorhq/creditwatch/ports"
)

const dateLayout = "2006-01-02"

// ToolStore implements ports.ToolStore using SQLite.
type ToolStore struct {
	db *DB
}

// NewToolStore creates a new SQLite tool store.
func NewToolStore(db *DB) *ToolStore {
	return &ToolStore{db: db}
}

// ListUpdatedSince returns tools last updated on or after the given date,
// ordered by name. Status and exhaustion come back as stored but callers
// re-derive both in memory.
func (s *ToolStore) ListUpdatedSince(ctx context.Context, since time.Time) ([]credit.ToolState, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, credits_remaining, percent_remaining, daily_avg_usage,
		       predicted_exhaustion, status, last_updated
		FROM tools
		WHERE datetime(last_updated) >= datetime(?)
		ORDER BY name
	`, since.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tools []credit.ToolState
	for rows.Next() {
		var (
			t          credit.ToolState
			exhaustion sql.NullString
			status     string
			updated    time.Time
		)
		if err := rows.Scan(&t.Name, &t.CreditsRemaining, &t.PercentRemaining,
			&t.DailyAvgUsage, &exhaustion, &status, &updated); err != nil {
			return nil, err
		}

		t.Status = credit.Status(status)
		t.LastUpdated = updated
		if exhaustion.Valid && exhaustion.String != "" {
			if d, err := time.Parse(dateLayout, exhaustion.String); err == nil {
				t.PredictedExhaustion = &d
			}
			// Unparseable stored dates are silently dropped: the value is
			// recomputed in memory anyway.
		}

		tools = append(tools, t)
	}

	return tools, rows.Err()
}

// Upsert inserts or replaces a tool row keyed by name.
func (s *ToolStore) Upsert(ctx context.Context, state credit.ToolState) error {
	var exhaustion interface{}
	if state.PredictedExhaustion != nil {
		exhaustion = state.PredictedExhaustion.Format(dateLayout)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tools (name, credits_remaining, percent_remaining, daily_avg_usage,
		                   predicted_exhaustion, status, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			credits_remaining = excluded.credits_remaining,
			percent_remaining = excluded.percent_remaining,
			daily_avg_usage = excluded.daily_avg_usage,
			predicted_exhaustion = excluded.predicted_exhaustion,
			status = excluded.status,
			last_updated = excluded.last_updated
	`, state.Name, state.CreditsRemaining, state.PercentRemaining, state.DailyAvgUsage,
		exhaustion, string(state.Status), state.LastUpdated.UTC().Format("2006-01-02 15:04:05"))

	return err
}

// Ensure interface compliance.
var _ ports.ToolStore = (*ToolStore)(nil)
