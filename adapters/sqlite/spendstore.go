package sqlite

import (
	"context"
	"time"

	"github.com/operatorhq/creditwatch/domain/spend"
	"github.com/operatorhq/creditwatch/ports"
)

// SpendStore implements ports.SpendStore using SQLite.
type SpendStore struct {
	db *DB
}

// NewSpendStore creates a new SQLite spend store.
func NewSpendStore(db *DB) *SpendStore {
	return &SpendStore{db: db}
}

// RecordSnapshot upserts one row per service for the snapshot date in a
// single transaction. Any failure rolls the whole snapshot back.
func (s *SpendStore) RecordSnapshot(ctx context.Context, date time.Time, services []spend.Service) error {
	if len(services) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO aws_spend (date, service, amount)
		VALUES (?, ?, ?)
		ON CONFLICT(date, service) DO UPDATE SET amount = excluded.amount
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	day := date.UTC().Format(dateLayout)
	for _, svc := range services {
		if _, err := stmt.ExecContext(ctx, day, svc.Name, svc.Amount); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListByDate returns the service rows recorded for a date, ordered by
// service name.
func (s *SpendStore) ListByDate(ctx context.Context, date time.Time) ([]spend.Service, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT service, amount FROM aws_spend
		WHERE date = ?
		ORDER BY service
	`, date.UTC().Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []spend.Service
	for rows.Next() {
		var svc spend.Service
		if err := rows.Scan(&svc.Name, &svc.Amount); err != nil {
			return nil, err
		}
		services = append(services, svc)
	}

	return services, rows.Err()
}

// Ensure interface compliance.
var _ ports.SpendStore = (*SpendStore)(nil)
