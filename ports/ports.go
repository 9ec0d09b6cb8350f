// Package ports defines the interfaces between the core and its adapters.
// Adapters implement these; the app layer depends only on the interfaces.
package ports

import (
	"context"
	"time"

	"github.com/operatorhq/creditwatch/domain/alert"
	"github.com/operatorhq/creditwatch/domain/credit"
	"github.com/operatorhq/creditwatch/domain/spend"
)

// Clock provides the current time. Injected so date-dependent derivations
// are testable.
type Clock interface {
	Now() time.Time
}

// CreditSource fetches remaining credits for one tracked tool.
// FetchRemaining never fails: on any upstream problem it returns the
// provider's documented fallback constant with the classified reason.
type CreditSource interface {
	// Tool returns the tool name this source serves.
	Tool() string

	FetchRemaining(ctx context.Context) credit.FetchResult
}

// SpendSource fetches the infrastructure spend aggregate, grouped by
// service. Like CreditSource it degrades to a documented fallback
// aggregate instead of failing.
type SpendSource interface {
	FetchSpend(ctx context.Context, days int) spend.Infrastructure
}

// EventCounter counts occurrences of a tracked analytics event over the
// last N days. Degrades to a fixed mock count on failure.
type EventCounter interface {
	Count(ctx context.Context, event string, days int) int
}

// ToolStore persists baseline tool credit rows.
type ToolStore interface {
	// ListUpdatedSince returns tools whose last_updated is on or after
	// the given date, ordered by name.
	ListUpdatedSince(ctx context.Context, since time.Time) ([]credit.ToolState, error)

	// Upsert inserts or replaces a tool row keyed by name.
	Upsert(ctx context.Context, state credit.ToolState) error
}

// SpendStore persists the periodic infrastructure spend snapshots.
type SpendStore interface {
	// RecordSnapshot upserts one row per service keyed by (date, service)
	// in a single transaction. Partial writes roll back.
	RecordSnapshot(ctx context.Context, date time.Time, services []spend.Service) error

	// ListByDate returns the service rows recorded for a date.
	ListByDate(ctx context.Context, date time.Time) ([]spend.Service, error)
}

// UsageRecord is one write-only audit entry of computed daily usage.
type UsageRecord struct {
	ID              string
	ToolName        string
	Date            time.Time
	CreditsConsumed float64
	EventsCount     int
}

// UsageHistoryStore appends usage audit rows. The core never reads them.
type UsageHistoryStore interface {
	Append(ctx context.Context, rec UsageRecord) error
}

// AlertDigest is a rendered critical-alert notification.
type AlertDigest struct {
	Subject string
	Body    string
	Alerts  []alert.Alert
}

// AlertSink delivers critical alert digests. Delivery failures are logged
// by callers, never surfaced to the request.
type AlertSink interface {
	Deliver(ctx context.Context, digest AlertDigest) error
}
