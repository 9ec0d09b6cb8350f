package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/operatorhq/creditwatch/adapters/metrics"
	"github.com/operatorhq/creditwatch/ports"
)

// defaultSnapshotWindowDays is the spend window when none is configured.
const defaultSnapshotWindowDays = 30

// SnapshotService records periodic infrastructure spend snapshots.
type SnapshotService struct {
	source     ports.SpendSource
	store      ports.SpendStore
	clock      ports.Clock
	metrics    *metrics.Collector
	log        zerolog.Logger
	windowDays int
}

// SnapshotDeps contains dependencies for SnapshotService.
type SnapshotDeps struct {
	Source  ports.SpendSource
	Store   ports.SpendStore
	Clock   ports.Clock
	Metrics *metrics.Collector
	Log     zerolog.Logger

	// WindowDays is the spend lookback per run. Zero means 30.
	WindowDays int
}

// NewSnapshotService creates a snapshot service.
func NewSnapshotService(deps SnapshotDeps) *SnapshotService {
	windowDays := deps.WindowDays
	if windowDays <= 0 {
		windowDays = defaultSnapshotWindowDays
	}
	return &SnapshotService{
		source:     deps.Source,
		store:      deps.Store,
		clock:      deps.Clock,
		metrics:    deps.Metrics,
		log:        deps.Log,
		windowDays: windowDays,
	}
}

// Run fetches the current spend window and upserts one row per service
// for today's date. The store writes all rows in one transaction, so a
// failed run leaves no partial snapshot.
func (s *SnapshotService) Run(ctx context.Context) error {
	if s.metrics != nil {
		s.metrics.SnapshotRuns.Inc()
	}

	infra := s.source.FetchSpend(ctx, s.windowDays)
	date := midnight(s.clock.Now())

	if err := s.store.RecordSnapshot(ctx, date, infra.Services); err != nil {
		if s.metrics != nil {
			s.metrics.SnapshotFailures.Inc()
		}
		s.log.Error().Err(err).Str("date", date.Format(dateLayout)).Msg("spend snapshot failed")
		return fmt.Errorf("record snapshot: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SnapshotServices.Set(float64(len(infra.Services)))
	}
	s.log.Info().
		Str("date", date.Format(dateLayout)).
		Int("services", len(infra.Services)).
		Float64("total", infra.MonthlySpend).
		Msg("spend snapshot recorded")
	return nil
}
