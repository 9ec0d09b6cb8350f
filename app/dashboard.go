package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/operatorhq/creditwatch/adapters/metrics"
	"github.com/operatorhq/creditwatch/domain/alert"
	"github.com/operatorhq/creditwatch/domain/credit"
	"github.com/operatorhq/creditwatch/domain/spend"
	"github.com/operatorhq/creditwatch/ports"
)

const dateLayout = "2006-01-02"

// ToolView is the wire representation of one tool's credit position.
type ToolView struct {
	Name                string  `json:"name"`
	CreditsRemaining    float64 `json:"credits_remaining"`
	PercentRemaining    float64 `json:"percent_remaining"`
	DailyAvgUsage       float64 `json:"daily_avg_usage"`
	PredictedExhaustion *string `json:"predicted_exhaustion"`
	Status              string  `json:"status"`
	LastUpdated         string  `json:"last_updated"`
}

// DateRange is the storage window the dashboard covers.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Dashboard is the full dashboard payload.
type Dashboard struct {
	Tools        []ToolView           `json:"tools"`
	AWS          spend.Infrastructure `json:"aws"`
	Alerts       []alert.Alert        `json:"alerts"`
	AlertCount   int                  `json:"alert_count"`
	LastUpdated  string               `json:"last_updated"`
	FilteredDays int                  `json:"filtered_days"`
	DateRange    DateRange            `json:"date_range"`
}

// DashboardService assembles the billing dashboard from storage baselines,
// live credit sources and the usage estimator.
type DashboardService struct {
	tools   ports.ToolStore
	spend   ports.SpendSource
	sources map[string]ports.CreditSource
	usage   *UsageService
	history ports.UsageHistoryStore
	sink    ports.AlertSink
	clock   ports.Clock
	metrics *metrics.Collector
	log     zerolog.Logger

	lookbackDays int
}

// DashboardDeps contains dependencies for DashboardService.
type DashboardDeps struct {
	Tools   ports.ToolStore
	Spend   ports.SpendSource
	Sources []ports.CreditSource
	Usage   *UsageService
	History ports.UsageHistoryStore
	Sink    ports.AlertSink
	Clock   ports.Clock
	Metrics *metrics.Collector
	Log     zerolog.Logger
}

// DashboardConfig contains configuration for DashboardService.
type DashboardConfig struct {
	LookbackDays int
}

// NewDashboardService creates a dashboard service. Sources are keyed by
// tool name; tools without a registered source keep their stored credits.
func NewDashboardService(deps DashboardDeps, cfg DashboardConfig) *DashboardService {
	sources := make(map[string]ports.CreditSource, len(deps.Sources))
	for _, src := range deps.Sources {
		if src != nil {
			sources[src.Tool()] = src
		}
	}
	lookback := cfg.LookbackDays
	if lookback <= 0 {
		lookback = 7
	}
	return &DashboardService{
		tools:        deps.Tools,
		spend:        deps.Spend,
		sources:      sources,
		usage:        deps.Usage,
		history:      deps.History,
		sink:         deps.Sink,
		clock:        deps.Clock,
		metrics:      deps.Metrics,
		log:          deps.Log,
		lookbackDays: lookback,
	}
}

// Dashboard builds the dashboard for the last N days. A storage failure
// is fatal; upstream failures degrade to fallbacks inside the adapters
// and never fail the request.
func (s *DashboardService) Dashboard(ctx context.Context, days int) (Dashboard, error) {
	now := s.clock.Now()
	today := midnight(now)
	windowStart := today.AddDate(0, 0, -(days - 1))

	tools, err := s.tools.ListUpdatedSince(ctx, windowStart)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list tools: %w", err)
	}

	estimates := map[string]Estimate{}
	if s.usage != nil {
		estimates, err = s.usage.DailyUsageByTool(ctx, s.lookbackDays)
		if err != nil {
			return Dashboard{}, fmt.Errorf("estimate usage: %w", err)
		}
	}

	for i := range tools {
		t := &tools[i]
		if src, ok := s.sources[t.Name]; ok {
			res := src.FetchRemaining(ctx)
			t.CreditsRemaining = res.Credits
			if s.metrics != nil {
				s.metrics.RecordFetch(t.Name, res.Fallback, string(res.Reason))
			}
		}
		if est, ok := estimates[t.Name]; ok && est.DailyCredits > 0 {
			t.DailyAvgUsage = est.DailyCredits
		}
		t.Derive(today)
	}

	s.appendUsageAudit(ctx, today, tools, estimates)

	infra := s.spend.FetchSpend(ctx, days)
	alerts := alert.Generate(tools, infra, today)
	s.countAlerts(alerts)

	return Dashboard{
		Tools:        toolViews(tools),
		AWS:          infra,
		Alerts:       alerts,
		AlertCount:   len(alerts),
		LastUpdated:  now.UTC().Format(time.RFC3339),
		FilteredDays: days,
		DateRange: DateRange{
			From: windowStart.Format(dateLayout),
			To:   today.Format(dateLayout),
		},
	}, nil
}

// appendUsageAudit writes one usage_history row per tool that got a real
// usage estimate. Audit failures are logged and never fail the request.
func (s *DashboardService) appendUsageAudit(ctx context.Context, today time.Time, tools []credit.ToolState, estimates map[string]Estimate) {
	if s.history == nil {
		return
	}
	for _, t := range tools {
		est, ok := estimates[t.Name]
		if !ok || est.DailyCredits <= 0 {
			continue
		}
		rec := ports.UsageRecord{
			ID:              uuid.NewString(),
			ToolName:        t.Name,
			Date:            today,
			CreditsConsumed: est.DailyCredits,
			EventsCount:     est.Events,
		}
		if err := s.history.Append(ctx, rec); err != nil {
			s.log.Warn().Err(err).Str("tool", t.Name).Msg("usage audit append failed")
		}
	}
}

func (s *DashboardService) countAlerts(alerts []alert.Alert) {
	if s.metrics == nil || len(alerts) == 0 {
		return
	}
	bySeverity := make(map[string]int, 3)
	for _, a := range alerts {
		bySeverity[string(a.Severity)]++
	}
	s.metrics.RecordAlerts(bySeverity)
}

func toolViews(tools []credit.ToolState) []ToolView {
	views := make([]ToolView, 0, len(tools))
	for _, t := range tools {
		v := ToolView{
			Name:             t.Name,
			CreditsRemaining: t.CreditsRemaining,
			PercentRemaining: t.PercentRemaining,
			DailyAvgUsage:    t.DailyAvgUsage,
			Status:           string(t.Status),
			LastUpdated:      t.LastUpdated.UTC().Format(time.RFC3339),
		}
		if t.PredictedExhaustion != nil {
			d := t.PredictedExhaustion.Format(dateLayout)
			v.PredictedExhaustion = &d
		}
		views = append(views, v)
	}
	return views
}

func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
