package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/operatorhq/creditwatch/domain/alert"
	"github.com/operatorhq/creditwatch/domain/credit"
	"github.com/operatorhq/creditwatch/domain/spend"
	"github.com/operatorhq/creditwatch/domain/usagerate"
	"github.com/operatorhq/creditwatch/ports"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustTool(t *testing.T, name string, credits, percent, daily float64, updated time.Time) credit.ToolState {
	t.Helper()
	state, err := credit.NewToolState(name, credits, percent, daily, updated)
	if err != nil {
		t.Fatalf("NewToolState(%s): %v", name, err)
	}
	return state
}

func TestDashboardAssembly(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	updated := time.Date(2025, 6, 14, 8, 0, 0, 0, time.UTC)

	store := &fakeToolStore{tools: []credit.ToolState{
		mustTool(t, "Anthropic", 900, 9, 12, updated),
		mustTool(t, "Tavily", 2500, 50, 20, updated),
	}}
	tavily := &fakeCreditSource{tool: "Tavily", result: credit.Live(2800)}
	spendSrc := &fakeSpendSource{infra: spend.New(11500, []spend.Service{
		{Name: "EC2", Amount: 11500},
	}, 12000, 0)}
	counter := &fakeEventCounter{counts: map[string]int{"search_performed": 700}}
	history := &fakeHistoryStore{}

	s := NewDashboardService(DashboardDeps{
		Tools:   store,
		Spend:   spendSrc,
		Sources: []ports.CreditSource{tavily},
		Usage:   NewUsageService(counter, usagerate.DefaultMapping()),
		History: history,
		Clock:   &fakeClock{now: now},
		Log:     zerolog.Nop(),
	}, DashboardConfig{LookbackDays: 7})

	dash, err := s.Dashboard(context.Background(), 30)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	wantSince := date(2025, 5, 17)
	if !store.gotSince.Equal(wantSince) {
		t.Errorf("window start = %v, want %v", store.gotSince, wantSince)
	}
	if spendSrc.gotDays != 30 {
		t.Errorf("spend window = %d, want 30", spendSrc.gotDays)
	}
	if dash.FilteredDays != 30 {
		t.Errorf("filtered_days = %d, want 30", dash.FilteredDays)
	}
	if dash.DateRange.From != "2025-05-17" || dash.DateRange.To != "2025-06-15" {
		t.Errorf("date_range = %+v", dash.DateRange)
	}
	if dash.LastUpdated != "2025-06-15T10:30:00Z" {
		t.Errorf("last_updated = %q", dash.LastUpdated)
	}

	if len(dash.Tools) != 2 {
		t.Fatalf("tools = %d, want 2", len(dash.Tools))
	}

	// Anthropic has no live source and no event volume: stored values stand.
	anthropic := dash.Tools[0]
	if anthropic.CreditsRemaining != 900 || anthropic.DailyAvgUsage != 12 {
		t.Errorf("anthropic = %+v, want stored 900 credits / 12 daily", anthropic)
	}
	if anthropic.Status != "critical" {
		t.Errorf("anthropic status = %q, want critical", anthropic.Status)
	}

	// Tavily gets live credits and the event-derived daily rate (700/7 = 100).
	tv := dash.Tools[1]
	if tavily.calls != 1 {
		t.Errorf("tavily source calls = %d, want 1", tavily.calls)
	}
	if tv.CreditsRemaining != 2800 {
		t.Errorf("tavily credits = %v, want live 2800", tv.CreditsRemaining)
	}
	if tv.DailyAvgUsage != 100 {
		t.Errorf("tavily daily usage = %v, want 100", tv.DailyAvgUsage)
	}
	// 2800 / 100 = 28 days exactly.
	if tv.PredictedExhaustion == nil || *tv.PredictedExhaustion != "2025-07-13" {
		t.Errorf("tavily exhaustion = %v, want 2025-07-13", tv.PredictedExhaustion)
	}

	if dash.AWS.PercentUsed != 95.8 {
		t.Errorf("percent used = %v, want 95.8", dash.AWS.PercentUsed)
	}
	wantAlerts := []alert.Alert{
		{Severity: alert.SeverityCritical, Message: "Anthropic credits critically low (<10% remaining)", Affected: "Anthropic"},
		{Severity: alert.SeverityAlert, Message: "AWS budget exceeded 90% (95.8%)", Affected: "AWS"},
	}
	if len(dash.Alerts) != len(wantAlerts) || dash.AlertCount != len(wantAlerts) {
		t.Fatalf("alerts = %+v, want %d", dash.Alerts, len(wantAlerts))
	}
	for i, want := range wantAlerts {
		if dash.Alerts[i] != want {
			t.Errorf("alert[%d] = %+v, want %+v", i, dash.Alerts[i], want)
		}
	}
}

func TestDashboardUsageAudit(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	updated := now.Add(-2 * time.Hour)

	store := &fakeToolStore{tools: []credit.ToolState{
		mustTool(t, "Anthropic", 900, 9, 12, updated),
		mustTool(t, "Tavily", 2500, 50, 20, updated),
	}}
	counter := &fakeEventCounter{counts: map[string]int{"search_performed": 700}}
	history := &fakeHistoryStore{}

	s := NewDashboardService(DashboardDeps{
		Tools:   store,
		Spend:   &fakeSpendSource{},
		Usage:   NewUsageService(counter, usagerate.DefaultMapping()),
		History: history,
		Clock:   &fakeClock{now: now},
		Log:     zerolog.Nop(),
	}, DashboardConfig{LookbackDays: 7})

	if _, err := s.Dashboard(context.Background(), 7); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	// Only Tavily has event volume; Anthropic's zero estimate is not audited.
	if len(history.records) != 1 {
		t.Fatalf("audit records = %d, want 1", len(history.records))
	}
	rec := history.records[0]
	if rec.ToolName != "Tavily" || rec.CreditsConsumed != 100 || rec.EventsCount != 700 {
		t.Errorf("audit record = %+v", rec)
	}
	if rec.ID == "" {
		t.Error("audit record has empty id")
	}
	if !rec.Date.Equal(date(2025, 6, 15)) {
		t.Errorf("audit date = %v, want 2025-06-15", rec.Date)
	}
}

func TestDashboardAuditFailureIsNotFatal(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	store := &fakeToolStore{tools: []credit.ToolState{
		mustTool(t, "Tavily", 2500, 50, 20, now),
	}}

	s := NewDashboardService(DashboardDeps{
		Tools:   store,
		Spend:   &fakeSpendSource{},
		Usage:   NewUsageService(&fakeEventCounter{counts: map[string]int{"search_performed": 70}}, nil),
		History: &fakeHistoryStore{err: errors.New("disk full")},
		Clock:   &fakeClock{now: now},
		Log:     zerolog.Nop(),
	}, DashboardConfig{})

	if _, err := s.Dashboard(context.Background(), 7); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
}

func TestDashboardStorageFailureIsFatal(t *testing.T) {
	s := NewDashboardService(DashboardDeps{
		Tools: &fakeToolStore{err: errors.New("database is locked")},
		Spend: &fakeSpendSource{},
		Clock: &fakeClock{now: time.Now()},
		Log:   zerolog.Nop(),
	}, DashboardConfig{})

	_, err := s.Dashboard(context.Background(), 7)
	if err == nil {
		t.Fatal("expected error from storage failure")
	}
	if !strings.Contains(err.Error(), "list tools") {
		t.Errorf("error = %v, want list tools context", err)
	}
}
