package sqlite_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/operatorhq/creditwatch/adapters/sqlite"
	"github.com/operatorhq/creditwatch/domain/credit"
	"github.com/operatorhq/creditwatch/domain/spend"
	"github.com/operatorhq/creditwatch/ports"
)

func setupTestDB(t *testing.T) (*sqlite.DB, func()) {
	t.Helper()

	// Create temp file for test database
	f, err := os.CreateTemp("", "creditwatch-test-*.db")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	path := f.Name()
	f.Close()

	db, err := sqlite.Open(path)
	if err != nil {
		os.Remove(path)
		t.Fatalf("open database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		os.Remove(path)
		t.Fatalf("migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(path)
	}

	return db, cleanup
}

// -----------------------------------------------------------------------------
// ToolStore Tests
// -----------------------------------------------------------------------------

func TestToolStore_UpsertAndList(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewToolStore(db)
	ctx := context.Background()
	now := time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC)

	state, err := credit.NewToolState("Tavily", 2800, 28, 1200, now)
	if err != nil {
		t.Fatalf("new tool state: %v", err)
	}

	if err := store.Upsert(ctx, state); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	tools, err := store.ListUpdatedSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(tools) != 1 {
		t.Fatalf("len(tools) = %d, want 1", len(tools))
	}
	got := tools[0]
	if got.Name != "Tavily" {
		t.Errorf("Name = %s, want Tavily", got.Name)
	}
	if got.CreditsRemaining != 2800 {
		t.Errorf("CreditsRemaining = %v, want 2800", got.CreditsRemaining)
	}
	if got.PercentRemaining != 28 {
		t.Errorf("PercentRemaining = %v, want 28", got.PercentRemaining)
	}
	if got.Status != credit.StatusWarning {
		t.Errorf("Status = %s, want warning", got.Status)
	}
}

func TestToolStore_UpsertReplaces(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewToolStore(db)
	ctx := context.Background()
	now := time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC)

	first, _ := credit.NewToolState("Anthropic", 42350, 85.5, 15420, now)
	second, _ := credit.NewToolState("Anthropic", 40000, 80, 16000, now.Add(time.Hour))

	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("upsert first: %v", err)
	}
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("upsert second: %v", err)
	}

	tools, err := store.ListUpdatedSince(ctx, now.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(tools) != 1 {
		t.Fatalf("len(tools) = %d, want 1 (replaced, not duplicated)", len(tools))
	}
	if tools[0].CreditsRemaining != 40000 {
		t.Errorf("CreditsRemaining = %v, want 40000", tools[0].CreditsRemaining)
	}
}

func TestToolStore_WindowFilter(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewToolStore(db)
	ctx := context.Background()
	now := time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC)

	fresh, _ := credit.NewToolState("Fresh", 100, 50, 1, now)
	stale, _ := credit.NewToolState("Stale", 100, 50, 1, now.AddDate(0, 0, -60))

	if err := store.Upsert(ctx, fresh); err != nil {
		t.Fatalf("upsert fresh: %v", err)
	}
	if err := store.Upsert(ctx, stale); err != nil {
		t.Fatalf("upsert stale: %v", err)
	}

	tools, err := store.ListUpdatedSince(ctx, now.AddDate(0, 0, -29))
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(tools) != 1 || tools[0].Name != "Fresh" {
		t.Errorf("tools = %+v, want only Fresh", tools)
	}
}

func TestToolStore_ListOrderedByName(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewToolStore(db)
	ctx := context.Background()
	now := time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC)

	for _, name := range []string{"Tavily", "Anthropic", "FullEnrich"} {
		state, _ := credit.NewToolState(name, 100, 50, 1, now)
		if err := store.Upsert(ctx, state); err != nil {
			t.Fatalf("upsert %s: %v", name, err)
		}
	}

	tools, err := store.ListUpdatedSince(ctx, now.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []string{"Anthropic", "FullEnrich", "Tavily"}
	for i, name := range want {
		if tools[i].Name != name {
			t.Errorf("tools[%d] = %s, want %s", i, tools[i].Name, name)
		}
	}
}

// -----------------------------------------------------------------------------
// SpendStore Tests
// -----------------------------------------------------------------------------

func TestSpendStore_RecordSnapshotUpserts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewSpendStore(db)
	ctx := context.Background()
	day := time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC)

	first := []spend.Service{
		{Name: "EC2", Amount: 8000},
		{Name: "RDS", Amount: 4000},
	}
	if err := store.RecordSnapshot(ctx, day, first); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}

	// Same day, updated amounts: rows replaced, not duplicated.
	second := []spend.Service{
		{Name: "EC2", Amount: 8200},
		{Name: "RDS", Amount: 4500},
		{Name: "Other", Amount: 1400},
	}
	if err := store.RecordSnapshot(ctx, day, second); err != nil {
		t.Fatalf("second snapshot: %v", err)
	}

	services, err := store.ListByDate(ctx, day)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(services) != 3 {
		t.Fatalf("len(services) = %d, want 3", len(services))
	}
	if services[0].Name != "EC2" || services[0].Amount != 8200 {
		t.Errorf("services[0] = %+v, want EC2 8200", services[0])
	}
}

func TestSpendStore_DatesIsolated(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewSpendStore(db)
	ctx := context.Background()
	day1 := time.Date(2026, 2, 18, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC)

	if err := store.RecordSnapshot(ctx, day1, []spend.Service{{Name: "EC2", Amount: 100}}); err != nil {
		t.Fatalf("snapshot day1: %v", err)
	}
	if err := store.RecordSnapshot(ctx, day2, []spend.Service{{Name: "EC2", Amount: 200}}); err != nil {
		t.Fatalf("snapshot day2: %v", err)
	}

	services, err := store.ListByDate(ctx, day1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(services) != 1 || services[0].Amount != 100 {
		t.Errorf("services = %+v, want single EC2 100", services)
	}
}

func TestSpendStore_EmptySnapshotIsNoop(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewSpendStore(db)
	ctx := context.Background()
	day := time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC)

	if err := store.RecordSnapshot(ctx, day, nil); err != nil {
		t.Fatalf("empty snapshot: %v", err)
	}

	services, err := store.ListByDate(ctx, day)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(services) != 0 {
		t.Errorf("len(services) = %d, want 0", len(services))
	}
}

// -----------------------------------------------------------------------------
// UsageHistoryStore Tests
// -----------------------------------------------------------------------------

func TestUsageHistoryStore_Append(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewUsageHistoryStore(db)
	ctx := context.Background()

	rec := ports.UsageRecord{
		ID:              "rec-1",
		ToolName:        "Tavily",
		Date:            time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC),
		CreditsConsumed: 100,
		EventsCount:     700,
	}

	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	// Audit log is write-only through the port; verify through SQL.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM usage_history WHERE tool_name = 'Tavily'").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}
