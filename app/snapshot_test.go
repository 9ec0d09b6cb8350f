package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/operatorhq/creditwatch/domain/spend"
)

func TestSnapshotRun(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 5, 0, 0, time.UTC)
	services := []spend.Service{
		{Name: "EC2", Amount: 8200},
		{Name: "RDS", Amount: 4500},
	}
	source := &fakeSpendSource{infra: spend.New(12700, services, 12000, 0)}
	store := &fakeSpendStore{}

	s := NewSnapshotService(SnapshotDeps{
		Source: source,
		Store:  store,
		Clock:  &fakeClock{now: now},
		Log:    zerolog.Nop(),
	})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if source.gotDays != 30 {
		t.Errorf("spend window = %d, want 30", source.gotDays)
	}
	if !store.gotDate.Equal(date(2025, 6, 15)) {
		t.Errorf("snapshot date = %v, want 2025-06-15 midnight", store.gotDate)
	}
	if len(store.gotServices) != 2 || store.gotServices[0].Name != "EC2" {
		t.Errorf("snapshot services = %+v", store.gotServices)
	}
}

func TestSnapshotRunStoreFailure(t *testing.T) {
	s := NewSnapshotService(SnapshotDeps{
		Source: &fakeSpendSource{infra: spend.New(100, []spend.Service{{Name: "EC2", Amount: 100}}, 12000, 0)},
		Store:  &fakeSpendStore{err: errors.New("database is locked")},
		Clock:  &fakeClock{now: time.Now()},
		Log:    zerolog.Nop(),
	})

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error from store failure")
	}
}
