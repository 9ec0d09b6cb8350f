package config

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func TestHolderReload(t *testing.T) {
	path := writeConfigFile(t, "budget:\n  monthly: 15000\n")

	h, err := NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	defer h.Stop()

	if h.Get().Budget.Monthly != 15000 {
		t.Fatalf("initial budget = %v", h.Get().Budget.Monthly)
	}

	var notified *Config
	h.OnChange(func(cfg *Config) { notified = cfg })

	if err := os.WriteFile(path, []byte("budget:\n  monthly: 18000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if h.Get().Budget.Monthly != 18000 {
		t.Errorf("budget after reload = %v, want 18000", h.Get().Budget.Monthly)
	}
	if notified == nil || notified.Budget.Monthly != 18000 {
		t.Errorf("listener not notified with new config: %+v", notified)
	}
}

func TestHolderReloadKeepsOldConfigOnFailure(t *testing.T) {
	path := writeConfigFile(t, "budget:\n  monthly: 15000\n")

	h, err := NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	defer h.Stop()

	// Invalid config: reload must fail and keep the previous snapshot.
	if err := os.WriteFile(path, []byte("budget:\n  monthly: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := h.Reload(); err == nil {
		t.Fatal("expected reload error for invalid config")
	}

	if h.Get().Budget.Monthly != 15000 {
		t.Errorf("budget = %v, old config should survive", h.Get().Budget.Monthly)
	}
}

func TestHolderRejectsMissingFile(t *testing.T) {
	if _, err := NewHolder("/nonexistent/creditwatch.yaml", zerolog.Nop()); err == nil {
		t.Fatal("expected error for missing file")
	}
}
