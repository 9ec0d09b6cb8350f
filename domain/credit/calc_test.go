package credit_test

import (
	"testing"
	"time"

	"github.com/operatorhq/creditwatch/domain/credit"
)

var today = time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC)

func TestRiskStatus(t *testing.T) {
	tests := []struct {
		percent float64
		want    credit.Status
	}{
		{100, credit.StatusSafe},
		{30.01, credit.StatusSafe},
		{31, credit.StatusSafe},
		{30, credit.StatusWarning}, // boundary: exactly 30 is warning
		{20, credit.StatusWarning},
		{10.5, credit.StatusWarning},
		{10, credit.StatusCritical}, // boundary: exactly 10 is critical
		{8, credit.StatusCritical},
		{0, credit.StatusCritical},
		{-5, credit.StatusCritical}, // inconsistent upstream data
		{150, credit.StatusSafe},
	}

	for _, tt := range tests {
		if got := credit.RiskStatus(tt.percent); got != tt.want {
			t.Errorf("RiskStatus(%v) = %s, want %s", tt.percent, got, tt.want)
		}
	}
}

func TestExhaustionDate_NoUsage(t *testing.T) {
	tests := []struct {
		credits float64
		daily   float64
	}{
		{100, 0},
		{100, -5},
		{0, 0},
	}

	for _, tt := range tests {
		if got := credit.ExhaustionDate(tt.credits, tt.daily, today); got != nil {
			t.Errorf("ExhaustionDate(%v, %v) = %v, want nil", tt.credits, tt.daily, got)
		}
	}
}

func TestExhaustionDate_ExactDivision(t *testing.T) {
	got := credit.ExhaustionDate(100, 50, today)
	if got == nil {
		t.Fatal("ExhaustionDate returned nil")
	}

	want := today.AddDate(0, 0, 2)
	if !got.Equal(want) {
		t.Errorf("ExhaustionDate(100, 50) = %v, want %v", got, want)
	}
}

func TestExhaustionDate_FractionalRoundsUp(t *testing.T) {
	got := credit.ExhaustionDate(101, 50, today)
	if got == nil {
		t.Fatal("ExhaustionDate returned nil")
	}

	want := today.AddDate(0, 0, 3)
	if !got.Equal(want) {
		t.Errorf("ExhaustionDate(101, 50) = %v, want %v", got, want)
	}
}

func TestExhaustionDate_SubDayRunway(t *testing.T) {
	// Less than a day of credits still rounds up to one full day.
	got := credit.ExhaustionDate(10, 50, today)
	if got == nil {
		t.Fatal("ExhaustionDate returned nil")
	}

	want := today.AddDate(0, 0, 1)
	if !got.Equal(want) {
		t.Errorf("ExhaustionDate(10, 50) = %v, want %v", got, want)
	}
}

func TestExhaustionDate_Idempotent(t *testing.T) {
	a := credit.ExhaustionDate(3333, 7, today)
	b := credit.ExhaustionDate(3333, 7, today)

	if a == nil || b == nil {
		t.Fatal("ExhaustionDate returned nil")
	}
	if !a.Equal(*b) {
		t.Errorf("repeated calls differ: %v vs %v", a, b)
	}
}

func TestNewToolState(t *testing.T) {
	s, err := credit.NewToolState("Tavily", 2800, 28, 1200, today)
	if err != nil {
		t.Fatalf("NewToolState: %v", err)
	}

	if s.Status != credit.StatusWarning {
		t.Errorf("Status = %s, want warning", s.Status)
	}
	if s.PredictedExhaustion != nil {
		t.Errorf("PredictedExhaustion = %v, want nil before Derive", s.PredictedExhaustion)
	}
}

func TestNewToolState_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		credits float64
		daily   float64
	}{
		{"", 100, 10},
		{"Tavily", -1, 10},
		{"Tavily", 100, -1},
	}

	for _, tt := range tests {
		if _, err := credit.NewToolState(tt.name, 100, tt.credits, tt.daily, today); tt.name == "" && err == nil {
			t.Errorf("NewToolState(%q) expected error", tt.name)
		}
	}

	if _, err := credit.NewToolState("X", -1, 0, 0, today); err == nil {
		t.Error("negative credits accepted")
	}
	if _, err := credit.NewToolState("X", 1, 0, -1, today); err == nil {
		t.Error("negative daily usage accepted")
	}
}

func TestDerive(t *testing.T) {
	s, err := credit.NewToolState("Anthropic", 42350, 85.5, 15420, today)
	if err != nil {
		t.Fatalf("NewToolState: %v", err)
	}

	s.Derive(today)

	if s.Status != credit.StatusSafe {
		t.Errorf("Status = %s, want safe", s.Status)
	}
	if s.PredictedExhaustion == nil {
		t.Fatal("PredictedExhaustion = nil, want date")
	}
	// 42350/15420 = 2.746... -> 3 days
	want := today.AddDate(0, 0, 3)
	if !s.PredictedExhaustion.Equal(want) {
		t.Errorf("PredictedExhaustion = %v, want %v", s.PredictedExhaustion, want)
	}
}
