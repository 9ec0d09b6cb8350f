package spend_test

import (
	"testing"

	"github.com/operatorhq/creditwatch/domain/spend"
)

func TestNew_PercentUsed(t *testing.T) {
	tests := []struct {
		name    string
		total   float64
		budget  float64
		percent float64
	}{
		{"over budget", 14100, 12000, 117.5},
		{"under budget", 6000, 12000, 50.0},
		{"zero spend", 0, 12000, 0},
		{"rounds to one decimal", 10000, 12000, 83.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			infra := spend.New(tt.total, nil, tt.budget, 30)
			if infra.PercentUsed != tt.percent {
				t.Errorf("PercentUsed = %v, want %v", infra.PercentUsed, tt.percent)
			}
		})
	}
}

func TestNew_KeepsServiceOrder(t *testing.T) {
	services := []spend.Service{
		{Name: "EC2", Amount: 8200},
		{Name: "RDS", Amount: 4500},
		{Name: "Other", Amount: 1400},
	}

	infra := spend.New(spend.Total(services), services, 12000, 30)

	if infra.MonthlySpend != 14100 {
		t.Errorf("MonthlySpend = %v, want 14100", infra.MonthlySpend)
	}
	for i, want := range []string{"EC2", "RDS", "Other"} {
		if infra.Services[i].Name != want {
			t.Errorf("Services[%d] = %s, want %s", i, infra.Services[i].Name, want)
		}
	}
}

func TestTotal_Empty(t *testing.T) {
	if got := spend.Total(nil); got != 0 {
		t.Errorf("Total(nil) = %v, want 0", got)
	}
}
