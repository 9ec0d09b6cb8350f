// Package spend models infrastructure spend against a monthly budget.
package spend

import "math"

// Service is one cloud service line item.
type Service struct {
	Name   string  `json:"service"`
	Amount float64 `json:"amount"`
}

// Infrastructure is the aggregated cloud spend for one reporting window.
// PercentUsed is always derived from MonthlySpend and MonthlyBudget.
type Infrastructure struct {
	MonthlySpend  float64   `json:"monthly_spend"`
	MonthlyBudget float64   `json:"monthly_budget"`
	PercentUsed   float64   `json:"percent_used"`
	Services      []Service `json:"services"`
	WindowDays    int       `json:"filtered_days"`
}

// New builds an Infrastructure aggregate, deriving PercentUsed.
// Zero spend yields zero percent used regardless of budget.
// This is a PURE function.
func New(monthlySpend float64, services []Service, monthlyBudget float64, windowDays int) Infrastructure {
	var percent float64
	if monthlySpend > 0 && monthlyBudget > 0 {
		percent = round1(monthlySpend / monthlyBudget * 100)
	}

	return Infrastructure{
		MonthlySpend:  monthlySpend,
		MonthlyBudget: monthlyBudget,
		PercentUsed:   percent,
		Services:      services,
		WindowDays:    windowDays,
	}
}

// Total sums service amounts.
// This is a PURE function.
func Total(services []Service) float64 {
	var total float64
	for _, s := range services {
		total += s.Amount
	}
	return total
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
