// Package credit holds the tool credit model and the risk derivation logic.
package credit

import (
	"fmt"
	"time"
)

// Status is the risk tier derived from percent remaining.
type Status string

const (
	StatusSafe     Status = "safe"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// ToolState is the credit position of one tracked tool.
// Status and PredictedExhaustion are always derived in memory from the
// other fields, never trusted from storage.
type ToolState struct {
	Name                string
	CreditsRemaining    float64
	PercentRemaining    float64 // not clamped: inconsistent upstream data may exceed 0-100
	DailyAvgUsage       float64
	PredictedExhaustion *time.Time
	Status              Status
	LastUpdated         time.Time
}

// NewToolState validates and constructs a tool state.
// Status is derived from percent remaining.
func NewToolState(name string, creditsRemaining, percentRemaining, dailyAvgUsage float64, lastUpdated time.Time) (ToolState, error) {
	if name == "" {
		return ToolState{}, fmt.Errorf("tool name is required")
	}
	if creditsRemaining < 0 {
		return ToolState{}, fmt.Errorf("credits remaining must be non-negative, got %v", creditsRemaining)
	}
	if dailyAvgUsage < 0 {
		return ToolState{}, fmt.Errorf("daily usage must be non-negative, got %v", dailyAvgUsage)
	}

	return ToolState{
		Name:             name,
		CreditsRemaining: creditsRemaining,
		PercentRemaining: percentRemaining,
		DailyAvgUsage:    dailyAvgUsage,
		Status:           RiskStatus(percentRemaining),
		LastUpdated:      lastUpdated,
	}, nil
}

// Derive recomputes the status and predicted exhaustion from the current
// credits and usage. Call after overriding either with live values.
func (s *ToolState) Derive(today time.Time) {
	s.Status = RiskStatus(s.PercentRemaining)
	s.PredictedExhaustion = ExhaustionDate(s.CreditsRemaining, s.DailyAvgUsage, today)
}

// FailureReason classifies why a credit fetch degraded to its fallback.
type FailureReason string

const (
	ReasonNone         FailureReason = ""
	ReasonUnconfigured FailureReason = "unconfigured"
	ReasonUnauthorized FailureReason = "unauthorized"
	ReasonTimeout      FailureReason = "timeout"
	ReasonMalformed    FailureReason = "malformed"
	ReasonUpstream     FailureReason = "upstream"
)

// FetchResult is the outcome of a credit fetch. A fetch never fails:
// on any failure Credits carries the provider's documented fallback
// constant and Fallback is true with the classified reason.
type FetchResult struct {
	Credits  float64
	Fallback bool
	Reason   FailureReason
}

// Live returns a successful fetch result.
func Live(credits float64) FetchResult {
	return FetchResult{Credits: credits}
}

// Degraded returns a fallback fetch result with the classified reason.
func Degraded(fallback float64, reason FailureReason) FetchResult {
	return FetchResult{Credits: fallback, Fallback: true, Reason: reason}
}
