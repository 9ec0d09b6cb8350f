package credit

import "time"

// RiskStatus maps percent remaining to a risk tier.
// This is a PURE function.
//
//	>30        safe
//	>10, <=30  warning
//	<=10       critical
//
// Note this boundary is independent of the alert generator's <20% warning
// rule: the status field and the alert list serve different outputs and
// the thresholds are deliberately kept separate.
func RiskStatus(percentRemaining float64) Status {
	switch {
	case percentRemaining > 30:
		return StatusSafe
	case percentRemaining > 10:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// ExhaustionDate predicts when credits run out at the current daily rate.
// Returns nil when dailyUsage <= 0 (unbounded runway).
// This is a PURE function.
//
// Fractional days round up to the next full day. The 0.999 epsilon keeps
// exact divisions (and values within floating rounding error of an
// integer) from gaining an extra day.
func ExhaustionDate(creditsRemaining, dailyUsage float64, today time.Time) *time.Time {
	if dailyUsage <= 0 {
		return nil
	}

	daysLeft := creditsRemaining / dailyUsage
	d := today.AddDate(0, 0, int(daysLeft+0.999))
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	return &d
}
