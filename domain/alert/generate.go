package alert

import (
	"fmt"
	"sort"
	"time"

	"github.com/operatorhq/creditwatch/domain/credit"
	"github.com/operatorhq/creditwatch/domain/spend"
)

// AffectedInfra is the affected label for infrastructure spend alerts.
const AffectedInfra = "AWS"

// exhaustionHorizonDays is how far ahead a predicted exhaustion still
// raises an alert.
const exhaustionHorizonDays = 5

// Generate scans all tool states and the infra spend summary and emits
// the ranked alert list. A single tool can emit both a credit alert and
// an exhaustion alert. The result is stably sorted by severity rank, so
// ties keep generation order: tools in input order, each tool's alerts
// in rule order, the infra alert last before sorting.
// This is a PURE function.
func Generate(tools []credit.ToolState, infra spend.Infrastructure, today time.Time) []Alert {
	var alerts []Alert

	for _, tool := range tools {
		switch {
		case tool.PercentRemaining < 10:
			alerts = append(alerts, Alert{
				Severity: SeverityCritical,
				Message:  fmt.Sprintf("%s credits critically low (<10%% remaining)", tool.Name),
				Affected: tool.Name,
			})
		case tool.PercentRemaining < 20:
			alerts = append(alerts, Alert{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("%s credits low (<20%% remaining)", tool.Name),
				Affected: tool.Name,
			})
		}

		// Exhaustion within the horizon. A missing prediction is skipped,
		// not an error.
		if tool.PredictedExhaustion != nil {
			daysLeft := daysBetween(today, *tool.PredictedExhaustion)
			if daysLeft >= 0 && daysLeft <= exhaustionHorizonDays {
				alerts = append(alerts, Alert{
					Severity: SeverityAlert,
					Message:  fmt.Sprintf("%s predicted to exhaust in %d days", tool.Name, daysLeft),
					Affected: tool.Name,
				})
			}
		}
	}

	if infra.PercentUsed > 90 {
		alerts = append(alerts, Alert{
			Severity: SeverityAlert,
			Message:  fmt.Sprintf("AWS budget exceeded 90%% (%.1f%%)", infra.PercentUsed),
			Affected: AffectedInfra,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.Rank() < alerts[j].Severity.Rank()
	})

	return alerts
}

// daysBetween counts whole calendar days from a to b, ignoring clock time.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
