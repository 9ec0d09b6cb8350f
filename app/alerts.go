package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/operatorhq/creditwatch/domain/alert"
	"github.com/operatorhq/creditwatch/ports"
)

// alertsWindowDays is the storage window the alerts endpoint evaluates.
const alertsWindowDays = 30

// AlertsResponse is the alerts endpoint payload.
type AlertsResponse struct {
	Alerts    []alert.Alert `json:"alerts"`
	Count     int           `json:"count"`
	Timestamp string        `json:"timestamp"`
}

// Alerts evaluates the current alert set over a 30 day window. When any
// critical alert exists a digest is delivered through the alert sink;
// delivery failures are logged, never surfaced.
func (s *DashboardService) Alerts(ctx context.Context, criticalOnly bool) (AlertsResponse, error) {
	dash, err := s.Dashboard(ctx, alertsWindowDays)
	if err != nil {
		return AlertsResponse{}, err
	}

	var criticals []alert.Alert
	for _, a := range dash.Alerts {
		if a.Severity == alert.SeverityCritical {
			criticals = append(criticals, a)
		}
	}

	if len(criticals) > 0 && s.sink != nil {
		digest := renderDigest(criticals, s.clock.Now())
		if err := s.sink.Deliver(ctx, digest); err != nil {
			s.log.Warn().Err(err).Int("alerts", len(criticals)).Msg("alert digest delivery failed")
		}
	}

	filtered := dash.Alerts
	if criticalOnly {
		filtered = criticals
	}
	if filtered == nil {
		filtered = []alert.Alert{}
	}

	return AlertsResponse{
		Alerts:    filtered,
		Count:     len(filtered),
		Timestamp: s.clock.Now().UTC().Format(time.RFC3339),
	}, nil
}

// renderDigest formats the critical alert notification.
func renderDigest(criticals []alert.Alert, now time.Time) ports.AlertDigest {
	rule := strings.Repeat("=", 50)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nCRITICAL BILLING ALERTS\n%s\n", rule, rule)
	for _, a := range criticals {
		fmt.Fprintf(&b, "- %s (affected: %s)\n", a.Message, a.Affected)
	}
	b.WriteString(rule + "\n")

	return ports.AlertDigest{
		Subject: fmt.Sprintf("CRITICAL Billing Alert - %d Issues (%s)", len(criticals), now.UTC().Format(dateLayout)),
		Body:    b.String(),
		Alerts:  criticals,
	}
}
