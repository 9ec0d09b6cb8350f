// Package alert derives the ranked alert list from tool credit states
// and the infrastructure spend summary.
package alert

// Severity tags an alert. Rank orders the final list.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityAlert    Severity = "alert"
	SeverityWarning  Severity = "warning"
)

// Rank returns the sort rank of a severity (critical first).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityAlert:
		return 1
	case SeverityWarning:
		return 2
	}
	return 99
}

// Alert is one active alert. Alerts are ephemeral: generated per request
// and never persisted.
type Alert struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Affected string   `json:"affected"`
}
