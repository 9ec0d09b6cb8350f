// Package usagerate converts tracked event counts into average daily
// credit consumption per tool.
package usagerate

import "fmt"

// Target is the tool and credit cost an event maps to.
type Target struct {
	Tool            string
	CreditsPerEvent float64
}

// Mapping is the static event to (tool, credits per event) table.
// It is read-only process-wide configuration, initialized once at startup.
type Mapping map[string]Target

// DefaultMapping is the deployed event mapping.
func DefaultMapping() Mapping {
	return Mapping{
		"search_performed": {Tool: "Tavily", CreditsPerEvent: 1},
		"lead_enriched":    {Tool: "FullEnrich", CreditsPerEvent: 2},
		"ai_workflow_run":  {Tool: "Anthropic", CreditsPerEvent: 5},
		"data_fetched":     {Tool: "Buyercaddy", CreditsPerEvent: 1},
	}
}

// DailyRates aggregates event counts into average daily credit usage per
// tool. Contributions from multiple events targeting the same tool sum.
// This is a PURE function.
//
// lookbackDays must be positive; callers validate the 1-90 range at the
// transport boundary.
func DailyRates(counts map[string]int, mapping Mapping, lookbackDays int) (map[string]float64, error) {
	if lookbackDays <= 0 {
		return nil, fmt.Errorf("lookback days must be positive, got %d", lookbackDays)
	}

	rates := make(map[string]float64, len(mapping))
	for event, target := range mapping {
		count := counts[event]
		rates[target.Tool] += float64(count) * target.CreditsPerEvent / float64(lookbackDays)
	}

	return rates, nil
}
