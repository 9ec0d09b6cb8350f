// Package app provides application services that orchestrate domain logic.
package app

import (
	"context"

	"github.com/operatorhq/creditwatch/domain/usagerate"
	"github.com/operatorhq/creditwatch/ports"
)

// UsageService estimates average daily credit consumption per tool from
// tracked analytics events.
type UsageService struct {
	events  ports.EventCounter
	mapping usagerate.Mapping
}

// NewUsageService creates a usage estimator. A nil counter disables
// estimation; DailyUsageByTool then returns an empty map.
func NewUsageService(events ports.EventCounter, mapping usagerate.Mapping) *UsageService {
	if mapping == nil {
		mapping = usagerate.DefaultMapping()
	}
	return &UsageService{events: events, mapping: mapping}
}

// Estimate is the daily usage computed for one tool, with the raw event
// volume that produced it.
type Estimate struct {
	DailyCredits float64
	Events       int
}

// DailyUsageByTool counts each mapped event over the lookback window and
// aggregates the counts into per-tool daily credit rates. Counter failures
// degrade inside the counter, so the only error is an invalid window.
func (s *UsageService) DailyUsageByTool(ctx context.Context, lookbackDays int) (map[string]Estimate, error) {
	if s.events == nil {
		return map[string]Estimate{}, nil
	}

	counts := make(map[string]int, len(s.mapping))
	for event := range s.mapping {
		counts[event] = s.events.Count(ctx, event, lookbackDays)
	}

	rates, err := usagerate.DailyRates(counts, s.mapping, lookbackDays)
	if err != nil {
		return nil, err
	}

	estimates := make(map[string]Estimate, len(rates))
	for tool, rate := range rates {
		estimates[tool] = Estimate{DailyCredits: rate}
	}
	for event, target := range s.mapping {
		est := estimates[target.Tool]
		est.Events += counts[event]
		estimates[target.Tool] = est
	}

	return estimates, nil
}
