package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/operatorhq/creditwatch/ports"
	"github.com/rs/zerolog"
)

// Mock event counts used when PostHog is unreachable or unconfigured.
const (
	PostHogSearchFallback  = 500
	PostHogDefaultFallback = 100
)

// searchEvent is the one event with a distinct fallback count.
const searchEvent = "search_performed"

// PostHogSource counts tracked events with a HogQL query against the
// PostHog query API.
type PostHogSource struct {
	client    *Client
	projectID string
	logger    zerolog.Logger
}

// PostHogConfig configures the PostHog source.
type PostHogConfig struct {
	Host      string
	ProjectID string
	APIKey    string // personal API key
	Timeout   time.Duration
	Logger    zerolog.Logger
}

// NewPostHogSource creates a PostHog event counter.
func NewPostHogSource(cfg PostHogConfig) *PostHogSource {
	var client *Client
	if cfg.APIKey != "" && cfg.ProjectID != "" {
		client = NewClient(ClientConfig{
			BaseURL: cfg.Host,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		})
	}

	return &PostHogSource{
		client:    client,
		projectID: cfg.ProjectID,
		logger:    cfg.Logger.With().Str("provider", "posthog").Logger(),
	}
}

type hogQLRequest struct {
	Query hogQLQuery `json:"query"`
}

type hogQLQuery struct {
	Kind  string `json:"kind"`
	Query string `json:"query"`
}

type hogQLResponse struct {
	Results [][]interface{} `json:"results"`
}

// Count counts occurrences of an event over the last N days, degrading to
// the fixed mock count on any failure.
func (s *PostHogSource) Count(ctx context.Context, event string, days int) int {
	fallback := fallbackCount(event)

	if s.client == nil {
		s.logger.Debug().Str("event", event).Int("fallback", fallback).Msg("not configured, using mock count")
		return fallback
	}

	query := fmt.Sprintf(`
    SELECT count() as cnt
    FROM events
    WHERE event = '%s'
      AND timestamp >= now() - INTERVAL '%d DAY'
    `, event, days)

	req := hogQLRequest{Query: hogQLQuery{Kind: "HogQLQuery", Query: query}}

	var resp hogQLResponse
	err := s.client.Request(ctx, "POST", "/api/projects/"+s.projectID+"/query/", req, &resp)
	if err != nil {
		s.logger.Warn().Err(err).Str("event", event).Msg("query failed, using mock count")
		return fallback
	}

	if len(resp.Results) == 0 || len(resp.Results[0]) == 0 {
		s.logger.Warn().Str("event", event).Msg("empty result set, using mock count")
		return fallback
	}

	count, ok := resp.Results[0][0].(float64)
	if !ok {
		s.logger.Warn().Str("event", event).Msg("unexpected result shape, using mock count")
		return fallback
	}

	s.logger.Debug().Str("event", event).Int("days", days).Int("count", int(count)).Msg("counted events")
	return int(count)
}

func fallbackCount(event string) int {
	if event == searchEvent {
		return PostHogSearchFallback
	}
	return PostHogDefaultFallback
}

// Ensure interface compliance.
var _ ports.EventCounter = (*PostHogSource)(nil)
