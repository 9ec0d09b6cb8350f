package remote

import (
	"context"
	"time"

	"github.com/operatorhq/creditwatch/domain/credit"
	"github.com/operatorhq/creditwatch/ports"
	"github.com/rs/zerolog"
)

// FullEnrichFallback is the mock credit count returned when the usage
// API cannot be reached.
const FullEnrichFallback = 500.0

// FullEnrichSource fetches remaining enrichment credits.
// The response field chain (credits_remaining, balance, remaining) is
// speculative against the upstream contract; the first numeric match wins.
type FullEnrichSource struct {
	client *Client
	logger zerolog.Logger
}

// FullEnrichConfig configures the FullEnrich source.
type FullEnrichConfig struct {
	APIKey   string
	UsageURL string
	Timeout  time.Duration
	Logger   zerolog.Logger
}

// NewFullEnrichSource creates a FullEnrich usage source.
func NewFullEnrichSource(cfg FullEnrichConfig) *FullEnrichSource {
	var client *Client
	if cfg.APIKey != "" {
		client = NewClient(ClientConfig{
			BaseURL: cfg.UsageURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		})
	}

	return &FullEnrichSource{
		client: client,
		logger: cfg.Logger.With().Str("provider", "fullenrich").Logger(),
	}
}

// Tool returns the tool name this source serves.
func (s *FullEnrichSource) Tool() string { return "FullEnrich" }

// FetchRemaining fetches remaining credits, degrading to the fallback
// constant on any failure.
func (s *FullEnrichSource) FetchRemaining(ctx context.Context) credit.FetchResult {
	if s.client == nil {
		s.logger.Debug().Float64("fallback", FullEnrichFallback).Msg("not configured, using fallback")
		return credit.Degraded(FullEnrichFallback, credit.ReasonUnconfigured)
	}

	var body map[string]interface{}
	err := s.client.Request(ctx, "GET", "", nil, &body)
	if err != nil {
		reason := classify(err)
		s.logger.Warn().Err(err).Str("reason", string(reason)).Msg("fetch failed, using fallback")
		return credit.Degraded(FullEnrichFallback, reason)
	}

	remaining, ok := numberField(body, "credits_remaining", "balance", "remaining")
	if !ok {
		s.logger.Warn().Msg("no recognized balance field in response, using fallback")
		return credit.Degraded(FullEnrichFallback, credit.ReasonMalformed)
	}

	s.logger.Debug().Float64("remaining", remaining).Msg("fetched balance")
	return credit.Live(remaining)
}

// Ensure interface compliance.
var _ ports.CreditSource = (*FullEnrichSource)(nil)
