package remote

import (
	"context"
	"time"

	"github.com/operatorhq/creditwatch/domain/credit"
	"github.com/operatorhq/creditwatch/ports"
	"github.com/rs/zerolog"
)

// AnthropicFallback is the mock balance returned when the organization
// billing API cannot be reached.
const AnthropicFallback = 42350.0

const anthropicVersion = "2023-06-01"

// AnthropicSource fetches the remaining credit balance from the Anthropic
// Organization Billing API. Requires an admin key (sk-ant-admin-...) and
// an organization ID; without both it reports the fallback immediately.
type AnthropicSource struct {
	client *Client
	orgID  string
	logger zerolog.Logger
}

// AnthropicConfig configures the Anthropic source.
type AnthropicConfig struct {
	AdminKey string
	OrgID    string
	BaseURL  string
	Timeout  time.Duration
	Logger   zerolog.Logger
}

// NewAnthropicSource creates an Anthropic billing source.
func NewAnthropicSource(cfg AnthropicConfig) *AnthropicSource {
	var client *Client
	if cfg.AdminKey != "" {
		client = NewClient(ClientConfig{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Headers: map[string]string{
				"x-api-key":         cfg.AdminKey,
				"anthropic-version": anthropicVersion,
			},
		})
	}

	return &AnthropicSource{
		client: client,
		orgID:  cfg.OrgID,
		logger: cfg.Logger.With().Str("provider", "anthropic").Logger(),
	}
}

// Tool returns the tool name this source serves.
func (s *AnthropicSource) Tool() string { return "Anthropic" }

// FetchRemaining fetches the remaining balance, degrading to the fallback
// constant on any failure.
func (s *AnthropicSource) FetchRemaining(ctx context.Context) credit.FetchResult {
	if s.client == nil || s.orgID == "" {
		s.logger.Debug().Float64("fallback", AnthropicFallback).Msg("not configured, using fallback")
		return credit.Degraded(AnthropicFallback, credit.ReasonUnconfigured)
	}

	var body map[string]interface{}
	err := s.client.Request(ctx, "GET", "/v1/organizations/"+s.orgID+"/billing/credits", nil, &body)
	if err != nil {
		reason := classify(err)
		s.logger.Warn().Err(err).Str("reason", string(reason)).Msg("fetch failed, using fallback")
		return credit.Degraded(AnthropicFallback, reason)
	}

	remaining, ok := numberField(body, "credits_remaining", "balance", "remaining")
	if !ok {
		s.logger.Warn().Msg("no recognized balance field in response, using fallback")
		return credit.Degraded(AnthropicFallback, credit.ReasonMalformed)
	}

	s.logger.Debug().Float64("remaining", remaining).Msg("fetched balance")
	return credit.Live(remaining)
}

// Ensure interface compliance.
var _ ports.CreditSource = (*AnthropicSource)(nil)
