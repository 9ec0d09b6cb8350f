package remote

import (
	"context"
	"time"

	"github.com/operatorhq/creditwatch/domain/credit"
	"github.com/operatorhq/creditwatch/ports"
	"github.com/rs/zerolog"
)

// TavilyFallback is the mock credit count returned when the usage API
// cannot be reached.
const TavilyFallback = 2800.0

// TavilySource fetches remaining search credits from the Tavily /usage
// endpoint. Tavily reports usage against a plan limit rather than a
// balance, so remaining = plan limit - usage.
type TavilySource struct {
	client    *Client
	planLimit float64
	logger    zerolog.Logger
}

// TavilyConfig configures the Tavily source.
type TavilyConfig struct {
	APIKey  string
	BaseURL string
	// PlanLimit is the monthly credit allotment, used when the response
	// does not carry account.plan_limit.
	PlanLimit float64
	Timeout   time.Duration
	Logger    zerolog.Logger
}

// NewTavilySource creates a Tavily usage source.
func NewTavilySource(cfg TavilyConfig) *TavilySource {
	var client *Client
	if cfg.APIKey != "" {
		client = NewClient(ClientConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		})
	}

	planLimit := cfg.PlanLimit
	if planLimit == 0 {
		planLimit = 1000
	}

	return &TavilySource{
		client:    client,
		planLimit: planLimit,
		logger:    cfg.Logger.With().Str("provider", "tavily").Logger(),
	}
}

// Tool returns the tool name this source serves.
func (s *TavilySource) Tool() string { return "Tavily" }

type tavilyUsage struct {
	Account struct {
		PlanLimit *float64 `json:"plan_limit"`
	} `json:"account"`
	Key struct {
		Usage float64 `json:"usage"`
	} `json:"key"`
}

// FetchRemaining fetches remaining credits, degrading to the fallback
// constant on any failure.
func (s *TavilySource) FetchRemaining(ctx context.Context) credit.FetchResult {
	if s.client == nil {
		s.logger.Debug().Float64("fallback", TavilyFallback).Msg("not configured, using fallback")
		return credit.Degraded(TavilyFallback, credit.ReasonUnconfigured)
	}

	var body tavilyUsage
	err := s.client.Request(ctx, "GET", "/usage", nil, &body)
	if err != nil {
		reason := classify(err)
		s.logger.Warn().Err(err).Str("reason", string(reason)).Msg("fetch failed, using fallback")
		return credit.Degraded(TavilyFallback, reason)
	}

	limit := s.planLimit
	if body.Account.PlanLimit != nil {
		limit = *body.Account.PlanLimit
	}
	remaining := limit - body.Key.Usage

	s.logger.Debug().Float64("remaining", remaining).Float64("limit", limit).Msg("fetched usage")
	return credit.Live(remaining)
}

// Ensure interface compliance.
var _ ports.CreditSource = (*TavilySource)(nil)
