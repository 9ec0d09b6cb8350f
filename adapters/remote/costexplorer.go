package remote

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/operatorhq/creditwatch/domain/spend"
	"github.com/operatorhq/creditwatch/ports"
	"github.com/rs/zerolog"
)

// FallbackSpendServices is the mock infrastructure aggregate used when
// Cost Explorer cannot be reached. Totals 14100.
func FallbackSpendServices() []spend.Service {
	return []spend.Service{
		{Name: "EC2", Amount: 8200},
		{Name: "RDS", Amount: 4500},
		{Name: "Other", Amount: 1400},
	}
}

// vendorPrefix is stripped from service labels in Cost Explorer groups.
const vendorPrefix = "AWS::"

// CostExplorerSource fetches per-service cloud spend through a Cost
// Explorer proxy endpoint that mirrors the GetCostAndUsage response
// shape (grouped by SERVICE dimension).
type CostExplorerSource struct {
	client *Client
	budget float64
	logger zerolog.Logger
}

// CostExplorerConfig configures the Cost Explorer source.
type CostExplorerConfig struct {
	Endpoint string
	APIKey   string
	// MonthlyBudget is attached to every aggregate for percent-used
	// derivation.
	MonthlyBudget float64
	Timeout       time.Duration
	Logger        zerolog.Logger
}

// NewCostExplorerSource creates a Cost Explorer spend source.
func NewCostExplorerSource(cfg CostExplorerConfig) *CostExplorerSource {
	var client *Client
	if cfg.Endpoint != "" {
		client = NewClient(ClientConfig{
			BaseURL: cfg.Endpoint,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		})
	}

	return &CostExplorerSource{
		client: client,
		budget: cfg.MonthlyBudget,
		logger: cfg.Logger.With().Str("provider", "costexplorer").Logger(),
	}
}

type costResponse struct {
	ResultsByTime []struct {
		Groups []struct {
			Keys    []string `json:"Keys"`
			Metrics struct {
				AmortizedCost struct {
					Amount string `json:"Amount"`
				} `json:"AmortizedCost"`
			} `json:"Metrics"`
		} `json:"Groups"`
	} `json:"ResultsByTime"`
}

// FetchSpend fetches per-service spend over the last N days, degrading to
// the documented fallback aggregate on any failure.
func (s *CostExplorerSource) FetchSpend(ctx context.Context, days int) spend.Infrastructure {
	if s.client == nil {
		s.logger.Debug().Msg("not configured, using fallback aggregate")
		return s.fallback(days)
	}

	var resp costResponse
	path := fmt.Sprintf("/costs?days=%d&granularity=MONTHLY&group_by=SERVICE", days)
	if err := s.client.Request(ctx, "GET", path, nil, &resp); err != nil {
		s.logger.Warn().Err(err).Msg("fetch failed, using fallback aggregate")
		return s.fallback(days)
	}

	var services []spend.Service
	for _, result := range resp.ResultsByTime {
		for _, group := range result.Groups {
			if len(group.Keys) == 0 {
				continue
			}
			amount, err := strconv.ParseFloat(group.Metrics.AmortizedCost.Amount, 64)
			if err != nil {
				s.logger.Warn().Str("service", group.Keys[0]).Msg("unparseable amount, using fallback aggregate")
				return s.fallback(days)
			}
			services = append(services, spend.Service{
				Name:   strings.TrimPrefix(group.Keys[0], vendorPrefix),
				Amount: amount,
			})
		}
	}

	total := spend.Total(services)
	s.logger.Debug().Float64("total", total).Int("services", len(services)).Msg("fetched spend")
	return spend.New(total, services, s.budget, days)
}

func (s *CostExplorerSource) fallback(days int) spend.Infrastructure {
	services := FallbackSpendServices()
	return spend.New(spend.Total(services), services, s.budget, days)
}

// Ensure interface compliance.
var _ ports.SpendSource = (*CostExplorerSource)(nil)
