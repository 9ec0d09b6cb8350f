// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Budget    BudgetConfig    `yaml:"budget"`
	Providers ProvidersConfig `yaml:"providers"`
	Usage     UsageConfig     `yaml:"usage"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig configures the database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" (postgres planned)
	DSN    string `yaml:"dsn"`
}

// BudgetConfig configures the infrastructure spend budget.
type BudgetConfig struct {
	Monthly float64 `yaml:"monthly"` // dollars
}

// ProvidersConfig holds per-provider credentials and endpoints.
// A provider with no credential is treated as unconfigured: its adapter
// degrades to the documented fallback value and never fails a request.
type ProvidersConfig struct {
	Anthropic    AnthropicConfig    `yaml:"anthropic"`
	Tavily       TavilyConfig       `yaml:"tavily"`
	FullEnrich   FullEnrichConfig   `yaml:"fullenrich"`
	PostHog      PostHogConfig      `yaml:"posthog"`
	CostExplorer CostExplorerConfig `yaml:"cost_explorer"`
}

// AnthropicConfig configures the Anthropic organization billing client.
type AnthropicConfig struct {
	AdminKey string        `yaml:"admin_key,omitempty"`
	OrgID    string        `yaml:"org_id,omitempty"`
	BaseURL  string        `yaml:"base_url,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// TavilyConfig configures the Tavily usage client.
type TavilyConfig struct {
	APIKey    string        `yaml:"api_key,omitempty"`
	BaseURL   string        `yaml:"base_url,omitempty"`
	PlanLimit float64       `yaml:"plan_limit,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// FullEnrichConfig configures the FullEnrich usage client.
type FullEnrichConfig struct {
	APIKey   string        `yaml:"api_key,omitempty"`
	UsageURL string        `yaml:"usage_url,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// PostHogConfig configures the PostHog event-count client.
type PostHogConfig struct {
	Host      string        `yaml:"host,omitempty"`
	ProjectID string        `yaml:"project_id,omitempty"`
	APIKey    string        `yaml:"api_key,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// CostExplorerConfig configures the cloud cost-explorer client.
type CostExplorerConfig struct {
	Endpoint string        `yaml:"endpoint,omitempty"`
	APIKey   string        `yaml:"api_key,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// UsageConfig configures the usage rate estimator.
type UsageConfig struct {
	LookbackDays int           `yaml:"lookback_days"`
	Events       []EventConfig `yaml:"events,omitempty"`
}

// EventConfig maps a tracked analytics event to a tool and credit cost.
type EventConfig struct {
	Event           string  `yaml:"event"`
	Tool            string  `yaml:"tool"`
	CreditsPerEvent float64 `yaml:"credits_per_event"`
}

// SnapshotConfig configures the scheduled spend snapshot job.
type SnapshotConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Schedule   string `yaml:"schedule"`    // cron expression
	WindowDays int    `yaml:"window_days"` // spend lookback
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(&cfg)

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// This is useful for Docker deployments where no config file is needed.
//
// Environment variables:
//
//	CREDITWATCH_DATABASE_DSN        - Database path (default: creditwatch.db)
//	CREDITWATCH_SERVER_HOST         - Server host (default: 0.0.0.0)
//	CREDITWATCH_SERVER_PORT         - Server port (default: 8080)
//	CREDITWATCH_BUDGET_MONTHLY      - Monthly infra budget in dollars
//	CREDITWATCH_ANTHROPIC_ADMIN_KEY - Anthropic admin key (sk-ant-admin-...)
//	CREDITWATCH_ANTHROPIC_ORG_ID    - Anthropic organization ID
//	CREDITWATCH_TAVILY_API_KEY      - Tavily API key
//	CREDITWATCH_FULLENRICH_API_KEY  - FullEnrich API key
//	CREDITWATCH_POSTHOG_API_KEY     - PostHog personal API key
//	CREDITWATCH_POSTHOG_PROJECT_ID  - PostHog project ID
//	CREDITWATCH_COSTEXPLORER_URL    - Cost Explorer proxy endpoint
//	CREDITWATCH_LOG_LEVEL           - Log level: debug, info, warn, error
//	CREDITWATCH_LOG_FORMAT          - Log format: json or console
//	CREDITWATCH_METRICS_ENABLED     - Enable /metrics endpoint
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment variables.
// Every provider credential is optional, so env-only operation always works.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return LoadFromEnv()
}

// applyEnvOverrides applies CREDITWATCH_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Server configuration
	if v := os.Getenv("CREDITWATCH_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("CREDITWATCH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CREDITWATCH_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("CREDITWATCH_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// Database configuration
	if v := os.Getenv("CREDITWATCH_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("CREDITWATCH_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// Budget
	if v := os.Getenv("CREDITWATCH_BUDGET_MONTHLY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Budget.Monthly = f
		}
	}

	// Providers
	if v := os.Getenv("CREDITWATCH_ANTHROPIC_ADMIN_KEY"); v != "" {
		cfg.Providers.Anthropic.AdminKey = v
	}
	if v := os.Getenv("CREDITWATCH_ANTHROPIC_ORG_ID"); v != "" {
		cfg.Providers.Anthropic.OrgID = v
	}
	if v := os.Getenv("CREDITWATCH_TAVILY_API_KEY"); v != "" {
		cfg.Providers.Tavily.APIKey = v
	}
	if v := os.Getenv("CREDITWATCH_FULLENRICH_API_KEY"); v != "" {
		cfg.Providers.FullEnrich.APIKey = v
	}
	if v := os.Getenv("CREDITWATCH_FULLENRICH_USAGE_URL"); v != "" {
		cfg.Providers.FullEnrich.UsageURL = v
	}
	if v := os.Getenv("CREDITWATCH_POSTHOG_HOST"); v != "" {
		cfg.Providers.PostHog.Host = v
	}
	if v := os.Getenv("CREDITWATCH_POSTHOG_PROJECT_ID"); v != "" {
		cfg.Providers.PostHog.ProjectID = v
	}
	if v := os.Getenv("CREDITWATCH_POSTHOG_API_KEY"); v != "" {
		cfg.Providers.PostHog.APIKey = v
	}
	if v := os.Getenv("CREDITWATCH_COSTEXPLORER_URL"); v != "" {
		cfg.Providers.CostExplorer.Endpoint = v
	}
	if v := os.Getenv("CREDITWATCH_COSTEXPLORER_API_KEY"); v != "" {
		cfg.Providers.CostExplorer.APIKey = v
	}

	// Usage configuration
	if v := os.Getenv("CREDITWATCH_USAGE_LOOKBACK_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Usage.LookbackDays = n
		}
	}

	// Snapshot configuration
	if v := os.Getenv("CREDITWATCH_SNAPSHOT_ENABLED"); v != "" {
		cfg.Snapshot.Enabled = parseBool(v)
	}
	if v := os.Getenv("CREDITWATCH_SNAPSHOT_SCHEDULE"); v != "" {
		cfg.Snapshot.Schedule = v
	}

	// Logging configuration
	if v := os.Getenv("CREDITWATCH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CREDITWATCH_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("CREDITWATCH_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "creditwatch.db"
	}

	if cfg.Budget.Monthly == 0 {
		cfg.Budget.Monthly = 12000
	}

	if cfg.Providers.Anthropic.BaseURL == "" {
		cfg.Providers.Anthropic.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Providers.Anthropic.Timeout == 0 {
		cfg.Providers.Anthropic.Timeout = 10 * time.Second
	}
	if cfg.Providers.Tavily.BaseURL == "" {
		cfg.Providers.Tavily.BaseURL = "https://api.tavily.com"
	}
	if cfg.Providers.Tavily.PlanLimit == 0 {
		cfg.Providers.Tavily.PlanLimit = 1000
	}
	if cfg.Providers.Tavily.Timeout == 0 {
		cfg.Providers.Tavily.Timeout = 8 * time.Second
	}
	if cfg.Providers.FullEnrich.UsageURL == "" {
		cfg.Providers.FullEnrich.UsageURL = "https://api.fullenrich.com/v1/usage"
	}
	if cfg.Providers.FullEnrich.Timeout == 0 {
		cfg.Providers.FullEnrich.Timeout = 8 * time.Second
	}
	if cfg.Providers.PostHog.Host == "" {
		cfg.Providers.PostHog.Host = "https://us.i.posthog.com"
	}
	if cfg.Providers.PostHog.Timeout == 0 {
		cfg.Providers.PostHog.Timeout = 12 * time.Second
	}
	if cfg.Providers.CostExplorer.Timeout == 0 {
		cfg.Providers.CostExplorer.Timeout = 15 * time.Second
	}

	if cfg.Usage.LookbackDays == 0 {
		cfg.Usage.LookbackDays = 7
	}

	if cfg.Snapshot.Schedule == "" {
		cfg.Snapshot.Schedule = "@hourly"
	}
	if cfg.Snapshot.WindowDays == 0 {
		cfg.Snapshot.WindowDays = 30
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", cfg.Server.Port)
	}

	validDrivers := map[string]bool{"sqlite": true}
	if !validDrivers[cfg.Database.Driver] {
		return fmt.Errorf("database.driver must be 'sqlite', got %q", cfg.Database.Driver)
	}

	if cfg.Budget.Monthly <= 0 {
		return fmt.Errorf("budget.monthly must be positive, got %v", cfg.Budget.Monthly)
	}

	if cfg.Usage.LookbackDays < 1 || cfg.Usage.LookbackDays > 90 {
		return fmt.Errorf("usage.lookback_days must be 1-90, got %d", cfg.Usage.LookbackDays)
	}

	for i, ev := range cfg.Usage.Events {
		if ev.Event == "" {
			return fmt.Errorf("usage.events[%d].event is required", i)
		}
		if ev.Tool == "" {
			return fmt.Errorf("usage.events[%d].tool is required", i)
		}
		if ev.CreditsPerEvent <= 0 {
			return fmt.Errorf("usage.events[%d].credits_per_event must be positive", i)
		}
	}

	if cfg.Snapshot.WindowDays < 1 || cfg.Snapshot.WindowDays > 90 {
		return fmt.Errorf("snapshot.window_days must be 1-90, got %d", cfg.Snapshot.WindowDays)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	return nil
}
