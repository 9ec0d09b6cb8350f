// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/operatorhq/creditwatch/adapters/clock"
	"github.com/operatorhq/creditwatch/adapters/email"
	"github.com/operatorhq/creditwatch/adapters/metrics"
	"github.com/operatorhq/creditwatch/adapters/remote"
	"github.com/operatorhq/creditwatch/adapters/sqlite"
	"github.com/operatorhq/creditwatch/app"
	"github.com/operatorhq/creditwatch/config"
	"github.com/operatorhq/creditwatch/domain/usagerate"
	"github.com/operatorhq/creditwatch/ports"
	"github.com/operatorhq/creditwatch/web"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector

	Dashboard *app.DashboardService
	Snapshot  *app.SnapshotService

	holder *config.Holder
	cron   *cron.Cron
}

// Options provides optional knobs for application initialization.
type Options struct {
	// ConfigPath is the YAML config file. Empty means env-only operation.
	ConfigPath string
	// Version is reported by the /version endpoint.
	Version string
	// DisableMetrics suppresses the Prometheus collector regardless of
	// config. One-shot commands use this to avoid duplicate registration.
	DisableMetrics bool
}

// New loads configuration and wires the full application.
func New(opts Options) (*App, error) {
	cfg, err := config.LoadWithFallback(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	logger := setupLogger(cfg.Logging)

	a := &App{
		Logger: logger,
		Config: cfg,
	}

	if cfg.Metrics.Enabled && !opts.DisableMetrics {
		a.Metrics = metrics.New()
	}

	if err := a.initDatabase(); err != nil {
		return nil, err
	}
	a.initServices()
	a.initHTTPServer(opts.Version)

	if opts.ConfigPath != "" {
		a.initConfigWatcher(opts.ConfigPath)
	}

	return a, nil
}

func (a *App) initDatabase() error {
	db, err := sqlite.Open(a.Config.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("migrate database: %w", err)
	}
	a.Logger.Info().Str("dsn", a.Config.Database.DSN).Msg("database ready")
	a.DB = db
	return nil
}

func (a *App) initServices() {
	cfg := a.Config
	p := cfg.Providers

	spendSource := remote.NewCostExplorerSource(remote.CostExplorerConfig{
		Endpoint:      p.CostExplorer.Endpoint,
		APIKey:        p.CostExplorer.APIKey,
		MonthlyBudget: cfg.Budget.Monthly,
		Timeout:       p.CostExplorer.Timeout,
		Logger:        a.Logger,
	})

	counter := remote.NewPostHogSource(remote.PostHogConfig{
		Host:      p.PostHog.Host,
		ProjectID: p.PostHog.ProjectID,
		APIKey:    p.PostHog.APIKey,
		Timeout:   p.PostHog.Timeout,
		Logger:    a.Logger,
	})

	// Anthropic is registered alongside the live-override sources so a
	// configured admin key refreshes its stored baseline too.
	sources := []ports.CreditSource{
		remote.NewTavilySource(remote.TavilyConfig{
			APIKey:    p.Tavily.APIKey,
			BaseURL:   p.Tavily.BaseURL,
			PlanLimit: p.Tavily.PlanLimit,
			Timeout:   p.Tavily.Timeout,
			Logger:    a.Logger,
		}),
		remote.NewFullEnrichSource(remote.FullEnrichConfig{
			APIKey:   p.FullEnrich.APIKey,
			UsageURL: p.FullEnrich.UsageURL,
			Timeout:  p.FullEnrich.Timeout,
			Logger:   a.Logger,
		}),
	}
	if p.Anthropic.AdminKey != "" && p.Anthropic.OrgID != "" {
		sources = append(sources, remote.NewAnthropicSource(remote.AnthropicConfig{
			AdminKey: p.Anthropic.AdminKey,
			OrgID:    p.Anthropic.OrgID,
			BaseURL:  p.Anthropic.BaseURL,
			Timeout:  p.Anthropic.Timeout,
			Logger:   a.Logger,
		}))
	}

	realClock := clock.Real{}

	a.Dashboard = app.NewDashboardService(app.DashboardDeps{
		Tools:   sqlite.NewToolStore(a.DB),
		Spend:   spendSource,
		Sources: sources,
		Usage:   app.NewUsageService(counter, eventMapping(cfg.Usage.Events)),
		History: sqlite.NewUsageHistoryStore(a.DB),
		Sink:    email.NewConsoleSink(a.Logger),
		Clock:   realClock,
		Metrics: a.Metrics,
		Log:     a.Logger,
	}, app.DashboardConfig{
		LookbackDays: cfg.Usage.LookbackDays,
	})

	a.Snapshot = app.NewSnapshotService(app.SnapshotDeps{
		Source:     spendSource,
		Store:      sqlite.NewSpendStore(a.DB),
		Clock:      realClock,
		Metrics:    a.Metrics,
		Log:        a.Logger,
		WindowDays: cfg.Snapshot.WindowDays,
	})
}

func (a *App) initHTTPServer(version string) {
	handler := web.NewHandler(web.Deps{
		Dashboard: a.Dashboard,
		Logger:    a.Logger,
		Metrics:   a.Metrics,
		Version:   version,
	})

	a.HTTPServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port),
		Handler:      handler.Router(),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// initConfigWatcher hot-reloads the config file. Only log level changes
// take effect without restart; everything else is logged for the operator.
func (a *App) initConfigWatcher(path string) {
	holder, err := config.NewHolder(path, a.Logger)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("config watch disabled")
		return
	}
	holder.OnChange(func(cfg *config.Config) {
		if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			zerolog.SetGlobalLevel(level)
		}
	})
	if err := holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config watch disabled")
		return
	}
	holder.WatchSignals()
	a.holder = holder
}

// startSnapshotJob schedules the periodic spend snapshot.
func (a *App) startSnapshotJob() error {
	if !a.Config.Snapshot.Enabled {
		a.Logger.Info().Msg("snapshot job disabled")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(a.Config.Snapshot.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := a.Snapshot.Run(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("scheduled snapshot failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule snapshot %q: %w", a.Config.Snapshot.Schedule, err)
	}
	c.Start()
	a.cron = c
	a.Logger.Info().Str("schedule", a.Config.Snapshot.Schedule).Msg("snapshot job scheduled")
	return nil
}

// Run starts the server and the snapshot job, then blocks until SIGINT,
// SIGTERM or a server error.
func (a *App) Run() error {
	if err := a.startSnapshotJob(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.cron != nil {
		<-a.cron.Stop().Done()
	}

	if a.holder != nil {
		a.holder.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// Close releases resources for one-shot commands that never call Run.
func (a *App) Close() {
	if a.holder != nil {
		a.holder.Stop()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// eventMapping converts configured event rules into the estimator mapping.
// No configured events means the built-in default mapping.
func eventMapping(events []config.EventConfig) usagerate.Mapping {
	if len(events) == 0 {
		return usagerate.DefaultMapping()
	}
	m := make(usagerate.Mapping, len(events))
	for _, ev := range events {
		m[ev.Event] = usagerate.Target{Tool: ev.Tool, CreditsPerEvent: ev.CreditsPerEvent}
	}
	return m
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
