package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/nuray/setpoint/internal/app"
	"github.com/nuray/setpoint/internal/adapters/cache"
	"github.com/nuray/setpoint/internal/config"
	"github.com/nuray/setpoint/internal/domain/enrich"
	"github.com/nuray/setpoint/internal/domain/resolve"
	"github.com/nuray/setpoint/internal/fixtures"
	"github.com/nuray/setpoint/pkg/logger"
	"github.com/nuray/setpoint/pkg/metrics"
)

// Metrics server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// standingsRole is the reference pool every participant slot resolves
// against in the default layout.
const standingsRole = "standings"

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logging: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Expose Prometheus metrics while the run is in flight.
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, log, cfg.MetricsAddr)
	}

	if err := run(ctx, log, cfg); err != nil {
		log.Error(ctx, "run failed", logger.Error(err))
		os.Exit(1)
	}
}

// run executes one full reconciliation pass: reconcile the observed
// snapshot into the store, enrich upcoming records against the
// reference pools, attach odds, apply final results, and persist.
func run(ctx context.Context, log logger.Logger, cfg *config.Config) error {
	svc := service.New(
		service.WithLogger(log),
		service.WithThreshold(cfg.Threshold),
		service.WithTokenOverlap(cfg.TokenOverlapMin, cfg.TokenMinLength),
		service.WithTimeWindow(time.Duration(cfg.TimeWindowMinutes)*time.Minute),
		service.WithDelimiters(cfg.Delimiters),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithBackupRetention(cfg.BackupRetention),
		service.WithEnrichStatus(cfg.EnrichStatus),
		service.WithCache(cache.NewInMemoryCache(cache.WithMaxSize(cfg.CacheSize))),
	)

	// Resume from the persisted store when one exists.
	if _, err := os.Stat(cfg.StorePath); err == nil {
		if err := svc.Store().Load(ctx, cfg.StorePath); err != nil {
			return err
		}
		log.Info(ctx, "loaded persisted store", logger.String("path", cfg.StorePath), logger.Int("records", svc.Store().Len(ctx)))
	}

	snapshot, err := fixtures.LoadSnapshot(cfg.SnapshotPath)
	if err != nil {
		return err
	}
	if _, err := svc.Reconcile(ctx, snapshot); err != nil {
		return err
	}

	pools, err := fixtures.LoadPools(cfg.PoolsPath)
	if err != nil {
		return err
	}
	for role, pool := range pools {
		svc.RegisterPool(role, pool)
	}

	fields := defaultFields()
	rules := defaultRules()

	if _, err := svc.EnrichPass(ctx, fields, rules); err != nil {
		return err
	}

	if cfg.FixturesPath != "" {
		fixturePool, err := fixtures.LoadFixtures(cfg.FixturesPath)
		if err != nil {
			return err
		}
		if _, err := svc.AttachOdds(ctx, fixturePool); err != nil {
			return err
		}
	}

	if cfg.ResultsPath != "" {
		rows, err := fixtures.LoadResults(cfg.ResultsPath)
		if err != nil {
			return err
		}
		if _, err := svc.ResolveResults(ctx, rows); err != nil {
			return err
		}
	}

	if _, err := svc.Audit(ctx, fields, rules); err != nil {
		return err
	}

	if err := svc.Store().Save(ctx, cfg.StorePath); err != nil {
		return err
	}
	log.Info(ctx, "store persisted", logger.String("path", cfg.StorePath), logger.Int("records", svc.Store().Len(ctx)))
	return nil
}

// defaultFields maps the snapshot participant attributes onto
// resolution slots. Composite doubles values split into additional
// positions automatically.
func defaultFields() []service.CompositeField {
	return []service.CompositeField{
		{Attr: service.AttrHome, Slots: []resolve.Slot{
			{Name: "A1", Role: standingsRole},
			{Name: "A2", Role: standingsRole},
		}},
		{Attr: service.AttrAway, Slots: []resolve.Slot{
			{Name: "B1", Role: standingsRole},
			{Name: "B2", Role: standingsRole},
		}},
	}
}

// defaultRules injects rank and points from the standings pool into
// each resolved slot. Rank is the completeness gate.
func defaultRules() []enrich.Rule {
	rules := make([]enrich.Rule, 0, 8)
	for _, slot := range []string{"A1", "A2", "B1", "B2"} {
		rules = append(rules,
			enrich.Rule{Slot: slot, SourceAttr: "rank", TargetField: "rank", Numeric: true, Required: slot == "A1" || slot == "B1"},
			enrich.Rule{Slot: slot, SourceAttr: "points", TargetField: "points", Numeric: true},
		)
	}
	return rules
}

// serveMetrics exposes the Prometheus registry until ctx is done.
func serveMetrics(ctx context.Context, log logger.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "metrics server failed", logger.Error(err))
	}
}
