// Package main provides the entry point for the decision engine.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/betmaster/internal/aggregate"
	"github.com/yourusername/betmaster/internal/confidence"
	"github.com/yourusername/betmaster/internal/config"
	"github.com/yourusername/betmaster/internal/database"
	"github.com/yourusername/betmaster/internal/engine"
	"github.com/yourusername/betmaster/internal/execution"
	"github.com/yourusername/betmaster/internal/feed"
	"github.com/yourusername/betmaster/internal/gate"
	"github.com/yourusername/betmaster/internal/health"
	applogger "github.com/yourusername/betmaster/internal/logger"
	"github.com/yourusername/betmaster/internal/market"
	"github.com/yourusername/betmaster/internal/metrics"
	"github.com/yourusername/betmaster/internal/ratings"
	"github.com/yourusername/betmaster/internal/repository"
	"github.com/yourusername/betmaster/internal/scheduler"
	"github.com/yourusername/betmaster/internal/scoreline"
	"github.com/yourusername/betmaster/internal/staking"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "betmaster-engine",
	Short: "Live football odds prediction and decision engine",
	Long: `BetMaster aggregates odds from multiple sources, prices scorelines
with a live Poisson model, and sizes positive-edge bets behind a safety gate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("betmaster-engine %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog := applogger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"mode":        cfg.Execution.Mode,
		"version":     Version,
	}).Info("BetMaster decision engine starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	appLog.Info("Database connection established")

	betRepo := repository.NewPostgresBetRecordRepository(db)
	decisionRepo := repository.NewPostgresDecisionRepository(db)

	sources, streams := buildSources(ctx, cfg, appLog)
	if len(sources) == 0 {
		return fmt.Errorf("no enabled odds sources configured")
	}

	ratingsProvider := ratings.NewHTTPProvider(cfg.Ratings, appLog)
	defer ratingsProvider.Close()

	executor := execution.NewExecutor(cfg.Execution, appLog)
	appLog.WithField("mode", executor.Mode()).Info("Executor initialized")

	deps := engine.Deps{
		Collector:    feed.NewCollector(sources, cfg.SourceTimeout(), appLog),
		Aggregator:   aggregate.NewAggregator(cfg.KickoffTolerance(), cfg.Engine.PriceDivergenceTolerance, appLog),
		Ratings:      ratingsProvider,
		Model:        scoreline.NewModel(cfg.Engine, cfg.Model, appLog),
		Evaluator:    market.NewEvaluator(appLog),
		Scorer:       confidence.NewScorer(cfg.Confidence),
		Sizer:        staking.NewSizer(cfg.Staking),
		Gate:         gate.NewGate(cfg.Gate, appLog),
		BetRepo:      betRepo,
		DecisionRepo: decisionRepo,
		Executor:     executor,
	}

	breaker := engine.NewCircuitBreaker(engine.DefaultCircuitBreakerConfig(), appLog)
	eng := engine.New(cfg, deps, breaker, appLog)

	metricsServer := startMetricsServer(cfg, appLog)

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        strconv.Itoa(cfg.Health.Port),
		Logger:      appLog,
		DB:          db,
		Engine:      eng,
	})
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	sched := scheduler.NewScheduler(eng, appLog)
	if err := sched.ScheduleRefresh(cfg.RefreshInterval()); err != nil {
		return err
	}
	if err := sched.ScheduleDailySummary(); err != nil {
		return err
	}
	if err := sched.ScheduleRatingsRefresh(ratingsProvider, cfg.RatingsStalenessWindow()); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}

	healthServer.SetReady(true)
	appLog.WithFields(logrus.Fields{
		"sources":          len(sources),
		"stream_sources":   len(streams),
		"refresh_interval": cfg.RefreshInterval(),
	}).Info("Engine running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	sched.Stop()
	cancel()

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Metrics server shutdown failed")
		}
	}

	appLog.Info("BetMaster decision engine shut down")
	return nil
}

// buildSources constructs all enabled odds sources. Stream sources get a
// background reconnect loop tied to the process context.
func buildSources(ctx context.Context, cfg *config.Config, logger *logrus.Logger) ([]feed.Source, []*feed.StreamSource) {
	var (
		sources []feed.Source
		streams []*feed.StreamSource
	)

	for _, sc := range cfg.EnabledSources() {
		switch sc.Kind {
		case "stream":
			s := feed.NewStreamSource(sc, logger)
			go s.Run(ctx)
			sources = append(sources, s)
			streams = append(streams, s)
		default:
			sources = append(sources, feed.NewHTTPSource(sc, logger))
		}

		logger.WithFields(logrus.Fields{
			"source": sc.Name,
			"kind":   sc.Kind,
		}).Info("Odds source configured")
	}

	return sources, streams
}

// startMetricsServer exposes the Prometheus registry when enabled
func startMetricsServer(cfg *config.Config, logger *logrus.Logger) *http.Server {
	if !cfg.Metrics.Enabled {
		return nil
	}

	metrics.InitRegistry()
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port": cfg.Metrics.Port,
			"path": cfg.Metrics.Path,
		}).Info("Metrics server starting")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Metrics server error")
		}
	}()

	return server
}
