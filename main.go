package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/danielhkuo/votematch/catalog"
	"github.com/danielhkuo/votematch/cliparse"
	"github.com/danielhkuo/votematch/db"
	"github.com/danielhkuo/votematch/metrics"
	"github.com/danielhkuo/votematch/middleware"
	"github.com/danielhkuo/votematch/oracle"
	"github.com/danielhkuo/votematch/reconcile"
	"github.com/danielhkuo/votematch/router"
)

// Pending passes beyond this wait for the next sweep
const queueCapacity = 256

func main() {
	var err error

	// A missing .env is fine; production sets real env vars
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	cat := catalog.Default()
	slog.Info("Category catalog loaded", "categories", cat.Len())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	transport := oracle.NewOpenAITransport(cfg.OracleAPIKey, cfg.OracleBaseURL, cfg.OracleModel, nil)
	scorer := oracle.NewScorer(transport,
		oracle.WithTimeout(cfg.OracleTimeout),
		oracle.WithRateLimit(cfg.OracleRPS),
		oracle.WithMetrics(m),
	)

	policy, err := reconcile.NewPolicy(cfg.MatchThreshold)
	if err != nil {
		slog.Error("invalid match policy", "error", err)
		os.Exit(1)
	}
	store := db.NewStore(dbConn)
	engine := reconcile.NewEngine(store, cat,
		reconcile.WithPolicy(policy),
		reconcile.WithBatchSize(cfg.ReconcileBatchSize),
		reconcile.WithMetrics(m),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Proposals left pending by a crash or a full queue are finished here
	var queue *reconcile.Queue
	if cfg.ReconcileMode == cliparse.ModeAsync {
		queue = reconcile.NewQueue(engine, cfg.ReconcileWorkers, queueCapacity)
		go func() {
			if err := queue.Run(ctx); err != nil {
				slog.Error("reconcile queue stopped", "error", err)
			}
		}()
	} else {
		go func() {
			n, err := engine.ResumePending(ctx)
			if err != nil {
				slog.Error("resuming pending proposals failed", "error", err)
			}
			slog.Info("pending proposals resumed", "count", n)
		}()
	}

	// Create router
	mux := router.NewRouter(router.Services{
		Store:    store,
		Catalog:  cat,
		Scorer:   scorer,
		Engine:   engine,
		Queue:    queue,
		Gatherer: reg,
	}, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		cancel()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "reconcile_mode", cfg.ReconcileMode)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
