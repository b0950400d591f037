package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finance-insights/internal/api/handlers"
	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/dvloznov/finance-insights/internal/config"
	infraBQ "github.com/dvloznov/finance-insights/internal/infra/bigquery"
	"github.com/dvloznov/finance-insights/internal/jobs"
	"github.com/dvloznov/finance-insights/internal/jobs/inmemory"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/metrics"
	"github.com/dvloznov/finance-insights/internal/notionsync"
	"github.com/dvloznov/finance-insights/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Parse command-line flags
	var (
		configPath = flag.String("config", "", "Optional config file")
		port       = flag.String("port", "", "HTTP server port (default: INSIGHTS_HTTP_PORT)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port == "" {
		*port = cfg.HTTPPort
	}

	// Initialize logger
	log := logger.WithLevel(logger.NewJSON(), cfg.LogLevel)

	ctx := logger.WithContext(context.Background(), log)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize repositories and sinks
	var (
		txRepo infraBQ.TransactionRepository
		sinks  []pipeline.InsightSink
	)
	if cfg.ProjectID != "" {
		repo, err := infraBQ.NewBigQueryInsightsRepository(ctx, cfg.ProjectID, cfg.Dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
		}
		defer repo.Close()
		txRepo = repo
		sinks = append(sinks, repo)
	} else {
		log.Warn().Msg("No GCP project configured - transaction queries and result storage are disabled")
	}
	if cfg.NotionToken != "" && cfg.NotionDatabaseID != "" {
		sinks = append(sinks, &notionsync.Sink{
			Service:    notionsync.NewNotionClient(cfg.NotionToken),
			DatabaseID: cfg.NotionDatabaseID,
		})
	}

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueSize, cfg.Workers, jobStore)
	jobQueue.MaxRetries = cfg.MaxRetries

	resolve := func(job *jobs.AnalysisJob) (pipeline.TransactionSource, error) {
		if job.StartDate == nil && job.EndDate == nil {
			return jobs.InlineSource(job)
		}
		if txRepo == nil {
			return nil, fmt.Errorf("date-range jobs need a GCP project")
		}
		if job.StartDate == nil || job.EndDate == nil {
			return nil, fmt.Errorf("date-range jobs need both dates")
		}
		return infraBQ.DateRangeSource{Repo: txRepo, Start: *job.StartDate, End: *job.EndDate}, nil
	}
	analyze := jobs.NewAnalysisHandler(resolve, cfg.EngineOptions(), sinks...)
	jobHandler := func(ctx context.Context, job *jobs.AnalysisJob) error {
		err := analyze(ctx, job)
		if err == nil {
			m.ObserveResult(job.Result)
		}
		return err
	}

	// Start worker in background to process jobs
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	log.Info().Int("workers", cfg.Workers).Msg("Starting job workers")
	if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	// Create router
	mux := handlers.NewRouter(handlers.Routes{
		Analyze:      handlers.NewAnalyzeHandler(cfg.EngineOptions(), m, log, sinks...),
		Jobs:         handlers.NewJobsHandler(jobQueue, jobStore, log),
		Transactions: handlers.NewTransactionsHandler(txRepo, log),
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	// Apply middleware
	handler := middleware.Chain(mux,
		middleware.Recovery(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.CORS,
		middleware.Metrics(m),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
