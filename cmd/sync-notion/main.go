package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/infra/bigquery"
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/notionsync"
	"github.com/dvloznov/finance-insights/internal/pipeline"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	configPath := flag.String("config", "", "Optional config file")
	startDateStr := flag.String("start-date", "", "Start date in YYYY-MM-DD format (required unless -archive)")
	endDateStr := flag.String("end-date", "", "End date in YYYY-MM-DD format (required unless -archive)")
	sensitivity := flag.String("sensitivity", "", "Detection sensitivity: low, medium or high")
	notionToken := flag.String("notion-token", "", "Notion API token (default: INSIGHTS_NOTION_TOKEN)")
	notionDBID := flag.String("notion-db-id", "", "Notion database ID (default: INSIGHTS_NOTION_DATABASE_ID)")
	archive := flag.String("archive", "", "Archive the pages of this analysis ID instead of syncing")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log = logger.WithLevel(log, cfg.LogLevel)

	if *notionToken == "" {
		*notionToken = cfg.NotionToken
	}
	if *notionDBID == "" {
		*notionDBID = cfg.NotionDatabaseID
	}

	// Validate required flags
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id is required")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Add logger to context
	ctx = logger.WithContext(ctx, log)

	// Initialize Notion client
	notionClient := notionsync.NewNotionClient(*notionToken)

	if *archive != "" {
		n, err := notionsync.ArchiveAnalysis(ctx, notionClient, *notionDBID, *archive, *dryRun)
		if err != nil {
			log.Fatal().Err(err).Msg("Archive failed")
		}
		fmt.Printf("Archived %d pages of analysis %s.\n", n, *archive)
		return
	}

	if *startDateStr == "" {
		log.Fatal().Msg("Error: --start-date is required")
	}
	if *endDateStr == "" {
		log.Fatal().Msg("Error: --end-date is required")
	}

	// Parse dates
	startDate, err := time.Parse("2006-01-02", *startDateStr)
	if err != nil {
		log.Fatal().Err(err).Str("start_date", *startDateStr).Msg("Error: invalid start-date format, expected YYYY-MM-DD")
	}

	endDate, err := time.Parse("2006-01-02", *endDateStr)
	if err != nil {
		log.Fatal().Err(err).Str("end_date", *endDateStr).Msg("Error: invalid end-date format, expected YYYY-MM-DD")
	}

	// Validate date range
	if endDate.Before(startDate) {
		log.Fatal().
			Time("start_date", startDate).
			Time("end_date", endDate).
			Msg("Error: end-date must be after start-date")
	}

	opts := cfg.EngineOptions()
	if *sensitivity != "" {
		s := insights.Sensitivity(*sensitivity)
		if !s.Valid() {
			log.Fatal().Str("sensitivity", *sensitivity).Msg("Error: --sensitivity must be low, medium or high")
		}
		opts = append(opts, insights.WithSensitivity(s))
	}

	log.Info().
		Str("start_date", *startDateStr).
		Str("end_date", *endDateStr).
		Bool("dry_run", *dryRun).
		Msg("Starting Notion sync")

	// Initialize BigQuery repository
	repo, err := bigquery.NewBigQueryInsightsRepository(ctx, cfg.ProjectID, cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
	}
	defer repo.Close()

	source := bigquery.DateRangeSource{Repo: repo, Start: startDate, End: endDate}
	sink := &notionsync.Sink{Service: notionClient, DatabaseID: *notionDBID, DryRun: *dryRun}

	state := &pipeline.PipelineState{}
	if _, err := pipeline.RunAnalysisWithState(ctx, state, source, insights.NewEngine(opts...), sink); err != nil {
		log.Fatal().Err(err).Str("analysis_id", state.AnalysisID).Msg("Sync failed")
	}

	fmt.Printf("Sync completed successfully (analysis %s).\n", state.AnalysisID)
}
