package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/gcsuploader"
	infraBQ "github.com/dvloznov/finance-insights/internal/infra/bigquery"
	"github.com/dvloznov/finance-insights/internal/infra/mongo"
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/notionsync"
	"github.com/dvloznov/finance-insights/internal/pipeline"
	"github.com/dvloznov/finance-insights/internal/report"
	"github.com/dvloznov/finance-insights/internal/statement"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type analyzeFlags struct {
	file         string
	gcsURI       string
	bqStart      string
	bqEnd        string
	mongoAccount string

	sensitivity     string
	startingBalance string

	csvOut  string
	json    bool
	narrate bool
	limit   int

	store        bool
	notion       bool
	uploadReport bool
}

func runAnalyze(log zerolog.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", "", "Optional config file")
	var f analyzeFlags
	fs.StringVar(&f.file, "file", "", "Transaction CSV file, or - for stdin")
	fs.StringVar(&f.gcsURI, "gcs-uri", "", "GCS URI of a transaction CSV export")
	fs.StringVar(&f.bqStart, "bq-start", "", "Analyze BigQuery transactions from this date (YYYY-MM-DD)")
	fs.StringVar(&f.bqEnd, "bq-end", "", "Analyze BigQuery transactions up to this date (YYYY-MM-DD)")
	fs.StringVar(&f.mongoAccount, "mongo-account", "", "Analyze one data-lake account")
	fs.StringVar(&f.sensitivity, "sensitivity", "", "Detection sensitivity: low, medium or high")
	fs.StringVar(&f.startingBalance, "starting-balance", "", "Opening balance for the running balance")
	fs.StringVar(&f.csvOut, "csv-out", "", "Write <prefix>_transactions.csv, _indicators.csv and _events.csv")
	fs.BoolVar(&f.json, "json", false, "Print the result as JSON")
	fs.BoolVar(&f.narrate, "narrate", false, "Phrase the summary with Gemini")
	fs.IntVar(&f.limit, "limit", 10, "Transactions shown in the table, 0 for all")
	fs.BoolVar(&f.store, "store", false, "Store the result in BigQuery")
	fs.BoolVar(&f.notion, "notion", false, "Publish the result to Notion")
	fs.BoolVar(&f.uploadReport, "upload-report", false, "Upload the JSON result to the configured GCS bucket")
	fs.Parse(os.Args[2:])

	cfg, log := loadConfig(log, *configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	opts := append(cfg.EngineOptions(), insights.WithLogger(log))
	if f.sensitivity != "" {
		s := insights.Sensitivity(f.sensitivity)
		if !s.Valid() {
			log.Fatal().Str("sensitivity", f.sensitivity).Msg("Error: --sensitivity must be low, medium or high")
		}
		opts = append(opts, insights.WithSensitivity(s))
	}
	if f.startingBalance != "" {
		bal, err := decimal.NewFromString(f.startingBalance)
		if err != nil {
			log.Fatal().Err(err).Msg("Error: invalid --starting-balance")
		}
		opts = append(opts, insights.WithStartingBalance(bal))
	}

	source, closeSource, err := buildSource(ctx, cfg, f)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open transaction source")
	}
	defer closeSource()

	sinks, closeSinks, err := buildSinks(ctx, cfg, f)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open result sinks")
	}
	defer closeSinks()

	state := &pipeline.PipelineState{}
	res, err := pipeline.RunAnalysisWithState(ctx, state, source, insights.NewEngine(opts...), sinks...)
	if res == nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}
	if err != nil {
		log.Error().Err(err).Str("analysis_id", state.AnalysisID).Msg("Analysis finished but publishing failed")
	}

	txns, err := insights.Normalize(state.Transactions)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to normalize transactions")
	}

	if f.csvOut != "" {
		if err := writeCSVReports(f.csvOut, txns, res); err != nil {
			log.Fatal().Err(err).Msg("Failed to write CSV reports")
		}
		log.Info().Str("prefix", f.csvOut).Msg("CSV reports written")
	}

	if f.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode result")
		}
		return
	}

	var narrator report.Narrator = report.TemplateNarrator{}
	if f.narrate {
		gemini, err := report.NewGeminiNarrator(ctx, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini narrator")
		}
		narrator = gemini
	}
	printReport(ctx, os.Stdout, state.AnalysisID, txns, res, narrator, f.limit)
}

// buildSource picks the single source named by the flags. The returned
// close function is always safe to call.
func buildSource(ctx context.Context, cfg *config.Config, f analyzeFlags) (pipeline.TransactionSource, func(), error) {
	noop := func() {}

	chosen := 0
	for _, set := range []bool{f.file != "", f.gcsURI != "", f.bqStart != "" || f.bqEnd != "", f.mongoAccount != ""} {
		if set {
			chosen++
		}
	}
	if chosen != 1 {
		return nil, noop, fmt.Errorf("exactly one of -file, -gcs-uri, -bq-start/-bq-end or -mongo-account is required")
	}

	switch {
	case f.file != "":
		return pipeline.SourceFunc(func(ctx context.Context) ([]domain.RawTransaction, error) {
			if f.file == "-" {
				return statement.ReadCSV(ctx, os.Stdin)
			}
			file, err := os.Open(f.file)
			if err != nil {
				return nil, err
			}
			defer file.Close()
			return statement.ReadCSV(ctx, file)
		}), noop, nil

	case f.gcsURI != "":
		storage, err := gcsuploader.NewGCSStorageService(ctx)
		if err != nil {
			return nil, noop, err
		}
		return gcsuploader.CSVObjectSource{Storage: storage, URI: f.gcsURI}, func() { storage.Close() }, nil

	case f.mongoAccount != "":
		client, err := mongo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, noop, err
		}
		store := mongo.OpenTransactionStore(client, cfg.MongoDatabase, cfg.MongoCollection)
		return mongo.AccountSource{Store: store, AccountID: f.mongoAccount},
			func() { client.Disconnect(context.Background()) }, nil

	default:
		if f.bqStart == "" || f.bqEnd == "" {
			return nil, noop, fmt.Errorf("both -bq-start and -bq-end are required")
		}
		start, err := time.Parse("2006-01-02", f.bqStart)
		if err != nil {
			return nil, noop, fmt.Errorf("invalid -bq-start: %w", err)
		}
		end, err := time.Parse("2006-01-02", f.bqEnd)
		if err != nil {
			return nil, noop, fmt.Errorf("invalid -bq-end: %w", err)
		}
		repo, err := infraBQ.NewBigQueryInsightsRepository(ctx, cfg.ProjectID, cfg.Dataset)
		if err != nil {
			return nil, noop, err
		}
		return infraBQ.DateRangeSource{Repo: repo, Start: start, End: end}, func() { repo.Close() }, nil
	}
}

func buildSinks(ctx context.Context, cfg *config.Config, f analyzeFlags) ([]pipeline.InsightSink, func(), error) {
	var sinks []pipeline.InsightSink
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if f.store {
		repo, err := infraBQ.NewBigQueryInsightsRepository(ctx, cfg.ProjectID, cfg.Dataset)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, func() { repo.Close() })
		sinks = append(sinks, repo)
	}

	if f.notion {
		if cfg.NotionToken == "" || cfg.NotionDatabaseID == "" {
			return nil, closeAll, fmt.Errorf("-notion needs INSIGHTS_NOTION_TOKEN and INSIGHTS_NOTION_DATABASE_ID")
		}
		sinks = append(sinks, &notionsync.Sink{
			Service:    notionsync.NewNotionClient(cfg.NotionToken),
			DatabaseID: cfg.NotionDatabaseID,
		})
	}

	if f.uploadReport {
		if cfg.Bucket == "" {
			return nil, closeAll, fmt.Errorf("-upload-report needs INSIGHTS_GCS_BUCKET")
		}
		storage, err := gcsuploader.NewGCSStorageService(ctx)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, func() { storage.Close() })
		sinks = append(sinks, gcsuploader.ReportSink{Storage: storage, Bucket: cfg.Bucket, Prefix: "reports"})
	}

	return sinks, closeAll, nil
}

func writeCSVReports(prefix string, txns []domain.Transaction, res *insights.Result) error {
	files := []struct {
		suffix string
		write  func(io.Writer) error
	}{
		{"_transactions.csv", func(w io.Writer) error { return statement.WriteCSV(w, txns) }},
		{"_indicators.csv", func(w io.Writer) error { return statement.WriteIndicatorsCSV(w, res.Indicators) }},
		{"_events.csv", func(w io.Writer) error { return statement.WriteEventsCSV(w, res.Events) }},
	}

	for _, f := range files {
		out, err := os.Create(prefix + f.suffix)
		if err != nil {
			return err
		}
		if err := f.write(out); err != nil {
			out.Close()
			return fmt.Errorf("%s: %w", out.Name(), err)
		}
		if err := out.Close(); err != nil {
			return err
		}
	}
	return nil
}

func printReport(ctx context.Context, w io.Writer, analysisID string, txns []domain.Transaction, res *insights.Result, narrator report.Narrator, limit int) {
	fmt.Fprintf(w, "Analysis %s (%s sensitivity, %d transactions)\n\n", analysisID, res.Sensitivity, res.TransactionCount)

	report.WriteTransactionTable(w, txns, limit)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Financial stress indicators")
	report.WriteIndicatorTable(w, res.Indicators)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Life events")
	report.WriteEventTable(w, res.Events)
	fmt.Fprintln(w)

	summary, err := narrator.Narrate(ctx, res)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Narration failed, using template summary")
		summary, _ = report.TemplateNarrator{}.Narrate(ctx, res)
	}
	fmt.Fprintln(w, summary)
}
