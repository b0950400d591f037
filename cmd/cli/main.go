package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/gcsuploader"
	infraBQ "github.com/dvloznov/finance-insights/internal/infra/bigquery"
	"github.com/dvloznov/finance-insights/internal/infra/mongo"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/notionsync"
	"github.com/dvloznov/finance-insights/internal/statement"
	"github.com/dvloznov/finance-insights/internal/synthetic"
	"github.com/rs/zerolog"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze(log)
	case "generate":
		runGenerate(log)
	case "upload":
		runUpload(log)
	case "forget":
		runForget(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Insights CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze   Detect stress indicators and life events in a transaction log")
	fmt.Println("  generate  Write a synthetic transaction log")
	fmt.Println("  upload    Upload a file to GCS")
	fmt.Println("  forget    Delete a stored analysis from BigQuery and Notion")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
	fmt.Println("\nSettings are read from INSIGHTS_* environment variables, a .env file or -config.")
}

// loadConfig loads settings and applies the configured log level.
func loadConfig(log zerolog.Logger, path string) (*config.Config, zerolog.Logger) {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	return cfg, logger.WithLevel(log, cfg.LogLevel)
}

func runGenerate(log zerolog.Logger) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", "", "Optional config file")
	seed := fs.Int64("seed", 42, "Random seed")
	days := fs.Int("days", 90, "Number of days to generate")
	start := fs.String("start", "", "First day, YYYY-MM-DD (default: days before today)")
	lifeEvents := fs.Bool("life-events", true, "Inject life event scenarios")
	stress := fs.Bool("stress", true, "Inject financial stress scenarios")
	out := fs.String("out", "-", "Output CSV path, or - for stdout")
	mongoAccount := fs.String("mongo-account", "", "Also upsert the transactions into the data lake under this account")
	fs.Parse(os.Args[2:])

	cfg, log := loadConfig(log, *configPath)

	opts := synthetic.DefaultOptions(time.Now())
	opts.Days = *days
	opts.Start = opts.Start.AddDate(0, 0, 90-*days)
	if *start != "" {
		t, err := time.Parse("2006-01-02", *start)
		if err != nil {
			log.Fatal().Err(err).Str("start", *start).Msg("Error: invalid start format, expected YYYY-MM-DD")
		}
		opts.Start = t
	}
	opts.LifeEvents = *lifeEvents
	opts.Stress = *stress

	raws := synthetic.NewGenerator(*seed).Generate(opts)

	var w io.Writer = os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create output file")
		}
		defer f.Close()
		w = f
	}
	if err := statement.WriteRawCSV(w, raws); err != nil {
		log.Fatal().Err(err).Msg("Failed to write transactions")
	}

	log.Info().
		Int("transactions", len(raws)).
		Str("start", opts.Start.Format("2006-01-02")).
		Int("days", opts.Days).
		Str("out", *out).
		Msg("Synthetic transactions generated")

	if *mongoAccount == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	client, err := mongo.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the data lake")
	}
	defer client.Disconnect(context.Background())

	store := mongo.OpenTransactionStore(client, cfg.MongoDatabase, cfg.MongoCollection)
	n, err := store.UpsertTransactions(ctx, *mongoAccount, raws)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to store transactions")
	}
	log.Info().Str("account_id", *mongoAccount).Int64("upserted", n).Msg("Transactions stored in the data lake")
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	configPath := fs.String("config", "", "Optional config file")
	bucketName := fs.String("bucket", "", "GCS bucket name (default: INSIGHTS_GCS_BUCKET)")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local file")
	fs.Parse(os.Args[2:])

	cfg, log := loadConfig(log, *configPath)
	if *bucketName == "" {
		*bucketName = cfg.Bucket
	}

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := gcsuploader.UploadFile(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, gcsuploader.ObjectURI(*bucketName, *objectName))
}

func runForget(log zerolog.Logger) {
	fs := flag.NewFlagSet("forget", flag.ExitOnError)
	configPath := fs.String("config", "", "Optional config file")
	analysisID := fs.String("analysis-id", "", "Analysis to delete (required)")
	dryRun := fs.Bool("dry-run", false, "Only report the Notion pages that would be archived")
	fs.Parse(os.Args[2:])

	cfg, log := loadConfig(log, *configPath)
	if *analysisID == "" {
		log.Fatal().Msg("Error: --analysis-id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	if cfg.ProjectID != "" && !*dryRun {
		repo, err := infraBQ.NewBigQueryInsightsRepository(ctx, cfg.ProjectID, cfg.Dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
		}
		defer repo.Close()

		if err := repo.DeleteAnalysis(ctx, *analysisID); err != nil {
			log.Fatal().Err(err).Msg("Failed to delete analysis from BigQuery")
		}
		log.Info().Str("analysis_id", *analysisID).Msg("Deleted analysis from BigQuery")
	}

	if cfg.NotionToken != "" && cfg.NotionDatabaseID != "" {
		client := notionsync.NewNotionClient(cfg.NotionToken)
		if _, err := notionsync.ArchiveAnalysis(ctx, client, cfg.NotionDatabaseID, *analysisID, *dryRun); err != nil {
			log.Fatal().Err(err).Msg("Failed to archive Notion pages")
		}
	}
}
