package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// INSIGHTS_SENSITIVITY or INSIGHTS_BIGQUERY_DATASET.
const EnvPrefix = "INSIGHTS"

// Config holds runtime settings shared by the commands.
type Config struct {
	Sensitivity     insights.Sensitivity
	StartingBalance decimal.Decimal
	LogLevel        string

	HTTPPort   string
	Workers    int
	QueueSize  int
	MaxRetries int

	ProjectID string
	Dataset   string
	Bucket    string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	NotionToken      string
	NotionDatabaseID string

	GeminiModel string
}

// EngineOptions returns the insights engine options described by c.
func (c *Config) EngineOptions() []insights.Option {
	return []insights.Option{
		insights.WithSensitivity(c.Sensitivity),
		insights.WithStartingBalance(c.StartingBalance),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sensitivity", string(insights.SensitivityMedium))
	v.SetDefault("starting_balance", insights.DefaultStartingBalance.String())
	v.SetDefault("log_level", "info")
	v.SetDefault("http_port", "8080")
	v.SetDefault("workers", 2)
	v.SetDefault("queue_size", 100)
	v.SetDefault("max_retries", 3)
	v.SetDefault("gcp_project", "")
	v.SetDefault("bigquery_dataset", "finance")
	v.SetDefault("gcs_bucket", "")
	v.SetDefault("mongo_uri", "")
	v.SetDefault("mongo_database", "finance")
	v.SetDefault("mongo_collection", "transactions")
	v.SetDefault("notion_token", "")
	v.SetDefault("notion_database_id", "")
	v.SetDefault("gemini_model", "gemini-2.5-flash")
}

// Load reads configuration from, in increasing priority: defaults, an
// optional config file at path, a .env file in the working directory and
// the process environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("Load: reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("Load: reading config file %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	sens := insights.Sensitivity(strings.ToLower(v.GetString("sensitivity")))
	if !sens.Valid() {
		return nil, fmt.Errorf("fromViper: unknown sensitivity %q", v.GetString("sensitivity"))
	}

	balance, err := decimal.NewFromString(v.GetString("starting_balance"))
	if err != nil {
		return nil, fmt.Errorf("fromViper: parsing starting_balance: %w", err)
	}

	cfg := &Config{
		Sensitivity:      sens,
		StartingBalance:  balance,
		LogLevel:         v.GetString("log_level"),
		HTTPPort:         v.GetString("http_port"),
		Workers:          v.GetInt("workers"),
		QueueSize:        v.GetInt("queue_size"),
		MaxRetries:       v.GetInt("max_retries"),
		ProjectID:        v.GetString("gcp_project"),
		Dataset:          v.GetString("bigquery_dataset"),
		Bucket:           v.GetString("gcs_bucket"),
		MongoURI:         v.GetString("mongo_uri"),
		MongoDatabase:    v.GetString("mongo_database"),
		MongoCollection:  v.GetString("mongo_collection"),
		NotionToken:      v.GetString("notion_token"),
		NotionDatabaseID: v.GetString("notion_database_id"),
		GeminiModel:      v.GetString("gemini_model"),
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("fromViper: workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.QueueSize < 1 {
		return nil, fmt.Errorf("fromViper: queue_size must be at least 1, got %d", cfg.QueueSize)
	}
	return cfg, nil
}
