package gcsuploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/statement"
)

// CSVObjectSource loads a transaction CSV export stored in GCS.
type CSVObjectSource struct {
	Storage StorageService
	URI     string
}

// LoadTransactions fetches the object and parses it as a statement CSV.
func (s CSVObjectSource) LoadTransactions(ctx context.Context) ([]domain.RawTransaction, error) {
	data, err := s.Storage.FetchFromGCS(ctx, s.URI)
	if err != nil {
		return nil, fmt.Errorf("CSVObjectSource.LoadTransactions: %w", err)
	}
	raws, err := statement.ReadCSV(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("CSVObjectSource.LoadTransactions: %s: %w", s.Storage.ExtractFilenameFromGCSURI(s.URI), err)
	}
	return raws, nil
}

// ReportSink stores each analysis result as a JSON object in a bucket.
type ReportSink struct {
	Storage StorageService
	Bucket  string
	Prefix  string
}

// PublishInsights writes res to gs://Bucket/Prefix/<analysisID>.json.
func (s ReportSink) PublishInsights(ctx context.Context, analysisID string, res *insights.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("ReportSink.PublishInsights: %w", err)
	}
	object := ReportObjectName(s.Prefix, analysisID, "json")
	if err := s.Storage.UploadBytes(ctx, s.Bucket, object, data, contentTypeFor(object)); err != nil {
		return fmt.Errorf("ReportSink.PublishInsights: %w", err)
	}
	log := logger.FromContext(ctx)
	log.Info().Str("gcs_uri", ObjectURI(s.Bucket, object)).Msg("Report uploaded")
	return nil
}
