package gcsuploader

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{uri: "gs://exports/2024/01/statement.csv", wantBucket: "exports", wantObject: "2024/01/statement.csv"},
		{uri: "gs://exports/file.csv", wantBucket: "exports", wantObject: "file.csv"},
		{uri: "s3://exports/file.csv", wantErr: true},
		{uri: "gs://exports", wantErr: true},
		{uri: "gs://exports/", wantErr: true},
		{uri: "gs:///file.csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseGCSURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
			assert.Equal(t, tt.uri, ObjectURI(bucket, object))
		})
	}
}

func TestExtractFilenameFromGCSURI(t *testing.T) {
	assert.Equal(t, "export.csv", ExtractFilenameFromGCSURI("gs://bucket/folder/export.csv"))
	assert.Equal(t, "export.csv", ExtractFilenameFromGCSURI("gs://bucket/export.csv"))
	assert.Equal(t, "bucket", ExtractFilenameFromGCSURI("gs://bucket"))
}

func TestReportObjectName(t *testing.T) {
	assert.Equal(t, "reports/abc.json", ReportObjectName("reports", "abc", "json"))
	assert.Equal(t, "reports/abc.csv", ReportObjectName("reports/", "abc", ".csv"))
	assert.Equal(t, "abc.txt", ReportObjectName("", "abc", "txt"))
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "text/csv", contentTypeFor("a/b/EXPORT.CSV"))
	assert.Equal(t, "application/json", contentTypeFor("r.json"))
	assert.Equal(t, "", contentTypeFor("r.bin"))
}

type fakeStorage struct {
	objects map[string][]byte
}

func (f *fakeStorage) UploadFile(context.Context, string, string, string) error { return nil }

func (f *fakeStorage) UploadBytes(_ context.Context, bucket, object string, data []byte, _ string) error {
	f.objects[ObjectURI(bucket, object)] = data
	return nil
}

func (f *fakeStorage) FetchFromGCS(_ context.Context, uri string) ([]byte, error) {
	data, ok := f.objects[uri]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (f *fakeStorage) ExtractFilenameFromGCSURI(uri string) string {
	return ExtractFilenameFromGCSURI(uri)
}

func TestCSVObjectSource(t *testing.T) {
	store := &fakeStorage{objects: map[string][]byte{}}
	csv := "date,description,amount,category,merchant,type\n" +
		"2024-01-02,Coffee,-3.50,Dining,Cafe,purchase\n" +
		"2024-01-03,Salary,2500,Income,ACME Corp,deposit\n"
	require.NoError(t, store.UploadBytes(context.Background(), "exports", "jan.csv", []byte(csv), "text/csv"))

	raws, err := CSVObjectSource{Storage: store, URI: "gs://exports/jan.csv"}.LoadTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, "Salary", raws[1].Description)

	_, err = CSVObjectSource{Storage: store, URI: "gs://exports/missing.csv"}.LoadTransactions(context.Background())
	assert.ErrorContains(t, err, "object not found")

	store.objects["gs://exports/bad.csv"] = []byte("date,description\n2024-01-02,x\n")
	_, err = CSVObjectSource{Storage: store, URI: "gs://exports/bad.csv"}.LoadTransactions(context.Background())
	assert.ErrorContains(t, err, "bad.csv")
}

func TestReportSink(t *testing.T) {
	store := &fakeStorage{objects: map[string][]byte{}}
	sink := ReportSink{Storage: store, Bucket: "reports", Prefix: "analyses/"}

	res := &insights.Result{Sensitivity: insights.SensitivityLow, TransactionCount: 4, RiskScore: 15}
	require.NoError(t, sink.PublishInsights(context.Background(), "run-1", res))

	data, ok := store.objects["gs://reports/analyses/run-1.json"]
	require.True(t, ok)
	assert.Contains(t, string(data), `"risk_score": 15`)
	assert.Contains(t, string(data), `"sensitivity": "low"`)
}
