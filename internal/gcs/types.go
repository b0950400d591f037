package gcs

import (
	"context"
)

// StorageService provides an interface for object storage of statement
// exports and analysis reports. It enables mocking in pipeline and CLI tests.
type StorageService interface {
	// UploadFile uploads a local file to a storage bucket under the given object name.
	UploadFile(ctx context.Context, bucketName, objectName, filePath string) error

	// UploadBytes writes data to a storage bucket under the given object name.
	UploadBytes(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error

	// FetchFromGCS downloads object bytes from the given gs:// URI.
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)

	// ExtractFilenameFromGCSURI extracts the filename from a gs:// URI.
	ExtractFilenameFromGCSURI(uri string) string
}
