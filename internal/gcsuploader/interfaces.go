package gcsuploader

import (
	"bytes"
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/finance-insights/internal/gcs"
)

// Re-export interface from shared package.
type StorageService = gcs.StorageService

// GCSStorageService is the concrete implementation of StorageService
// backed by one shared Cloud Storage client.
type GCSStorageService struct {
	client *storage.Client
}

var _ StorageService = (*GCSStorageService)(nil)

// NewGCSStorageService creates a service with a new storage client.
func NewGCSStorageService(ctx context.Context) (*GCSStorageService, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSStorageService: create storage client: %w", err)
	}
	return &GCSStorageService{client: client}, nil
}

// Close releases the storage client.
func (s *GCSStorageService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// UploadFile uploads a local file using the shared client.
func (s *GCSStorageService) UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	return uploadFileWithClient(ctx, s.client, bucketName, objectName, filePath)
}

// UploadBytes uploads data using the shared client.
func (s *GCSStorageService) UploadBytes(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
	return uploadWithClient(ctx, s.client, bucketName, objectName, bytes.NewReader(data), contentType)
}

// FetchFromGCS downloads an object using the shared client.
func (s *GCSStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	return fetchWithClient(ctx, s.client, gcsURI)
}

// ExtractFilenameFromGCSURI delegates to the package function.
func (s *GCSStorageService) ExtractFilenameFromGCSURI(uri string) string {
	return ExtractFilenameFromGCSURI(uri)
}
