package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS uploads signature and floor-plan artifacts to a Cloud Storage bucket
type GCS struct {
	client     *storage.Client
	bucket     string
	publicBase string
}

// NewGCS creates a GCS uploader. credentialsFile may be empty to use
// application default credentials.
func NewGCS(ctx context.Context, bucket, credentialsFile, publicBase string) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket must be provided to create a GCS uploader")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	if publicBase == "" {
		publicBase = "https://storage.googleapis.com"
	}

	return &GCS{client: client, bucket: bucket, publicBase: publicBase}, nil
}

// Upload writes data to objectPath and returns its public URL
func (g *GCS) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	writer := g.client.Bucket(g.bucket).Object(objectPath).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to write object %s: %w", objectPath, err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", objectPath, err)
	}

	return PublicURL(g.publicBase, g.bucket, objectPath), nil
}

// Close closes the storage client
func (g *GCS) Close() error {
	return g.client.Close()
}

// PublicURL builds the public address of an object
func PublicURL(base, bucket, objectPath string) string {
	return fmt.Sprintf("%s/%s/%s", base, bucket, (&url.URL{Path: objectPath}).EscapedPath())
}
