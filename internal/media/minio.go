package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sipalaciosv/inspeccion-vehicular/config"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/metrics"
)

// Store defines the interface for media uploads
type Store interface {
	UploadImage(ctx context.Context, folder string, contentType string, content []byte) (string, error)
}

// MinioStore implements Store using MinIO object storage
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStore creates a new MinIO-backed media store
func NewMinioStore(cfg *config.MediaConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create media client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check media bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create media bucket: %w", err)
		}
	}

	return &MinioStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// UploadImage stores an image under the given folder and returns its public URL
func (m *MinioStore) UploadImage(ctx context.Context, folder string, contentType string, content []byte) (string, error) {
	startTime := time.Now()
	collector := metrics.GetMetricsCollector()

	objectKey := path.Join(folder, uuid.New().String()+extensionFor(contentType))
	_, err := m.client.PutObject(ctx, m.bucket, objectKey, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		collector.RecordMediaUpload(false, time.Since(startTime))
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	collector.RecordMediaUpload(true, time.Since(startTime))
	return fmt.Sprintf("%s/%s/%s", m.publicURL, m.bucket, objectKey), nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

// ParseDataURL decodes a base64 data URL into its content type and raw bytes.
// Clients submit signatures and photos as data URLs captured from a canvas.
func ParseDataURL(dataURL string) (string, []byte, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return "", nil, fmt.Errorf("not a data URL")
	}

	rest := strings.TrimPrefix(dataURL, "data:")
	sep := strings.Index(rest, ",")
	if sep < 0 {
		return "", nil, fmt.Errorf("malformed data URL")
	}

	meta := rest[:sep]
	payload := rest[sep+1:]

	contentType := meta
	if idx := strings.Index(meta, ";"); idx >= 0 {
		contentType = meta[:idx]
		if !strings.Contains(meta, "base64") {
			return "", nil, fmt.Errorf("unsupported data URL encoding")
		}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode data URL payload: %w", err)
	}

	return contentType, content, nil
}
