// Package storage provides object storage for post images backed by a
// MinIO/S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"dakku/internal/config"
	"dakku/internal/observability"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore abstracts the image bucket so services can be tested without a
// live MinIO instance.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
	KeyFromURL(rawURL string) (string, error)
}

// Store is the MinIO-backed ObjectStore implementation.
type Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// New creates a Store from application config.
func New(cfg *config.Config) (*Store, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.StorageEndpoint, "https://"), "http://")

	cl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	publicURL := cfg.StoragePublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.StorageUseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, endpoint)
	}

	return &Store{
		client:    cl,
		bucket:    cfg.StorageBucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// EnsureBucket creates the configured bucket if it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %q: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %q: %w", s.bucket, err)
		}
	}
	return nil
}

// Upload stores the object under key and returns its public URL.
func (s *Store) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	ctx, span := observability.TraceStorageOperation(ctx, "upload", key)
	defer span.End()

	start := time.Now()
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	observability.ObserveUpload(start, err)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to upload %q: %w", key, err)
	}

	return s.PublicURL(key), nil
}

// Remove deletes the object with the given key.
func (s *Store) Remove(ctx context.Context, key string) error {
	ctx, span := observability.TraceStorageOperation(ctx, "remove", key)
	defer span.End()

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return nil
}

// PublicURL returns the public URL for the given object key.
func (s *Store) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key)
}

// KeyFromURL recovers the object key from a public URL in this store's bucket.
func (s *Store) KeyFromURL(rawURL string) (string, error) {
	return ObjectKeyFromURL(rawURL, s.bucket)
}

// BuildImageKey returns the bucket key for a post image:
// {userID}/{postID}/{timestamp}.{ext}. The timestamp keeps keys unique
// within a post across repeated edits.
func BuildImageKey(userID, postID uint, filename string, now time.Time) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%d/%d/%d.%s", userID, postID, now.UnixNano(), strings.ToLower(ext))
}

// ObjectKeyFromURL recovers the object key from a public URL by splitting on
// the bucket segment. Returns an error when the URL does not reference the
// bucket.
func ObjectKeyFromURL(rawURL, bucket string) (string, error) {
	marker := "/" + bucket + "/"
	idx := strings.Index(rawURL, marker)
	if idx < 0 {
		return "", fmt.Errorf("url %q does not contain bucket %q", rawURL, bucket)
	}
	key := rawURL[idx+len(marker):]
	if key == "" {
		return "", fmt.Errorf("url %q has an empty object key", rawURL)
	}
	return key, nil
}
