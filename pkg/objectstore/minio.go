// Package objectstore keeps avatar images in a MinIO/S3 bucket.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrInvalidArgument is returned for a disallowed content type or size.
var ErrInvalidArgument = errors.New("objectstore: invalid argument")

// Config selects the bucket and upload limits.
type Config struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	CreateBucket bool
	MaxSizeBytes int64
}

// Store is the MinIO adapter for avatars.
type Store struct {
	client  *mclient.Client
	bucket  string
	maxSize int64
}

// New connects and checks the bucket, creating it when cfg.CreateBucket is set.
func New(ctx context.Context, cfg Config) (*Store, error) {
	const op = "objectstore.New"

	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")
	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		if !cfg.CreateBucket {
			return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.Bucket)
		}
		if err := client.MakeBucket(ctx, cfg.Bucket, mclient.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	maxSize := cfg.MaxSizeBytes
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Store{client: client, bucket: cfg.Bucket, maxSize: maxSize}, nil
}

// PutAvatar stores the image under key. The caller builds key with AvatarKey.
func (s *Store) PutAvatar(ctx context.Context, key, contentType string, size int64, r io.Reader) error {
	const op = "objectstore.PutAvatar"

	if size <= 0 || size > s.maxSize {
		return ErrInvalidArgument
	}
	if _, ok := allowedTypes[contentType]; !ok {
		return ErrInvalidArgument
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, mclient.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Exists reports whether key is present in the bucket.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	const op = "objectstore.Exists"

	_, err := s.client.StatObject(ctx, s.bucket, key, mclient.StatObjectOptions{})
	if err != nil {
		resp := mclient.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// MaxSize is the largest accepted upload in bytes.
func (s *Store) MaxSize() int64 { return s.maxSize }
