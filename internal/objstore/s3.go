package objstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/cyberpunkpath/gateway/internal/cyberpunkpath"
)

// S3Config holds the parameters for the S3/MinIO backend.
type S3Config struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	PathPrefix string
	SafeChars  cyberpunkpath.SafeCharsType

	// ConnectRetries bounds how many times NewS3 retries the initial
	// bucket-existence check before giving up — MinIO containers in compose
	// setups are often still starting when this service boots.
	ConnectRetries int
	ConnectBackoff time.Duration
}

// S3Store stores objects in an S3-compatible object store (MinIO or AWS S3).
type S3Store struct {
	client     *minio.Client
	bucket     string
	pathPrefix string
	safeChars  cyberpunkpath.SafeCharsType
}

// NewS3 initialises a MinIO/S3 client and ensures the bucket exists,
// retrying the initial reachability check with a fixed backoff.
func NewS3(ctx context.Context, cfg S3Config) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio.New: %w", err)
	}

	retries := cfg.ConnectRetries
	if retries <= 0 {
		retries = 1
	}
	backoff := cfg.ConnectBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	var exists bool
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		exists, lastErr = client.BucketExists(ctx, cfg.Bucket)
		if lastErr == nil {
			break
		}
		slog.Warn("waiting for object store", "attempt", attempt, "of", retries, "err", lastErr)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("bucket exists check: %w", lastErr)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}
	return &S3Store{client: client, bucket: cfg.Bucket, pathPrefix: cfg.PathPrefix, safeChars: cfg.SafeChars}, nil
}

// fullKey applies the same {path_prefix}/{normalize(key)} addressing scheme
// every backend uses.
func (s *S3Store) fullKey(key string) string {
	return fullKey(s.pathPrefix, key, s.safeChars)
}

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.fullKey(key), r, size, minio.PutObjectOptions{})
	return err
}

func (s *S3Store) GetRange(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error) {
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(offset, offset+length-1); err != nil {
		return nil, fmt.Errorf("set range: %w", err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, s.fullKey(key), opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, s.fullKey(key), minio.RemoveObjectOptions{})
}

func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, s.fullKey(key), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *S3Store) Size(ctx context.Context, key string) (int64, error) {
	info, err := s.client.StatObject(ctx, s.bucket, s.fullKey(key), minio.StatObjectOptions{})
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}
