// Package storage reads source PDFs from and writes rendered images to an
// S3-compatible object store.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"pdf2image/internal/config"
	"pdf2image/internal/domain"
)

// Location identifies one stored object.
type Location struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// ObjectStore is the boundary the conversion flow talks to.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

type s3Store struct {
	client *minio.Client
}

// NewS3Store connects to the configured S3-compatible endpoint. The client
// lives for the whole process and is shared across requests.
func NewS3Store(cfg config.StorageConfig) (ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &s3Store{client: client}, nil
}

func (s *s3Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError("get", bucket, key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapError("get", bucket, key, err)
	}
	return data, nil
}

func (s *s3Store) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return mapError("put", bucket, key, err)
	}
	return nil
}

// mapError folds minio error responses into the domain taxonomy so callers
// never import minio.
func mapError(op, bucket, key string, err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %s %s/%s", domain.ErrNotFound, op, bucket, key)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return fmt.Errorf("%w: %s %s/%s", domain.ErrAccessDenied, op, bucket, key)
	case "QuotaExceeded", "EntityTooLarge":
		return fmt.Errorf("%w: %s %s/%s", domain.ErrQuotaExceeded, op, bucket, key)
	}
	return fmt.Errorf("%s %s/%s: %w", op, bucket, key, err)
}
