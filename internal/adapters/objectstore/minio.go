// Package objectstore stores uploaded model files in an S3-compatible bucket.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/SerjoschDuering/ifcore-platform/config"
	"github.com/SerjoschDuering/ifcore-platform/internal/core"
)

var _ core.ObjectStore = (*MinioStore)(nil)

// MinioStore is a minio (S3) backed object store.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the configured endpoint. It does not touch the network.
func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// NewMinioStoreFromClient wraps an existing client.
func NewMinioStoreFromClient(client *minio.Client, bucket string) *MinioStore {
	return &MinioStore{client: client, bucket: bucket}
}

// EnsureBucket creates the bucket when it is missing.
func (s *MinioStore) EnsureBucket(ctx context.Context, region string, logger *slog.Logger) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		// Another replica may have won the race.
		if resp := minio.ToErrorResponse(err); resp.Code == "BucketAlreadyOwnedByYou" {
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "object store bucket created", "bucket", s.bucket)
	}
	return nil
}

// Put writes the object. Size may be -1 for an unknown length.
func (s *MinioStore) Put(ctx context.Context, params core.PutObjectParams) error {
	if params.Key == "" {
		return errors.New("object key is required")
	}
	_, err := s.client.PutObject(ctx, s.bucket, params.Key, params.Body, params.Size, minio.PutObjectOptions{
		ContentType: params.ContentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", params.Key, err)
	}
	return nil
}

// Get opens the object for reading. A missing key yields core.ErrObjectNotFound.
func (s *MinioStore) Get(ctx context.Context, key string) (*core.Object, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioError(key, err)
	}
	// GetObject is lazy; Stat surfaces missing keys before any body is streamed.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, mapMinioError(key, err)
	}
	return &core.Object{
		Body:        obj,
		Size:        info.Size,
		ContentType: info.ContentType,
		ETag:        info.ETag,
	}, nil
}

// Delete removes the object. Deleting a missing key is not an error.
func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return mapMinioError(key, err)
	}
	return nil
}

func mapMinioError(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%s: %w", key, core.ErrObjectNotFound)
	}
	return fmt.Errorf("object %s: %w", key, err)
}
