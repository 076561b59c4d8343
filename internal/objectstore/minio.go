package objectstore

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dinobot22/mineru-tianshu/internal/config"
)

// MinioStore implements Store against any S3-compatible endpoint
// (RustFS, MinIO, AWS S3) using minio-go.
type MinioStore struct {
	client *minio.Client
}

// NewMinioStore builds a Store from the given configuration.
func NewMinioStore(cfg config.StoreConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client for %s: %w", cfg.Endpoint, err)
	}
	return &MinioStore{client: client}, nil
}

func (s *MinioStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return s.client.BucketExists(ctx, bucket)
}

func (s *MinioStore) MakeBucket(ctx context.Context, bucket string) error {
	return s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

func (s *MinioStore) SetBucketPolicy(ctx context.Context, bucket, policy string) error {
	return s.client.SetBucketPolicy(ctx, bucket, policy)
}

func (s *MinioStore) PutFile(ctx context.Context, bucket, objectName, filePath, contentType string) error {
	_, err := s.client.FPutObject(ctx, bucket, objectName, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *MinioStore) RemoveObject(ctx context.Context, bucket, objectName string) error {
	return s.client.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{})
}
