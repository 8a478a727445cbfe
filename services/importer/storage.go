package importer

import (
	"context"
	"fmt"
	"io"

	"maintainops/pkg/config"

	"github.com/minio/minio-go/v7"
)

// ObjectStore is the upload sink. Intake writes uploaded files into it and
// the runner reads them back by key.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type minioObjectStore struct {
	client *minio.Client
	bucket string
}

// NewObjectStore returns a MinIO backed ObjectStore.
func NewObjectStore(client *minio.Client, cfg *config.Config) ObjectStore {
	return &minioObjectStore{
		client: client,
		bucket: cfg.Minio.BucketName,
	}
}

func (s *minioObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (s *minioObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}
