package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/valenante/alef-gateway/internal/config"
)

// MinioArchive implements ObjectStorage over any S3-compatible service.
type MinioArchive struct {
	client *minio.Client
	bucket string
}

func NewMinioArchive(cfg config.ArchiveConfig) (*MinioArchive, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("archive endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("archive credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket must be provided")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("could not build archive client: %w", err)
	}

	return &MinioArchive{client: client, bucket: cfg.Bucket}, nil
}

func (a *MinioArchive) Upload(ctx context.Context, key, contentType string, data []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("could not upload %s: %w", key, err)
	}
	return nil
}

func (a *MinioArchive) Download(ctx context.Context, key string) ([]byte, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("could not fetch %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", key, err)
	}
	return data, nil
}

func (a *MinioArchive) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("could not list archive objects: %w", obj.Err)
		}
		out = append(out, ObjectInfo{Key: obj.Key, Size: obj.Size})
	}
	return out, nil
}
