package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"agrisense/api/internal/config"
	"agrisense/api/internal/ids"
)

type ObjectStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

type PresignedUpload struct {
	URL         string
	Key         string
	ContentType string
}

func NewObjectStore(cfg config.StorageConfig) (*ObjectStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &ObjectStore{
		client: client,
		cfg:    cfg,
	}, nil
}

func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.cfg.Bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
		}
	}
	return nil
}

// PresignUpload returns a short-lived PUT URL for a disease image owned by
// the given user. The caller uploads directly to object storage; the API
// only ever sees the resulting key.
func (s *ObjectStore) PresignUpload(ctx context.Context, userID string, ext string, contentType string) (PresignedUpload, error) {
	if ext == "" {
		ext = "jpg"
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := path.Join("users", userID, "disease", fmt.Sprintf("%s.%s", ids.New(), ext))

	u, err := s.client.PresignedPutObject(ctx, s.cfg.Bucket, key, s.cfg.PresignTTL)
	if err != nil {
		return PresignedUpload{}, fmt.Errorf("presign put: %w", err)
	}

	return PresignedUpload{
		URL:         u.String(),
		Key:         key,
		ContentType: contentType,
	}, nil
}
