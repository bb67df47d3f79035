package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"eventops-platform/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client wraps the object store holding uploaded incident media.
// Credentials stay here; they are never handed to uploading clients.
type Client struct {
	mc     *minio.Client
	bucket string
}

func NewClient(ctx context.Context, cfg config.StorageConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage client init: %w", err)
	}

	c := &Client{mc: mc, bucket: cfg.Bucket}
	if err := c.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context, region string) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("bucket check %s: %w", c.bucket, err)
	}
	if exists {
		return nil
	}
	if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("bucket create %s: %w", c.bucket, err)
	}
	return nil
}

// Put writes one object. Callers must only reach this through EnforcedStore;
// nothing else in the process may write to the bucket.
func (c *Client) Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	_, err := c.mc.PutObject(ctx, c.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// PresignedGet returns a time-limited read URL for serving stored media.
func (c *Client) PresignedGet(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	u, err := c.mc.PresignedGetObject(ctx, c.bucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
