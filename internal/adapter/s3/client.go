// Package s3 fetches case-file blobs from the object store. The store is
// MinIO in every deployment, addressed through the S3 API with a custom
// endpoint and path-style access.
package s3

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Client struct {
	client  *s3.Client
	tempDir string
}

type Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	TempDir   string
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("object store endpoint not set")
	}
	if opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, fmt.Errorf("object store credentials not set")
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load object store config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	})

	return &Client{client: client, tempDir: opts.TempDir}, nil
}

// FetchToTemp downloads bucket/key into the scratch directory and returns
// the local path. The caller owns the file and is responsible for removing
// it when the item's processing ends.
func (c *Client) FetchToTemp(ctx context.Context, bucket, key string) (string, error) {
	resp, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	defer resp.Body.Close()

	dest := filepath.Join(c.tempDir, filepath.Base(key))
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create temp file %s: %w", dest, err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		if rmErr := os.Remove(dest); rmErr != nil {
			slog.Warn("failed to remove partial download", "path", dest, "error", rmErr)
		}
		return "", fmt.Errorf("download %s/%s: %w", bucket, key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file %s: %w", dest, err)
	}

	return dest, nil
}
