// Package s3store keeps drawings in an S3-compatible bucket through minio-go.
package s3store

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/varix-web/drawings"
	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var _ drawings.ObjectStore = (*Store)(nil)

type Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

type Store struct {
	client *mclient.Client
	bucket string
}

// New builds the client and checks that the bucket exists. The endpoint
// may carry a scheme, which then decides whether TLS is used.
func New(ctx context.Context, opts Options) (*Store, error) {
	const op = "drawings/s3store/New"

	endpoint := opts.Endpoint
	secure := true
	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, opts.Bucket)
	}

	return &Store{client: client, bucket: opts.Bucket}, nil
}

func (s *Store) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	const op = "drawings/s3store/Put"

	_, err := s.client.StatObject(ctx, s.bucket, path, mclient.StatObjectOptions{})
	if err == nil {
		return fmt.Errorf("%s: %w", op, apperrors.ErrAlreadyExists)
	}
	if !isNotFound(err) {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, path, r, size, mclient.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "max-age=" + drawings.CacheControl,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, path string) error {
	const op = "drawings/s3store/Remove"

	if err := s.client.RemoveObject(ctx, s.bucket, path, mclient.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	const op = "drawings/s3store/SignedURL"

	u, err := s.client.PresignedGetObject(ctx, s.bucket, path, ttl, url.Values{})
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return u.String(), nil
}

func isNotFound(err error) bool {
	resp := mclient.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == 404 || strings.EqualFold(resp.Code, "NotFound")
}
