package supabase

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/varix-web/drawings"
)

const storagePath = "/storage/v1"

var _ drawings.ObjectStore = (*StorageBucket)(nil)

// StorageBucket is a bucket of the project's Storage API. Calls act as the
// user whose access token is in the context.
type StorageBucket struct {
	client *Client
	bucket string
}

func (c *Client) Storage(bucket string) *StorageBucket {
	return &StorageBucket{client: c, bucket: bucket}
}

func (s *StorageBucket) objectPath(prefix, path string) string {
	return storagePath + prefix + "/" + s.bucket + "/" + strings.TrimPrefix(path, "/")
}

// Put uploads without upsert, so an existing object is an error.
func (s *StorageBucket) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	header := http.Header{}
	header.Set("Content-Type", contentType)
	header.Set("Cache-Control", "max-age="+drawings.CacheControl)
	header.Set("x-upsert", "false")

	return s.client.do(ctx, request{
		method: http.MethodPost,
		path:   s.objectPath("/object", path),
		header: header,
		body:   r,
		size:   size,
	}, nil)
}

func (s *StorageBucket) Remove(ctx context.Context, path string) error {
	var removed []map[string]any
	return s.client.do(ctx, request{
		method: http.MethodDelete,
		path:   storagePath + "/object/" + s.bucket,
		json:   map[string][]string{"prefixes": {path}},
	}, &removed)
}

func (s *StorageBucket) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	var resp struct {
		SignedURL string `json:"signedURL"`
	}
	err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   s.objectPath("/object/sign", path),
		json:   map[string]int64{"expiresIn": int64(ttl / time.Second)},
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.SignedURL == "" {
		return "", nil
	}
	return s.client.BaseURL() + storagePath + resp.SignedURL, nil
}
