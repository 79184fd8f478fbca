package supabase

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/varix-web/drawings"
	apperrors "github.com/jrsteele09/varix-web/internal/errors"
)

const restPath = "/rest/v1"

var _ drawings.Repo = (*DrawingFiles)(nil)

// DrawingFiles reads and writes the drawing_files table through the
// project's REST API, as the user in the context.
type DrawingFiles struct {
	client *Client
	table  string
}

func (c *Client) DrawingFiles() *DrawingFiles {
	return &DrawingFiles{client: c, table: "drawing_files"}
}

func (d *DrawingFiles) Insert(ctx context.Context, f *drawings.File) error {
	header := http.Header{}
	header.Set("Prefer", "return=representation")

	var rows []drawings.File
	err := d.client.do(ctx, request{
		method: http.MethodPost,
		path:   restPath + "/" + d.table,
		header: header,
		json: map[string]any{
			"user_id":      f.UserID,
			"name":         f.Name,
			"storage_path": f.StoragePath,
			"size_bytes":   f.SizeBytes,
			"mime_type":    f.MimeType,
		},
	}, &rows)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		f.ID = rows[0].ID
		f.CreatedAt = rows[0].CreatedAt
	}
	return nil
}

func (d *DrawingFiles) ListByUser(ctx context.Context, userID string, limit int) ([]drawings.File, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+userID)
	q.Set("order", "created_at.desc")
	q.Set("limit", strconv.Itoa(limit))

	var rows []drawings.File
	err := d.client.do(ctx, request{
		method: http.MethodGet,
		path:   restPath + "/" + d.table,
		query:  q,
	}, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *DrawingFiles) Get(ctx context.Context, userID, id string) (*drawings.File, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "eq."+id)
	q.Set("user_id", "eq."+userID)

	var rows []drawings.File
	err := d.client.do(ctx, request{
		method: http.MethodGet,
		path:   restPath + "/" + d.table,
		query:  q,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &rows[0], nil
}

func (d *DrawingFiles) Delete(ctx context.Context, userID, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("user_id", "eq."+userID)

	header := http.Header{}
	header.Set("Prefer", "return=representation")

	var rows []drawings.File
	err := d.client.do(ctx, request{
		method: http.MethodDelete,
		path:   restPath + "/" + d.table,
		query:  q,
		header: header,
	}, &rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
