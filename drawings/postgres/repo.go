// Package postgres stores drawing records in the drawing_files table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/varix-web/drawings"
	apperrors "github.com/jrsteele09/varix-web/internal/errors"
)

const (
	table         = "drawing_files"
	uniqueViolate = "23505"
	badUUID       = "22P02"
)

var _ drawings.Repo = (*Repo)(nil)

type Repo struct {
	pool *pgxpool.Pool
}

// NewPool parses dsn, connects and checks the connection within timeout.
func NewPool(ctx context.Context, dsn string, timeout time.Duration) (*pgxpool.Pool, error) {
	const op = "drawings/postgres/NewPool"

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pool, nil
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Insert(ctx context.Context, f *drawings.File) error {
	const op = "drawings/postgres/Insert"

	err := r.pool.QueryRow(ctx,
		`INSERT INTO `+table+` (user_id, name, storage_path, size_bytes, mime_type)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id::text, created_at`,
		f.UserID, f.Name, f.StoragePath, f.SizeBytes, f.MimeType,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string, limit int) ([]drawings.File, error) {
	const op = "drawings/postgres/ListByUser"

	rows, err := r.pool.Query(ctx,
		`SELECT id::text, user_id::text, name, storage_path, size_bytes, mime_type, created_at
		   FROM `+table+`
		  WHERE user_id = $1
		  ORDER BY created_at DESC
		  LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}

	files, err := pgx.CollectRows(rows, scanFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return files, nil
}

func (r *Repo) Get(ctx context.Context, userID, id string) (*drawings.File, error) {
	const op = "drawings/postgres/Get"

	rows, err := r.pool.Query(ctx,
		`SELECT id::text, user_id::text, name, storage_path, size_bytes, mime_type, created_at
		   FROM `+table+`
		  WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}

	f, err := pgx.CollectExactlyOneRow(rows, scanFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &f, nil
}

func (r *Repo) Delete(ctx context.Context, userID, id string) error {
	const op = "drawings/postgres/Delete"

	tag, err := r.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	return nil
}

func scanFile(row pgx.CollectableRow) (drawings.File, error) {
	var f drawings.File
	err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.StoragePath, &f.SizeBytes, &f.MimeType, &f.CreatedAt)
	return f, err
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolate:
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyExists, pgErr.Message)
		case badUUID:
			return apperrors.ErrNotFound
		}
	}
	return err
}
