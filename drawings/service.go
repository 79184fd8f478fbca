package drawings

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/rs/zerolog/log"
)

// Messages shown on the dashboard.
const (
	MsgInvalidType      = "Please upload PDF, PNG, or JPG files only."
	MsgListFailed       = "Failed to load your drawings. Please try again."
	MsgDeleteFailed     = "Failed to delete file. Please try again."
	MsgDeleteRowFailed  = "Failed to delete file record. Please try again."
	MsgNoSignedURL      = "No signed URL returned"
	msgTooLargePrefix   = "Files exceed 50MB limit: "
	msgUploadFailedPref = "Failed to upload %s: %s"
)

// Error carries the message shown to the user alongside its cause.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Upload is one file of a multipart batch.
type Upload struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// BatchResult lists what made it in and the errors for what did not.
type BatchResult struct {
	Uploaded []File
	Errors   []string
}

// Observer is told the outcome of each upload.
type Observer interface {
	Upload(outcome string, bytes int64)
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func WithObserver(o Observer) ServiceOption {
	return func(s *Service) {
		s.observer = o
	}
}

// Service uploads, lists, views and deletes a user's drawings.
type Service struct {
	repo     Repo
	store    ObjectStore
	now      func() time.Time
	observer Observer
}

func NewService(repo Repo, store ObjectStore, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckBatch drops files of the wrong type and rejects the whole batch if
// any remaining file is over the size limit.
func CheckBatch(files []Upload) ([]Upload, error) {
	valid := make([]Upload, 0, len(files))
	for _, f := range files {
		if IsAllowed(f.Name) {
			valid = append(valid, f)
		}
	}
	if len(valid) == 0 {
		return nil, &Error{Message: MsgInvalidType, Err: apperrors.ErrInvalidFileType}
	}

	var oversized []string
	for _, f := range valid {
		if f.Size > MaxFileSize {
			oversized = append(oversized, f.Name)
		}
	}
	if len(oversized) > 0 {
		return nil, &Error{Message: msgTooLargePrefix + strings.Join(oversized, ", "), Err: apperrors.ErrFileTooLarge}
	}
	return valid, nil
}

// UploadBatch uploads each file in turn. A failed file is reported and the
// rest still go ahead.
func (s *Service) UploadBatch(ctx context.Context, userID string, files []Upload) (*BatchResult, error) {
	valid, err := CheckBatch(files)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for _, f := range valid {
		rec, err := s.UploadOne(ctx, userID, f)
		if err != nil {
			log.Ctx(ctx).Err(err).Str("file", f.Name).Msg("Upload error")
			result.Errors = append(result.Errors, fmt.Sprintf(msgUploadFailedPref, f.Name, err.Error()))
			continue
		}
		result.Uploaded = append(result.Uploaded, *rec)
	}
	return result, nil
}

// UploadOne stores the object and then its record. The object is removed
// again when the record cannot be written.
func (s *Service) UploadOne(ctx context.Context, userID string, f Upload) (*File, error) {
	path := StoragePath(userID, f.Name, s.now())
	contentType := ContentType(f.Name, f.ContentType)

	body, err := f.Open()
	if err != nil {
		s.observe("error", 0)
		return nil, err
	}
	defer body.Close()

	if err := s.store.Put(ctx, path, body, f.Size, contentType); err != nil {
		s.observe("error", 0)
		return nil, err
	}

	rec := NewFile(userID, f.Name, path, f.Size, contentType)
	if err := s.repo.Insert(ctx, rec); err != nil {
		if rmErr := s.store.Remove(ctx, path); rmErr != nil {
			log.Ctx(ctx).Err(rmErr).Msg("Failed to remove orphaned upload")
		}
		s.observe("error", 0)
		return nil, err
	}

	s.observe("success", f.Size)
	return rec, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]File, error) {
	files, err := s.repo.ListByUser(ctx, userID, ListLimit)
	if err != nil {
		log.Ctx(ctx).Err(err).Msg("Failed to load drawings")
		return nil, &Error{Message: MsgListFailed, Err: err}
	}
	return files, nil
}

// ViewURL returns a short-lived link to the file.
func (s *Service) ViewURL(ctx context.Context, userID, id string) (string, error) {
	f, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}

	log.Ctx(ctx).Debug().Str("name", f.Name).Str("storage_path", f.StoragePath).Msg("Viewing file")

	u, err := s.store.SignedURL(ctx, f.StoragePath, SignedURLTTL)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("storage_path", f.StoragePath).Msg("createSignedUrl failed")
		return "", err
	}
	if u == "" {
		return "", &Error{Message: MsgNoSignedURL, Err: apperrors.ErrNotFound}
	}
	return u, nil
}

// Delete removes the object first and then its record.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	f, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return &Error{Message: MsgDeleteFailed, Err: err}
	}

	if err := s.store.Remove(ctx, f.StoragePath); err != nil {
		log.Ctx(ctx).Err(err).Msg("Failed to delete object")
		return &Error{Message: MsgDeleteFailed, Err: err}
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		log.Ctx(ctx).Err(err).Msg("Failed to delete file record")
		return &Error{Message: MsgDeleteRowFailed, Err: err}
	}
	return nil
}

func (s *Service) observe(outcome string, bytes int64) {
	if s.observer != nil {
		s.observer.Upload(outcome, bytes)
	}
}
