package drawings

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	Bucket       = "drawings"
	MaxFileSize  = 50 << 20
	ListLimit    = 50
	SignedURLTTL = 600 * time.Second
	CacheControl = "3600"
)

var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// File is one row of the drawing_files table.
type File struct {
	ID          string    `json:"id,omitempty"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	StoragePath string    `json:"storage_path"`
	SizeBytes   int64     `json:"size_bytes"`
	MimeType    string    `json:"mime_type"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

func NewFile(userID, name, storagePath string, size int64, mimeType string) *File {
	return &File{
		UserID:      userID,
		Name:        name,
		StoragePath: storagePath,
		SizeBytes:   size,
		MimeType:    mimeType,
	}
}

func (f File) DisplaySize() string {
	return FormatSize(f.SizeBytes)
}

func (f File) DisplayDate() string {
	return FormatDate(f.CreatedAt)
}

// Repo stores drawing records. Every call is scoped to the owning user.
type Repo interface {
	Insert(ctx context.Context, f *File) error
	// ListByUser returns the newest records first.
	ListByUser(ctx context.Context, userID string, limit int) ([]File, error)
	Get(ctx context.Context, userID, id string) (*File, error)
	Delete(ctx context.Context, userID, id string) error
}

// ObjectStore holds the uploaded files. Put never overwrites; an existing
// object yields errors.ErrAlreadyExists.
type ObjectStore interface {
	Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, path string) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// IsAllowed reports whether name has an accepted extension.
func IsAllowed(name string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ContentType returns the declared type, or one derived from the extension
// when the browser sent nothing useful.
func ContentType(name, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if ct, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

func SanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// StoragePath builds "{user}/{yyyy-mm}/{unix millis}_{name}" in UTC.
func StoragePath(userID, name string, now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("%s/%s/%d_%s", userID, now.Format("2006-01"), now.UnixMilli(), SanitizeName(name))
}

func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 Jan 2006")
}
