package repofake

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/varix-web/drawings"
	apperrors "github.com/jrsteele09/varix-web/internal/errors"
)

var (
	_ drawings.Repo        = (*FakeRepo)(nil)
	_ drawings.ObjectStore = (*FakeStore)(nil)
)

type FakeRepo struct {
	files map[string]drawings.File
	lock  sync.RWMutex
	now   func() time.Time

	InsertErr error
	ListErr   error
	DeleteErr error
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{files: make(map[string]drawings.File), now: time.Now}
}

func (r *FakeRepo) Insert(ctx context.Context, f *drawings.File) error {
	if r.InsertErr != nil {
		return r.InsertErr
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	f.ID = uuid.NewString()
	f.CreatedAt = r.now()
	r.files[f.ID] = *f
	return nil
}

func (r *FakeRepo) ListByUser(ctx context.Context, userID string, limit int) ([]drawings.File, error) {
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	r.lock.RLock()
	defer r.lock.RUnlock()

	out := make([]drawings.File, 0)
	for _, f := range r.files {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *FakeRepo) Get(ctx context.Context, userID, id string) (*drawings.File, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	f, ok := r.files[id]
	if !ok || f.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return &f, nil
}

func (r *FakeRepo) Delete(ctx context.Context, userID, id string) error {
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	f, ok := r.files[id]
	if !ok || f.UserID != userID {
		return apperrors.ErrNotFound
	}
	delete(r.files, id)
	return nil
}

// Seed stores f as-is, keeping its ID and CreatedAt.
func (r *FakeRepo) Seed(f drawings.File) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	r.files[f.ID] = f
}

func (r *FakeRepo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.files)
}

type FakeStore struct {
	objects map[string][]byte
	lock    sync.RWMutex

	PutErr    error
	RemoveErr error
	SignErr   error
	// SignedBase is prefixed to the path by SignedURL. Empty means no URL.
	SignedBase string
}

func NewFakeStore() *FakeStore {
	return &FakeStore{objects: make(map[string][]byte), SignedBase: "https://storage.example.com/signed/"}
}

func (s *FakeStore) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.objects[path]; ok {
		return apperrors.ErrAlreadyExists
	}
	s.objects[path] = buf.Bytes()
	return nil
}

func (s *FakeStore) Remove(ctx context.Context, path string) error {
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.objects, path)
	return nil
}

func (s *FakeStore) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if s.SignErr != nil {
		return "", s.SignErr
	}
	if s.SignedBase == "" {
		return "", nil
	}
	return s.SignedBase + path, nil
}

func (s *FakeStore) Object(path string) ([]byte, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	b, ok := s.objects[path]
	return b, ok
}

func (s *FakeStore) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.objects)
}
