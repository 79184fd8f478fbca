package recoveryflow

import (
	"sync"
	"time"

	apperrors "github.com/jrsteele09/varix-web/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory Repo. Expired flows are removed on
// read and on every write.
type InMemoryRepo struct {
	mu    sync.Mutex
	flows map[string]*Flow
	ttl   time.Duration
	now   func() time.Time
}

func NewInMemoryRepo(ttl time.Duration) *InMemoryRepo {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InMemoryRepo{
		flows: make(map[string]*Flow),
		ttl:   ttl,
		now:   time.Now,
	}
}

// WithClock replaces the repo's clock.
func (r *InMemoryRepo) WithClock(now func() time.Time) *InMemoryRepo {
	r.now = now
	return r
}

func (r *InMemoryRepo) Upsert(flowID string, flow *Flow) error {
	if flowID == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "flow id cannot be empty")
	}
	if flow == nil {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "flow cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweep()
	f := *flow
	if f.CreatedAt.IsZero() {
		f.CreatedAt = r.now()
	}
	r.flows[flowID] = &f
	return nil
}

func (r *InMemoryRepo) Get(flowID string) (*Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.flows[flowID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if r.expired(f) {
		delete(r.flows, flowID)
		return nil, apperrors.ErrNotFound
	}
	out := *f
	return &out, nil
}

func (r *InMemoryRepo) Delete(flowID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flows, flowID)
	return nil
}

func (r *InMemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}

func (r *InMemoryRepo) expired(f *Flow) bool {
	return r.now().Sub(f.CreatedAt) > r.ttl
}

func (r *InMemoryRepo) sweep() {
	for id, f := range r.flows {
		if r.expired(f) {
			delete(r.flows, id)
		}
	}
}
