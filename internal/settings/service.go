package settings

import (
	"context"
	"errors"
	"sync"
	"time"

	"farmdash/internal/table"
)

type Service struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Get returns the stored settings, or the defaults before the first save.
func (s *Service) Get(ctx context.Context) (*Settings, error) {
	stored, err := s.store.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		d := Default()
		return &d, nil
	}
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Update applies p over the current settings, validates the result and
// saves it. Concurrent updates are applied one after another.
func (s *Service) Update(ctx context.Context, p Patch) (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	next := p.Apply(*current)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// IsClientError reports whether err was caused by the submitted values.
func IsClientError(err error) bool {
	return table.IsValidation(err)
}
