package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rahmatagung/scorecenter/internal/platform/resilience"
)

// Key builds the deterministic request signature used to front adapter calls:
// provider, endpoint and the already-encoded parameter string.
func Key(provider, endpoint, params string) string {
	return provider + ":" + endpoint + ":" + params
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Store is the in-memory time-boxed key/value layer fronting provider calls.
// Entries are immutable once written and expire lazily at read time; a write
// always overwrites, so no background eviction is needed.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	flight     resilience.SingleFlight
}

func NewStore(defaultTTL time.Duration) *Store {
	return &Store{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	now := time.Now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(now) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// Set stores value under key for ttl. A non-positive ttl falls back to the
// store default; a zero default keeps the entry until overwritten.
func (s *Store) Set(_ context.Context, key string, value any, ttl time.Duration) {
	if key == "" {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	expiresAt := time.Time{}
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry{
		value:     value,
		expiresAt: expiresAt,
	}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// DeletePrefix drops every entry for one provider, e.g. after a breaker trips
// on payloads that turned out to be garbage.
func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

// GetOrLoad returns the cached value or loads it exactly once across
// concurrent callers, writing the loaded value back with ttl.
func (s *Store) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded, ttl)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}
