package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/rahmatagung/scorecenter/internal/platform/resilience"

	_ "github.com/lib/pq"
)

// PostgresStore is the persistent variant of the cache layer, backed by the
// cache_entries table (see migrations). Values are stored as sonic-marshaled
// blobs; Get hands raw bytes back as []byte. Expiry is enforced in the read
// query, mirroring the in-memory store's lazy semantics, plus an occasional
// sweep on write so dead rows do not pile up.
type PostgresStore struct {
	db         *sqlx.DB
	defaultTTL time.Duration
	flight     resilience.SingleFlight

	sweepEvery time.Duration
	sweepMu    sync.Mutex
	lastSweep  time.Time
}

func NewPostgresStore(ctx context.Context, dbURL string, defaultTTL time.Duration) (*PostgresStore, error) {
	db, err := otelsqlx.ConnectContext(ctx, "postgres", dbURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		return nil, fmt.Errorf("connect cache database: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresStore{
		db:         db,
		defaultTTL: defaultTTL,
		sweepEvery: 10 * time.Minute,
	}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Get(ctx context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	var value []byte
	err := s.db.GetContext(ctx, &value,
		`SELECT value FROM cache_entries WHERE key = $1 AND expires_at > now()`, key)
	if err != nil {
		return nil, false
	}

	return value, true
}

func (s *PostgresStore) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if key == "" {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if ttl <= 0 {
		return
	}

	blob, ok := value.([]byte)
	if !ok {
		marshaled, err := sonic.Marshal(value)
		if err != nil {
			return
		}
		blob = marshaled
	}

	_, _ = s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, expires_at)
		 VALUES ($1, $2, now() + $3 * interval '1 second')
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		key, blob, int64(ttl/time.Second))

	s.maybeSweep(ctx)
}

func (s *PostgresStore) Delete(ctx context.Context, key string) {
	if key == "" {
		return
	}
	_, _ = s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = $1`, key)
}

func (s *PostgresStore) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) (any, error)) (any, error) {
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

func (s *PostgresStore) maybeSweep(ctx context.Context) {
	if !s.shouldSweep(time.Now()) {
		return
	}
	_, _ = s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at <= now()`)
}

// shouldSweep claims the current sweep interval. Set is called from
// concurrent request goroutines, so the claim has to be serialized; at most
// one caller per interval gets true.
func (s *PostgresStore) shouldSweep(now time.Time) bool {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	if now.Sub(s.lastSweep) < s.sweepEvery {
		return false
	}
	s.lastSweep = now
	return true
}

// Ping verifies the cache database is reachable; used by the health endpoint.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		if errors.Is(err, sql.ErrConnDone) {
			return fmt.Errorf("cache database connection closed: %w", err)
		}
		return fmt.Errorf("ping cache database: %w", err)
	}
	return nil
}
