// Package storage persists the clinic's entity collections as JSON arrays
// in a key-value byte store. Every read returns a whole collection and every
// write replaces one.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dentalcare/internal/kv"
	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
	"github.com/jwalitptl/dentalcare/pkg/logger"
	"github.com/jwalitptl/dentalcare/pkg/metrics"
)

// Persisted keys.
const (
	KeyUsers       = "dentalUsers"
	KeyPatients    = "dentalPatients"
	KeyIncidents   = "dentalIncidents"
	KeySession     = "currentUser"
	KeyStatsPrefix = "stats-"
)

var (
	// ErrNotFound is matched with errors.Is when an update or delete names an absent id.
	ErrNotFound = errors.New("record not found")
	// ErrSerialization is matched with errors.Is when a stored value cannot be decoded.
	ErrSerialization = errors.New("stored value is corrupt")
	// ErrMissingPatient is matched with errors.Is when an incident write names
	// a patient that is not stored.
	ErrMissingPatient = errors.New("patient does not exist")
)

// IDFunc returns a new identifier carrying prefix.
type IDFunc func(prefix string) string

// NewID joins prefix with a random UUID. Unlike a millisecond timestamp it
// cannot collide for records created within the same clock tick.
func NewID(prefix string) string {
	return prefix + uuid.NewString()
}

// Option customizes an Adapter.
type Option func(*Adapter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// WithIDFunc replaces NewID.
func WithIDFunc(fn IDFunc) Option {
	return func(a *Adapter) { a.newID = fn }
}

// WithLogger sets the logger used for recoverable problems.
func WithLogger(l *logger.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// WithMetrics enables collection size gauges.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// Adapter is the persistent store adapter. Mutations that read, modify and
// write a collection hold mu, so callers sharing one Adapter never lose an
// update. Separate processes sharing a backend still race: the last full
// write wins.
type Adapter struct {
	kv      kv.Store
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   IDFunc
	mu      sync.Mutex
}

func New(store kv.Store, opts ...Option) *Adapter {
	a := &Adapter{
		kv:     store,
		logger: logger.Nop(),
		now:    time.Now,
		newID:  NewID,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Now returns the adapter clock's current time.
func (a *Adapter) Now() time.Time {
	return a.now()
}

// Ping checks the underlying store.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.kv.Ping(ctx)
}

// load decodes key into dst. found is false when the key is absent.
func (a *Adapter) load(ctx context.Context, key string, dst interface{}) (found bool, err error) {
	data, err := a.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Internal(fmt.Errorf("read %s: %w", key, err))
	}
	if err := json.Unmarshal(data, dst); err != nil {
		a.logger.Error(err, "stored value is corrupt", "key", key, "bytes", len(data))
		return true, apperrors.Serialization(key, fmt.Errorf("%w: %v", ErrSerialization, err))
	}
	return true, nil
}

func (a *Adapter) store(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperrors.Serialization(key, fmt.Errorf("%w: %v", ErrSerialization, err))
	}
	if err := a.kv.Set(ctx, key, data); err != nil {
		return apperrors.Internal(fmt.Errorf("write %s: %w", key, err))
	}
	return nil
}

func (a *Adapter) exists(ctx context.Context, key string) (bool, error) {
	_, err := a.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Internal(fmt.Errorf("read %s: %w", key, err))
	}
	return true, nil
}

func (a *Adapter) observeSize(collection string, n int) {
	if a.metrics != nil {
		a.metrics.CollectionSize.WithLabelValues(collection).Set(float64(n))
	}
}

func notFound(resource, id string) error {
	return apperrors.NotFound(resource, fmt.Errorf("%w: %s %s", ErrNotFound, resource, id))
}
