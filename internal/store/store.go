package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/five82/jotter/internal/item"
)

// Store is the durable collection of items.
type Store interface {
	Insert(ctx context.Context, in item.Input) (item.Item, error)
	Find(ctx context.Context, id string) (item.Item, error)
	FindAll(ctx context.Context) ([]item.Item, error)
	Update(ctx context.Context, id string, patch item.Patch) (item.Item, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Ensure both implementations satisfy Store at compile time.
var (
	_ Store = (*SQLite)(nil)
	_ Store = (*Memory)(nil)
)

// ErrIDExhausted is returned when the id generator keeps producing ids that
// were already issued.
var ErrIDExhausted = errors.New("could not allocate an unused id")

// maxIDAttempts bounds retries when a generated id collides with an issued one.
const maxIDAttempts = 3

// Clock returns the current time.
type Clock func() time.Time

// IDGenerator returns a fresh opaque identifier.
type IDGenerator func() string

// Option configures a store.
type Option func(*options)

type options struct {
	now   Clock
	newID IDGenerator
}

// WithClock overrides the time source used for createdAt/updatedAt.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.now = c
		}
	}
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) {
		if g != nil {
			o.newID = g
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		newID: NewUUIDv7,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewUUIDv7 returns a time-sortable UUIDv7 string.
func NewUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// nextUpdatedAt keeps updatedAt monotonic even if the wall clock steps back.
func nextUpdatedAt(now, prev time.Time) time.Time {
	if now.Before(prev) {
		return prev
	}
	return now
}
