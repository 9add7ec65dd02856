package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Clock supplies the timestamps repositories write.
type Clock func() time.Time

// Option customizes a Base.
type Option func(*Base)

// WithClock overrides the wall clock, mostly for tests.
func WithClock(clock Clock) Option {
	return func(b *Base) {
		if clock != nil {
			b.now = clock
		}
	}
}

// Base provides a shared foundation for domain repositories.
type Base struct {
	db  *gorm.DB
	now Clock
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB, opts ...Option) Base {
	b := Base{db: db, now: time.Now}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Tx returns a copy of b that issues every query on tx.
func (b Base) Tx(tx *gorm.DB) Base {
	return Base{db: tx, now: b.now}
}

// Now is the UTC timestamp written to created/updated columns.
func (b Base) Now() time.Time {
	return b.now().UTC()
}
