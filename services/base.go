package services

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/table-order/utils"
	"gorm.io/gorm"
)

// Options tune how services talk to the database.
type Options struct {
	// QueryTimeout bounds every storage round-trip.
	QueryTimeout time.Duration
	// ReadRetries is the number of extra attempts for idempotent reads.
	ReadRetries  int
	RetryBackoff time.Duration
	Now          func() time.Time
}

func DefaultOptions() Options {
	return Options{
		QueryTimeout: 5 * time.Second,
		ReadRetries:  3,
		RetryBackoff: 50 * time.Millisecond,
		Now:          time.Now,
	}
}

type base struct {
	db   *gorm.DB
	opts Options
}

func newBase(db *gorm.DB, opts Options) base {
	def := DefaultOptions()
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = def.QueryTimeout
	}
	if opts.ReadRetries < 0 {
		opts.ReadRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = def.RetryBackoff
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	return base{db: db, opts: opts}
}

func (b *base) now() time.Time {
	return b.opts.Now()
}

// read runs an idempotent query, retrying transient storage failures.
func (b *base) read(ctx context.Context, op string, fn func(db *gorm.DB) error) error {
	return retryRead(ctx, b.opts.ReadRetries+1, b.opts.RetryBackoff, func() error {
		qctx, cancel := context.WithTimeout(ctx, b.opts.QueryTimeout)
		defer cancel()
		return classify(op, fn(b.db.WithContext(qctx)))
	})
}

// write runs fn in a single transaction. Writes are never retried.
func (b *base) write(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	qctx, cancel := context.WithTimeout(ctx, b.opts.QueryTimeout)
	defer cancel()
	return classify(op, b.db.WithContext(qctx).Transaction(fn))
}

// classify turns raw gorm errors into AppErrors; AppErrors pass through.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewNotFoundError(op, "record not found")
	}
	return utils.NewStorageError(op, err)
}
