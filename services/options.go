package services

import (
	"MediCitas/database"
	"MediCitas/metrics"
	"MediCitas/models"
	"MediCitas/repositories"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// PasswordHasher hashes credentials before they are stored and checks them on login.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Locker serializes work on a key across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// Notifier delivers cita confirmations.
type Notifier interface {
	NotifyCita(ctx context.Context, cita models.Cita, subject string) error
}

// ListingCache stores read-mostly listings.
type ListingCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type deps struct {
	log      *zap.Logger
	locker   Locker
	cache    ListingCache
	notifier Notifier
	metrics  *metrics.Collector
}

type Option func(*deps)

func WithLogger(log *zap.Logger) Option { return func(d *deps) { d.log = log } }

func WithLocker(l Locker) Option { return func(d *deps) { d.locker = l } }

func WithCache(c ListingCache) Option { return func(d *deps) { d.cache = c } }

func WithNotifier(n Notifier) Option { return func(d *deps) { d.notifier = n } }

func WithMetrics(m *metrics.Collector) Option { return func(d *deps) { d.metrics = m } }

func newDeps(opts []Option) deps {
	d := deps{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// lock takes key when a Locker is configured. A busy key is reported as a conflict.
func (d deps) lock(ctx context.Context, key, busyReason string) (func(), error) {
	if d.locker == nil {
		return func() {}, nil
	}
	release, err := d.locker.Lock(ctx, key)
	if err != nil {
		if errors.Is(err, database.ErrLockNotAcquired) {
			return nil, &models.ConflictError{Reason: busyReason}
		}
		return nil, err
	}
	return release, nil
}

// duplicateAsConflict turns a unique-constraint violation into a ConflictError.
func duplicateAsConflict(err error, reason string) error {
	if errors.Is(err, repositories.ErrDuplicateKey) {
		return &models.ConflictError{Reason: reason}
	}
	return err
}
