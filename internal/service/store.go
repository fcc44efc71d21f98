package service

import (
	"context"

	"github.com/wqam/backend/internal/model"
)

// AccountStore is the durable account storage the services operate on.
// *repository.AccountRepo is the production implementation; tests use an
// in-memory fake. Implementations must make Create, UpdateStatus and
// EnsureAdmin atomic read-check-write operations.
type AccountStore interface {
	Create(ctx context.Context, a *model.Account) (uint64, error)
	FindByEmail(ctx context.Context, email string) (model.Account, error)
	FindByID(ctx context.Context, id uint64) (model.Account, error)
	UpdateStatus(ctx context.Context, id uint64, status string) (model.Account, error)
	ListByStatus(ctx context.Context, status string) ([]model.Account, error)
	EnsureAdmin(ctx context.Context, a *model.Account) (bool, error)
}

// Notifier delivers a message to an account holder. Deliveries are
// best-effort: the services never let a notifier error fail the operation
// that triggered it.
type Notifier interface {
	Notify(ctx context.Context, address, subject, body string) error
}

// CacheInvalidator drops cached responses that a lifecycle mutation has made
// stale. A nil invalidator disables invalidation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}
