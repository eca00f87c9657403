package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/user"
)

// ErrUnavailable marks failures of the persistence layer itself, as opposed
// to missing records or rejected input.
var ErrUnavailable = errors.New("storage unavailable")

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// ProductStore persists catalog records.
type ProductStore interface {
	// GetByID returns the product regardless of IsActive.
	GetByID(ctx context.Context, id string) (*product.Product, error)

	// GetByIDs resolves many ids at once. Ids that do not resolve are absent
	// from the returned map.
	GetByIDs(ctx context.Context, ids []string) (map[string]*product.Product, error)

	// Find returns one page of matching products plus the total number of
	// matches ignoring offset and limit.
	Find(ctx context.Context, filter ProductFilter, sort Sort, offset, limit int) ([]*product.Product, int, error)

	InsertMany(ctx context.Context, products []*product.Product) error
	DeleteAll(ctx context.Context) error
}

// UserStore persists user aggregates.
type UserStore interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)

	// Mutate loads the aggregate, applies fn and writes the aggregate back as
	// one atomic step. Nothing is written when fn returns an error.
	Mutate(ctx context.Context, userID string, fn func(u *user.User) error) (*user.User, error)
}
