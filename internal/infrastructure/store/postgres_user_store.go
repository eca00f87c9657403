package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/lib/pq"
)

const userColumns = "id, email, password_hash, name, role, cart, wishlist, created_at, updated_at"

// uniqueViolation is the PostgreSQL SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

// PostgresUserStore keeps users in the users table with the cart and wishlist
// embedded as JSONB.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func scanUser(row rowScanner) (*user.User, error) {
	var (
		u                      user.User
		cartJSON, wishlistJSON []byte
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &cartJSON, &wishlistJSON, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Cart = cart.Cart{}
	if err := json.Unmarshal(cartJSON, &u.Cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	u.Wishlist = cart.Wishlist{}
	if err := json.Unmarshal(wishlistJSON, &u.Wishlist); err != nil {
		return nil, fmt.Errorf("decode wishlist: %w", err)
	}
	return &u, nil
}

func encodeLists(u *user.User) ([]byte, []byte, error) {
	c := u.Cart
	if c == nil {
		c = cart.Cart{}
	}
	w := u.Wishlist
	if w == nil {
		w = cart.Wishlist{}
	}
	cartJSON, err := json.Marshal(c)
	if err != nil {
		return nil, nil, fmt.Errorf("encode cart: %w", err)
	}
	wishlistJSON, err := json.Marshal(w)
	if err != nil {
		return nil, nil, fmt.Errorf("encode wishlist: %w", err)
	}
	return cartJSON, wishlistJSON, nil
}

func (s *PostgresUserStore) Create(ctx context.Context, u *user.User) error {
	cartJSON, wishlistJSON, err := encodeLists(u)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, cartJSON, wishlistJSON, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return user.ErrEmailTaken
		}
		return unavailable("create user", err)
	}
	return nil
}

func (s *PostgresUserStore) get(ctx context.Context, where string, arg any) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, unavailable("get user", err)
	}
	return u, nil
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	return s.get(ctx, "id = $1", id)
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.get(ctx, "email = $1", user.NormalizeEmail(email))
}

// Mutate locks the user row for the duration of fn so concurrent mutations of
// the same aggregate are serialized.
func (s *PostgresUserStore) Mutate(ctx context.Context, userID string, fn func(u *user.User) error) (*user.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin mutate", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1 FOR UPDATE", userID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, unavailable("load user", err)
	}

	if err := fn(u); err != nil {
		return nil, err
	}
	u.Touch()

	cartJSON, wishlistJSON, err := encodeLists(u)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE users SET cart = $2, wishlist = $3, updated_at = $4 WHERE id = $1`,
		u.ID, cartJSON, wishlistJSON, u.UpdatedAt,
	)
	if err != nil {
		return nil, unavailable("save user", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit mutate", err)
	}
	return u, nil
}
