package user

import (
	"errors"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/google/uuid"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("email is required")
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User is the aggregate that owns a shopper's cart and wishlist. A cart or
// wishlist mutation always reads and writes the whole aggregate.
type User struct {
	ID           string        `json:"_id"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	Name         string        `json:"name"`
	Role         string        `json:"role"`
	Cart         cart.Cart     `json:"cart"`
	Wishlist     cart.Wishlist `json:"wishlist"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// New builds a customer account with an empty cart and wishlist.
// passwordHash must already be hashed.
func New(email, name, passwordHash string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidEmail
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	now := time.Now().UTC()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         RoleCustomer,
		Cart:         cart.Cart{},
		Wishlist:     cart.Wishlist{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NormalizeEmail lowercases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Touch records a modification of the aggregate.
func (u *User) Touch() {
	u.UpdatedAt = time.Now().UTC()
}
