package mocks

import (
	"context"
	"sync"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

// MockUserStore is an in-memory UserStore for testing. Mutate holds the store
// lock while fn runs, which serializes mutations like the row lock does.
type MockUserStore struct {
	mu      sync.Mutex
	byID    map[string]*user.User
	byEmail map[string]string

	// Err, when set, is returned by every call.
	Err error

	// For tracking calls in tests
	CreateCalls int
	MutateCalls []string
}

var _ store.UserStore = (*MockUserStore)(nil)

func NewMockUserStore(users ...*user.User) *MockUserStore {
	m := &MockUserStore{
		byID:    make(map[string]*user.User),
		byEmail: make(map[string]string),
	}
	for _, u := range users {
		m.byID[u.ID] = clone(u)
		m.byEmail[u.Email] = u.ID
	}
	return m
}

func clone(u *user.User) *user.User {
	cp := *u
	cp.Cart = append(cart.Cart{}, u.Cart...)
	cp.Wishlist = append(cart.Wishlist{}, u.Wishlist...)
	return &cp
}

func (m *MockUserStore) Create(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++

	if m.Err != nil {
		return m.Err
	}
	if _, taken := m.byEmail[u.Email]; taken {
		return user.ErrEmailTaken
	}
	m.byID[u.ID] = clone(u)
	m.byEmail[u.Email] = u.ID
	return nil
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return clone(u), nil
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	id, ok := m.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return clone(m.byID[id]), nil
}

func (m *MockUserStore) Mutate(ctx context.Context, userID string, fn func(u *user.User) error) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MutateCalls = append(m.MutateCalls, userID)

	if m.Err != nil {
		return nil, m.Err
	}
	current, ok := m.byID[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}

	working := clone(current)
	if err := fn(working); err != nil {
		return nil, err
	}
	working.Touch()
	m.byID[userID] = working
	return clone(working), nil
}
