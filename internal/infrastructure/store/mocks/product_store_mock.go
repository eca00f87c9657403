package mocks

import (
	"context"
	"sync"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

// MockProductStore is an in-memory ProductStore for testing. Insertion order
// is kept so ties in sorted results behave like the database.
type MockProductStore struct {
	mu       sync.RWMutex
	order    []string
	products map[string]*product.Product

	// Err, when set, is returned by every call.
	Err error

	// For tracking calls in tests
	GetByIDCalls    []string
	GetByIDsCalls   [][]string
	FindCalls       []FindCall
	InsertManyCalls int
	DeleteAllCalls  int
}

// FindCall records parameters passed to Find
type FindCall struct {
	Filter store.ProductFilter
	Sort   store.Sort
	Offset int
	Limit  int
}

var _ store.ProductStore = (*MockProductStore)(nil)

func NewMockProductStore(products ...*product.Product) *MockProductStore {
	m := &MockProductStore{products: make(map[string]*product.Product)}
	for _, p := range products {
		m.put(p)
	}
	return m
}

func (m *MockProductStore) put(p *product.Product) {
	if _, exists := m.products[p.ID]; !exists {
		m.order = append(m.order, p.ID)
	}
	cp := *p
	m.products[p.ID] = &cp
}

func (m *MockProductStore) GetByID(ctx context.Context, id string) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetByIDCalls = append(m.GetByIDCalls, id)

	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProductStore) GetByIDs(ctx context.Context, ids []string) (map[string]*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetByIDsCalls = append(m.GetByIDsCalls, append([]string(nil), ids...))

	if m.Err != nil {
		return nil, m.Err
	}
	result := make(map[string]*product.Product, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			cp := *p
			result[id] = &cp
		}
	}
	return result, nil
}

func (m *MockProductStore) Find(ctx context.Context, filter store.ProductFilter, sort store.Sort, offset, limit int) ([]*product.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindCalls = append(m.FindCalls, FindCall{Filter: filter, Sort: sort, Offset: offset, Limit: limit})

	if m.Err != nil {
		return nil, 0, m.Err
	}

	matched := make([]*product.Product, 0)
	for _, id := range m.order {
		p := m.products[id]
		if filter.Matches(p) {
			cp := *p
			matched = append(matched, &cp)
		}
	}
	sort.Apply(matched)

	total := len(matched)
	if offset >= total {
		return []*product.Product{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *MockProductStore) InsertMany(ctx context.Context, products []*product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertManyCalls++

	if m.Err != nil {
		return m.Err
	}
	for _, p := range products {
		m.put(p)
	}
	return nil
}

func (m *MockProductStore) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteAllCalls++

	if m.Err != nil {
		return m.Err
	}
	m.order = nil
	m.products = make(map[string]*product.Product)
	return nil
}

// Count returns the number of stored products.
func (m *MockProductStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.products)
}
