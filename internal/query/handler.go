package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/readmodel"
	"github.com/shopspring/decimal"
)

// ErrCatalogUnavailable is returned for any storage failure on the read path.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

const (
	DefaultCategoryLimit = 10
	DefaultFeaturedLimit = 8
	DefaultSearchLimit   = 20
)

type Config struct {
	MaxPageSize int
	Pricing     cart.Pricing
}

type Handler struct {
	products store.ProductStore
	users    store.UserStore
	cfg      Config
	logger   *slog.Logger
}

func NewHandler(products store.ProductStore, users store.UserStore, cfg Config, logger *slog.Logger) *Handler {
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = DefaultMaxPage
	}
	if cfg.Pricing == (cart.Pricing{}) {
		cfg.Pricing = cart.DefaultPricing()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		products: products,
		users:    users,
		cfg:      cfg,
		logger:   logger.With("component", "query"),
	}
}

func catalogUnavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
}

// Products

func (h *Handler) ListProducts(ctx context.Context, q ListingQuery) (*readmodel.ProductPage, error) {
	q = q.normalize(h.cfg.MaxPageSize)
	offset := (q.Page - 1) * q.Limit

	products, total, err := h.products.Find(ctx, q.filter(), q.Sort, offset, q.Limit)
	if err != nil {
		h.logger.Error("list products failed", "error", err)
		return nil, catalogUnavailable(err)
	}

	totalPages := (total + q.Limit - 1) / q.Limit
	if totalPages < 1 {
		totalPages = 1
	}

	return &readmodel.ProductPage{
		Products: products,
		Pagination: readmodel.Pagination{
			CurrentPage:   q.Page,
			TotalPages:    totalPages,
			TotalProducts: total,
			HasNext:       offset+q.Limit < total,
			HasPrev:       q.Page > 1,
		},
	}, nil
}

// GetProduct is a point lookup and does not hide inactive products.
func (h *Handler) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	p, err := h.products.GetByID(ctx, id)
	if errors.Is(err, product.ErrProductNotFound) {
		return nil, err
	}
	if err != nil {
		h.logger.Error("get product failed", "product_id", id, "error", err)
		return nil, catalogUnavailable(err)
	}
	return p, nil
}

func (h *Handler) ProductsByCategory(ctx context.Context, category string, limit int) ([]*product.Product, error) {
	f := store.ProductFilter{ActiveOnly: true}
	if category != product.CategoryAll {
		f.Category = category
	}
	return h.flat(ctx, "category", f, limit)
}

func (h *Handler) FeaturedProducts(ctx context.Context, limit int) ([]*product.Product, error) {
	return h.flat(ctx, "featured", store.ProductFilter{ActiveOnly: true, FeaturedOnly: true}, limit)
}

// SearchProducts matches the text as a substring of name, description, brand
// or any tag.
func (h *Handler) SearchProducts(ctx context.Context, text string, limit int) ([]*product.Product, error) {
	f := store.ProductFilter{ActiveOnly: true, Text: text, TextTags: store.TagContains}
	return h.flat(ctx, "search", f, limit)
}

func (h *Handler) flat(ctx context.Context, op string, f store.ProductFilter, limit int) ([]*product.Product, error) {
	limit = clampLimit(limit, h.cfg.MaxPageSize)
	products, _, err := h.products.Find(ctx, f, store.NaturalSort, 0, limit)
	if err != nil {
		h.logger.Error("product listing failed", "op", op, "error", err)
		return nil, catalogUnavailable(err)
	}
	return products, nil
}

// Cart and wishlist

func (h *Handler) loadUser(ctx context.Context, userID string) (*user.User, error) {
	u, err := h.users.GetByID(ctx, userID)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, catalogUnavailable(err)
	}
	return u, nil
}

func (h *Handler) GetCart(ctx context.Context, userID string) ([]readmodel.CartItem, error) {
	u, err := h.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return h.HydrateCart(ctx, userID, u.Cart)
}

// HydrateCart resolves cart lines in insertion order. Lines whose product no
// longer exists are left out.
func (h *Handler) HydrateCart(ctx context.Context, userID string, c cart.Cart) ([]readmodel.CartItem, error) {
	resolved, err := h.products.GetByIDs(ctx, c.ProductIDs())
	if err != nil {
		h.logger.Error("hydrate cart failed", "user_id", userID, "error", err)
		return nil, catalogUnavailable(err)
	}

	items := make([]readmodel.CartItem, 0, len(c))
	for _, line := range c {
		p, ok := resolved[line.ProductID]
		if !ok {
			h.logger.Warn("skipping unresolved cart item", "user_id", userID, "product_id", line.ProductID)
			continue
		}
		items = append(items, readmodel.CartItem{ID: line.ID, Product: p, Quantity: line.Quantity})
	}
	return items, nil
}

func (h *Handler) GetWishlist(ctx context.Context, userID string) ([]*product.Product, error) {
	u, err := h.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return h.HydrateWishlist(ctx, userID, u.Wishlist)
}

// HydrateWishlist resolves wishlist ids in insertion order, skipping ids that
// no longer resolve.
func (h *Handler) HydrateWishlist(ctx context.Context, userID string, w cart.Wishlist) ([]*product.Product, error) {
	resolved, err := h.products.GetByIDs(ctx, w)
	if err != nil {
		h.logger.Error("hydrate wishlist failed", "user_id", userID, "error", err)
		return nil, catalogUnavailable(err)
	}

	products := make([]*product.Product, 0, len(w))
	for _, id := range w {
		p, ok := resolved[id]
		if !ok {
			h.logger.Warn("skipping unresolved wishlist item", "user_id", userID, "product_id", id)
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (h *Handler) CartSummary(ctx context.Context, userID string) (*readmodel.CartSummary, error) {
	items, err := h.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return h.Summarize(items), nil
}

// Summarize applies the pricing policy to already hydrated items.
func (h *Handler) Summarize(items []readmodel.CartItem) *readmodel.CartSummary {
	lines := make([]cart.PricedLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, cart.PricedLine{
			UnitPrice: decimal.NewFromFloat(it.Product.Price),
			Quantity:  it.Quantity,
		})
	}
	s := h.cfg.Pricing.Compute(lines)

	return &readmodel.CartSummary{
		Items:     items,
		ItemCount: s.ItemCount,
		Subtotal:  s.Subtotal.Round(2).InexactFloat64(),
		Shipping:  s.Shipping.InexactFloat64(),
		Tax:       s.Tax.InexactFloat64(),
		Total:     s.Total.InexactFloat64(),
	}
}
