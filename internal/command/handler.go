package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/ec-storefront/internal/activity"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/query"
	"github.com/example/ec-storefront/internal/readmodel"
)

// Handler applies cart and wishlist mutations. Each mutation is one
// read-modify-write of the user aggregate followed by a hydrated read.
type Handler struct {
	products  store.ProductStore
	users     store.UserStore
	query     *query.Handler
	publisher activity.Publisher
	logger    *slog.Logger

	publishTimeout time.Duration
}

// defaultPublishTimeout bounds how long a mutation waits on the broker after
// its response is ready.
const defaultPublishTimeout = 2 * time.Second

func NewHandler(
	products store.ProductStore,
	users store.UserStore,
	queryHandler *query.Handler,
	publisher activity.Publisher,
	logger *slog.Logger,
) *Handler {
	if publisher == nil {
		publisher = activity.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		products:  products,
		users:     users,
		query:     queryHandler,
		publisher: publisher,
		logger:    logger.With("component", "command"),

		publishTimeout: defaultPublishTimeout,
	}
}

// requireProduct fails with ErrProductNotFound when id does not resolve.
func (h *Handler) requireProduct(ctx context.Context, id string) error {
	_, err := h.products.GetByID(ctx, id)
	if err == nil || errors.Is(err, product.ErrProductNotFound) {
		return err
	}
	return fmt.Errorf("lookup product %s: %w", id, err)
}

// publish is best effort; the mutation is already persisted. It runs detached
// from the request deadline so a slow broker cannot fail the response.
func (h *Handler) publish(ctx context.Context, e activity.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.publishTimeout)
	defer cancel()
	if err := h.publisher.Publish(ctx, e); err != nil {
		h.logger.Warn("publish activity failed", "type", e.Type, "user_id", e.UserID, "error", err)
	}
}

// Cart

// AddToCart increments the line for the product, or appends one. Quantity is
// not checked against stock.
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) ([]readmodel.CartItem, error) {
	if cmd.ProductID == "" {
		return nil, cart.ErrInvalidProduct
	}
	if cmd.Quantity < 1 {
		return nil, cart.ErrInvalidQuantity
	}
	if err := h.requireProduct(ctx, cmd.ProductID); err != nil {
		return nil, err
	}

	u, err := h.users.Mutate(ctx, cmd.UserID, func(u *user.User) error {
		return u.Cart.Add(cmd.ProductID, cmd.Quantity)
	})
	if err != nil {
		return nil, err
	}

	items, err := h.query.HydrateCart(ctx, cmd.UserID, u.Cart)
	h.publish(ctx, activity.NewEvent(activity.CartItemAdded, cmd.UserID, cmd.ProductID, cmd.Quantity))
	return items, err
}

// UpdateCartItem overwrites the quantity of an existing line. A quantity of
// zero or less removes the line.
func (h *Handler) UpdateCartItem(ctx context.Context, cmd UpdateCartItem) ([]readmodel.CartItem, error) {
	if cmd.ProductID == "" {
		return nil, cart.ErrInvalidProduct
	}

	u, err := h.users.Mutate(ctx, cmd.UserID, func(u *user.User) error {
		return u.Cart.Update(cmd.ProductID, cmd.Quantity)
	})
	if err != nil {
		return nil, err
	}

	items, err := h.query.HydrateCart(ctx, cmd.UserID, u.Cart)
	if cmd.Quantity <= 0 {
		h.publish(ctx, activity.NewEvent(activity.CartItemRemoved, cmd.UserID, cmd.ProductID, 0))
	} else {
		h.publish(ctx, activity.NewEvent(activity.CartItemUpdated, cmd.UserID, cmd.ProductID, cmd.Quantity))
	}
	return items, err
}

// RemoveFromCart drops the line for the product. Removing an absent product
// succeeds and leaves the cart unchanged.
func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) ([]readmodel.CartItem, error) {
	if cmd.ProductID == "" {
		return nil, cart.ErrInvalidProduct
	}

	var removed bool
	u, err := h.users.Mutate(ctx, cmd.UserID, func(u *user.User) error {
		_, removed = u.Cart.Find(cmd.ProductID)
		u.Cart.Remove(cmd.ProductID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	items, err := h.query.HydrateCart(ctx, cmd.UserID, u.Cart)
	if removed {
		h.publish(ctx, activity.NewEvent(activity.CartItemRemoved, cmd.UserID, cmd.ProductID, 0))
	}
	return items, err
}

func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) ([]readmodel.CartItem, error) {
	u, err := h.users.Mutate(ctx, cmd.UserID, func(u *user.User) error {
		u.Cart.Clear()
		return nil
	})
	if err != nil {
		return nil, err
	}

	items, err := h.query.HydrateCart(ctx, cmd.UserID, u.Cart)
	h.publish(ctx, activity.NewEvent(activity.CartCleared, cmd.UserID, "", 0))
	return items, err
}

// Wishlist

// AddToWishlist adds the product once. Adding a product already present is a
// successful no-op. Unknown products are rejected, as for the cart.
func (h *Handler) AddToWishlist(ctx context.Context, cmd AddToWishlist) ([]*product.Product, error) {
	if cmd.ProductID == "" {
		return nil, cart.ErrInvalidProduct
	}
	if err := h.requireProduct(ctx, cmd.ProductID); err != nil {
		return nil, err
	}

	var added bool
	u, err := h.users.Mutate(ctx, cmd.UserID, func(u *user.User) error {
		var err error
		added, err = u.Wishlist.Add(cmd.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}

	products, err := h.query.HydrateWishlist(ctx, cmd.UserID, u.Wishlist)
	if added {
		h.publish(ctx, activity.NewEvent(activity.WishlistItemAdded, cmd.UserID, cmd.ProductID, 0))
	}
	return products, err
}

func (h *Handler) RemoveFromWishlist(ctx context.Context, cmd RemoveFromWishlist) ([]*product.Product, error) {
	if cmd.ProductID == "" {
		return nil, cart.ErrInvalidProduct
	}

	var removed bool
	u, err := h.users.Mutate(ctx, cmd.UserID, func(u *user.User) error {
		removed = u.Wishlist.Remove(cmd.ProductID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	products, err := h.query.HydrateWishlist(ctx, cmd.UserID, u.Wishlist)
	if removed {
		h.publish(ctx, activity.NewEvent(activity.WishlistItemRemoved, cmd.UserID, cmd.ProductID, 0))
	}
	return products, err
}

// Catalog

// SeedCatalog replaces the whole catalog. Every product is validated before
// anything is deleted. Delete and insert are separate steps, so a failed insert
// leaves the catalog empty.
func (h *Handler) SeedCatalog(ctx context.Context, cmd SeedCatalog) (int, error) {
	now := time.Now().UTC()
	for i, p := range cmd.Products {
		if p.ID == "" {
			p.ID = product.NewID()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if err := p.Validate(); err != nil {
			return 0, fmt.Errorf("product %d (%s): %w", i, p.Name, err)
		}
	}

	if err := h.products.DeleteAll(ctx); err != nil {
		return 0, fmt.Errorf("clear catalog: %w", err)
	}
	if err := h.products.InsertMany(ctx, cmd.Products); err != nil {
		return 0, fmt.Errorf("insert catalog: %w", err)
	}

	h.logger.Info("catalog seeded", "count", len(cmd.Products))
	return len(cmd.Products), nil
}
