package api

import (
	"log/slog"
	"net/http"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/query"
	"github.com/example/ec-storefront/internal/seed"
)

// Options holds HTTP-level settings shared by the handler sets.
type Options struct {
	MaxBodyBytes int64
	CookieSecure bool
}

func (o Options) maxBody() int64 {
	if o.MaxBodyBytes <= 0 {
		return 1 << 20
	}
	return o.MaxBodyBytes
}

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	opts         Options
	logger       *slog.Logger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, opts Options, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		opts:         opts,
		logger:       logger.With("component", "api"),
	}
}

// Request bodies

type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"omitempty,min=1"`
}

// UpdateCartRequest allows zero and negative quantities; both remove the line.
type UpdateCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"required"`
}

type WishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	q, err := query.ParseListingQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	page, err := h.queryHandler.ListProducts(r.Context(), q)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.queryHandler.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) GetProductsByCategory(w http.ResponseWriter, r *http.Request) {
	limit, err := query.ParseLimit(r.URL.Query(), query.DefaultCategoryLimit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	products, err := h.queryHandler.ProductsByCategory(r.Context(), r.PathValue("category"), limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetFeaturedProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := query.ParseLimit(r.URL.Query(), query.DefaultFeaturedLimit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	products, err := h.queryHandler.FeaturedProducts(r.Context(), limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) SearchProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := query.ParseLimit(r.URL.Query(), query.DefaultSearchLimit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	products, err := h.queryHandler.SearchProducts(r.Context(), r.PathValue("query"), limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// SeedProducts replaces the catalog with the bundled sample products.
func (h *Handlers) SeedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := seed.Products()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	count, err := h.cmdHandler.SeedCatalog(r.Context(), command.SeedCatalog{Products: products})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Products seeded successfully",
		"count":   count,
	})
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.queryHandler.GetCart(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handlers) GetCartSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.queryHandler.CartSummary(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// AddToCart treats an omitted quantity as 1.
func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := decodeJSON(w, r, h.opts.maxBody(), &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	items, err := h.cmdHandler.AddToCart(r.Context(), command.AddToCart{
		UserID:    middleware.GetUserID(r.Context()),
		ProductID: req.ProductID,
		Quantity:  quantity,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateCartRequest
	if err := decodeJSON(w, r, h.opts.maxBody(), &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	items, err := h.cmdHandler.UpdateCartItem(r.Context(), command.UpdateCartItem{
		UserID:    middleware.GetUserID(r.Context()),
		ProductID: req.ProductID,
		Quantity:  *req.Quantity,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.cmdHandler.RemoveFromCart(r.Context(), command.RemoveFromCart{
		UserID:    middleware.GetUserID(r.Context()),
		ProductID: r.PathValue("productId"),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.cmdHandler.ClearCart(r.Context(), command.ClearCart{
		UserID: middleware.GetUserID(r.Context()),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Wishlist Handlers

func (h *Handlers) GetWishlist(w http.ResponseWriter, r *http.Request) {
	products, err := h.queryHandler.GetWishlist(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var req WishlistRequest
	if err := decodeJSON(w, r, h.opts.maxBody(), &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	products, err := h.cmdHandler.AddToWishlist(r.Context(), command.AddToWishlist{
		UserID:    middleware.GetUserID(r.Context()),
		ProductID: req.ProductID,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	products, err := h.cmdHandler.RemoveFromWishlist(r.Context(), command.RemoveFromWishlist{
		UserID:    middleware.GetUserID(r.Context()),
		ProductID: r.PathValue("productId"),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}
