package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/domain/user"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterConfig carries the collaborators and cross-cutting settings of the
// HTTP surface. RateLimiter and DB are optional.
type RouterConfig struct {
	Handlers       *Handlers
	Auth           *AuthHandlers
	JWT            *auth.JWTService
	DB             Pinger
	RateLimiter    *middleware.RateLimiter
	CORSOrigins    []string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// prefixes mounts every route both at the root and under /api, where the
// browser client expects them.
var prefixes = []string{"", "/api"}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	handlers := cfg.Handlers

	mux := http.NewServeMux()
	authed := middleware.AuthMiddleware(cfg.JWT)
	optional := middleware.OptionalAuthMiddleware(cfg.JWT)
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }
	admin := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(user.RoleAdmin)(h))
	}

	mux.Handle("GET /api/health", healthHandler(cfg.DB))

	for _, p := range prefixes {
		// Products
		mux.HandleFunc("GET "+p+"/products", handlers.GetProducts)
		mux.HandleFunc("GET "+p+"/products/{id}", handlers.GetProduct)
		mux.HandleFunc("GET "+p+"/products/category/{category}", handlers.GetProductsByCategory)
		mux.HandleFunc("GET "+p+"/products/featured/products", handlers.GetFeaturedProducts)
		mux.HandleFunc("GET "+p+"/products/search/{query}", handlers.SearchProducts)
		mux.Handle("POST "+p+"/products/seed", admin(handlers.SeedProducts))

		// Cart
		mux.Handle("GET "+p+"/cart", protect(handlers.GetCart))
		mux.Handle("GET "+p+"/cart/summary", protect(handlers.GetCartSummary))
		mux.Handle("POST "+p+"/cart/add", protect(handlers.AddToCart))
		mux.Handle("PUT "+p+"/cart/update", protect(handlers.UpdateCartItem))
		mux.Handle("DELETE "+p+"/cart/remove/{productId}", protect(handlers.RemoveFromCart))
		mux.Handle("POST "+p+"/cart/clear", protect(handlers.ClearCart))

		// Wishlist, at both its own path and nested under the cart
		for _, base := range []string{p + "/wishlist", p + "/cart/wishlist"} {
			mux.Handle("GET "+base, protect(handlers.GetWishlist))
			mux.Handle("POST "+base+"/add", protect(handlers.AddToWishlist))
			mux.Handle("DELETE "+base+"/remove/{productId}", protect(handlers.RemoveFromWishlist))
		}

		// Auth
		if cfg.Auth != nil {
			mux.HandleFunc("POST "+p+"/auth/register", cfg.Auth.Register)
			mux.HandleFunc("POST "+p+"/auth/login", cfg.Auth.Login)
			mux.Handle("POST "+p+"/auth/logout", optional(http.HandlerFunc(cfg.Auth.Logout)))
			mux.Handle("GET "+p+"/auth/me", protect(cfg.Auth.Me))
		}
	}

	chain := []func(http.Handler) http.Handler{
		middleware.Recover(logger),
		middleware.Logging(logger),
		middleware.CORS(cfg.CORSOrigins),
	}
	if cfg.RateLimiter != nil {
		chain = append(chain, cfg.RateLimiter.Middleware)
	}
	chain = append(chain, middleware.Timeout(cfg.RequestTimeout))

	return middleware.Chain(mux, chain...)
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		database := "Connected"
		if db == nil {
			database = "Disconnected"
		} else {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				database = "Disconnected"
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{
			"status":    "OK",
			"database":  database,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
