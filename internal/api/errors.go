package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/query"
)

const serverErrorMessage = "Server error"

type messageResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, messageResponse{Message: message})
}

// clientErrors are the failures a caller can fix by changing the request.
var clientErrors = []struct {
	err     error
	status  int
	message string
}{
	{product.ErrProductNotFound, http.StatusNotFound, "Product not found"},
	{cart.ErrItemNotInCart, http.StatusNotFound, "Item not found in cart"},
	{user.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{user.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{user.ErrEmailTaken, http.StatusConflict, "User already exists"},
	{cart.ErrInvalidQuantity, http.StatusBadRequest, ""},
	{cart.ErrInvalidProduct, http.StatusBadRequest, ""},
	{query.ErrInvalidQuery, http.StatusBadRequest, ""},
	{user.ErrInvalidEmail, http.StatusBadRequest, ""},
	{user.ErrInvalidName, http.StatusBadRequest, ""},
	{auth.ErrPasswordTooShort, http.StatusBadRequest, ""},
	{product.ErrInvalidName, http.StatusBadRequest, ""},
	{product.ErrInvalidPrice, http.StatusBadRequest, ""},
	{product.ErrInvalidStock, http.StatusBadRequest, ""},
	{product.ErrInvalidRating, http.StatusBadRequest, ""},
	{product.ErrInvalidCategory, http.StatusBadRequest, ""},
}

// classify maps an error to a status and a caller-facing message. An empty
// mapped message means the error text itself is safe to show.
func classify(err error) (int, string) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Error()
	}
	for _, ce := range clientErrors {
		if errors.Is(err, ce.err) {
			if ce.message == "" {
				return ce.status, err.Error()
			}
			return ce.status, ce.message
		}
	}
	return http.StatusInternalServerError, serverErrorMessage
}

// writeError responds with the classified status. Server errors are logged and
// their detail is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	respondError(w, status, message)
}
