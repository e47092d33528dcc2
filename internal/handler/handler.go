// Package handler exposes the storefront workflows over HTTP and owns the
// mapping from domain errors to status codes. Handlers stay thin: decode,
// delegate, encode.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/savesage/spices-api/internal/domain/cart"
	"github.com/savesage/spices-api/internal/domain/catalog"
	"github.com/savesage/spices-api/internal/domain/identity"
	"github.com/savesage/spices-api/internal/domain/order"
	"github.com/savesage/spices-api/internal/domain/review"
	"github.com/savesage/spices-api/internal/supabase"
)

// Handler routes API requests to the domain services.
type Handler struct {
	auth     identity.Authenticator
	identity *identity.Service
	catalog  *catalog.Service
	carts    *cart.Service
	orders   *order.Service
	reviews  *review.Service
}

// New constructs a Handler with the required domain dependencies.
func New(
	auth identity.Authenticator,
	identitySvc *identity.Service,
	catalogSvc *catalog.Service,
	cartSvc *cart.Service,
	orderSvc *order.Service,
	reviewSvc *review.Service,
) *Handler {
	return &Handler{
		auth:     auth,
		identity: identitySvc,
		catalog:  catalogSvc,
		carts:    cartSvc,
		orders:   orderSvc,
		reviews:  reviewSvc,
	}
}

// Routes returns the API mux. Health endpoints are mounted separately by the
// app so probes bypass the API middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/signup", h.signUp)
	mux.HandleFunc("POST /api/auth/login", h.logIn)
	mux.HandleFunc("POST /api/auth/logout", h.logOut)

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)

	mux.HandleFunc("GET /api/reviews/{productID}", h.listReviews)
	mux.HandleFunc("POST /api/reviews/{productID}", h.requireAuth(h.postReview))
	mux.HandleFunc("DELETE /api/reviews/{reviewID}", h.requireAuth(h.deleteReview))

	mux.HandleFunc("GET /api/cart", h.requireAuth(h.getCart))
	mux.HandleFunc("DELETE /api/cart", h.requireAuth(h.clearCart))
	mux.HandleFunc("POST /api/cart/items", h.requireAuth(h.addCartItem))
	mux.HandleFunc("PATCH /api/cart/items/{id}", h.requireAuth(h.updateCartItem))
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.requireAuth(h.removeCartItem))

	mux.HandleFunc("POST /api/orders", h.requireAuth(h.createOrder))
	mux.HandleFunc("GET /api/orders", h.requireAuth(h.listOrders))
	mux.HandleFunc("GET /api/orders/{id}", h.requireAuth(h.getOrder))

	return mux
}

// errorResponse is the error body shape for every failure.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Code: status, Message: message})
}

// respondDomainError maps a domain error onto the API's error taxonomy.
// Ownership failures on orders are already folded into ErrNotFound by the
// order service, so nothing here can distinguish them.
func (h *Handler) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, identity.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, identity.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, review.ErrProductNotFound),
		errors.Is(err, review.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrNoCart), errors.Is(err, order.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, review.ErrRatingOutOfRange):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, review.ErrDuplicate):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, review.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	default:
		var rejected *identity.RejectedError
		if errors.As(err, &rejected) {
			respondError(w, http.StatusBadRequest, rejected.Reason)
			return
		}
		var upstream *supabase.UpstreamError
		if errors.As(err, &upstream) {
			zctx.From(r.Context()).Error("Upstream failure", zap.Error(err))
			respondError(w, http.StatusBadGateway, "upstream service failure")
			return
		}
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody decodes a JSON request body, rejecting unknown shapes early.
func decodeBody(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return errors.Wrap(err, "decode body")
	}
	return nil
}
