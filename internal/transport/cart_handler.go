package transport

import (
	"net/http"
	"net/url"

	"eleya-storefront/internal/middleware"
	"eleya-storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddLineRequest represents the add-to-cart payload.
// An empty variant id selects the product's default variant.
type AddLineRequest struct {
	Handle    string `json:"handle" validate:"required"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=99"`
}

// UpdateLineRequest sets the quantity of a line. Zero removes it.
type UpdateLineRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=99"`
}

// CheckoutResponse carries the platform checkout URL
type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

// CartHandler handles HTTP requests for cart operations
type CartHandler struct {
	carts  service.CartService
	logger *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:  carts,
		logger: logger,
	}
}

// RegisterRoutes registers all cart routes. Everything below a cart id requires its cart token.
func (h *CartHandler) RegisterRoutes(r chi.Router, cartAuth func(http.Handler) http.Handler) {
	r.Route("/api/carts", func(r chi.Router) {
		r.Post("/", h.Create)

		r.Route("/{"+middleware.CartIDParam+"}", func(r chi.Router) {
			r.Use(cartAuth)
			r.Get("/", h.Get)
			r.Post("/lines", h.AddLine)
			r.Delete("/lines", h.Clear)
			r.Patch("/lines/{variantID}", h.UpdateLine)
			r.Delete("/lines/{variantID}", h.RemoveLine)
			r.Post("/checkout", h.Checkout)
		})
	})
}

// Create opens a new cart and returns it with its token
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	cart, token, err := h.carts.Create(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, "create_cart", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, presentCart(cart, token))
}

// Get returns the authorized cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	cart, err := h.carts.Get(r.Context(), cartID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "get_cart", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, presentCart(cart, ""))
}

// AddLine adds a variant to the cart, merging with an existing line
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	var req AddLineRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add line validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, r, err)
		return
	}

	cart, err := h.carts.AddLine(r.Context(), cartID, req.Handle, req.VariantID, req.Quantity)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "add_line", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, presentCart(cart, ""))
}

// UpdateLine sets the quantity of one line
func (h *CartHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	variantID, ok := h.variantID(w, r)
	if !ok {
		return
	}

	var req UpdateLineRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Update line validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, r, err)
		return
	}

	cart, err := h.carts.UpdateQuantity(r.Context(), cartID, variantID, req.Quantity)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "update_line", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, presentCart(cart, ""))
}

// RemoveLine drops one line
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	variantID, ok := h.variantID(w, r)
	if !ok {
		return
	}

	cart, err := h.carts.RemoveLine(r.Context(), cartID, variantID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "remove_line", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, presentCart(cart, ""))
}

// Clear drops every line
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	cart, err := h.carts.Clear(r.Context(), cartID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "clear_cart", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, presentCart(cart, ""))
}

// Checkout hands the cart to the platform checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	checkoutURL, err := h.carts.Checkout(r.Context(), cartID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "checkout", err)
		return
	}
	h.logger.Info("Checkout created", zap.String("cart_id", cartID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, CheckoutResponse{CheckoutURL: checkoutURL})
}

func (h *CartHandler) cartID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	cartID, ok := middleware.GetCartID(r.Context())
	if !ok {
		h.logger.Error("Cart id missing from context")
		middleware.RespondWithError(w, r, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return cartID, true
}

// variantID reads the {variantID} segment. Platform ids contain slashes, so clients escape them.
func (h *CartHandler) variantID(w http.ResponseWriter, r *http.Request) (string, bool) {
	variantID, err := url.PathUnescape(chi.URLParam(r, "variantID"))
	if err != nil || variantID == "" {
		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid variant id")
		return "", false
	}
	return variantID, true
}
