package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	CartIDKey contextKey = "cart_id"

	// CartIDParam is the route parameter holding the cart id
	CartIDParam = "cartID"
)

// CartTokenVerifier resolves a bearer token to the cart it grants access to
type CartTokenVerifier interface {
	CartID(token string) (uuid.UUID, error)
}

// CartAuthMiddleware requires a bearer cart token whose cart matches the {cartID} route parameter.
// Verifier errors matching expired are reported as an expired token.
func CartAuthMiddleware(verifier CartTokenVerifier, expired error, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, r, http.StatusUnauthorized, "missing authorization header")
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || scheme != "Bearer" || token == "" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, r, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			cartID, err := verifier.CartID(token)
			if err != nil {
				logger.Debug("Cart token validation failed", zap.Error(err))
				if expired != nil && errors.Is(err, expired) {
					RespondWithError(w, r, http.StatusUnauthorized, "token expired")
				} else {
					RespondWithError(w, r, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			routeID, err := uuid.Parse(chi.URLParam(r, CartIDParam))
			if err != nil {
				RespondWithError(w, r, http.StatusBadRequest, "invalid cart id")
				return
			}
			if routeID != cartID {
				logger.Warn("Cart token used for another cart",
					zap.String("token_cart_id", cartID.String()),
					zap.String("route_cart_id", routeID.String()),
				)
				RespondWithError(w, r, http.StatusForbidden, "token does not grant access to this cart")
				return
			}

			ctx := context.WithValue(r.Context(), CartIDKey, cartID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCartID extracts the authorized cart id from request context
func GetCartID(ctx context.Context) (uuid.UUID, bool) {
	cartID, ok := ctx.Value(CartIDKey).(uuid.UUID)
	return cartID, ok
}
