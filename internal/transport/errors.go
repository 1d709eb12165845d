package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"eleya-storefront/internal/catalog"
	"eleya-storefront/internal/domain"
	"eleya-storefront/internal/middleware"
	"eleya-storefront/internal/repository"
	"eleya-storefront/internal/service"
	"eleya-storefront/internal/shopify"

	"go.uber.org/zap"
)

// statusOf maps a service error onto a response status and a client-safe message
func statusOf(err error) (int, string) {
	var checkoutErr *shopify.CheckoutError

	switch {
	case errors.Is(err, domain.ErrInvalidAction),
		errors.Is(err, domain.ErrUnknownAction),
		errors.Is(err, domain.ErrInvalidPriceRange),
		errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, repository.ErrCartNotFound),
		errors.Is(err, repository.ErrLineNotFound),
		errors.Is(err, service.ErrVariantNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrSuperseded),
		errors.Is(err, service.ErrCartCheckedOut),
		errors.Is(err, service.ErrVariantUnavailable):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrCartEmpty):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.As(err, &checkoutErr):
		return http.StatusUnprocessableEntity, strings.Join(checkoutErr.Messages, ", ")
	case errors.Is(err, catalog.ErrPaymentRequired):
		return http.StatusServiceUnavailable, "storefront catalog requires an active billing plan"
	case errors.Is(err, catalog.ErrUnavailable):
		return http.StatusServiceUnavailable, "storefront catalog is unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// respondWithServiceError writes the error envelope for err.
// A request abandoned by the client gets no response body.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, op string, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		logger.Debug("Client went away", zap.String("op", op))
		return
	}

	status, message := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	} else {
		logger.Debug("Request rejected", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	}
	middleware.RespondWithError(w, r, status, message)
}
