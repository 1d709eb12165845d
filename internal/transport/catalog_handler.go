package transport

import (
	"net/http"
	"strings"

	"eleya-storefront/internal/domain"
	"eleya-storefront/internal/middleware"
	"eleya-storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogHandler handles HTTP requests for browsing the catalog
type CatalogHandler struct {
	collections service.CollectionService
	sessions    *service.SessionStore
	logger      *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(collections service.CollectionService, sessions *service.SessionStore, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		collections: collections,
		sessions:    sessions,
		logger:      logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/home", h.Home)
	r.Get("/api/collection", h.Collection)
	r.Get("/api/vendors", h.Vendors)
	r.Get("/api/products/{handle}", h.Product)

	r.Route("/api/browse", func(r chi.Router) {
		r.Post("/", h.OpenSession)
		r.Get("/{sessionID}", h.GetSession)
		r.Post("/{sessionID}/actions", h.Dispatch)
	})
}

// Collection renders a collection page from URL parameters without keeping any state
func (h *CatalogHandler) Collection(w http.ResponseWriter, r *http.Request) {
	filters, err := ParseFilters(r.URL.Query())
	if err != nil {
		respondWithServiceError(w, r, h.logger, "collection", err)
		return
	}

	view, err := h.collections.Browse(r.Context(), filters)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "collection", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, presentCollection(view, ""))
}

// OpenSession starts a browse session seeded from URL parameters
func (h *CatalogHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	filters, err := ParseFilters(r.URL.Query())
	if err != nil {
		respondWithServiceError(w, r, h.logger, "open_session", err)
		return
	}

	sess, view, err := h.sessions.Open(r.Context(), filters)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "open_session", err)
		return
	}

	h.logger.Info("Browse session started",
		zap.String("session_id", sess.ID.String()),
		zap.Int("active_filters", filters.ActiveCount()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, presentCollection(view, sess.ID.String()))
}

// GetSession returns the last view of a browse session
func (h *CatalogHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	sess, err := h.sessions.Get(id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "get_session", err)
		return
	}

	view := sess.View()
	if view == nil {
		if view, err = h.collections.Browse(r.Context(), sess.Filters()); err != nil {
			respondWithServiceError(w, r, h.logger, "get_session", err)
			return
		}
	}
	middleware.RespondWithJSON(w, http.StatusOK, presentCollection(view, id.String()))
}

// Dispatch applies one filter action to a browse session
func (h *CatalogHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var payload domain.ActionPayload
	if err := middleware.DecodeAndValidate(r, &payload); err != nil {
		h.logger.Debug("Browse action validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, r, err)
		return
	}

	action, err := payload.Action()
	if err != nil {
		respondWithServiceError(w, r, h.logger, "dispatch", err)
		return
	}

	view, err := h.sessions.Dispatch(r.Context(), id, action)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "dispatch", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, presentCollection(view, id.String()))
}

// Product returns one product by handle
func (h *CatalogHandler) Product(w http.ResponseWriter, r *http.Request) {
	handle := strings.TrimSpace(chi.URLParam(r, "handle"))
	if handle == "" {
		middleware.RespondWithError(w, r, http.StatusBadRequest, "product handle is required")
		return
	}

	product, err := h.collections.Product(r.Context(), handle)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "product", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, presentProduct(*product))
}

// Vendors lists the distinct brands in the catalog
func (h *CatalogHandler) Vendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.collections.Vendors(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, "vendors", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string][]string{"vendors": vendors})
}

// Home renders the home page rails
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	view, err := h.collections.Home(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, "home", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, presentHome(view))
}

func (h *CatalogHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, false
	}
	return id, true
}
