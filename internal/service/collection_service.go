package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eleya-storefront/internal/catalog"
	"eleya-storefront/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultPageSize is the number of products fetched for one collection view
	DefaultPageSize = 50

	// RailSize is the number of products in each home page rail
	RailSize = 8
)

// NoticeLevel classifies a user-visible notice
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message shown alongside a view instead of failing the request
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// CollectionView is everything the collection page renders
type CollectionView struct {
	Filters       domain.FilterState  `json:"filters"`
	Query         string              `json:"query"`
	Products      []domain.Product    `json:"products"`
	PageInfo      domain.PageInfo     `json:"page_info"`
	Facets        catalog.Facets      `json:"facets"`
	ActiveFilters int                 `json:"active_filters"`
	Empty         bool                `json:"empty"`
	Reset         domain.FilterState  `json:"reset"`
	Collections   []domain.Collection `json:"collections"`
	Warnings      []catalog.Warning   `json:"warnings,omitempty"`
	Notices       []Notice            `json:"notices,omitempty"`
}

// Rail is one horizontal product list on the home page
type Rail struct {
	Slug     string           `json:"slug"`
	Title    string           `json:"title"`
	Products []domain.Product `json:"products"`
}

// HomeView is the set of home page rails
type HomeView struct {
	Season  domain.Season `json:"season"`
	Rails   []Rail        `json:"rails"`
	Notices []Notice      `json:"notices,omitempty"`
}

// CollectionService defines the interface for catalog browsing
type CollectionService interface {
	Browse(ctx context.Context, filters domain.FilterState) (*CollectionView, error)
	Home(ctx context.Context) (*HomeView, error)
	Product(ctx context.Context, handle string) (*domain.Product, error)
	Vendors(ctx context.Context) ([]string, error)
}

type collectionService struct {
	client   catalog.Client
	pageSize int
	logger   *zap.Logger
	now      func() time.Time
}

// NewCollectionService creates a new instance of CollectionService
func NewCollectionService(client catalog.Client, pageSize int, logger *zap.Logger) CollectionService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &collectionService{
		client:   client,
		pageSize: pageSize,
		logger:   logger,
		now:      time.Now,
	}
}

// Browse compiles the filters, fetches one page and re-applies the residual predicates.
// Catalog failures produce an empty view with a notice. Only cancellation is returned as an error.
func (s *collectionService) Browse(ctx context.Context, filters domain.FilterState) (*CollectionView, error) {
	filters = filters.Clone()
	filters.Sort = filters.Sort.OrDefault()

	compiled := catalog.Compile(filters)
	reset, _ := filters.Apply(domain.Reset{})

	view := &CollectionView{
		Filters:       filters,
		Query:         compiled.Query,
		Products:      []domain.Product{},
		ActiveFilters: filters.ActiveCount(),
		Reset:         reset,
		Collections:   domain.Collections(),
	}

	if len(compiled.DroppedVendors) > 0 {
		s.logger.Warn("Only the first selected vendor is applied",
			zap.String("vendor", compiled.Vendor),
			zap.Strings("dropped_vendors", compiled.DroppedVendors),
		)
		view.Notices = append(view.Notices, Notice{
			Level:   NoticeWarning,
			Message: fmt.Sprintf("Only one brand can be filtered at a time; showing %s. Ignored: %s.", compiled.Vendor, strings.Join(compiled.DroppedVendors, ", ")),
		})
	}

	page, err := s.client.Products(ctx, compiled.Request(s.pageSize))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Error("Failed to fetch collection",
			zap.String("query", compiled.Query),
			zap.String("sort_key", string(compiled.SortKey)),
			zap.Error(err),
		)
		view.Notices = append(view.Notices, catalogNotice(err))
		view.Facets = catalog.DeriveFacets(nil)
		view.Empty = true
		return view, nil
	}

	products, warnings := catalog.Assemble(page.Products, compiled.Residual)
	for _, w := range warnings {
		s.logger.Warn("Product excluded from collection",
			zap.String("product_id", w.ProductID),
			zap.String("handle", w.Handle),
			zap.String("reason", w.Reason),
		)
	}

	view.Products = products
	view.PageInfo = page.PageInfo
	view.Facets = catalog.DeriveFacets(page.Products)
	view.Warnings = warnings
	view.Empty = len(products) == 0

	s.logger.Debug("Collection assembled",
		zap.String("query", compiled.Query),
		zap.Int("fetched", len(page.Products)),
		zap.Int("shown", len(products)),
	)

	return view, nil
}

type railDef struct {
	slug    string
	title   string
	filters domain.FilterState
}

// Home fetches the home page rails concurrently. A failed rail is left empty.
func (s *collectionService) Home(ctx context.Context) (*HomeView, error) {
	season := domain.SeasonAt(s.now())

	defs := []railDef{
		{slug: "bestsellers", title: "Bestsellers", filters: domain.FilterState{Sort: domain.SortBestselling}},
		{slug: "new", title: "New arrivals", filters: domain.FilterState{Sort: domain.SortNewest}},
		{slug: "signature", title: "Signature", filters: domain.FilterState{Sort: domain.DefaultSortKey, Signature: true}},
		{slug: string(season), title: "Seasonal picks", filters: domain.FilterState{Sort: domain.DefaultSortKey, Season: season}},
	}

	rails := make([]Rail, len(defs))
	failures := make([]error, len(defs))

	g, gctx := errgroup.WithContext(ctx)
	for i, def := range defs {
		g.Go(func() error {
			compiled := catalog.Compile(def.filters)
			rails[i] = Rail{Slug: def.slug, Title: def.title, Products: []domain.Product{}}

			page, err := s.client.Products(gctx, compiled.Request(RailSize))
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failures[i] = err
				return nil
			}
			rails[i].Products = page.Products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &HomeView{Season: season, Rails: rails}
	for i, err := range failures {
		if err == nil {
			continue
		}
		s.logger.Error("Failed to fetch home rail", zap.String("rail", defs[i].slug), zap.Error(err))
		if len(view.Notices) == 0 {
			view.Notices = append(view.Notices, catalogNotice(err))
		}
	}
	return view, nil
}

// Product returns one product by handle
func (s *collectionService) Product(ctx context.Context, handle string) (*domain.Product, error) {
	product, err := s.client.ProductByHandle(ctx, handle)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			s.logger.Error("Failed to fetch product", zap.String("handle", handle), zap.Error(err))
		}
		return nil, err
	}
	return product, nil
}

// Vendors returns the distinct brands. A catalog failure yields an empty list.
func (s *collectionService) Vendors(ctx context.Context) ([]string, error) {
	vendors, err := s.client.Vendors(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Error("Failed to fetch vendors", zap.Error(err))
		return []string{}, nil
	}
	return vendors, nil
}

func catalogNotice(err error) Notice {
	if errors.Is(err, catalog.ErrPaymentRequired) {
		return Notice{
			Level:   NoticeError,
			Message: "Shopify: Payment required. Storefront API access requires an active billing plan.",
		}
	}
	return Notice{
		Level:   NoticeError,
		Message: "Products could not be loaded right now. Please try again shortly.",
	}
}
