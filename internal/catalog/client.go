package catalog

import (
	"context"
	"errors"

	"eleya-storefront/internal/domain"
)

var (
	// ErrPaymentRequired is returned when the platform rejects the storefront for billing reasons
	ErrPaymentRequired = errors.New("catalog platform requires an active billing plan")
	// ErrUnavailable covers transport failures, non-2xx responses and an open circuit
	ErrUnavailable = errors.New("catalog platform unavailable")
	// ErrNotFound is returned when a product handle does not exist
	ErrNotFound = errors.New("product not found")
)

// PlatformSortKey is the platform's product sort enum
type PlatformSortKey string

const (
	PlatformBestSelling PlatformSortKey = "BEST_SELLING"
	PlatformCreatedAt   PlatformSortKey = "CREATED_AT"
	PlatformPrice       PlatformSortKey = "PRICE"
	PlatformTitle       PlatformSortKey = "TITLE"
)

// ProductQuery is one page request against the platform search
type ProductQuery struct {
	First   int             `json:"first"`
	Query   string          `json:"query,omitempty"`
	SortKey PlatformSortKey `json:"sortKey,omitempty"`
	Reverse bool            `json:"reverse,omitempty"`
	After   string          `json:"after,omitempty"`
}

// ProductPage is one page of results in platform order
type ProductPage struct {
	Products []domain.Product `json:"products"`
	PageInfo domain.PageInfo  `json:"page_info"`
}

// Client is the catalog platform as seen by the storefront.
// The platform's search semantics, including tag matching, are trusted.
type Client interface {
	Products(ctx context.Context, q ProductQuery) (*ProductPage, error)
	ProductByHandle(ctx context.Context, handle string) (*domain.Product, error)
	Vendors(ctx context.Context) ([]string, error)
	CreateCheckout(ctx context.Context, lines []domain.CheckoutLine) (string, error)
}
