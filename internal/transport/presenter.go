package transport

import (
	"net/url"
	"strings"

	"eleya-storefront/internal/domain"
	"eleya-storefront/internal/service"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DisplayLanguage is the locale prices are rendered in
var DisplayLanguage = language.Croatian

// FormatMoney renders an amount for display, e.g. "89,90 €".
// An unparseable amount is returned as received.
func FormatMoney(m domain.Money) string {
	amount, err := m.Decimal()
	if err != nil {
		return m.Amount
	}
	p := message.NewPrinter(DisplayLanguage)
	value := amount.Round(2).InexactFloat64()
	text := p.Sprint(number.Decimal(value, number.Scale(2)))

	unit, err := currency.ParseISO(m.CurrencyCode)
	if err != nil {
		if m.CurrencyCode == "" {
			return text
		}
		return text + " " + m.CurrencyCode
	}
	return text + " " + strings.TrimSpace(p.Sprint(currency.NarrowSymbol(unit)))
}

// ProductView is a product with its display fields resolved
type ProductView struct {
	domain.Product
	DisplayPrice     string   `json:"display_price"`
	PriceFrom        bool     `json:"price_from"`
	CompareAtPrice   string   `json:"compare_at_price,omitempty"`
	OnSale           bool     `json:"on_sale"`
	Signature        bool     `json:"signature"`
	Sizes            []string `json:"sizes"`
	DefaultVariantID string   `json:"default_variant_id,omitempty"`
}

func presentProduct(p domain.Product) ProductView {
	view := ProductView{
		Product:      p,
		DisplayPrice: FormatMoney(p.PriceRange.Min),
		PriceFrom:    p.PriceRange.Min.Amount != p.PriceRange.Max.Amount,
		OnSale:       p.OnSale(),
		Signature:    p.Metafields.Signature(),
		Sizes:        p.Sizes(),
	}
	if view.OnSale {
		view.CompareAtPrice = FormatMoney(p.CompareAtPriceRange.Min)
	}
	if view.Sizes == nil {
		view.Sizes = []string{}
	}
	if v, ok := p.DefaultVariant(); ok {
		view.DefaultVariantID = v.ID
	}
	return view
}

func presentProducts(products []domain.Product) []ProductView {
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, presentProduct(p))
	}
	return out
}

// CollectionResponse is the collection view as sent to the storefront
type CollectionResponse struct {
	*service.CollectionView
	SessionID string        `json:"session_id,omitempty"`
	Products  []ProductView `json:"products"`
	URL       string        `json:"url"`
	ResetURL  string        `json:"reset_url"`
}

func presentCollection(view *service.CollectionView, sessionID string) CollectionResponse {
	return CollectionResponse{
		CollectionView: view,
		SessionID:      sessionID,
		Products:       presentProducts(view.Products),
		URL:            collectionURL(view.Filters),
		ResetURL:       collectionURL(view.Reset),
	}
}

func collectionURL(f domain.FilterState) string {
	u := url.URL{Path: "/collection", RawQuery: EncodeFilters(f).Encode()}
	return u.String()
}

// RailResponse is one home page rail
type RailResponse struct {
	Slug     string        `json:"slug"`
	Title    string        `json:"title"`
	Products []ProductView `json:"products"`
}

// HomeResponse is the home page as sent to the storefront
type HomeResponse struct {
	Season  domain.Season    `json:"season"`
	Rails   []RailResponse   `json:"rails"`
	Notices []service.Notice `json:"notices,omitempty"`
}

func presentHome(view *service.HomeView) HomeResponse {
	out := HomeResponse{Season: view.Season, Notices: view.Notices, Rails: make([]RailResponse, 0, len(view.Rails))}
	for _, rail := range view.Rails {
		out.Rails = append(out.Rails, RailResponse{
			Slug:     rail.Slug,
			Title:    rail.Title,
			Products: presentProducts(rail.Products),
		})
	}
	return out
}

// CartResponse is a cart with its totals
type CartResponse struct {
	*domain.Cart
	ItemCount       int          `json:"item_count"`
	Subtotal        domain.Money `json:"subtotal"`
	DisplaySubtotal string       `json:"display_subtotal"`
	CartToken       string       `json:"cart_token,omitempty"`
}

func presentCart(cart *domain.Cart, token string) CartResponse {
	if cart.Lines == nil {
		cart.Lines = []domain.CartLine{}
	}
	subtotal := cart.Subtotal()
	return CartResponse{
		Cart:            cart,
		ItemCount:       cart.TotalQuantity(),
		Subtotal:        subtotal,
		DisplaySubtotal: FormatMoney(subtotal),
		CartToken:       token,
	}
}
