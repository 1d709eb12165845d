package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SizeOptionName is the option name that carries bottle sizes
const SizeOptionName = "Size"

// Money is an amount as returned by the catalog platform.
// Amount is kept as the original decimal string so comparisons never go through float.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

// Decimal parses the amount
func (m Money) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(m.Amount))
}

// PriceRange holds the cheapest and most expensive variant prices
type PriceRange struct {
	Min Money `json:"min"`
	Max Money `json:"max"`
}

// Image is a product image
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

// SelectedOption is a name/value pair on a variant
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductOption is a declared option schema, e.g. Size -> [50ml, 100ml]
type ProductOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Variant is a purchasable SKU of a product
type Variant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Price            Money            `json:"price"`
	CompareAtPrice   *Money           `json:"compare_at_price,omitempty"`
	AvailableForSale bool             `json:"available_for_sale"`
	SelectedOptions  []SelectedOption `json:"selected_options"`
}

// Option returns the value of the named selected option
func (v Variant) Option(name string) (string, bool) {
	for _, o := range v.SelectedOptions {
		if strings.EqualFold(o.Name, name) {
			return o.Value, true
		}
	}
	return "", false
}

// Metafields are the custom single-value attributes of a perfume
type Metafields struct {
	Gender        Gender        `json:"gender,omitempty"`
	FragranceType FragranceType `json:"fragrance_type,omitempty"`
	NotesFamily   NotesFamily   `json:"notes_family,omitempty"`
	IsSignature   string        `json:"is_signature,omitempty"`
	Season        Season        `json:"season,omitempty"`
}

// Signature reports whether the boolean-as-string metafield is set to true
func (m Metafields) Signature() bool {
	return ParseMetafieldBool(m.IsSignature)
}

// ParseMetafieldBool reads a boolean metafield value. Anything other than "true" is false.
func ParseMetafieldBool(value string) bool {
	return strings.TrimSpace(value) == "true"
}

// Product represents a catalog entry
type Product struct {
	ID                  string          `json:"id"`
	Handle              string          `json:"handle"`
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	Vendor              string          `json:"vendor"`
	ProductType         string          `json:"product_type,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	PriceRange          PriceRange      `json:"price_range"`
	CompareAtPriceRange *PriceRange     `json:"compare_at_price_range,omitempty"`
	Images              []Image         `json:"images"`
	Variants            []Variant       `json:"variants"`
	Options             []ProductOption `json:"options"`
	Tags                []string        `json:"tags,omitempty"`
	Metafields          Metafields      `json:"metafields"`
}

// Sizes returns the declared values of the size option, matched case-insensitively by name
func (p *Product) Sizes() []string {
	for _, opt := range p.Options {
		if strings.EqualFold(opt.Name, SizeOptionName) {
			return opt.Values
		}
	}
	return nil
}

// DefaultVariant returns the first variant, which is the display default
func (p *Product) DefaultVariant() (Variant, bool) {
	if len(p.Variants) == 0 {
		return Variant{}, false
	}
	return p.Variants[0], true
}

// VariantByID finds a variant of this product
func (p *Product) VariantByID(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// HasTag reports whether the product carries the exact tag
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// OnSale reports whether the compare-at price is above the current minimum price
func (p *Product) OnSale() bool {
	if p.CompareAtPriceRange == nil {
		return false
	}
	compareAt, err := p.CompareAtPriceRange.Min.Decimal()
	if err != nil {
		return false
	}
	price, err := p.PriceRange.Min.Decimal()
	if err != nil {
		return false
	}
	return compareAt.GreaterThan(price)
}

// PageInfo is the catalog pagination cursor
type PageInfo struct {
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   string `json:"end_cursor,omitempty"`
}
