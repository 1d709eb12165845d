package catalog

import (
	"sort"
	"strconv"

	"eleya-storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultMaxPrice sizes the price control when nothing has been fetched
const DefaultMaxPrice = 1000

// Facets size the filter controls from the current product set
type Facets struct {
	Sizes    []string        `json:"sizes"`
	MaxPrice decimal.Decimal `json:"max_price"`
	Vendors  []string        `json:"vendors"`
}

// DeriveFacets computes facets from products alone, so a new product set never
// carries values over from the previous one.
func DeriveFacets(products []domain.Product) Facets {
	seenSizes := make(map[string]struct{})
	seenVendors := make(map[string]struct{})
	sizes := []string{}
	vendors := []string{}
	maxPrice := decimal.Zero
	priced := false

	for i := range products {
		p := &products[i]
		for _, s := range p.Sizes() {
			if _, ok := seenSizes[s]; ok {
				continue
			}
			seenSizes[s] = struct{}{}
			sizes = append(sizes, s)
		}

		if p.Vendor != "" {
			if _, ok := seenVendors[p.Vendor]; !ok {
				seenVendors[p.Vendor] = struct{}{}
				vendors = append(vendors, p.Vendor)
			}
		}

		if price, err := p.PriceRange.Max.Decimal(); err == nil {
			if !priced || price.GreaterThan(maxPrice) {
				maxPrice = price
				priced = true
			}
		}
	}

	sort.SliceStable(sizes, func(i, j int) bool { return lessSize(sizes[i], sizes[j]) })
	sort.Strings(vendors)

	return Facets{
		Sizes:    sizes,
		MaxPrice: roundUpHundred(maxPrice, priced),
		Vendors:  vendors,
	}
}

// roundUpHundred ceils to the next multiple of 100. A set with no positive price gets DefaultMaxPrice.
func roundUpHundred(v decimal.Decimal, priced bool) decimal.Decimal {
	if !priced || v.Sign() <= 0 {
		return decimal.NewFromInt(DefaultMaxPrice)
	}
	hundred := decimal.NewFromInt(100)
	return v.Div(hundred).Ceil().Mul(hundred)
}

// lessSize orders sizes by their leading integer ("50ml" before "100ml") and falls
// back to lexical order.
func lessSize(a, b string) bool {
	na, okA := leadingInt(a)
	nb, okB := leadingInt(b)
	if okA && okB && na != nb {
		return na < nb
	}
	if okA != okB {
		return okA
	}
	return a < b
}

func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
