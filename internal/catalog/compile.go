package catalog

import (
	"fmt"
	"strings"

	"eleya-storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// PriceSentinelMax stands in for an unset upper price bound in the server clause
const PriceSentinelMax = 999999

// Residual holds the predicates that are not pushed to the platform and must be
// re-applied to the fetched page.
type Residual struct {
	Sizes    []string         `json:"sizes,omitempty"`
	PriceMin *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax *decimal.Decimal `json:"price_max,omitempty"`
}

// IsEmpty reports whether the residual keeps every product
func (r Residual) IsEmpty() bool {
	return len(r.Sizes) == 0 && r.PriceMin == nil && r.PriceMax == nil
}

// HasPrice reports whether the price predicate is active
func (r Residual) HasPrice() bool {
	return r.PriceMin != nil || r.PriceMax != nil
}

// Compiled is the result of compiling a FilterState
type Compiled struct {
	Query    string          `json:"query"`
	SortKey  PlatformSortKey `json:"sort_key"`
	Reverse  bool            `json:"reverse"`
	Residual Residual        `json:"residual"`
	// Vendor is the trimmed vendor the query filters on, empty when none is selected
	Vendor string `json:"vendor,omitempty"`
	// DroppedVendors lists selected vendors beyond the first. The platform query has
	// no vendor OR in scope, so only the first selected vendor filters.
	DroppedVendors []string `json:"dropped_vendors,omitempty"`
}

// Request builds the platform page request for this compilation
func (c Compiled) Request(first int) ProductQuery {
	return ProductQuery{
		First:   first,
		Query:   c.Query,
		SortKey: c.SortKey,
		Reverse: c.Reverse,
	}
}

// Compile maps filter state onto the platform search grammar. Clause order is fixed:
// vendor, genders, fragrance types, signature, season, direct tags, price.
func Compile(f domain.FilterState) Compiled {
	var clauses []string
	var dropped []string

	vendor := ""
	vendors := nonEmpty(f.Vendors)
	if len(vendors) > 0 {
		vendor = vendors[0]
		clauses = append(clauses, fmt.Sprintf(`vendor:"%s"`, escapeQuoted(vendors[0])))
		if len(vendors) > 1 {
			dropped = append(dropped, vendors[1:]...)
		}
	}

	if len(f.Genders) > 0 {
		values := make([]string, 0, len(f.Genders))
		for _, g := range f.Genders {
			values = append(values, string(g))
		}
		clauses = append(clauses, tagGroup("gender_", values))
	}

	if len(f.FragranceTypes) > 0 {
		values := make([]string, 0, len(f.FragranceTypes))
		for _, t := range f.FragranceTypes {
			values = append(values, string(t))
		}
		clauses = append(clauses, tagGroup("type_", values))
	}

	if f.Signature {
		clauses = append(clauses, "tag:signature_true")
	}

	if f.Season != "" {
		clauses = append(clauses, "tag:season_"+string(f.Season))
	}

	for _, t := range nonEmpty(f.Tags) {
		clauses = append(clauses, tagClause(t))
	}

	if f.HasPriceRange() {
		clauses = append(clauses, priceClause(f.PriceMin, f.PriceMax))
	}

	sortKey, reverse := platformSort(f.Sort)

	return Compiled{
		Query:          strings.Join(clauses, " AND "),
		SortKey:        sortKey,
		Reverse:        reverse,
		Residual:       residualOf(f),
		Vendor:         vendor,
		DroppedVendors: dropped,
	}
}

func platformSort(k domain.SortKey) (PlatformSortKey, bool) {
	switch k.OrDefault() {
	case domain.SortNewest:
		return PlatformCreatedAt, true
	case domain.SortPriceAscending:
		return PlatformPrice, false
	case domain.SortPriceDescending:
		return PlatformPrice, true
	case domain.SortTitle:
		return PlatformTitle, false
	default:
		return PlatformBestSelling, false
	}
}

func tagGroup(prefix string, values []string) string {
	terms := make([]string, 0, len(values))
	for _, v := range values {
		terms = append(terms, "tag:"+prefix+v)
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}

// priceClause widens fractional bounds outward so the coarse server clause never
// drops a product the exact residual check keeps.
func priceClause(min, max *decimal.Decimal) string {
	lo := decimal.Zero
	if min != nil {
		lo = min.Floor()
	}
	hi := decimal.NewFromInt(PriceSentinelMax)
	if max != nil {
		hi = max.Ceil()
	}
	return fmt.Sprintf("variants.price:>=%s variants.price:<=%s", lo.String(), hi.String())
}

func residualOf(f domain.FilterState) Residual {
	r := Residual{}
	if len(f.Sizes) > 0 {
		r.Sizes = append([]string(nil), f.Sizes...)
	}
	if f.PriceMin != nil {
		v := *f.PriceMin
		r.PriceMin = &v
	}
	if f.PriceMax != nil {
		v := *f.PriceMax
		r.PriceMax = &v
	}
	return r
}

// tagClause quotes tags that are not a single search token so they stay one ANDed clause
func tagClause(t string) string {
	if domain.IsPlainTag(t) {
		return "tag:" + t
	}
	return `tag:"` + escapeQuoted(t) + `"`
}

func escapeQuoted(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
