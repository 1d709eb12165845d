package transport

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"eleya-storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// URL query parameters understood by the collection endpoints
const (
	ParamCollection = "collection"
	ParamSort       = "sort"
	ParamSignature  = "signature"
	ParamSeason     = "season"
	ParamVendor     = "vendor"
	ParamGender     = "gender"
	ParamType       = "type"
	ParamSize       = "size"
	ParamMinPrice   = "min_price"
	ParamMaxPrice   = "max_price"
)

// ParseFilters seeds a FilterState from URL query parameters.
// Every parameter is single-valued; only the first occurrence is read.
// The collection is applied first so an explicit sort or scope overrides what it implies.
func ParseFilters(q url.Values) (domain.FilterState, error) {
	var actions []domain.FilterAction

	if v := q.Get(ParamCollection); v != "" {
		actions = append(actions, domain.SetCollection{Slug: v})
	}
	if v := q.Get(ParamSort); v != "" {
		key, ok := domain.ParseSortKey(v)
		if !ok {
			return domain.FilterState{}, fmt.Errorf("%w: unknown sort key %q", domain.ErrInvalidAction, v)
		}
		actions = append(actions, domain.SetSort{Sort: key})
	}
	if v := q.Get(ParamSignature); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return domain.FilterState{}, fmt.Errorf("%w: signature must be true or false", domain.ErrInvalidAction)
		}
		actions = append(actions, domain.SetSignature{Enabled: enabled})
	}
	if v := q.Get(ParamSeason); v != "" {
		actions = append(actions, domain.SetSeason{Season: domain.Season(v)})
	}
	if v := q.Get(ParamVendor); v != "" {
		actions = append(actions, domain.SetVendor{Vendor: v})
	}
	if v := q.Get(ParamGender); v != "" {
		actions = append(actions, domain.ToggleGender{Gender: domain.Gender(v)})
	}
	if v := q.Get(ParamType); v != "" {
		actions = append(actions, domain.ToggleFragranceType{Type: domain.FragranceType(v)})
	}
	if v := strings.TrimSpace(q.Get(ParamSize)); v != "" {
		actions = append(actions, domain.ToggleSize{Size: v})
	}

	low, err := parsePrice(q.Get(ParamMinPrice), ParamMinPrice)
	if err != nil {
		return domain.FilterState{}, err
	}
	high, err := parsePrice(q.Get(ParamMaxPrice), ParamMaxPrice)
	if err != nil {
		return domain.FilterState{}, err
	}
	if low != nil || high != nil {
		actions = append(actions, domain.SetPriceRange{Min: low, Max: high})
	}

	f := domain.NewFilterState()
	for _, a := range actions {
		if f, err = f.Apply(a); err != nil {
			return domain.FilterState{}, err
		}
	}
	return f, nil
}

func parsePrice(raw, name string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a number", domain.ErrInvalidPriceRange, name, raw)
	}
	return &v, nil
}

// EncodeFilters is the inverse of ParseFilters for the single-valued part of f.
// Multi-selected dimensions contribute their first selection.
func EncodeFilters(f domain.FilterState) url.Values {
	q := url.Values{}
	if f.Collection != "" {
		q.Set(ParamCollection, f.Collection)
	}
	if f.Sort != domain.DefaultSortKey || f.Collection != "" {
		q.Set(ParamSort, string(f.Sort.OrDefault()))
	}

	scope, _ := domain.LookupCollection(f.Collection)
	if f.Signature && !scope.Signature {
		q.Set(ParamSignature, "true")
	}
	if f.Season != "" && f.Season != scope.Season {
		q.Set(ParamSeason, string(f.Season))
	}

	if len(f.Vendors) > 0 {
		q.Set(ParamVendor, f.Vendors[0])
	}
	if len(f.Genders) > 0 {
		q.Set(ParamGender, string(f.Genders[0]))
	}
	if len(f.FragranceTypes) > 0 {
		q.Set(ParamType, string(f.FragranceTypes[0]))
	}
	if len(f.Sizes) > 0 {
		q.Set(ParamSize, f.Sizes[0])
	}
	if f.PriceMin != nil {
		q.Set(ParamMinPrice, f.PriceMin.String())
	}
	if f.PriceMax != nil {
		q.Set(ParamMaxPrice, f.PriceMax.String())
	}
	return q
}
