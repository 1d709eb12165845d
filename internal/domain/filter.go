package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPriceRange = errors.New("invalid price range")
)

// FilterState is the set of active collection filters plus the sort key.
// Multi-valued dimensions keep selection order; the first selected vendor is significant.
type FilterState struct {
	Vendors        []string         `json:"vendors,omitempty"`
	Genders        []Gender         `json:"genders,omitempty"`
	FragranceTypes []FragranceType  `json:"fragrance_types,omitempty"`
	Sizes          []string         `json:"sizes,omitempty"`
	PriceMin       *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax       *decimal.Decimal `json:"price_max,omitempty"`
	Signature      bool             `json:"signature,omitempty"`
	Season         Season           `json:"season,omitempty"`
	Tags           []string         `json:"tags,omitempty"`
	Sort           SortKey          `json:"sort"`
	Collection     string           `json:"collection,omitempty"`
}

// NewFilterState returns an empty state with the default sort
func NewFilterState() FilterState {
	return FilterState{Sort: DefaultSortKey}
}

// Clone returns a deep copy so actions never alias the previous state
func (f FilterState) Clone() FilterState {
	out := f
	out.Vendors = cloneSlice(f.Vendors)
	out.Genders = cloneSlice(f.Genders)
	out.FragranceTypes = cloneSlice(f.FragranceTypes)
	out.Sizes = cloneSlice(f.Sizes)
	out.Tags = cloneSlice(f.Tags)
	if f.PriceMin != nil {
		v := *f.PriceMin
		out.PriceMin = &v
	}
	if f.PriceMax != nil {
		v := *f.PriceMax
		out.PriceMax = &v
	}
	return out
}

// HasPriceRange reports whether either price bound is set
func (f FilterState) HasPriceRange() bool {
	return f.PriceMin != nil || f.PriceMax != nil
}

// IsEmpty reports whether no filter is active. The sort key is not a filter.
func (f FilterState) IsEmpty() bool {
	return f.ActiveCount() == 0
}

// ActiveCount is the number of active selections shown on the filter toggle
func (f FilterState) ActiveCount() int {
	n := len(f.Vendors) + len(f.Genders) + len(f.FragranceTypes) + len(f.Sizes) + len(f.Tags)
	if f.HasPriceRange() {
		n++
	}
	if f.Collection != "" {
		n++
	} else {
		// collection scopes are counted once through the collection itself
		if f.Signature {
			n++
		}
		if f.Season != "" {
			n++
		}
	}
	return n
}

// ValidatePriceRange checks min <= max and that both lie in [0, corpusMax].
// A zero corpusMax skips the upper check.
func (f FilterState) ValidatePriceRange(corpusMax decimal.Decimal) error {
	zero := decimal.Zero
	if f.PriceMin != nil && f.PriceMin.LessThan(zero) {
		return fmt.Errorf("%w: minimum %s is negative", ErrInvalidPriceRange, f.PriceMin)
	}
	if f.PriceMax != nil && f.PriceMax.LessThan(zero) {
		return fmt.Errorf("%w: maximum %s is negative", ErrInvalidPriceRange, f.PriceMax)
	}
	if f.PriceMin != nil && f.PriceMax != nil && f.PriceMin.GreaterThan(*f.PriceMax) {
		return fmt.Errorf("%w: minimum %s exceeds maximum %s", ErrInvalidPriceRange, f.PriceMin, f.PriceMax)
	}
	if corpusMax.GreaterThan(zero) {
		if f.PriceMin != nil && f.PriceMin.GreaterThan(corpusMax) {
			return fmt.Errorf("%w: minimum %s exceeds %s", ErrInvalidPriceRange, f.PriceMin, corpusMax)
		}
		if f.PriceMax != nil && f.PriceMax.GreaterThan(corpusMax) {
			return fmt.Errorf("%w: maximum %s exceeds %s", ErrInvalidPriceRange, f.PriceMax, corpusMax)
		}
	}
	return nil
}

// ClampPriceRange pulls both bounds into [0, corpusMax] and keeps min <= max,
// the way the range slider does.
func (f FilterState) ClampPriceRange(corpusMax decimal.Decimal) FilterState {
	out := f.Clone()
	clamp := func(v decimal.Decimal) decimal.Decimal {
		if v.LessThan(decimal.Zero) {
			return decimal.Zero
		}
		if corpusMax.GreaterThan(decimal.Zero) && v.GreaterThan(corpusMax) {
			return corpusMax
		}
		return v
	}
	if out.PriceMin != nil {
		v := clamp(*out.PriceMin)
		out.PriceMin = &v
	}
	if out.PriceMax != nil {
		v := clamp(*out.PriceMax)
		out.PriceMax = &v
	}
	if out.PriceMin != nil && out.PriceMax != nil && out.PriceMin.GreaterThan(*out.PriceMax) {
		v := *out.PriceMax
		out.PriceMin = &v
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s...)
}

// toggle adds v when absent and removes it when present, keeping order
func toggle[T comparable](s []T, v T) []T {
	for i, existing := range s {
		if existing == v {
			out := append([]T(nil), s[:i]...)
			out = append(out, s[i+1:]...)
			if len(out) == 0 {
				return nil
			}
			return out
		}
	}
	return append(cloneSlice(s), v)
}

func contains[T comparable](s []T, v T) bool {
	for _, existing := range s {
		if existing == v {
			return true
		}
	}
	return false
}
