package domain

import "strings"

// SortKey is the active ordering of a collection
type SortKey string

const (
	SortBestselling     SortKey = "bestselling"
	SortNewest          SortKey = "newest"
	SortPriceAscending  SortKey = "price-asc"
	SortPriceDescending SortKey = "price-desc"
	SortTitle           SortKey = "title"
)

// DefaultSortKey is used when nothing is selected
const DefaultSortKey = SortBestselling

// ValidSortKeys returns the list of valid sort keys
func ValidSortKeys() []SortKey {
	return []SortKey{SortBestselling, SortNewest, SortPriceAscending, SortPriceDescending, SortTitle}
}

// sortAliases maps URL spellings onto sort keys. "popular" is the legacy storefront value.
var sortAliases = map[string]SortKey{
	"bestselling":      SortBestselling,
	"best-selling":     SortBestselling,
	"popular":          SortBestselling,
	"newest":           SortNewest,
	"price-asc":        SortPriceAscending,
	"price-ascending":  SortPriceAscending,
	"price-desc":       SortPriceDescending,
	"price-descending": SortPriceDescending,
	"title":            SortTitle,
}

// ParseSortKey parses a sort key from its URL form
func ParseSortKey(s string) (SortKey, bool) {
	key, ok := sortAliases[strings.ToLower(strings.TrimSpace(s))]
	return key, ok
}

// Valid reports whether k is one of the known sort keys
func (k SortKey) Valid() bool {
	for _, v := range ValidSortKeys() {
		if v == k {
			return true
		}
	}
	return false
}

// OrDefault returns k, or the default sort key when k is empty or unknown
func (k SortKey) OrDefault() SortKey {
	if k.Valid() {
		return k
	}
	return DefaultSortKey
}
