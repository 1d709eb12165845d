package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownAction = errors.New("unknown filter action")
	ErrInvalidAction = errors.New("invalid filter action")
)

// FilterAction is one user intent on the filter panel. The set of actions is closed:
// every implementation lives in this file.
type FilterAction interface {
	Kind() string
	apply(FilterState) (FilterState, error)
}

type (
	// SetVendor selects a single vendor, replacing any selection. Empty clears.
	SetVendor struct{ Vendor string }
	// ToggleVendor adds or removes a vendor from a multi-vendor selection
	ToggleVendor struct{ Vendor string }
	// ToggleGender adds or removes a gender
	ToggleGender struct{ Gender Gender }
	// ToggleFragranceType adds or removes a fragrance type
	ToggleFragranceType struct{ Type FragranceType }
	// ToggleSize adds or removes a size
	ToggleSize struct{ Size string }
	// SetPriceRange sets either or both price bounds
	SetPriceRange struct{ Min, Max *decimal.Decimal }
	// ClearPriceRange removes both bounds
	ClearPriceRange struct{}
	// SetSignature turns the signature scope on or off
	SetSignature struct{ Enabled bool }
	// SetSeason selects a season scope. Empty clears.
	SetSeason struct{ Season Season }
	// AddTag adds a direct tag clause
	AddTag struct{ Tag string }
	// RemoveTag removes a direct tag clause
	RemoveTag struct{ Tag string }
	// SetSort changes the sort key
	SetSort struct{ Sort SortKey }
	// SetCollection toggles a quick filter collection. Selecting the active one clears it.
	SetCollection struct{ Slug string }
	// Reset clears every filter and keeps the sort key
	Reset struct{}
)

const (
	ActionSetVendor           = "set_vendor"
	ActionToggleVendor        = "toggle_vendor"
	ActionToggleGender        = "toggle_gender"
	ActionToggleFragranceType = "toggle_fragrance_type"
	ActionToggleSize          = "toggle_size"
	ActionSetPriceRange       = "set_price_range"
	ActionClearPriceRange     = "clear_price_range"
	ActionSetSignature        = "set_signature"
	ActionSetSeason           = "set_season"
	ActionAddTag              = "add_tag"
	ActionRemoveTag           = "remove_tag"
	ActionSetSort             = "set_sort"
	ActionSetCollection       = "set_collection"
	ActionReset               = "reset"
)

func (SetVendor) Kind() string           { return ActionSetVendor }
func (ToggleVendor) Kind() string        { return ActionToggleVendor }
func (ToggleGender) Kind() string        { return ActionToggleGender }
func (ToggleFragranceType) Kind() string { return ActionToggleFragranceType }
func (ToggleSize) Kind() string          { return ActionToggleSize }
func (SetPriceRange) Kind() string       { return ActionSetPriceRange }
func (ClearPriceRange) Kind() string     { return ActionClearPriceRange }
func (SetSignature) Kind() string        { return ActionSetSignature }
func (SetSeason) Kind() string           { return ActionSetSeason }
func (AddTag) Kind() string              { return ActionAddTag }
func (RemoveTag) Kind() string           { return ActionRemoveTag }
func (SetSort) Kind() string             { return ActionSetSort }
func (SetCollection) Kind() string       { return ActionSetCollection }
func (Reset) Kind() string               { return ActionReset }

// Apply returns the state after a; f itself is never modified
func (f FilterState) Apply(a FilterAction) (FilterState, error) {
	if a == nil {
		return f, fmt.Errorf("%w: nil action", ErrInvalidAction)
	}
	return a.apply(f.Clone())
}

func (a SetVendor) apply(f FilterState) (FilterState, error) {
	v := strings.TrimSpace(a.Vendor)
	if v == "" {
		f.Vendors = nil
	} else {
		f.Vendors = []string{v}
	}
	return f, nil
}

func (a ToggleVendor) apply(f FilterState) (FilterState, error) {
	v := strings.TrimSpace(a.Vendor)
	if v == "" {
		return f, fmt.Errorf("%w: vendor is required", ErrInvalidAction)
	}
	f.Vendors = toggle(f.Vendors, v)
	return f, nil
}

func (a ToggleGender) apply(f FilterState) (FilterState, error) {
	g, ok := ParseGender(string(a.Gender))
	if !ok {
		return f, fmt.Errorf("%w: unknown gender %q", ErrInvalidAction, a.Gender)
	}
	f.Genders = toggle(f.Genders, g)
	return f, nil
}

func (a ToggleFragranceType) apply(f FilterState) (FilterState, error) {
	t, ok := ParseFragranceType(string(a.Type))
	if !ok {
		return f, fmt.Errorf("%w: unknown fragrance type %q", ErrInvalidAction, a.Type)
	}
	f.FragranceTypes = toggle(f.FragranceTypes, t)
	return f, nil
}

func (a ToggleSize) apply(f FilterState) (FilterState, error) {
	if a.Size == "" {
		return f, fmt.Errorf("%w: size is required", ErrInvalidAction)
	}
	f.Sizes = toggle(f.Sizes, a.Size)
	return f, nil
}

func (a SetPriceRange) apply(f FilterState) (FilterState, error) {
	if a.Min == nil && a.Max == nil {
		return f, fmt.Errorf("%w: at least one price bound is required", ErrInvalidAction)
	}
	next := f.Clone()
	next.PriceMin, next.PriceMax = nil, nil
	if a.Min != nil {
		v := *a.Min
		next.PriceMin = &v
	}
	if a.Max != nil {
		v := *a.Max
		next.PriceMax = &v
	}
	if err := next.ValidatePriceRange(decimal.Zero); err != nil {
		return f, err
	}
	return next, nil
}

func (ClearPriceRange) apply(f FilterState) (FilterState, error) {
	f.PriceMin, f.PriceMax = nil, nil
	return f, nil
}

func (a SetSignature) apply(f FilterState) (FilterState, error) {
	f.Signature = a.Enabled
	if !a.Enabled && f.Collection != "" {
		if c, ok := LookupCollection(f.Collection); ok && c.Signature {
			f.Collection = ""
		}
	}
	return f, nil
}

func (a SetSeason) apply(f FilterState) (FilterState, error) {
	if a.Season == "" {
		f.Season = ""
		if c, ok := LookupCollection(f.Collection); ok && c.Season != "" {
			f.Collection = ""
		}
		return f, nil
	}
	s, ok := ParseSeason(string(a.Season))
	if !ok {
		return f, fmt.Errorf("%w: unknown season %q", ErrInvalidAction, a.Season)
	}
	f.Season = s
	return f, nil
}

func (a AddTag) apply(f FilterState) (FilterState, error) {
	t := strings.TrimSpace(a.Tag)
	if t == "" {
		return f, fmt.Errorf("%w: tag is required", ErrInvalidAction)
	}
	if !IsPlainTag(t) {
		return f, fmt.Errorf("%w: tag %q must be a single search token", ErrInvalidAction, t)
	}
	if !contains(f.Tags, t) {
		f.Tags = append(f.Tags, t)
	}
	return f, nil
}

// IsPlainTag reports whether tag is a single search token that can follow "tag:" unquoted
func IsPlainTag(tag string) bool {
	if tag == "" {
		return false
	}
	for _, r := range tag {
		if unicode.IsSpace(r) || strings.ContainsRune(`"'():\`, r) {
			return false
		}
	}
	return true
}

func (a RemoveTag) apply(f FilterState) (FilterState, error) {
	t := strings.TrimSpace(a.Tag)
	if contains(f.Tags, t) {
		f.Tags = toggle(f.Tags, t)
	}
	return f, nil
}

func (a SetSort) apply(f FilterState) (FilterState, error) {
	if !a.Sort.Valid() {
		return f, fmt.Errorf("%w: unknown sort key %q", ErrInvalidAction, a.Sort)
	}
	f.Sort = a.Sort
	return f, nil
}

func (a SetCollection) apply(f FilterState) (FilterState, error) {
	slug := strings.ToLower(strings.TrimSpace(a.Slug))
	if slug == "" || slug == f.Collection {
		return f.withoutCollection(), nil
	}
	c, ok := LookupCollection(slug)
	if !ok {
		return f, fmt.Errorf("%w: unknown collection %q", ErrInvalidAction, a.Slug)
	}
	return f.withCollection(c), nil
}

func (Reset) apply(f FilterState) (FilterState, error) {
	out := NewFilterState()
	out.Sort = f.Sort.OrDefault()
	return out, nil
}

// ActionPayload is the tagged JSON form of a FilterAction
type ActionPayload struct {
	Type    string           `json:"type" validate:"required"`
	Value   string           `json:"value,omitempty"`
	Min     *decimal.Decimal `json:"min,omitempty"`
	Max     *decimal.Decimal `json:"max,omitempty"`
	Enabled *bool            `json:"enabled,omitempty"`
}

// Action converts the payload into its FilterAction
func (p ActionPayload) Action() (FilterAction, error) {
	switch p.Type {
	case ActionSetVendor:
		return SetVendor{Vendor: p.Value}, nil
	case ActionToggleVendor:
		return ToggleVendor{Vendor: p.Value}, nil
	case ActionToggleGender:
		return ToggleGender{Gender: Gender(p.Value)}, nil
	case ActionToggleFragranceType:
		return ToggleFragranceType{Type: FragranceType(p.Value)}, nil
	case ActionToggleSize:
		return ToggleSize{Size: p.Value}, nil
	case ActionSetPriceRange:
		return SetPriceRange{Min: p.Min, Max: p.Max}, nil
	case ActionClearPriceRange:
		return ClearPriceRange{}, nil
	case ActionSetSignature:
		enabled := true
		if p.Enabled != nil {
			enabled = *p.Enabled
		}
		return SetSignature{Enabled: enabled}, nil
	case ActionSetSeason:
		return SetSeason{Season: Season(p.Value)}, nil
	case ActionAddTag:
		return AddTag{Tag: p.Value}, nil
	case ActionRemoveTag:
		return RemoveTag{Tag: p.Value}, nil
	case ActionSetSort:
		key, ok := ParseSortKey(p.Value)
		if !ok {
			return nil, fmt.Errorf("%w: unknown sort key %q", ErrInvalidAction, p.Value)
		}
		return SetSort{Sort: key}, nil
	case ActionSetCollection:
		return SetCollection{Slug: p.Value}, nil
	case ActionReset:
		return Reset{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, p.Type)
	}
}

// DecodeAction parses a tagged JSON action
func DecodeAction(data []byte) (FilterAction, error) {
	var p ActionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	return p.Action()
}
