package domain

import "strings"

// Collection is a named quick filter shown above the collection grid
type Collection struct {
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Signature   bool    `json:"-"`
	Season      Season  `json:"-"`
	Sort        SortKey `json:"-"`
}

var collections = []Collection{
	{Slug: "signature", Name: "Signature", Description: "Our house signature fragrances", Signature: true},
	{Slug: "new", Name: "New arrivals", Description: "The latest additions to the catalog", Sort: SortNewest},
	{Slug: "bestsellers", Name: "Bestsellers", Description: "Most loved by our customers", Sort: SortBestselling},
	{Slug: "spring", Name: "Spring", Description: "Light and floral for spring", Season: SeasonSpring},
	{Slug: "summer", Name: "Summer", Description: "Fresh and citrus for summer", Season: SeasonSummer},
	{Slug: "autumn", Name: "Autumn", Description: "Warm and woody for autumn", Season: SeasonAutumn},
	{Slug: "winter", Name: "Winter", Description: "Rich and oriental for winter", Season: SeasonWinter},
}

// Collections lists the quick filter collections in display order
func Collections() []Collection {
	return append([]Collection(nil), collections...)
}

// LookupCollection finds a collection by slug
func LookupCollection(slug string) (Collection, bool) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, c := range collections {
		if c.Slug == slug {
			return c, true
		}
	}
	return Collection{}, false
}

// withCollection replaces the collection scope of f with c's
func (f FilterState) withCollection(c Collection) FilterState {
	out := f.Clone()
	out.Collection = c.Slug
	out.Signature = c.Signature
	out.Season = c.Season
	if c.Sort != "" {
		out.Sort = c.Sort
	}
	return out
}

// withoutCollection drops the collection and the scope it implied
func (f FilterState) withoutCollection() FilterState {
	out := f.Clone()
	out.Collection = ""
	out.Signature = false
	out.Season = ""
	return out
}
