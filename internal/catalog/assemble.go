package catalog

import (
	"fmt"

	"eleya-storefront/internal/domain"
)

// Warning reports a product dropped because its data could not be evaluated
type Warning struct {
	ProductID string `json:"product_id"`
	Handle    string `json:"handle,omitempty"`
	Reason    string `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("product %s excluded: %s", w.ProductID, w.Reason)
}

// Assemble applies the residual predicates to a fetched page. It keeps the platform
// order and never re-sorts; the compiled sort key owns ordering.
// Vendor, gender, type, signature and season are not re-checked.
func Assemble(products []domain.Product, r Residual) ([]domain.Product, []Warning) {
	out := make([]domain.Product, 0, len(products))
	var warnings []Warning

	var sizes map[string]struct{}
	if len(r.Sizes) > 0 {
		sizes = make(map[string]struct{}, len(r.Sizes))
		for _, s := range r.Sizes {
			sizes[s] = struct{}{}
		}
	}

	for i := range products {
		p := &products[i]

		if sizes != nil && !hasAnySize(p, sizes) {
			continue
		}

		if r.HasPrice() {
			keep, err := withinPrice(p, r)
			if err != nil {
				warnings = append(warnings, Warning{
					ProductID: p.ID,
					Handle:    p.Handle,
					Reason:    err.Error(),
				})
				continue
			}
			if !keep {
				continue
			}
		}

		out = append(out, *p)
	}

	return out, warnings
}

// hasAnySize matches declared option values exactly, never variant titles
func hasAnySize(p *domain.Product, selected map[string]struct{}) bool {
	for _, v := range p.Sizes() {
		if _, ok := selected[v]; ok {
			return true
		}
	}
	return false
}

func withinPrice(p *domain.Product, r Residual) (bool, error) {
	price, err := p.PriceRange.Min.Decimal()
	if err != nil {
		return false, fmt.Errorf("unparseable minimum price %q", p.PriceRange.Min.Amount)
	}
	if r.PriceMin != nil && price.LessThan(*r.PriceMin) {
		return false, nil
	}
	if r.PriceMax != nil && price.GreaterThan(*r.PriceMax) {
		return false, nil
	}
	return true, nil
}
