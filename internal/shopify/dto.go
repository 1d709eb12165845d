package shopify

import (
	"encoding/json"
	"strings"
	"time"

	"eleya-storefront/internal/domain"
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage   `json:"data"`
	Errors []graphQLErrorDTO `json:"errors"`
}

type graphQLErrorDTO struct {
	Message string `json:"message"`
}

type moneyDTO struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type priceRangeDTO struct {
	MinVariantPrice moneyDTO `json:"minVariantPrice"`
	MaxVariantPrice moneyDTO `json:"maxVariantPrice"`
}

type metafieldDTO struct {
	Value string `json:"value"`
}

type imageDTO struct {
	URL     string  `json:"url"`
	AltText *string `json:"altText"`
}

type variantDTO struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Price            moneyDTO  `json:"price"`
	CompareAtPrice   *moneyDTO `json:"compareAtPrice"`
	AvailableForSale bool      `json:"availableForSale"`
	SelectedOptions  []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"selectedOptions"`
}

type productDTO struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Description         string         `json:"description"`
	Handle              string         `json:"handle"`
	Vendor              string         `json:"vendor"`
	ProductType         string         `json:"productType"`
	CreatedAt           string         `json:"createdAt"`
	Tags                []string       `json:"tags"`
	PriceRange          priceRangeDTO  `json:"priceRange"`
	CompareAtPriceRange *priceRangeDTO `json:"compareAtPriceRange"`
	Images              struct {
		Edges []struct {
			Node imageDTO `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []struct {
			Node variantDTO `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	Options []struct {
		Name   string   `json:"name"`
		Values []string `json:"values"`
	} `json:"options"`

	Gender        *metafieldDTO `json:"gender"`
	FragranceType *metafieldDTO `json:"fragranceType"`
	NotesFamily   *metafieldDTO `json:"notesFamily"`
	IsSignature   *metafieldDTO `json:"isSignature"`
	Season        *metafieldDTO `json:"season"`
}

type pageInfoDTO struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

type productsData struct {
	Products struct {
		Edges []struct {
			Node productDTO `json:"node"`
		} `json:"edges"`
		PageInfo pageInfoDTO `json:"pageInfo"`
	} `json:"products"`
}

type productByHandleData struct {
	ProductByHandle *productDTO `json:"productByHandle"`
}

type vendorsData struct {
	Products struct {
		Edges []struct {
			Node struct {
				Vendor string `json:"vendor"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

type userErrorDTO struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type cartCreateData struct {
	CartCreate struct {
		Cart *struct {
			ID          string `json:"id"`
			CheckoutURL string `json:"checkoutUrl"`
		} `json:"cart"`
		UserErrors []userErrorDTO `json:"userErrors"`
	} `json:"cartCreate"`
}

func (m moneyDTO) toDomain() domain.Money {
	return domain.Money{Amount: m.Amount, CurrencyCode: m.CurrencyCode}
}

func metafieldValue(m *metafieldDTO) string {
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m.Value)
}

func (p productDTO) toDomain() domain.Product {
	out := domain.Product{
		ID:          p.ID,
		Handle:      p.Handle,
		Title:       p.Title,
		Description: p.Description,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		PriceRange: domain.PriceRange{
			Min: p.PriceRange.MinVariantPrice.toDomain(),
			Max: p.PriceRange.MaxVariantPrice.toDomain(),
		},
		Images:   make([]domain.Image, 0, len(p.Images.Edges)),
		Variants: make([]domain.Variant, 0, len(p.Variants.Edges)),
		Options:  make([]domain.ProductOption, 0, len(p.Options)),
		Tags:     p.Tags,
	}

	if t, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
		out.CreatedAt = t
	}

	if p.CompareAtPriceRange != nil && p.CompareAtPriceRange.MinVariantPrice.Amount != "" {
		out.CompareAtPriceRange = &domain.PriceRange{
			Min: p.CompareAtPriceRange.MinVariantPrice.toDomain(),
			Max: p.CompareAtPriceRange.MaxVariantPrice.toDomain(),
		}
	}

	for _, e := range p.Images.Edges {
		img := domain.Image{URL: e.Node.URL}
		if e.Node.AltText != nil {
			img.AltText = *e.Node.AltText
		}
		out.Images = append(out.Images, img)
	}

	for _, e := range p.Variants.Edges {
		v := domain.Variant{
			ID:               e.Node.ID,
			Title:            e.Node.Title,
			Price:            e.Node.Price.toDomain(),
			AvailableForSale: e.Node.AvailableForSale,
			SelectedOptions:  make([]domain.SelectedOption, 0, len(e.Node.SelectedOptions)),
		}
		if e.Node.CompareAtPrice != nil {
			m := e.Node.CompareAtPrice.toDomain()
			v.CompareAtPrice = &m
		}
		for _, o := range e.Node.SelectedOptions {
			v.SelectedOptions = append(v.SelectedOptions, domain.SelectedOption{Name: o.Name, Value: o.Value})
		}
		out.Variants = append(out.Variants, v)
	}

	for _, o := range p.Options {
		out.Options = append(out.Options, domain.ProductOption{Name: o.Name, Values: o.Values})
	}

	out.Metafields = domain.Metafields{
		IsSignature: metafieldValue(p.IsSignature),
	}
	if g, ok := domain.ParseGender(metafieldValue(p.Gender)); ok {
		out.Metafields.Gender = g
	}
	if t, ok := domain.ParseFragranceType(metafieldValue(p.FragranceType)); ok {
		out.Metafields.FragranceType = t
	}
	if n, ok := domain.ParseNotesFamily(metafieldValue(p.NotesFamily)); ok {
		out.Metafields.NotesFamily = n
	}
	if s, ok := domain.ParseSeason(metafieldValue(p.Season)); ok {
		out.Metafields.Season = s
	}

	return out
}

func (p pageInfoDTO) toDomain() domain.PageInfo {
	out := domain.PageInfo{HasNextPage: p.HasNextPage}
	if p.EndCursor != nil {
		out.EndCursor = *p.EndCursor
	}
	return out
}
