package catalog

import (
	"fmt"
	"testing"

	"eleya-storefront/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sizePool = []string{"10ml", "30ml", "50ml", "100ml", "100ML"}

func newTestProduct(id string, price string, sizes ...string) domain.Product {
	p := domain.Product{
		ID:     id,
		Handle: "handle-" + id,
		Title:  "Perfume " + id,
		Vendor: "Maison Eleya",
		PriceRange: domain.PriceRange{
			Min: domain.Money{Amount: price, CurrencyCode: "EUR"},
			Max: domain.Money{Amount: price, CurrencyCode: "EUR"},
		},
	}
	if len(sizes) > 0 {
		p.Options = []domain.ProductOption{{Name: "Size", Values: sizes}}
		for _, s := range sizes {
			p.Variants = append(p.Variants, domain.Variant{
				ID:              id + "-" + s,
				Title:           s,
				Price:           domain.Money{Amount: price, CurrencyCode: "EUR"},
				SelectedOptions: []domain.SelectedOption{{Name: "Size", Value: s}},
			})
		}
	}
	return p
}

// productsFrom turns generated seeds into a product list with unique ids
func productsFrom(seeds []int) []domain.Product {
	products := make([]domain.Product, 0, len(seeds))
	for i, s := range seeds {
		var sizes []string
		for bit, size := range sizePool {
			if s&(1<<bit) != 0 {
				sizes = append(sizes, size)
			}
		}
		price := decimal.New(int64((s>>5)%200000), -2).StringFixed(2)
		if s%97 == 0 {
			price = "n/a"
		}
		products = append(products, newTestProduct(fmt.Sprintf("p%d", i), price, sizes...))
	}
	return products
}

func residualFrom(sizes []int, withPrice bool, minCents, spanCents int) Residual {
	r := Residual{}
	for _, i := range sizes {
		r.Sizes = append(r.Sizes, sizePool[i%len(sizePool)])
	}
	if withPrice {
		min := decimal.New(int64(minCents), -2)
		max := decimal.New(int64(minCents+spanCents), -2)
		r.PriceMin = &min
		r.PriceMax = &max
	}
	return r
}

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

// Feature: collection-browsing, Property 3: Assembly is idempotent
func TestProperty_AssembleIsIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("re-filtering an assembled list changes nothing", prop.ForAll(
		func(seeds []int, sizes []int, withPrice bool, minCents, spanCents int) bool {
			products := productsFrom(seeds)
			r := residualFrom(sizes, withPrice, minCents, spanCents)

			once, _ := Assemble(products, r)
			twice, warnings := Assemble(once, r)

			if len(warnings) != 0 {
				t.Logf("FAIL: second pass produced warnings: %v", warnings)
				return false
			}
			return assert.ObjectsAreEqual(ids(once), ids(twice))
		},
		gen.SliceOf(gen.IntRange(0, 1<<20)),
		gen.SliceOf(gen.IntRange(0, 10)),
		gen.Bool(),
		gen.IntRange(0, 200000),
		gen.IntRange(0, 200000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: collection-browsing, Property 4: Assembly preserves server order
func TestProperty_AssemblePreservesOrder(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("surviving products keep their relative input order", prop.ForAll(
		func(seeds []int, sizes []int, withPrice bool, minCents, spanCents int) bool {
			products := productsFrom(seeds)
			r := residualFrom(sizes, withPrice, minCents, spanCents)

			out, _ := Assemble(products, r)

			// out must be a subsequence of products
			j := 0
			for _, p := range products {
				if j < len(out) && out[j].ID == p.ID {
					j++
				}
			}
			if j != len(out) {
				t.Logf("FAIL: output %v is not a subsequence of input", ids(out))
				return false
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1<<20)),
		gen.SliceOf(gen.IntRange(0, 10)),
		gen.Bool(),
		gen.IntRange(0, 200000),
		gen.IntRange(0, 200000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: collection-browsing, Property 5: Price bounds are inclusive
func TestProperty_PriceBoundsAreInclusive(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("products priced exactly at either bound are retained", prop.ForAll(
		func(minCents, spanCents int) bool {
			r := residualFrom(nil, true, minCents, spanCents)
			atMin := newTestProduct("min", r.PriceMin.StringFixed(2))
			atMax := newTestProduct("max", r.PriceMax.StringFixed(2))

			out, warnings := Assemble([]domain.Product{atMin, atMax}, r)
			return len(warnings) == 0 && len(out) == 2
		},
		gen.IntRange(0, 500000),
		gen.IntRange(0, 500000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAssemble_TenProductsThreeWithHundredMl(t *testing.T) {
	products := []domain.Product{
		newTestProduct("1", "80.00", "50ml"),
		newTestProduct("2", "95.00", "50ml", "100ml"),
		newTestProduct("3", "120.00", "30ml"),
		newTestProduct("4", "60.00"),
		newTestProduct("5", "150.00", "100ml"),
		newTestProduct("6", "70.00", "10ml"),
		newTestProduct("7", "99.00", "30ml", "50ml"),
		newTestProduct("8", "210.00", "100ml", "200ml"),
		newTestProduct("9", "40.00", "10ml"),
		newTestProduct("10", "55.00", "50ml"),
	}
	r := Residual{Sizes: []string{"100ml"}, PriceMin: dec("0"), PriceMax: dec("1000")}

	out, warnings := Assemble(products, r)

	assert.Empty(t, warnings)
	assert.Equal(t, []string{"2", "5", "8"}, ids(out))
}

func TestAssemble_SizeMatchIsExact(t *testing.T) {
	products := []domain.Product{
		newTestProduct("big", "100.00", "100ml"),
		newTestProduct("upper", "100.00", "10ML"),
	}

	out, _ := Assemble(products, Residual{Sizes: []string{"10ml"}})

	assert.Empty(t, out)
}

func TestAssemble_SizeIgnoresVariantTitles(t *testing.T) {
	p := newTestProduct("titled", "100.00")
	p.Variants = []domain.Variant{{ID: "v1", Title: "100ml"}}

	out, _ := Assemble([]domain.Product{p}, Residual{Sizes: []string{"100ml"}})

	assert.Empty(t, out)
}

func TestAssemble_SizeOptionNameIsCaseInsensitive(t *testing.T) {
	p := newTestProduct("lower", "100.00")
	p.Options = []domain.ProductOption{{Name: "size", Values: []string{"50ml"}}}

	out, _ := Assemble([]domain.Product{p}, Residual{Sizes: []string{"50ml"}})

	require.Len(t, out, 1)
}

func TestAssemble_UnparseablePriceExcludesOnlyThatProduct(t *testing.T) {
	products := []domain.Product{
		newTestProduct("ok-1", "10.00"),
		newTestProduct("broken", "ten euro"),
		newTestProduct("ok-2", "20.00"),
	}

	out, warnings := Assemble(products, Residual{PriceMin: dec("0"), PriceMax: dec("100")})

	assert.Equal(t, []string{"ok-1", "ok-2"}, ids(out))
	require.Len(t, warnings, 1)
	assert.Equal(t, "broken", warnings[0].ProductID)
	assert.Contains(t, warnings[0].String(), "ten euro")
}

func TestAssemble_UnparseablePriceIgnoredWithoutPricePredicate(t *testing.T) {
	products := []domain.Product{newTestProduct("broken", "", "50ml")}

	out, warnings := Assemble(products, Residual{Sizes: []string{"50ml"}})

	assert.Len(t, out, 1)
	assert.Empty(t, warnings)
}

func TestAssemble_SubCentPrecision(t *testing.T) {
	products := []domain.Product{
		newTestProduct("just-under", "99.994"),
		newTestProduct("just-over", "100.001"),
	}

	out, _ := Assemble(products, Residual{PriceMax: dec("100")})

	assert.Equal(t, []string{"just-under"}, ids(out))
}

func TestAssemble_EmptyResidualKeepsEverything(t *testing.T) {
	products := productsFrom([]int{1, 2, 3, 97, 4})

	out, warnings := Assemble(products, Residual{})

	assert.Equal(t, ids(products), ids(out))
	assert.Empty(t, warnings)
}

func TestAssemble_NilInput(t *testing.T) {
	out, warnings := Assemble(nil, Residual{Sizes: []string{"50ml"}})

	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Empty(t, warnings)
}
