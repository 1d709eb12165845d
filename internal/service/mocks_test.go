package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"eleya-storefront/internal/catalog"
	"eleya-storefront/internal/domain"
	"eleya-storefront/internal/repository"

	"github.com/google/uuid"
)

// Mock catalog for testing
type mockCatalog struct {
	mu        sync.Mutex
	products  map[string]*domain.Product
	vendors   []string
	queries   []catalog.ProductQuery
	checkouts [][]domain.CheckoutLine

	productsFn func(ctx context.Context, q catalog.ProductQuery) (*catalog.ProductPage, error)
	vendorsErr error
	checkout   func(lines []domain.CheckoutLine) (string, error)
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		products: make(map[string]*domain.Product),
	}
}

func (m *mockCatalog) add(p domain.Product) {
	m.products[p.Handle] = &p
}

func (m *mockCatalog) Products(ctx context.Context, q catalog.ProductQuery) (*catalog.ProductPage, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	fn := m.productsFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, q)
	}
	return &catalog.ProductPage{Products: m.all()}, nil
}

func (m *mockCatalog) ProductByHandle(ctx context.Context, handle string) (*domain.Product, error) {
	p, ok := m.products[handle]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

func (m *mockCatalog) Vendors(ctx context.Context) ([]string, error) {
	if m.vendorsErr != nil {
		return nil, m.vendorsErr
	}
	return m.vendors, nil
}

func (m *mockCatalog) CreateCheckout(ctx context.Context, lines []domain.CheckoutLine) (string, error) {
	m.mu.Lock()
	m.checkouts = append(m.checkouts, lines)
	m.mu.Unlock()
	if m.checkout != nil {
		return m.checkout(lines)
	}
	return "https://eleya.myshopify.com/cart/c/abc?channel=online_store", nil
}

func (m *mockCatalog) all() []domain.Product {
	handles := make([]string, 0, len(m.products))
	for h := range m.products {
		handles = append(handles, h)
	}
	sort.Strings(handles)
	out := make([]domain.Product, 0, len(handles))
	for _, h := range handles {
		out = append(out, *m.products[h])
	}
	return out
}

func (m *mockCatalog) recorded() []catalog.ProductQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]catalog.ProductQuery(nil), m.queries...)
}

// Mock repository for testing
type mockCartRepository struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*domain.Cart
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{
		carts: make(map[uuid.UUID]*domain.Cart),
	}
}

func (m *mockCartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.carts[cart.ID]; exists {
		return fmt.Errorf("duplicate cart %s", cart.ID)
	}
	stored := *cart
	stored.Lines = []domain.CartLine{}
	m.carts[cart.ID] = &stored
	return nil
}

func (m *mockCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[id]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	out := *cart
	out.Lines = append([]domain.CartLine{}, cart.Lines...)
	return &out, nil
}

func (m *mockCartRepository) UpsertLine(ctx context.Context, line *domain.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[line.CartID]
	if !ok {
		return repository.ErrCartNotFound
	}
	for i, l := range cart.Lines {
		if l.VariantID == line.VariantID {
			line.Quantity += l.Quantity
			line.CreatedAt = l.CreatedAt
			cart.Lines[i] = *line
			return nil
		}
	}
	cart.Lines = append(cart.Lines, *line)
	return nil
}

func (m *mockCartRepository) UpdateLineQuantity(ctx context.Context, cartID uuid.UUID, variantID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartID]
	if !ok {
		return repository.ErrCartNotFound
	}
	for i, l := range cart.Lines {
		if l.VariantID == variantID {
			cart.Lines[i].Quantity = quantity
			return nil
		}
	}
	return repository.ErrLineNotFound
}

func (m *mockCartRepository) RemoveLine(ctx context.Context, cartID uuid.UUID, variantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartID]
	if !ok {
		return repository.ErrCartNotFound
	}
	for i, l := range cart.Lines {
		if l.VariantID == variantID {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			return nil
		}
	}
	return repository.ErrLineNotFound
}

func (m *mockCartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartID]
	if !ok {
		return repository.ErrCartNotFound
	}
	cart.Lines = []domain.CartLine{}
	return nil
}

func (m *mockCartRepository) MarkCheckedOut(ctx context.Context, cartID uuid.UUID, checkoutURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartID]
	if !ok {
		return repository.ErrCartNotFound
	}
	cart.Status = domain.CartCheckedOut
	cart.CheckoutURL = checkoutURL
	return nil
}

func perfume(handle, vendor, price string, sizes ...string) domain.Product {
	p := domain.Product{
		ID:     "gid://shopify/Product/" + handle,
		Handle: handle,
		Title:  handle,
		Vendor: vendor,
		PriceRange: domain.PriceRange{
			Min: domain.Money{Amount: price, CurrencyCode: "EUR"},
			Max: domain.Money{Amount: price, CurrencyCode: "EUR"},
		},
	}
	if len(sizes) > 0 {
		p.Options = []domain.ProductOption{{Name: domain.SizeOptionName, Values: sizes}}
	}
	titles := sizes
	if len(titles) == 0 {
		titles = []string{"Default Title"}
	}
	for i, size := range titles {
		p.Variants = append(p.Variants, domain.Variant{
			ID:               fmt.Sprintf("gid://shopify/ProductVariant/%s-%d", handle, i),
			Title:            size,
			Price:            domain.Money{Amount: price, CurrencyCode: "EUR"},
			AvailableForSale: true,
			SelectedOptions:  []domain.SelectedOption{{Name: domain.SizeOptionName, Value: size}},
		})
	}
	return p
}
