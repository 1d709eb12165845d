package transport

import (
	"context"
	"sync"
	"time"

	"eleya-storefront/internal/catalog"
	"eleya-storefront/internal/domain"
	"eleya-storefront/internal/repository"
	"eleya-storefront/internal/service"

	"github.com/google/uuid"
)

// Mock collection service for testing
type mockCollections struct {
	mu       sync.Mutex
	products []domain.Product
	vendors  []string
	browsed  []domain.FilterState
	browseFn func(ctx context.Context, f domain.FilterState) (*service.CollectionView, error)
}

func (m *mockCollections) Browse(ctx context.Context, f domain.FilterState) (*service.CollectionView, error) {
	m.mu.Lock()
	m.browsed = append(m.browsed, f.Clone())
	fn := m.browseFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, f)
	}
	return &service.CollectionView{
		Filters:       f,
		Query:         catalog.Compile(f).Query,
		Products:      m.products,
		Facets:        catalog.DeriveFacets(m.products),
		ActiveFilters: f.ActiveCount(),
		Empty:         len(m.products) == 0,
		Reset:         domain.FilterState{Sort: f.Sort.OrDefault()},
		Collections:   domain.Collections(),
	}, nil
}

func (m *mockCollections) Home(ctx context.Context) (*service.HomeView, error) {
	return &service.HomeView{
		Season: domain.SeasonAutumn,
		Rails:  []service.Rail{{Slug: "bestsellers", Title: "Bestsellers", Products: m.products}},
	}, nil
}

func (m *mockCollections) Product(ctx context.Context, handle string) (*domain.Product, error) {
	for i := range m.products {
		if m.products[i].Handle == handle {
			p := m.products[i]
			return &p, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (m *mockCollections) Vendors(ctx context.Context) ([]string, error) {
	return m.vendors, nil
}

func (m *mockCollections) lastBrowsed() domain.FilterState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.browsed[len(m.browsed)-1]
}

// Mock cart service for testing
type mockCarts struct {
	mu     sync.Mutex
	tokens *service.CartTokens
	carts  map[uuid.UUID]*domain.Cart
}

func newMockCarts(tokens *service.CartTokens) *mockCarts {
	return &mockCarts{tokens: tokens, carts: make(map[uuid.UUID]*domain.Cart)}
}

func (m *mockCarts) Create(ctx context.Context) (*domain.Cart, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	cart := &domain.Cart{ID: uuid.New(), Status: domain.CartOpen, Lines: []domain.CartLine{}, CreatedAt: now, UpdatedAt: now}
	m.carts[cart.ID] = cart
	token, err := m.tokens.Issue(cart.ID)
	if err != nil {
		return nil, "", err
	}
	return m.copyOf(cart), token, nil
}

func (m *mockCarts) Get(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return m.copyOf(cart), nil
}

func (m *mockCarts) AddLine(ctx context.Context, cartID uuid.UUID, handle, variantID string, quantity int) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, err := m.open(cartID)
	if err != nil {
		return nil, err
	}
	if handle == "sold-out" {
		return nil, service.ErrVariantUnavailable
	}
	if variantID == "" {
		variantID = "gid://shopify/ProductVariant/" + handle + "-0"
	}
	for i := range cart.Lines {
		if cart.Lines[i].VariantID == variantID {
			cart.Lines[i].Quantity += quantity
			return m.copyOf(cart), nil
		}
	}
	cart.Lines = append(cart.Lines, domain.CartLine{
		CartID:        cartID,
		VariantID:     variantID,
		ProductHandle: handle,
		ProductTitle:  handle,
		Price:         domain.Money{Amount: "129.00", CurrencyCode: "EUR"},
		Quantity:      quantity,
	})
	return m.copyOf(cart), nil
}

func (m *mockCarts) UpdateQuantity(ctx context.Context, cartID uuid.UUID, variantID string, quantity int) (*domain.Cart, error) {
	if quantity == 0 {
		return m.RemoveLine(ctx, cartID, variantID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, err := m.open(cartID)
	if err != nil {
		return nil, err
	}
	for i := range cart.Lines {
		if cart.Lines[i].VariantID == variantID {
			cart.Lines[i].Quantity = quantity
			return m.copyOf(cart), nil
		}
	}
	return nil, repository.ErrLineNotFound
}

func (m *mockCarts) RemoveLine(ctx context.Context, cartID uuid.UUID, variantID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, err := m.open(cartID)
	if err != nil {
		return nil, err
	}
	for i := range cart.Lines {
		if cart.Lines[i].VariantID == variantID {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			return m.copyOf(cart), nil
		}
	}
	return nil, repository.ErrLineNotFound
}

func (m *mockCarts) Clear(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, err := m.open(cartID)
	if err != nil {
		return nil, err
	}
	cart.Lines = []domain.CartLine{}
	return m.copyOf(cart), nil
}

func (m *mockCarts) Checkout(ctx context.Context, cartID uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartID]
	if !ok {
		return "", repository.ErrCartNotFound
	}
	if cart.Status == domain.CartCheckedOut {
		return cart.CheckoutURL, nil
	}
	if len(cart.Lines) == 0 {
		return "", service.ErrCartEmpty
	}
	cart.Status = domain.CartCheckedOut
	cart.CheckoutURL = "https://eleya.myshopify.com/cart/c/" + cartID.String() + "?channel=online_store"
	return cart.CheckoutURL, nil
}

func (m *mockCarts) open(cartID uuid.UUID) (*domain.Cart, error) {
	cart, ok := m.carts[cartID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	if cart.Status != domain.CartOpen {
		return nil, service.ErrCartCheckedOut
	}
	return cart, nil
}

func (m *mockCarts) copyOf(cart *domain.Cart) *domain.Cart {
	out := *cart
	out.Lines = append([]domain.CartLine{}, cart.Lines...)
	return &out
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
		Variants: []domain.Variant{{
			ID:               "gid://shopify/ProductVariant/" + handle + "-0",
			Title:            "Default Title",
			Price:            domain.Money{Amount: price, CurrencyCode: "EUR"},
			AvailableForSale: true,
		}},
	}
	if len(sizes) > 0 {
		p.Options = []domain.ProductOption{{Name: domain.SizeOptionName, Values: sizes}}
	}
	return p
}
