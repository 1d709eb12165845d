package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eleya-storefront/internal/catalog"
	"eleya-storefront/internal/domain"
	"eleya-storefront/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MaxLineQuantity caps the quantity of a single variant in a cart
	MaxLineQuantity = 99

	// DefaultCartTokenTTL is how long a cart token stays valid
	DefaultCartTokenTTL = 30 * 24 * time.Hour
)

var (
	ErrCartCheckedOut     = errors.New("cart has already been checked out")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrVariantNotFound    = errors.New("variant not found")
	ErrVariantUnavailable = errors.New("variant is not available for sale")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
)

// CartClaims represents the JWT claims of a cart token
type CartClaims struct {
	CartID uuid.UUID `json:"cart_id"`
	jwt.RegisteredClaims
}

// CartTokens issues and verifies the bearer tokens that grant access to one cart
type CartTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCartTokens creates a token issuer signing with secret
func NewCartTokens(secret string, ttl time.Duration) *CartTokens {
	if ttl <= 0 {
		ttl = DefaultCartTokenTTL
	}
	return &CartTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for cartID
func (t *CartTokens) Issue(cartID uuid.UUID) (string, error) {
	now := t.now()
	claims := CartClaims{
		CartID: cartID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cartID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign cart token: %w", err)
	}
	return signed, nil
}

// Validate parses tokenString and returns its claims
func (t *CartTokens) Validate(tokenString string) (*CartClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CartClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*CartClaims)
	if !ok || !token.Valid || claims.CartID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CartID validates tokenString and returns the cart it grants access to
func (t *CartTokens) CartID(tokenString string) (uuid.UUID, error) {
	claims, err := t.Validate(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.CartID, nil
}

// CartService defines the interface for cart business logic
type CartService interface {
	Create(ctx context.Context) (cart *domain.Cart, token string, err error)
	Get(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error)
	AddLine(ctx context.Context, cartID uuid.UUID, handle, variantID string, quantity int) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, cartID uuid.UUID, variantID string, quantity int) (*domain.Cart, error)
	RemoveLine(ctx context.Context, cartID uuid.UUID, variantID string) (*domain.Cart, error)
	Clear(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error)
	Checkout(ctx context.Context, cartID uuid.UUID) (checkoutURL string, err error)
}

type cartService struct {
	carts  repository.CartRepository
	client catalog.Client
	tokens *CartTokens
	logger *zap.Logger
	now    func() time.Time
}

// NewCartService creates a new instance of CartService
func NewCartService(
	carts repository.CartRepository,
	client catalog.Client,
	tokens *CartTokens,
	logger *zap.Logger,
) CartService {
	return &cartService{
		carts:  carts,
		client: client,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// Create opens an empty cart and returns it with its access token
func (s *cartService) Create(ctx context.Context) (*domain.Cart, string, error) {
	now := s.now().UTC()
	cart := &domain.Cart{
		ID:        uuid.New(),
		Status:    domain.CartOpen,
		Lines:     []domain.CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.carts.Create(ctx, cart); err != nil {
		return nil, "", fmt.Errorf("failed to create cart: %w", err)
	}

	token, err := s.tokens.Issue(cart.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("Cart created", zap.String("cart_id", cart.ID.String()))
	return cart, token, nil
}

// Get loads a cart with its lines
func (s *cartService) Get(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error) {
	return s.carts.FindByID(ctx, cartID)
}

// AddLine adds quantity of a variant. An empty variantID selects the product's default variant.
// Price and titles are taken from the catalog at the time of adding.
func (s *cartService) AddLine(ctx context.Context, cartID uuid.UUID, handle, variantID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 || quantity > MaxLineQuantity {
		return nil, fmt.Errorf("%w: %d is outside 1..%d", ErrInvalidQuantity, quantity, MaxLineQuantity)
	}

	cart, err := s.openCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	product, err := s.client.ProductByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %q: %w", handle, err)
	}

	var variant domain.Variant
	var ok bool
	if variantID == "" {
		variant, ok = product.DefaultVariant()
	} else {
		variant, ok = product.VariantByID(variantID)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q on product %q", ErrVariantNotFound, variantID, handle)
	}
	if !variant.AvailableForSale {
		return nil, fmt.Errorf("%w: %s", ErrVariantUnavailable, variant.ID)
	}

	if existing, found := cart.Line(variant.ID); found && existing.Quantity+quantity > MaxLineQuantity {
		return nil, fmt.Errorf("%w: total %d exceeds %d", ErrInvalidQuantity, existing.Quantity+quantity, MaxLineQuantity)
	}

	line := &domain.CartLine{
		CartID:        cartID,
		VariantID:     variant.ID,
		ProductHandle: product.Handle,
		ProductTitle:  product.Title,
		VariantTitle:  variant.Title,
		Price:         variant.Price,
		Quantity:      quantity,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.carts.UpsertLine(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to add cart line: %w", err)
	}

	s.logger.Debug("Cart line added",
		zap.String("cart_id", cartID.String()),
		zap.String("variant_id", variant.ID),
		zap.Int("quantity", line.Quantity),
	)
	return s.carts.FindByID(ctx, cartID)
}

// UpdateQuantity sets the quantity of a line. Zero removes the line.
func (s *cartService) UpdateQuantity(ctx context.Context, cartID uuid.UUID, variantID string, quantity int) (*domain.Cart, error) {
	if quantity < 0 || quantity > MaxLineQuantity {
		return nil, fmt.Errorf("%w: %d is outside 0..%d", ErrInvalidQuantity, quantity, MaxLineQuantity)
	}
	if quantity == 0 {
		return s.RemoveLine(ctx, cartID, variantID)
	}

	if _, err := s.openCart(ctx, cartID); err != nil {
		return nil, err
	}
	if err := s.carts.UpdateLineQuantity(ctx, cartID, variantID, quantity); err != nil {
		return nil, err
	}
	return s.carts.FindByID(ctx, cartID)
}

// RemoveLine deletes one line
func (s *cartService) RemoveLine(ctx context.Context, cartID uuid.UUID, variantID string) (*domain.Cart, error) {
	if _, err := s.openCart(ctx, cartID); err != nil {
		return nil, err
	}
	if err := s.carts.RemoveLine(ctx, cartID, variantID); err != nil {
		return nil, err
	}
	return s.carts.FindByID(ctx, cartID)
}

// Clear empties the cart
func (s *cartService) Clear(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error) {
	if _, err := s.openCart(ctx, cartID); err != nil {
		return nil, err
	}
	if err := s.carts.Clear(ctx, cartID); err != nil {
		return nil, err
	}
	return s.carts.FindByID(ctx, cartID)
}

// Checkout hands the cart lines to the platform and freezes the cart.
// Checking out a cart twice returns the checkout URL recorded the first time.
func (s *cartService) Checkout(ctx context.Context, cartID uuid.UUID) (string, error) {
	cart, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		return "", err
	}
	if cart.Status == domain.CartCheckedOut {
		return cart.CheckoutURL, nil
	}
	if len(cart.Lines) == 0 {
		return "", ErrCartEmpty
	}

	checkoutURL, err := s.client.CreateCheckout(ctx, cart.CheckoutLines())
	if err != nil {
		s.logger.Error("Error creating storefront checkout",
			zap.String("cart_id", cartID.String()),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to create checkout: %w", err)
	}

	if err := s.carts.MarkCheckedOut(ctx, cartID, checkoutURL); err != nil {
		return "", fmt.Errorf("failed to record checkout: %w", err)
	}

	s.logger.Info("Cart checked out",
		zap.String("cart_id", cartID.String()),
		zap.Int("items", cart.TotalQuantity()),
		zap.String("subtotal", cart.Subtotal().Amount),
	)
	return checkoutURL, nil
}

func (s *cartService) openCart(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error) {
	cart, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.Status != domain.CartOpen {
		return nil, ErrCartCheckedOut
	}
	return cart, nil
}
