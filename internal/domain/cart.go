package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartStatus is the lifecycle state of a cart
type CartStatus string

const (
	CartOpen       CartStatus = "open"
	CartCheckedOut CartStatus = "checked_out"
)

// Cart is a shopper's basket before it is handed to the platform checkout
type Cart struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Status      CartStatus `json:"status" db:"status"`
	CheckoutURL string     `json:"checkout_url,omitempty" db:"checkout_url"`
	Lines       []CartLine `json:"lines"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// CartLine is one variant and its quantity
type CartLine struct {
	CartID        uuid.UUID `json:"-" db:"cart_id"`
	VariantID     string    `json:"variant_id" db:"variant_id"`
	ProductHandle string    `json:"product_handle" db:"product_handle"`
	ProductTitle  string    `json:"product_title" db:"product_title"`
	VariantTitle  string    `json:"variant_title" db:"variant_title"`
	Price         Money     `json:"price"`
	Quantity      int       `json:"quantity" db:"quantity"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// LineTotal returns price * quantity. An unparseable price counts as zero.
func (l CartLine) LineTotal() decimal.Decimal {
	price, err := l.Price.Decimal()
	if err != nil {
		return decimal.Zero
	}
	return price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// TotalQuantity is the number of items across all lines
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Subtotal sums line totals. The currency of the first line is used.
func (c *Cart) Subtotal() Money {
	total := decimal.Zero
	currency := ""
	for _, l := range c.Lines {
		total = total.Add(l.LineTotal())
		if currency == "" {
			currency = l.Price.CurrencyCode
		}
	}
	return Money{Amount: total.StringFixed(2), CurrencyCode: currency}
}

// Line finds a line by variant
func (c *Cart) Line(variantID string) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.VariantID == variantID {
			return l, true
		}
	}
	return CartLine{}, false
}

// CheckoutLine is what the platform needs to build a checkout
type CheckoutLine struct {
	VariantID string `json:"merchandiseId"`
	Quantity  int    `json:"quantity"`
}

// CheckoutLines converts cart lines for the platform
func (c *Cart) CheckoutLines() []CheckoutLine {
	lines := make([]CheckoutLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, CheckoutLine{VariantID: l.VariantID, Quantity: l.Quantity})
	}
	return lines
}
