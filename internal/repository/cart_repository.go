package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eleya-storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrLineNotFound = errors.New("cart line not found")
)

const pgForeignKeyViolation = "23503"

// CartRepository defines the interface for cart data access
type CartRepository interface {
	Create(ctx context.Context, cart *domain.Cart) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error)
	UpsertLine(ctx context.Context, line *domain.CartLine) error
	UpdateLineQuantity(ctx context.Context, cartID uuid.UUID, variantID string, quantity int) error
	RemoveLine(ctx context.Context, cartID uuid.UUID, variantID string) error
	Clear(ctx context.Context, cartID uuid.UUID) error
	MarkCheckedOut(ctx context.Context, cartID uuid.UUID, checkoutURL string) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// Create inserts an empty cart
func (r *cartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	query := `
		INSERT INTO carts (id, status, checkout_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		cart.ID,
		cart.Status,
		cart.CheckoutURL,
		cart.CreatedAt,
		cart.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// FindByID loads a cart with its lines in insertion order
func (r *cartRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	query := `
		SELECT id, status, checkout_url, created_at, updated_at
		FROM carts
		WHERE id = $1
	`

	cart := &domain.Cart{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&cart.ID,
		&cart.Status,
		&cart.CheckoutURL,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}

	lines, err := r.lines(ctx, id)
	if err != nil {
		return nil, err
	}
	cart.Lines = lines
	return cart, nil
}

func (r *cartRepository) lines(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error) {
	query := `
		SELECT cart_id, variant_id, product_handle, product_title, variant_title,
		       price_amount::text, currency_code, quantity, created_at
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY created_at, variant_id
	`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(
			&l.CartID,
			&l.VariantID,
			&l.ProductHandle,
			&l.ProductTitle,
			&l.VariantTitle,
			&l.Price.Amount,
			&l.Price.CurrencyCode,
			&l.Quantity,
			&l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart lines: %w", err)
	}
	return lines, nil
}

// UpsertLine adds a line, or adds its quantity to the existing line for the same variant.
// Price and titles are refreshed from the new line. line.Quantity is updated to the stored total.
func (r *cartRepository) UpsertLine(ctx context.Context, line *domain.CartLine) error {
	query := `
		INSERT INTO cart_lines (cart_id, variant_id, product_handle, product_title, variant_title,
		                        price_amount, currency_code, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9)
		ON CONFLICT (cart_id, variant_id) DO UPDATE SET
			quantity = LEAST(cart_lines.quantity + EXCLUDED.quantity, 99),
			product_handle = EXCLUDED.product_handle,
			product_title = EXCLUDED.product_title,
			variant_title = EXCLUDED.variant_title,
			price_amount = EXCLUDED.price_amount,
			currency_code = EXCLUDED.currency_code
		RETURNING quantity, created_at
	`

	return r.inTx(ctx, line.CartID, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, query,
			line.CartID,
			line.VariantID,
			line.ProductHandle,
			line.ProductTitle,
			line.VariantTitle,
			line.Price.Amount,
			line.Price.CurrencyCode,
			line.Quantity,
			line.CreatedAt,
		).Scan(&line.Quantity, &line.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
				return ErrCartNotFound
			}
			return fmt.Errorf("failed to upsert cart line: %w", err)
		}
		return nil
	})
}

// UpdateLineQuantity sets the quantity of an existing line
func (r *cartRepository) UpdateLineQuantity(ctx context.Context, cartID uuid.UUID, variantID string, quantity int) error {
	query := `
		UPDATE cart_lines
		SET quantity = $3
		WHERE cart_id = $1 AND variant_id = $2
	`

	return r.inTx(ctx, cartID, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, cartID, variantID, quantity)
		if err != nil {
			return fmt.Errorf("failed to update cart line: %w", err)
		}
		return expectRow(result, ErrLineNotFound)
	})
}

// RemoveLine deletes one line
func (r *cartRepository) RemoveLine(ctx context.Context, cartID uuid.UUID, variantID string) error {
	query := `DELETE FROM cart_lines WHERE cart_id = $1 AND variant_id = $2`

	return r.inTx(ctx, cartID, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, cartID, variantID)
		if err != nil {
			return fmt.Errorf("failed to remove cart line: %w", err)
		}
		return expectRow(result, ErrLineNotFound)
	})
}

// Clear deletes every line of a cart
func (r *cartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	query := `DELETE FROM cart_lines WHERE cart_id = $1`

	return r.inTx(ctx, cartID, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, cartID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
}

// MarkCheckedOut records the platform checkout URL and freezes the cart
func (r *cartRepository) MarkCheckedOut(ctx context.Context, cartID uuid.UUID, checkoutURL string) error {
	query := `
		UPDATE carts
		SET status = $2, checkout_url = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, cartID, domain.CartCheckedOut, checkoutURL)
	if err != nil {
		return fmt.Errorf("failed to mark cart checked out: %w", err)
	}
	return expectRow(result, ErrCartNotFound)
}

// inTx runs fn in a transaction and bumps the cart's updated_at alongside it
func (r *cartRepository) inTx(ctx context.Context, cartID uuid.UUID, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE carts SET updated_at = CURRENT_TIMESTAMP WHERE id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("failed to touch cart: %w", err)
	}
	if err := expectRow(result, ErrCartNotFound); err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func expectRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
