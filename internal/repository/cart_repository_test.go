package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"eleya-storefront/internal/database"
	"eleya-storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	connStr, err := dbContainer.ConnectionString(context.Background(), "sslmode=disable")
	if err != nil {
		return dbContainer.Terminate, err
	}

	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	if err := database.RunMigrations(testDB, "../../migrations", zap.NewNop()); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	code := m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Printf("could not teardown postgres container: %v", err)
		}
	}
	os.Exit(code)
}

func newCart(t *testing.T, repo CartRepository) *domain.Cart {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	cart := &domain.Cart{
		ID:        uuid.New(),
		Status:    domain.CartOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(context.Background(), cart))
	return cart
}

func newLine(cartID uuid.UUID, variantID string, quantity int) *domain.CartLine {
	return &domain.CartLine{
		CartID:        cartID,
		VariantID:     variantID,
		ProductHandle: "noir-absolu",
		ProductTitle:  "Noir Absolu",
		VariantTitle:  "50ml",
		Price:         domain.Money{Amount: "89.90", CurrencyCode: "EUR"},
		Quantity:      quantity,
		CreatedAt:     time.Now().UTC(),
	}
}

// Feature: cart-persistence, Property 2: Adding the same variant merges quantities
func TestProperty_UpsertMergesQuantities(t *testing.T) {
	repo := NewCartRepository(testDB)
	properties := gopter.NewProperties(nil)

	properties.Property("the stored quantity is the sum of every added quantity", prop.ForAll(
		func(quantities []int) bool {
			ctx := context.Background()
			cart := newCart(t, repo)

			total := 0
			for _, q := range quantities {
				total += q
				line := newLine(cart.ID, "gid://shopify/ProductVariant/1", q)
				if err := repo.UpsertLine(ctx, line); err != nil {
					t.Logf("FAIL: upsert: %v", err)
					return false
				}
				if line.Quantity != total {
					t.Logf("FAIL: returned quantity %d, expected %d", line.Quantity, total)
					return false
				}
			}

			stored, err := repo.FindByID(ctx, cart.ID)
			if err != nil {
				t.Logf("FAIL: find: %v", err)
				return false
			}
			if len(quantities) == 0 {
				return len(stored.Lines) == 0
			}
			return len(stored.Lines) == 1 && stored.Lines[0].Quantity == total
		},
		gen.SliceOfN(5, gen.IntRange(1, 19)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: cart-persistence, Property 3: A merged line never exceeds 99 units
func TestProperty_UpsertCapsMergedQuantity(t *testing.T) {
	repo := NewCartRepository(testDB)
	properties := gopter.NewProperties(nil)

	properties.Property("merging two adds stores min(a+b, 99)", prop.ForAll(
		func(a, b int) bool {
			ctx := context.Background()
			cart := newCart(t, repo)
			expected := a + b
			if expected > 99 {
				expected = 99
			}

			if err := repo.UpsertLine(ctx, newLine(cart.ID, "v-cap", a)); err != nil {
				t.Logf("FAIL: first upsert: %v", err)
				return false
			}
			line := newLine(cart.ID, "v-cap", b)
			if err := repo.UpsertLine(ctx, line); err != nil {
				t.Logf("FAIL: second upsert: %v", err)
				return false
			}
			return line.Quantity == expected
		},
		gen.IntRange(1, 99),
		gen.IntRange(1, 99),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCartRepository_UpsertStopsAtNinetyNine(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepository(testDB)
	cart := newCart(t, repo)

	require.NoError(t, repo.UpsertLine(ctx, newLine(cart.ID, "v-1", 60)))
	line := newLine(cart.ID, "v-1", 60)
	require.NoError(t, repo.UpsertLine(ctx, line))
	assert.Equal(t, 99, line.Quantity)

	found, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, found.Lines, 1)
	assert.Equal(t, 99, found.Lines[0].Quantity)
}

func TestCartRepository_CreateAndFind(t *testing.T) {
	repo := NewCartRepository(testDB)
	cart := newCart(t, repo)

	found, err := repo.FindByID(context.Background(), cart.ID)

	require.NoError(t, err)
	assert.Equal(t, cart.ID, found.ID)
	assert.Equal(t, domain.CartOpen, found.Status)
	assert.Empty(t, found.Lines)
	assert.NotNil(t, found.Lines)
}

func TestCartRepository_FindMissing(t *testing.T) {
	repo := NewCartRepository(testDB)

	_, err := repo.FindByID(context.Background(), uuid.New())

	assert.True(t, errors.Is(err, ErrCartNotFound))
}

func TestCartRepository_LinesKeepPriceAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepository(testDB)
	cart := newCart(t, repo)

	first := newLine(cart.ID, "v-1", 1)
	second := newLine(cart.ID, "v-2", 3)
	second.Price = domain.Money{Amount: "149.00", CurrencyCode: "EUR"}
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.UpsertLine(ctx, first))
	require.NoError(t, repo.UpsertLine(ctx, second))

	found, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)

	require.Len(t, found.Lines, 2)
	assert.Equal(t, "v-1", found.Lines[0].VariantID)
	assert.Equal(t, "89.90", found.Lines[0].Price.Amount)
	assert.Equal(t, "149.00", found.Lines[1].Price.Amount)
	assert.Equal(t, domain.Money{Amount: "536.90", CurrencyCode: "EUR"}, found.Subtotal())
}

func TestCartRepository_UpsertIntoMissingCart(t *testing.T) {
	repo := NewCartRepository(testDB)

	err := repo.UpsertLine(context.Background(), newLine(uuid.New(), "v-1", 1))

	assert.True(t, errors.Is(err, ErrCartNotFound))
}

func TestCartRepository_UpdateAndRemoveLine(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepository(testDB)
	cart := newCart(t, repo)
	require.NoError(t, repo.UpsertLine(ctx, newLine(cart.ID, "v-1", 2)))

	require.NoError(t, repo.UpdateLineQuantity(ctx, cart.ID, "v-1", 5))
	found, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Lines[0].Quantity)

	assert.True(t, errors.Is(repo.UpdateLineQuantity(ctx, cart.ID, "v-404", 1), ErrLineNotFound))

	require.NoError(t, repo.RemoveLine(ctx, cart.ID, "v-1"))
	assert.True(t, errors.Is(repo.RemoveLine(ctx, cart.ID, "v-1"), ErrLineNotFound))
}

func TestCartRepository_Clear(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepository(testDB)
	cart := newCart(t, repo)
	require.NoError(t, repo.UpsertLine(ctx, newLine(cart.ID, "v-1", 2)))
	require.NoError(t, repo.UpsertLine(ctx, newLine(cart.ID, "v-2", 1)))

	require.NoError(t, repo.Clear(ctx, cart.ID))

	found, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Lines)
	assert.True(t, errors.Is(repo.Clear(ctx, uuid.New()), ErrCartNotFound))
}

func TestCartRepository_MarkCheckedOut(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepository(testDB)
	cart := newCart(t, repo)

	require.NoError(t, repo.MarkCheckedOut(ctx, cart.ID, "https://eleya.myshopify.com/cart/c/1?channel=online_store"))

	found, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CartCheckedOut, found.Status)
	assert.Equal(t, "https://eleya.myshopify.com/cart/c/1?channel=online_store", found.CheckoutURL)
	assert.True(t, errors.Is(repo.MarkCheckedOut(ctx, uuid.New(), "x"), ErrCartNotFound))
}

func TestCartRepository_LineChangesTouchCart(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepository(testDB)
	cart := newCart(t, repo)
	require.NoError(t, repo.UpsertLine(ctx, newLine(cart.ID, "v-1", 1)))
	before, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.UpsertLine(ctx, newLine(cart.ID, "v-1", 1)))

	after, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}
