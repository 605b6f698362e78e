package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"shopfront/internal/config"
	"shopfront/internal/database"
	"shopfront/internal/model"
	"shopfront/internal/repository"
	"shopfront/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the schema applied.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, config.DatabaseConfig{MaxConnections: 30, MinConnections: 2}, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Services bundles real services backed by the test database.
type Services struct {
	Products  service.ProductService
	Cart      service.CartService
	Addresses service.AddressService
	Orders    service.OrderService
	Settings  service.SettingsService
}

// NewServices wires repositories and services against pool.
func NewServices(pool *pgxpool.Pool, opts ...service.OrderServiceOption) Services {
	logger := zerolog.Nop()

	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	settingsRepo := repository.NewSettingsRepository(pool, logger)

	return Services{
		Products:  service.NewProductService(productRepo, logger),
		Cart:      service.NewCartService(cartRepo, logger),
		Addresses: service.NewAddressService(addressRepo, logger),
		Orders:    service.NewOrderService(orderRepo, productRepo, cartRepo, addressRepo, logger, opts...),
		Settings:  service.NewSettingsService(settingsRepo, nil, 0, logger),
	}
}

// SeedProduct inserts an active product.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, id, price string, stock int) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"INSERT INTO products (id, name, category, price, stock) VALUES ($1, $2, $3, $4, $5)",
		id, "Test Product "+id, "Category A", decimal.RequireFromString(price), stock,
	)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", id, err)
	}
}

// SeedAddress creates an address for userID through the service.
func SeedAddress(t *testing.T, svc service.AddressService, userID string) *model.Address {
	t.Helper()

	address, err := svc.Create(context.Background(), userID, &model.AddressRequest{
		Recipient:  "Test User " + userID,
		Line1:      "1 Test Street",
		City:       "Testville",
		PostalCode: "12345",
		Country:    "NZ",
	})
	if err != nil {
		t.Fatalf("failed to seed address for %s: %v", userID, err)
	}
	return address
}

// ProductStock reads the stored stock for id.
func ProductStock(t *testing.T, pool *pgxpool.Pool, id string) int {
	t.Helper()

	var stock int
	if err := pool.QueryRow(context.Background(), "SELECT stock FROM products WHERE id = $1", id).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock for %s: %v", id, err)
	}
	return stock
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "cart_items", "addresses", "site_settings", "products"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
