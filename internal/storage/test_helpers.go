package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

// setupTestStorage поднимает контейнер PostgreSQL, создаёт схему
// и возвращает готовое хранилище вместе с функцией освобождения ресурсов.
func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(dsn)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	_, err = storage.DB.Exec(`
		CREATE TABLE access_requests (
			id BIGSERIAL PRIMARY KEY,
			nom TEXT NOT NULL,
			prenom TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			telephone TEXT NOT NULL,
			adresse_cabinet TEXT NOT NULL,
			num_veterinaire TEXT NOT NULL,
			date_soumission TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			nom TEXT NOT NULL DEFAULT '',
			prenom TEXT NOT NULL DEFAULT '',
			num_veterinaire TEXT NOT NULL DEFAULT '',
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			is_first_login BOOLEAN NOT NULL DEFAULT TRUE,
			status TEXT NOT NULL DEFAULT 'active',
			access_request_id BIGINT REFERENCES access_requests(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE subscriptions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			subscription_type TEXT NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL DEFAULT 'active'
		);

		CREATE TABLE products (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			image_url TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE cart_orders (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			status TEXT NOT NULL DEFAULT 'CART',
			order_number TEXT UNIQUE,
			total_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			confirmed_at TIMESTAMPTZ
		);

		CREATE UNIQUE INDEX uq_cart_orders_active_cart
			ON cart_orders(user_id) WHERE status = 'CART';

		CREATE TABLE order_items (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES cart_orders(id) ON DELETE CASCADE,
			product_id BIGINT NOT NULL REFERENCES products(id),
			quantity INT NOT NULL CHECK (quantity >= 1),
			price DOUBLE PRECISION NOT NULL
		);
	`)
	require.NoError(t, err, "failed to create schema")

	cleanup := func() {
		_ = storage.DB.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return storage, cleanup
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его ID
func (f *TestDataFactory) CreateUser(t *testing.T, email string) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO users (email, password_hash, nom, prenom)
		VALUES ($1, 'hashedpassword', 'Trabelsi', 'Sami') RETURNING id`, email).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateProduct создает товар каталога и возвращает его
func (f *TestDataFactory) CreateProduct(t *testing.T, name string, price float64) *models.Product {
	p := &models.Product{Name: name, Price: price, ImageURL: "/images/" + name + ".jpg"}
	err := f.storage.DB.QueryRow(`INSERT INTO products (name, price, image_url)
		VALUES ($1, $2, $3) RETURNING id`, p.Name, p.Price, p.ImageURL).Scan(&p.ID)
	require.NoError(t, err)
	return p
}

// CreateSubscription создает подписку пользователя и возвращает её ID
func (f *TestDataFactory) CreateSubscription(t *testing.T, userID int64, subType models.SubscriptionType,
	startDate, endDate time.Time, status models.SubscriptionStatus) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO subscriptions (user_id, subscription_type, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		userID, string(subType), startDate, endDate, string(status)).Scan(&id)
	require.NoError(t, err)
	return id
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// VerifyCartTotal проверяет, что total_amount заказа равен сумме его позиций
func (v *TestVerification) VerifyCartTotal(t *testing.T, orderID int64, expected float64) {
	var total float64
	err := v.storage.DB.QueryRow(`SELECT total_amount FROM cart_orders WHERE id = $1`, orderID).Scan(&total)
	require.NoError(t, err)
	require.InDelta(t, expected, total, 0.001)

	var itemsSum float64
	err = v.storage.DB.QueryRow(`SELECT COALESCE(SUM(price * quantity), 0)
		FROM order_items WHERE order_id = $1`, orderID).Scan(&itemsSum)
	require.NoError(t, err)
	require.InDelta(t, total, itemsSum, 0.001, "total must match the sum of item subtotals")
}

// VerifyItemCount проверяет число позиций в заказе
func (v *TestVerification) VerifyItemCount(t *testing.T, orderID int64, expected int) {
	var count int
	err := v.storage.DB.QueryRow(`SELECT COUNT(*) FROM order_items WHERE order_id = $1`, orderID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, expected, count)
}

// VerifyUserStatus проверяет статус пользователя
func (v *TestVerification) VerifyUserStatus(t *testing.T, userID int64, expected string) {
	var status string
	err := v.storage.DB.QueryRow(`SELECT status FROM users WHERE id = $1`, userID).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, expected, status)
}

// VerifySubscriptionStatus проверяет статус подписки
func (v *TestVerification) VerifySubscriptionStatus(t *testing.T, subscriptionID int64, expected string) {
	var status string
	err := v.storage.DB.QueryRow(`SELECT status FROM subscriptions WHERE id = $1`, subscriptionID).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, expected, status)
}
