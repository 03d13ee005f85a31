package cart

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vitalfeed/vitalfeed-backend/internal/models"
	"github.com/vitalfeed/vitalfeed-backend/internal/storage"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetCartByUser(ctx context.Context, userID int64) (*models.CartOrder, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartOrder), args.Error(1)
}

func (m *MockRepository) CreateCart(ctx context.Context, userID int64) (*models.CartOrder, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartOrder), args.Error(1)
}

func (m *MockRepository) ListCartItems(ctx context.Context, orderID int64) ([]*storage.CartItemRow, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.CartItemRow), args.Error(1)
}

func (m *MockRepository) AddItem(ctx context.Context, orderID int64, product *models.Product, quantity int) error {
	args := m.Called(ctx, orderID, product, quantity)
	return args.Error(0)
}

func (m *MockRepository) UpdateItemQuantity(ctx context.Context, orderID, itemID int64, quantity int) error {
	args := m.Called(ctx, orderID, itemID, quantity)
	return args.Error(0)
}

func (m *MockRepository) RemoveItem(ctx context.Context, orderID, itemID int64) error {
	args := m.Called(ctx, orderID, itemID)
	return args.Error(0)
}

func (m *MockRepository) ClearCart(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockRepository) ConfirmCart(ctx context.Context, userID int64, orderNumber string, confirmedAt time.Time) (*models.CartOrder, error) {
	args := m.Called(ctx, userID, orderNumber, confirmedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartOrder), args.Error(1)
}

func (m *MockRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockRepository) ListProducts(ctx context.Context) ([]*models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newService(repo *MockRepository, cache *MockCache) *Service {
	s := New(repo, cache, nil, "finance@vitalfeed.tn", newNoopLogger())
	s.publish = func(_ *amqp.Channel, _, _ string, _ any) error { return nil }
	return s
}

func cartOrder(id, userID int64, total float64) *models.CartOrder {
	return &models.CartOrder{
		ID:          id,
		UserID:      userID,
		Status:      models.OrderStatusCart,
		TotalAmount: total,
	}
}

func itemRow(itemID, productID int64, name string, quantity int, price float64) *storage.CartItemRow {
	return &storage.CartItemRow{
		Item: models.OrderItem{
			ID:        itemID,
			ProductID: productID,
			Quantity:  quantity,
			Price:     price,
		},
		ProductName: name,
	}
}

func TestService_GetCart(t *testing.T) {
	t.Run("существующая корзина возвращается с позициями", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCartByUser", mock.Anything, int64(10)).
			Return(cartOrder(1, 10, 91.0), nil).Once()
		repo.On("ListCartItems", mock.Anything, int64(1)).
			Return([]*storage.CartItemRow{
				itemRow(1, 100, "Croquettes chiot 10kg", 2, 35.5),
				itemRow(2, 101, "Complément vitaminé", 1, 20.0),
			}, nil).Once()

		view, err := newService(repo, new(MockCache)).GetCart(context.Background(), 10)

		require.NoError(t, err)
		assert.Equal(t, int64(1), view.CartID)
		assert.Equal(t, 91.0, view.TotalAmount)
		require.Len(t, view.Items, 2)
		assert.Equal(t, 71.0, view.Items[0].SubTotal)
		repo.AssertExpectations(t)
	})

	t.Run("первое обращение создает пустую корзину", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCartByUser", mock.Anything, int64(10)).
			Return(nil, models.ErrCartNotFound).Once()
		repo.On("CreateCart", mock.Anything, int64(10)).
			Return(cartOrder(7, 10, 0), nil).Once()
		repo.On("ListCartItems", mock.Anything, int64(7)).
			Return([]*storage.CartItemRow{}, nil).Once()

		view, err := newService(repo, new(MockCache)).GetCart(context.Background(), 10)

		require.NoError(t, err)
		assert.Equal(t, int64(7), view.CartID)
		assert.Empty(t, view.Items)
		assert.Zero(t, view.TotalAmount)
		repo.AssertExpectations(t)
	})
}

func TestService_AddItem(t *testing.T) {
	t.Run("товар добавляется и корзина перечитывается", func(t *testing.T) {
		repo := new(MockRepository)
		product := &models.Product{ID: 100, Name: "Croquettes chiot 10kg", Price: 35.5}
		repo.On("GetCartByUser", mock.Anything, int64(10)).
			Return(cartOrder(1, 10, 0), nil).Once()
		repo.On("GetProductByID", mock.Anything, int64(100)).Return(product, nil).Once()
		repo.On("AddItem", mock.Anything, int64(1), product, 2).Return(nil).Once()
		repo.On("GetCartByUser", mock.Anything, int64(10)).
			Return(cartOrder(1, 10, 71.0), nil).Once()
		repo.On("ListCartItems", mock.Anything, int64(1)).
			Return([]*storage.CartItemRow{itemRow(1, 100, product.Name, 2, 35.5)}, nil).Once()

		view, err := newService(repo, new(MockCache)).AddItem(context.Background(), 10,
			models.DummyCartItem{ProductID: 100, Quantity: 2})

		require.NoError(t, err)
		assert.Equal(t, 71.0, view.TotalAmount)
		repo.AssertExpectations(t)
	})

	t.Run("неизвестный товар отклоняется", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCartByUser", mock.Anything, int64(10)).
			Return(cartOrder(1, 10, 0), nil).Once()
		repo.On("GetProductByID", mock.Anything, int64(999)).
			Return(nil, models.ErrProductNotFound).Once()

		_, err := newService(repo, new(MockCache)).AddItem(context.Background(), 10,
			models.DummyCartItem{ProductID: 999, Quantity: 1})

		assert.ErrorIs(t, err, models.ErrProductNotFound)
		repo.AssertExpectations(t)
	})
}

func TestService_UpdateItem(t *testing.T) {
	t.Run("количество обновляется", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCartByUser", mock.Anything, int64(10)).
			Return(cartOrder(1, 10, 71.0), nil).Twice()
		repo.On("UpdateItemQuantity", mock.Anything, int64(1), int64(5), 3).Return(nil).Once()
		repo.On("ListCartItems", mock.Anything, int64(1)).
			Return([]*storage.CartItemRow{}, nil).Once()

		_, err := newService(repo, new(MockCache)).UpdateItem(context.Background(), 10, 5, 3)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("количество меньше единицы удаляет позицию", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCartByUser", mock.Anything, int64(10)).
			Return(cartOrder(1, 10, 0), nil).Twice()
		repo.On("RemoveItem", mock.Anything, int64(1), int64(5)).Return(nil).Once()
		repo.On("ListCartItems", mock.Anything, int64(1)).
			Return([]*storage.CartItemRow{}, nil).Once()

		_, err := newService(repo, new(MockCache)).UpdateItem(context.Background(), 10, 5, 0)

		require.NoError(t, err)
		repo.AssertNotCalled(t, "UpdateItemQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("чужая позиция отклоняется", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCartByUser", mock.Anything, int64(10)).
			Return(cartOrder(1, 10, 0), nil).Once()
		repo.On("UpdateItemQuantity", mock.Anything, int64(1), int64(5), 2).
			Return(models.ErrItemNotOwned).Once()

		_, err := newService(repo, new(MockCache)).UpdateItem(context.Background(), 10, 5, 2)

		assert.ErrorIs(t, err, models.ErrItemNotOwned)
		repo.AssertExpectations(t)
	})
}

func TestService_Checkout(t *testing.T) {
	now := time.Now().UTC()
	user := &models.User{ID: 10, Email: "vet@example.com", Prenom: "Sami", Nom: "Trabelsi"}

	confirmedOrder := func(total float64) *models.CartOrder {
		number := "ORD-AB12CD34"
		return &models.CartOrder{
			ID:          1,
			UserID:      10,
			Status:      models.OrderStatusConfirmed,
			OrderNumber: &number,
			TotalAmount: total,
			ConfirmedAt: &now,
		}
	}

	t.Run("успешное оформление публикует уведомление в финансовый отдел", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByID", mock.Anything, int64(10)).Return(user, nil).Once()
		repo.On("GetCartByUser", mock.Anything, int64(10)).
			Return(cartOrder(1, 10, 71.0), nil).Once()
		repo.On("ListCartItems", mock.Anything, int64(1)).
			Return([]*storage.CartItemRow{itemRow(1, 100, "Croquettes chiot 10kg", 2, 35.5)}, nil).Once()
		repo.On("ConfirmCart", mock.Anything, int64(10), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Return(confirmedOrder(71.0), nil).Once()

		var notice models.OrderNotice
		service := newService(repo, new(MockCache))
		service.publish = func(_ *amqp.Channel, _, routingKey string, message any) error {
			assert.Equal(t, "order", routingKey)
			notice = message.(models.OrderNotice)
			return nil
		}

		result, err := service.Checkout(context.Background(), 10)

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(result.OrderNumber, "ORD-"))
		assert.Equal(t, 71.0, result.TotalAmount)
		assert.Equal(t, "finance@vitalfeed.tn", notice.Email)
		assert.Equal(t, "Sami Trabelsi", notice.Nom)
		require.Len(t, notice.Items, 1)
		assert.Equal(t, 71.0, notice.Items[0].SubTotal)
		repo.AssertExpectations(t)
	})

	t.Run("пустая корзина не оформляется", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByID", mock.Anything, int64(10)).Return(user, nil).Once()
		repo.On("GetCartByUser", mock.Anything, int64(10)).
			Return(cartOrder(1, 10, 0), nil).Once()
		repo.On("ListCartItems", mock.Anything, int64(1)).
			Return([]*storage.CartItemRow{}, nil).Once()

		_, err := newService(repo, new(MockCache)).Checkout(context.Background(), 10)

		assert.ErrorIs(t, err, models.ErrEmptyCart)
		repo.AssertNotCalled(t, "ConfirmCart", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("корзина с нулевой суммой не оформляется", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByID", mock.Anything, int64(10)).Return(user, nil).Once()
		repo.On("GetCartByUser", mock.Anything, int64(10)).
			Return(cartOrder(1, 10, 0), nil).Once()
		repo.On("ListCartItems", mock.Anything, int64(1)).
			Return([]*storage.CartItemRow{itemRow(1, 100, "Échantillon gratuit", 1, 0)}, nil).Once()

		_, err := newService(repo, new(MockCache)).Checkout(context.Background(), 10)

		assert.ErrorIs(t, err, models.ErrEmptyCart)
		repo.AssertNotCalled(t, "ConfirmCart", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("сбой очереди не отменяет оформленный заказ", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByID", mock.Anything, int64(10)).Return(user, nil).Once()
		repo.On("GetCartByUser", mock.Anything, int64(10)).
			Return(cartOrder(1, 10, 71.0), nil).Once()
		repo.On("ListCartItems", mock.Anything, int64(1)).
			Return([]*storage.CartItemRow{itemRow(1, 100, "Croquettes chiot 10kg", 2, 35.5)}, nil).Once()
		repo.On("ConfirmCart", mock.Anything, int64(10), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Return(confirmedOrder(71.0), nil).Once()

		service := newService(repo, new(MockCache))
		service.publish = func(_ *amqp.Channel, _, _ string, _ any) error {
			return errors.New("broker unavailable")
		}

		result, err := service.Checkout(context.Background(), 10)

		assert.ErrorIs(t, err, models.ErrNotificationFailed)
		require.NotNil(t, result)
		assert.True(t, strings.HasPrefix(result.OrderNumber, "ORD-"))
		assert.Equal(t, 71.0, result.TotalAmount)
		repo.AssertExpectations(t)
	})

	t.Run("повторное оформление отклоняется", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByID", mock.Anything, int64(10)).Return(user, nil).Once()
		repo.On("GetCartByUser", mock.Anything, int64(10)).
			Return(nil, models.ErrCartNotFound).Once()

		_, err := newService(repo, new(MockCache)).Checkout(context.Background(), 10)

		assert.ErrorIs(t, err, models.ErrCartNotFound)
		repo.AssertExpectations(t)
	})
}

func TestNewOrderNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		number := NewOrderNumber()
		require.Len(t, number, 12)
		assert.True(t, strings.HasPrefix(number, "ORD-"))
		assert.Equal(t, strings.ToUpper(number), number)
		assert.False(t, seen[number], "order numbers must not repeat")
		seen[number] = true
	}
}

func TestService_ListProducts(t *testing.T) {
	products := []*models.Product{
		{ID: 1, Name: "Croquettes chiot 10kg", Price: 35.5},
	}

	t.Run("попадание в кеш не трогает хранилище", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		cache.On("Get", productsCacheKey, mock.Anything).
			Run(func(args mock.Arguments) {
				ptr := args.Get(1).(*[]*models.Product)
				*ptr = products
			}).
			Return(true, nil).Once()

		got, err := newService(repo, cache).ListProducts(context.Background())

		require.NoError(t, err)
		assert.Equal(t, products, got)
		repo.AssertNotCalled(t, "ListProducts", mock.Anything)
		cache.AssertExpectations(t)
	})

	t.Run("промах кеша читает хранилище и кеширует", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		cache.On("Get", productsCacheKey, mock.Anything).Return(false, nil).Once()
		repo.On("ListProducts", mock.Anything).Return(products, nil).Once()
		cache.On("Set", productsCacheKey, products, time.Hour).Return(nil).Once()

		got, err := newService(repo, cache).ListProducts(context.Background())

		require.NoError(t, err)
		assert.Equal(t, products, got)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})
}
