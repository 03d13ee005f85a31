// Package cart содержит бизнес-логику корзины и оформления заказов.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/vitalfeed/vitalfeed-backend/internal/lib/rabbitmq"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/sl"
	"github.com/vitalfeed/vitalfeed-backend/internal/models"
	"github.com/vitalfeed/vitalfeed-backend/internal/storage"
)

// Repository описывает контракт для хранения корзин, позиций и каталога.
type Repository interface {
	GetCartByUser(ctx context.Context, userID int64) (*models.CartOrder, error)
	CreateCart(ctx context.Context, userID int64) (*models.CartOrder, error)
	ListCartItems(ctx context.Context, orderID int64) ([]*storage.CartItemRow, error)
	AddItem(ctx context.Context, orderID int64, product *models.Product, quantity int) error
	UpdateItemQuantity(ctx context.Context, orderID, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, orderID, itemID int64) error
	ClearCart(ctx context.Context, orderID int64) error
	ConfirmCart(ctx context.Context, userID int64, orderNumber string, confirmedAt time.Time) (*models.CartOrder, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Cache описывает контракт кеша для каталога товаров.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует операции корзины. Позиции всегда мутируются вместе
// с пересчетом суммы, заказ после оформления неизменяем.
type Service struct {
	repo         Repository
	cache        Cache
	channel      *amqp.Channel
	financeEmail string
	log          *slog.Logger

	publish func(ch *amqp.Channel, exchange, routingKey string, message any) error
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, channel *amqp.Channel, financeEmail string, log *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		cache:        cache,
		channel:      channel,
		financeEmail: financeEmail,
		log:          log,
		publish:      rabbitmq.PublishMessage,
	}
}

const productsCacheKey = "products:all"

// ListProducts возвращает каталог товаров, с кешированием.
func (s *Service) ListProducts(ctx context.Context) ([]*models.Product, error) {
	const op = "services.cart.ListProducts"

	var cached []*models.Product
	if found, err := s.cache.Get(productsCacheKey, &cached); err == nil && found {
		return cached, nil
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(productsCacheKey, products, time.Hour); err != nil {
		s.log.Warn("failed to cache products", sl.Err(err))
	}
	return products, nil
}

// GetCart возвращает текущую корзину пользователя, создавая пустую при
// первом обращении.
func (s *Service) GetCart(ctx context.Context, userID int64) (*models.CartView, error) {
	const op = "services.cart.GetCart"

	order, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	view, err := s.buildView(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return view, nil
}

// AddItem добавляет товар в корзину пользователя.
func (s *Service) AddItem(ctx context.Context, userID int64, req models.DummyCartItem) (*models.CartView, error) {
	const op = "services.cart.AddItem"

	order, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	product, err := s.repo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.AddItem(ctx, order.ID, product, req.Quantity); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("added item to cart",
		slog.Int64("user_id", userID), slog.Int64("product_id", product.ID), slog.Int("quantity", req.Quantity))

	return s.refreshView(ctx, op, userID)
}

// UpdateItem меняет количество позиции в корзине пользователя.
// Количество меньше единицы равнозначно удалению позиции.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID int64, quantity int) (*models.CartView, error) {
	const op = "services.cart.UpdateItem"

	order, err := s.repo.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if quantity < 1 {
		if err := s.repo.RemoveItem(ctx, order.ID, itemID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err := s.repo.UpdateItemQuantity(ctx, order.ID, itemID, quantity); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.refreshView(ctx, op, userID)
}

// RemoveItem удаляет позицию из корзины пользователя.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) (*models.CartView, error) {
	const op = "services.cart.RemoveItem"

	order, err := s.repo.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.RemoveItem(ctx, order.ID, itemID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.refreshView(ctx, op, userID)
}

// Clear опустошает корзину пользователя.
func (s *Service) Clear(ctx context.Context, userID int64) (*models.CartView, error) {
	const op = "services.cart.Clear"

	order, err := s.repo.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.ClearCart(ctx, order.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.refreshView(ctx, op, userID)
}

// CheckoutResult итог оформления заказа.
type CheckoutResult struct {
	OrderNumber string
	TotalAmount float64
	ConfirmedAt time.Time
}

// Checkout оформляет корзину: назначает номер заказа, переводит заказ в
// CONFIRMED и отправляет подтверждение в финансовый отдел. Корзина с
// нулевой суммой оформлена быть не может. Если письмо
// не удалось поставить в очередь, заказ остается оформленным, а вызывающему
// возвращается ErrNotificationFailed.
func (s *Service) Checkout(ctx context.Context, userID int64) (*CheckoutResult, error) {
	const op = "services.cart.Checkout"

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	order, err := s.repo.GetCartByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := s.repo.ListCartItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var total float64
	for _, r := range rows {
		total += r.Item.SubTotal()
	}
	if total <= 0 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrEmptyCart)
	}

	orderNumber := NewOrderNumber()
	confirmed, err := s.repo.ConfirmCart(ctx, user.ID, orderNumber, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("order confirmed",
		slog.Int64("user_id", user.ID), slog.String("order_number", orderNumber))

	result := &CheckoutResult{
		OrderNumber: orderNumber,
		TotalAmount: confirmed.TotalAmount,
		ConfirmedAt: *confirmed.ConfirmedAt,
	}

	notice := models.OrderNotice{
		Email:       s.financeEmail,
		Nom:         user.Prenom + " " + user.Nom,
		OrderNumber: orderNumber,
		ConfirmedAt: *confirmed.ConfirmedAt,
		TotalAmount: confirmed.TotalAmount,
		Items:       make([]models.OrderNoticeItem, 0, len(rows)),
	}
	for _, r := range rows {
		notice.Items = append(notice.Items, models.OrderNoticeItem{
			ProductName: r.ProductName,
			Quantity:    r.Item.Quantity,
			Price:       r.Item.Price,
			SubTotal:    r.Item.SubTotal(),
		})
	}
	if err := s.publish(s.channel, "notifications", rabbitmq.RoutingKeyOrder, notice); err != nil {
		s.log.Error("failed to publish order notice",
			slog.String("order_number", orderNumber), sl.Err(err))
		return result, fmt.Errorf("%s: %w", op, models.ErrNotificationFailed)
	}

	return result, nil
}

// NewOrderNumber генерирует номер заказа вида ORD-XXXXXXXX.
func NewOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *Service) getOrCreateCart(ctx context.Context, userID int64) (*models.CartOrder, error) {
	order, err := s.repo.GetCartByUser(ctx, userID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, models.ErrCartNotFound) {
		return nil, err
	}
	return s.repo.CreateCart(ctx, userID)
}

func (s *Service) refreshView(ctx context.Context, op string, userID int64) (*models.CartView, error) {
	order, err := s.repo.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	view, err := s.buildView(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return view, nil
}

func (s *Service) buildView(ctx context.Context, order *models.CartOrder) (*models.CartView, error) {
	rows, err := s.repo.ListCartItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	view := &models.CartView{
		CartID:      order.ID,
		TotalAmount: order.TotalAmount,
		Items:       make([]models.CartItemView, 0, len(rows)),
	}
	for _, r := range rows {
		view.Items = append(view.Items, models.CartItemView{
			ItemID:      r.Item.ID,
			ProductID:   r.Item.ProductID,
			ProductName: r.ProductName,
			ImageURL:    r.ImageURL,
			Quantity:    r.Item.Quantity,
			Price:       r.Item.Price,
			SubTotal:    r.Item.SubTotal(),
		})
	}
	return view, nil
}
