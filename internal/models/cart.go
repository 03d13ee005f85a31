package models

import "time"

// OrderStatus статус заказа. Переход только CART -> CONFIRMED,
// пути отмены нет.
type OrderStatus string

// Возможные статусы заказа.
const (
	OrderStatusCart      OrderStatus = "CART"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
)

// Product товар из каталога. Каталог только читается корзиной,
// цена снимается в позицию заказа в момент добавления.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
}

// CartOrder заказ пользователя. Пока статус CART — это текущая корзина,
// у пользователя может быть не более одной такой записи.
type CartOrder struct {
	ID          int64       // Уникальный идентификатор
	UserID      int64       // Владелец (по ID, без ссылочной связи)
	Status      OrderStatus // CART или CONFIRMED
	OrderNumber *string     // Назначается ровно один раз при оформлении
	TotalAmount float64     // Производная сумма, пересчитывается после каждой мутации позиций
	ConfirmedAt *time.Time  // Момент оформления (nil до него)
}

// OrderItem позиция заказа с зафиксированной ценой товара.
type OrderItem struct {
	ID        int64   // Уникальный идентификатор
	OrderID   int64   // Заказ-владелец
	ProductID int64   // Товар
	Quantity  int     // Количество (>= 1)
	Price     float64 // Цена за единицу на момент добавления
}

// SubTotal возвращает стоимость позиции.
func (i *OrderItem) SubTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// DummyCartItem используется для приёма позиции корзины из JSON-запроса.
type DummyCartItem struct {
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

// CartItemView позиция корзины для выдачи наружу, с данными товара.
type CartItemView struct {
	ItemID      int64   `json:"itemId"`
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	ImageURL    string  `json:"imageUrl"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	SubTotal    float64 `json:"subTotal"`
}

// CartView корзина целиком для выдачи наружу.
type CartView struct {
	CartID      int64          `json:"cartId"`
	TotalAmount float64        `json:"totalAmount"`
	Items       []CartItemView `json:"items"`
}
