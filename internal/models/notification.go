package models

import "time"

// Структуры уведомлений публикуются сервисами в RabbitMQ и потребляются
// сервисом отправки почты. Содержимое писем формирует отправитель,
// здесь только фиксированный payload: получатель, имя, даты и суммы.

// ReminderNotice напоминание о скором окончании подписки.
type ReminderNotice struct {
	Email          string    `json:"email"`
	Prenom         string    `json:"prenom"`
	SubscriptionID int64     `json:"subscription_id"`
	EndDate        time.Time `json:"end_date"`
}

// AccessNotice подтверждение приёма заявки на доступ.
type AccessNotice struct {
	Email  string `json:"email"`
	Prenom string `json:"prenom"`
}

// WelcomeNotice письмо с временным паролем для нового пользователя.
type WelcomeNotice struct {
	Email             string `json:"email"`
	Prenom            string `json:"prenom"`
	TemporaryPassword string `json:"temporary_password"`
}

// SubscriptionNotice уведомление о назначении или продлении подписки.
type SubscriptionNotice struct {
	Email     string    `json:"email"`
	Prenom    string    `json:"prenom"`
	Type      string    `json:"subscription_type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Updated   bool      `json:"updated"` // false — назначение, true — продление
}

// OrderNotice подтверждение заказа с полным снимком позиций.
type OrderNotice struct {
	Email       string            `json:"email"`
	Nom         string            `json:"nom"`
	OrderNumber string            `json:"order_number"`
	ConfirmedAt time.Time         `json:"confirmed_at"`
	TotalAmount float64           `json:"total_amount"`
	Items       []OrderNoticeItem `json:"items"`
}

// OrderNoticeItem позиция заказа в уведомлении.
type OrderNoticeItem struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	SubTotal    float64 `json:"sub_total"`
}
