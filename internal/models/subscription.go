package models

import (
	"fmt"
	"time"
)

// SubscriptionType тип подписки, задающий её длительность.
type SubscriptionType string

// Поддерживаемые типы подписки.
const (
	SubscriptionSixMonths SubscriptionType = "SIX_MONTHS"
	SubscriptionOneYear   SubscriptionType = "ONE_YEAR"
)

// ParseSubscriptionType валидирует строковое значение типа подписки.
func ParseSubscriptionType(s string) (SubscriptionType, error) {
	switch SubscriptionType(s) {
	case SubscriptionSixMonths, SubscriptionOneYear:
		return SubscriptionType(s), nil
	default:
		return "", fmt.Errorf("unknown subscription type: %q", s)
	}
}

// EndDateFrom вычисляет дату окончания подписки от даты начала.
// Дата окончания всегда детерминированно выводится из start + type
// и никогда не редактируется независимо.
func (t SubscriptionType) EndDateFrom(start time.Time) time.Time {
	switch t {
	case SubscriptionSixMonths:
		return start.AddDate(0, 6, 0)
	default:
		return start.AddDate(1, 0, 0)
	}
}

// SubscriptionStatus статус подписки.
type SubscriptionStatus string

// Возможные статусы подписки.
const (
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

// Subscription представляет подписку пользователя на платформу.
// Каждая подписка принадлежит ровно одному пользователю.
type Subscription struct {
	ID        int64              // Уникальный идентификатор
	UserID    int64              // Владелец подписки
	Type      SubscriptionType   // Тип (длительность)
	StartDate time.Time          // Дата начала
	EndDate   time.Time          // Дата окончания (start + type)
	Status    SubscriptionStatus // Статус
}

// SubscriptionView представление подписки для выдачи наружу.
type SubscriptionView struct {
	ID        int64     `json:"id"`
	Type      string    `json:"subscriptionType"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
}

// View собирает SubscriptionView из доменной модели.
func (s *Subscription) View() SubscriptionView {
	return SubscriptionView{
		ID:        s.ID,
		Type:      string(s.Type),
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Status:    string(s.Status),
	}
}
