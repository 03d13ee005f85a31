package models

import "time"

// UserStatus статус учётной записи пользователя.
type UserStatus string

// Возможные статусы пользователя.
const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusExpired  UserStatus = "expired"
)

// User представляет учётную запись ветеринара или администратора.
// Подписка связана с пользователем по user_id на стороне подписки,
// обратная навигация выполняется запросом, а не ссылкой.
type User struct {
	ID              int64      // Уникальный идентификатор
	Email           string     // Электронная почта (уникальная)
	PasswordHash    string     // bcrypt-хэш пароля
	Nom             string     // Фамилия
	Prenom          string     // Имя
	NumVeterinaire  string     // Номер лицензии ветеринара
	IsAdmin         bool       // Признак администратора
	IsFirstLogin    bool       // Требуется ли первичная смена пароля
	Status          UserStatus // Статус учётной записи
	AccessRequestID *int64     // Заявка, из которой создан пользователь (nil для админов)
	CreatedAt       time.Time  // Дата создания
}

// Role возвращает роль пользователя для контекста запроса.
func (u *User) Role() string {
	if u.IsAdmin {
		return "admin"
	}
	return "user"
}

// UserView данные пользователя для выдачи наружу, без хэша пароля.
type UserView struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	Nom             string `json:"nom"`
	Prenom          string `json:"prenom"`
	NumVeterinaire  string `json:"numVeterinaire"`
	IsAdmin         bool   `json:"isAdmin"`
	IsFirstLogin    bool   `json:"isFirstLogin"`
	Status          string `json:"status"`
	AccessRequestID *int64 `json:"demandeAccesId,omitempty"`

	Subscription *SubscriptionView `json:"subscription,omitempty"` // Включается даже для истёкшей подписки
}

// View собирает UserView из доменной модели.
func (u *User) View() UserView {
	return UserView{
		ID:              u.ID,
		Email:           u.Email,
		Nom:             u.Nom,
		Prenom:          u.Prenom,
		NumVeterinaire:  u.NumVeterinaire,
		IsAdmin:         u.IsAdmin,
		IsFirstLogin:    u.IsFirstLogin,
		Status:          string(u.Status),
		AccessRequestID: u.AccessRequestID,
	}
}
