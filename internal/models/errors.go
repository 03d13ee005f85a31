// Package models содержит доменные структуры и ошибки бизнес-уровня,
// общие для сервисов, хранилища и HTTP-обработчиков.
package models

import "errors"

// Ошибки доменного уровня. Сервисы оборачивают их через fmt.Errorf("%s: %w", op, err),
// обработчики сопоставляют с HTTP-статусами через errors.Is.
var (
	// ErrInvalidToken — токен не прошел проверку подписи, структуры или срока действия.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidCredentials — неверная пара email/пароль при входе.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound — пользователь не найден по email или ID.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists — пользователь с таким email уже существует.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrSubscriptionNotFound — у пользователя нет записи подписки.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrSubscriptionExpired — срок действия подписки истёк.
	ErrSubscriptionExpired = errors.New("subscription expired")
	// ErrSubscriptionExists — у пользователя уже есть подписка.
	ErrSubscriptionExists = errors.New("subscription already exists")
	// ErrAccessRequestNotFound — заявка на доступ не найдена.
	ErrAccessRequestNotFound = errors.New("access request not found")
	// ErrDuplicateAccessRequest — заявка с таким email уже подана.
	ErrDuplicateAccessRequest = errors.New("access request already exists")
	// ErrProductNotFound — товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrCartNotFound — у пользователя нет корзины в статусе CART.
	ErrCartNotFound = errors.New("cart not found")
	// ErrEmptyCart — попытка оформить заказ с нулевой суммой.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrItemNotFound — позиция корзины не найдена.
	ErrItemNotFound = errors.New("cart item not found")
	// ErrItemNotOwned — позиция принадлежит корзине другого пользователя.
	ErrItemNotOwned = errors.New("item does not belong to user's cart")
	// ErrNotificationFailed — уведомление не удалось отправить после успешной операции.
	ErrNotificationFailed = errors.New("notification delivery failed")
)
