// Package middlewarectx содержит HTTP middleware приложения: пропускной
// фильтр с проверкой JWT из cookie и права доступа по подписке, проверку
// роли администратора и ограничение частоты запросов.
package middlewarectx

import (
	"net/http"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// Email — ключ для email пользователя в контексте
	Email Key = "email"
	// Role — ключ для роли пользователя в контексте
	Role Key = "role"
	// UserID — ключ для идентификатора пользователя в контексте
	UserID Key = "user_id"
)

// EmailFromRequest возвращает email аутентифицированного пользователя
// или пустую строку для анонимного запроса.
func EmailFromRequest(r *http.Request) string {
	email, _ := r.Context().Value(Email).(string)
	return email
}

// RoleFromRequest возвращает роль пользователя из контекста запроса.
func RoleFromRequest(r *http.Request) string {
	role, _ := r.Context().Value(Role).(string)
	return role
}

// UserIDFromRequest возвращает идентификатор пользователя из контекста
// запроса, ноль для анонимного.
func UserIDFromRequest(r *http.Request) int64 {
	id, _ := r.Context().Value(UserID).(int64)
	return id
}
