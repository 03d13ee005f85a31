package password

import "github.com/google/uuid"

// Temporary возвращает временный пароль для нового пользователя:
// первые 8 символов случайного UUID. Пользователь обязан сменить его
// при первом входе.
func Temporary() string {
	return uuid.NewString()[:8]
}
