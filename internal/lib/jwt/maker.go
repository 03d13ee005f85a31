// Package jwt реализует выпуск и проверку JWT токенов идентичности.
//
// Maker определяет интерфейс для создания и проверки токенов с email
// и признаком администратора. MakerImpl — конкретная реализация
// с использованием секретного ключа и срока жизни токена.
package jwt

import (
	"time"
)

// Maker описывает интерфейс кодека токенов идентичности.
type Maker interface {
	// GenerateToken выпускает подписанный токен с email и признаком администратора.
	GenerateToken(email string, isAdmin bool) (string, error)
	// ParseToken проверяет подпись и срок действия, возвращает claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
	// ValidateToken дополнительно сверяет subject токена с ожидаемым email.
	ValidateToken(tokenStr, expectedEmail string) error
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
// Секрет загружается из конфига при старте процесса и далее неизменен.
func NewMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
