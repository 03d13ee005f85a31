package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vitalfeed/vitalfeed-backend/internal/http/response"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/jwt"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/sl"
	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

// AuthService описывает интерфейс сервиса аутентификации для фильтра.
type AuthService interface {
	ParseToken(ctx context.Context, token string) (*jwt.CustomClaims, error)
	CheckAccess(ctx context.Context, email string) error
}

// UserProvider описывает контракт для поиска пользователя по email.
type UserProvider interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Пути, открытые без токена.
var allowList = []string{
	"/api/login",
	"/api/access-requests",
	"/api/products/all",
	"/metrics",
	"/docs",
}

// Пути, доступные с токеном, но без действующей подписки: профиль, выход,
// смена пароля и корзина остаются открыты истёкшим пользователям.
var skipList = []string{
	"/api/veterinaires/me",
	"/api/veterinaires/all",
	"/api/logout",
	"/api/reset-password",
	"/api/cart",
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// AuthGateMiddleware возвращает пропускной фильтр приложения. Токен берётся
// из cookie access_token, затем из заголовка Authorization. Запрос без
// токена идёт дальше анонимным, невалидный токен получает 401, пользователь
// без действующей подписки — единый ответ 403 (кроме путей из skip-списка).
func AuthGateMiddleware(authService AuthService, users UserProvider, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AuthGateMiddleware"

			// Приём заявок открыт только на POST, админский просмотр
			// по тому же префиксу проходит через фильтр.
			if matchesPrefix(r.URL.Path, allowList) &&
				!(strings.HasPrefix(r.URL.Path, "/api/access-requests") && r.Method != http.MethodPost) {
				next.ServeHTTP(w, r)
				return
			}

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authService.ParseToken(r.Context(), tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid token"))
				return
			}

			user, err := users.GetUserByEmail(r.Context(), claims.Email)
			if err != nil {
				log.Error("token subject not found", slog.String("email", claims.Email), sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid token"))
				return
			}

			if !user.IsAdmin && !matchesPrefix(r.URL.Path, skipList) {
				if err := authService.CheckAccess(r.Context(), user.Email); err != nil {
					if errors.Is(err, models.ErrSubscriptionExpired) {
						render.Status(r, http.StatusForbidden)
						render.JSON(w, r, response.Error("subscription expired"))
						return
					}
					log.Error("failed to check access", sl.Err(err))
					render.Status(r, http.StatusInternalServerError)
					render.JSON(w, r, response.Error("internal error"))
					return
				}
			}

			ctx := context.WithValue(r.Context(), Email, user.Email)
			ctx = context.WithValue(ctx, Role, user.Role())
			ctx = context.WithValue(ctx, UserID, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tokenFromRequest достаёт JWT из cookie access_token, затем из заголовка
// Authorization.
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("access_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
