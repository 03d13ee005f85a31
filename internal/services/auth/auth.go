// Package auth содержит логику бизнес-уровня для аутентификации пользователей.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vitalfeed/vitalfeed-backend/internal/lib/jwt"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/password"
	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

// Repository описывает контракт для работы с пользователями и подписками в базе данных.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetActiveSubscriptionByEmail(ctx context.Context, email string) (*models.Subscription, error)
	UpdateUserPassword(ctx context.Context, email, passwordHash string) error
}

// Service отвечает за вход, проверку подписки при входе и смену пароля.
type Service struct {
	repo     Repository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// LoginResult результат успешного входа.
type LoginResult struct {
	Token             string
	Role              string
	MustResetPassword bool
	User              *models.User
}

// Login проверяет пароль и право доступа пользователя и выдает JWT.
// Для обычных пользователей вход возможен только при действующей подписке,
// администраторы входят без неё.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*LoginResult, error) {
	const op = "services.auth.Login"

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}

	if !user.IsAdmin {
		if err := s.checkEntitlement(ctx, user); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	token, err := s.jwtMaker.GenerateToken(user.Email, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user logged in", slog.String("email", user.Email), slog.String("role", user.Role()))

	return &LoginResult{
		Token:             token,
		Role:              user.Role(),
		MustResetPassword: user.IsFirstLogin,
		User:              user,
	}, nil
}

// checkEntitlement проверяет статус пользователя и срок его подписки.
// Отсутствие активной подписки и истёкший срок сворачиваются в одну ошибку.
func (s *Service) checkEntitlement(ctx context.Context, user *models.User) error {
	if user.Status != models.UserStatusActive {
		return models.ErrSubscriptionExpired
	}
	sub, err := s.repo.GetActiveSubscriptionByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, models.ErrSubscriptionNotFound) {
			return models.ErrSubscriptionExpired
		}
		return err
	}
	if !sub.EndDate.After(time.Now().UTC()) {
		return models.ErrSubscriptionExpired
	}
	return nil
}

// ResetPassword меняет пароль пользователя. При первом входе достаточно
// нового пароля, при последующих сменах проверяется текущий. После успешной
// смены флаг первого входа снимается.
func (s *Service) ResetPassword(ctx context.Context, email, currentPassword, newPassword string) error {
	const op = "services.auth.ResetPassword"

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsFirstLogin {
		if err := password.CompareHash(user.PasswordHash, currentPassword); err != nil {
			return fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
		}
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateUserPassword(ctx, email, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("password reset", slog.String("email", email))
	return nil
}

// CheckAccess проверяет право пользователя на защищённые ресурсы.
// Администраторы проходят всегда, остальные — при действующей подписке.
func (s *Service) CheckAccess(ctx context.Context, email string) error {
	const op = "services.auth.CheckAccess"

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.IsAdmin {
		return nil
	}
	if err := s.checkEntitlement(ctx, user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ParseToken проверяет JWT и возвращает его claims.
func (s *Service) ParseToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}
