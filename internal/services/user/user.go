// Package user содержит бизнес-логику администрирования пользователей и их подписок.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/vitalfeed/vitalfeed-backend/internal/lib/password"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/rabbitmq"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/sl"
	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

// Repository описывает контракт для работы с пользователями, заявками и подписками.
type Repository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetAccessRequestByID(ctx context.Context, id int64) (*models.AccessRequest, error)
	CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error)
	GetSubscriptionByID(ctx context.Context, id int64) (*models.Subscription, error)
	GetSubscriptionByUserID(ctx context.Context, userID int64) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, id int64, subType models.SubscriptionType,
		start, end time.Time, status models.SubscriptionStatus) error
	UpdateUserStatus(ctx context.Context, id int64, status models.UserStatus) error
	DeleteSubscription(ctx context.Context, id int64) error
}

// Cache описывает контракт кеша для профилей пользователей.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует операции администратора: создание пользователя из заявки
// и управление подписками. Письма уходят через брокер уведомлений.
type Service struct {
	repo    Repository
	cache   Cache
	channel *amqp.Channel
	log     *slog.Logger

	publish func(ch *amqp.Channel, exchange, routingKey string, message any) error
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, channel *amqp.Channel, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		channel: channel,
		log:     log,
		publish: rabbitmq.PublishMessage,
	}
}

// CreateFromRequest создает пользователя по одобренной заявке на доступ
// и сразу назначает ему подписку выбранного типа. Пользователь получает
// временный пароль письмом и обязан сменить его при первом входе.
func (s *Service) CreateFromRequest(ctx context.Context, accessRequestID int64, rawType string) (*models.User, error) {
	const op = "services.user.CreateFromRequest"

	subType, err := models.ParseSubscriptionType(rawType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req, err := s.repo.GetAccessRequestByID(ctx, accessRequestID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.repo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUserAlreadyExists)
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tempPassword := password.Temporary()
	hashed, err := password.GetHash(tempPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Email:           req.Email,
		PasswordHash:    hashed,
		Nom:             req.Nom,
		Prenom:          req.Prenom,
		NumVeterinaire:  req.NumVeterinaire,
		IsAdmin:         false,
		IsFirstLogin:    true,
		Status:          models.UserStatusActive,
		AccessRequestID: &accessRequestID,
	}
	id, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.ID = id

	start := time.Now().UTC()
	sub := models.Subscription{
		UserID:    id,
		Type:      subType,
		StartDate: start,
		EndDate:   subType.EndDateFrom(start),
		Status:    models.SubscriptionStatusActive,
	}
	if _, err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("created user from access request",
		slog.Int64("user_id", id), slog.Int64("access_request_id", accessRequestID),
		slog.String("subscription_type", string(subType)))

	notice := models.WelcomeNotice{
		Email:             user.Email,
		Prenom:            user.Prenom,
		TemporaryPassword: tempPassword,
	}
	if err := s.publish(s.channel, "notifications", rabbitmq.RoutingKeyWelcome, notice); err != nil {
		s.log.Error("failed to publish welcome notice", sl.Err(err))
	}

	return &user, nil
}

// AssignSubscription назначает пользователю подписку выбранного типа,
// начиная с сегодняшнего дня. У пользователя может быть только одна подписка.
func (s *Service) AssignSubscription(ctx context.Context, userID int64, rawType string) (*models.Subscription, error) {
	const op = "services.user.AssignSubscription"

	subType, err := models.ParseSubscriptionType(rawType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.repo.GetSubscriptionByUserID(ctx, userID); err == nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrSubscriptionExists)
	} else if !errors.Is(err, models.ErrSubscriptionNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	start := time.Now().UTC()
	sub := models.Subscription{
		UserID:    userID,
		Type:      subType,
		StartDate: start,
		EndDate:   subType.EndDateFrom(start),
		Status:    models.SubscriptionStatusActive,
	}
	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub.ID = id

	if err := s.repo.UpdateUserStatus(ctx, userID, models.UserStatusActive); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateProfile(user.Email)

	s.log.Info("assigned subscription",
		slog.Int64("user_id", userID), slog.String("type", string(subType)))

	s.publishSubscriptionNotice(user, &sub, false)

	return &sub, nil
}

// UpdateSubscription продлевает или меняет тип подписки.
// Отсчет нового срока начинается с текущего дня, статус возвращается в active.
func (s *Service) UpdateSubscription(ctx context.Context, subscriptionID int64, rawType string) (*models.Subscription, error) {
	const op = "services.user.UpdateSubscription"

	subType, err := models.ParseSubscriptionType(rawType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sub, err := s.repo.GetSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.repo.GetUserByID(ctx, sub.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	start := time.Now().UTC()
	end := subType.EndDateFrom(start)
	if err := s.repo.UpdateSubscription(ctx, sub.ID, subType, start, end, models.SubscriptionStatusActive); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateUserStatus(ctx, user.ID, models.UserStatusActive); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateProfile(user.Email)

	sub.Type = subType
	sub.StartDate = start
	sub.EndDate = end
	sub.Status = models.SubscriptionStatusActive

	s.log.Info("updated subscription",
		slog.Int64("subscription_id", sub.ID), slog.String("type", string(subType)))

	s.publishSubscriptionNotice(user, sub, true)

	return sub, nil
}

// RemoveSubscription удаляет подписку и закрывает владельцу доступ.
func (s *Service) RemoveSubscription(ctx context.Context, subscriptionID int64) error {
	const op = "services.user.RemoveSubscription"

	sub, err := s.repo.GetSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.repo.GetUserByID(ctx, sub.UserID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteSubscription(ctx, sub.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateUserStatus(ctx, user.ID, models.UserStatusInactive); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateProfile(user.Email)

	s.log.Info("removed subscription", slog.Int64("subscription_id", sub.ID))
	return nil
}

// List возвращает всех пользователей с их подписками.
func (s *Service) List(ctx context.Context) ([]*models.UserView, error) {
	const op = "services.user.List"

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*models.UserView, 0, len(users))
	for _, u := range users {
		view := u.View()
		sub, err := s.repo.GetSubscriptionByUserID(ctx, u.ID)
		switch {
		case err == nil:
			subView := sub.View()
			view.Subscription = &subView
		case errors.Is(err, models.ErrSubscriptionNotFound):
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &view)
	}
	return result, nil
}

// Profile возвращает профиль пользователя по email, с кешированием.
func (s *Service) Profile(ctx context.Context, email string) (*models.UserView, error) {
	const op = "services.user.Profile"

	cacheKey := profileCacheKey(email)
	var cached models.UserView
	if found, err := s.cache.Get(cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	view := u.View()
	sub, err := s.repo.GetSubscriptionByUserID(ctx, u.ID)
	switch {
	case err == nil:
		subView := sub.View()
		view.Subscription = &subView
	case errors.Is(err, models.ErrSubscriptionNotFound):
	default:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(cacheKey, view, 5*time.Minute); err != nil {
		s.log.Warn("failed to cache profile", slog.String("key", cacheKey), sl.Err(err))
	}
	return &view, nil
}

func (s *Service) publishSubscriptionNotice(user *models.User, sub *models.Subscription, updated bool) {
	notice := models.SubscriptionNotice{
		Email:     user.Email,
		Prenom:    user.Prenom,
		Type:      string(sub.Type),
		StartDate: sub.StartDate,
		EndDate:   sub.EndDate,
		Updated:   updated,
	}
	if err := s.publish(s.channel, "notifications", rabbitmq.RoutingKeySubscription, notice); err != nil {
		s.log.Error("failed to publish subscription notice", sl.Err(err))
	}
}

func (s *Service) invalidateProfile(email string) {
	if err := s.cache.Invalidate(profileCacheKey(email)); err != nil {
		s.log.Warn("failed to invalidate profile cache", slog.String("email", email), sl.Err(err))
	}
}

func profileCacheKey(email string) string {
	return "profile:" + email
}
