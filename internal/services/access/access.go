// Package access содержит бизнес-логику приёма заявок на доступ к платформе.
package access

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/vitalfeed/vitalfeed-backend/internal/lib/rabbitmq"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/sl"
	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

// Repository описывает контракт для хранения заявок на доступ.
type Repository interface {
	CreateAccessRequest(ctx context.Context, req models.AccessRequest) (int64, error)
	ListAccessRequests(ctx context.Context) ([]*models.AccessRequest, error)
}

// Service принимает заявки от ветеринаров и показывает их администратору.
type Service struct {
	repo    Repository
	channel *amqp.Channel
	log     *slog.Logger

	publish func(ch *amqp.Channel, exchange, routingKey string, message any) error
}

// New создает новый экземпляр Service.
func New(repo Repository, channel *amqp.Channel, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		channel: channel,
		log:     log,
		publish: rabbitmq.PublishMessage,
	}
}

// Submit сохраняет новую заявку. Повторная заявка с тем же email отклоняется.
// Заявителю уходит письмо-подтверждение приёма.
func (s *Service) Submit(ctx context.Context, dummy models.DummyAccessRequest) (*models.AccessRequest, error) {
	const op = "services.access.Submit"

	req := models.AccessRequest{
		Nom:            dummy.Nom,
		Prenom:         dummy.Prenom,
		Email:          dummy.Email,
		Telephone:      dummy.Telephone,
		AdresseCabinet: dummy.AdresseCabinet,
		NumVeterinaire: dummy.NumVeterinaire,
		DateSoumission: time.Now().UTC(),
	}
	id, err := s.repo.CreateAccessRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.ID = id

	s.log.Info("access request submitted",
		slog.Int64("id", id), slog.String("email", req.Email))

	notice := models.AccessNotice{
		Email:  req.Email,
		Prenom: req.Prenom,
	}
	if err := s.publish(s.channel, "notifications", rabbitmq.RoutingKeyAccess, notice); err != nil {
		s.log.Error("failed to publish access notice", sl.Err(err))
	}

	return &req, nil
}

// List возвращает все заявки в порядке подачи.
func (s *Service) List(ctx context.Context) ([]*models.AccessRequest, error) {
	const op = "services.access.List"

	result, err := s.repo.ListAccessRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
