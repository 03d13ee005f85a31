// Package scheduler содержит фоновые задачи жизненного цикла подписок:
// ежесуточный обход истечений и ежеминутный цикл напоминаний.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/vitalfeed/vitalfeed-backend/internal/lib/rabbitmq"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/sl"
	"github.com/vitalfeed/vitalfeed-backend/internal/models"
	"github.com/vitalfeed/vitalfeed-backend/internal/storage"
)

// SubscriptionRepository описывает контракт для обхода подписок планировщиком.
type SubscriptionRepository interface {
	ListSubscriptionsWithOwners(ctx context.Context) ([]*storage.SubscriptionRow, error)
	ListActiveSubscriptionsWithOwners(ctx context.Context) ([]*storage.SubscriptionRow, error)
	ExpireSubscriptionWithOwner(ctx context.Context, subscriptionID, userID int64) error
}

// Service выполняет обходы подписок и публикует напоминания в брокер.
type Service struct {
	repo           SubscriptionRepository
	reminders      *ReminderLog
	reminderWindow time.Duration
	log            *slog.Logger

	publish func(ch *amqp.Channel, exchange, routingKey string, message any) error
}

// New создает новый экземпляр Service.
func New(repo SubscriptionRepository, reminders *ReminderLog, reminderWindow time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		reminders:      reminders,
		reminderWindow: reminderWindow,
		log:            log,
		publish:        rabbitmq.PublishMessage,
	}
}

// RunExpirySweep запускает ежесуточный обход истечений: первый проход сразу,
// дальше по тикеру до отмены контекста.
func (s *Service) RunExpirySweep(ctx context.Context, interval time.Duration) {
	s.sweepExpired(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepExpired(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunReminderCycle запускает цикл напоминаний о скором окончании подписки.
func (s *Service) RunReminderCycle(ctx context.Context, channel *amqp.Channel, interval time.Duration) {
	s.remindExpiring(ctx, channel)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.remindExpiring(ctx, channel)
		case <-ctx.Done():
			return
		}
	}
}

// sweepExpired переводит просроченные подписки и их владельцев в статус
// expired. Каждая пара обновляется одной транзакцией; сбой записи прерывает
// текущий проход, оставшиеся строки дождутся следующего тика.
func (s *Service) sweepExpired(ctx context.Context) {
	s.log.Info("starting expiry sweep")

	rows, err := s.repo.ListSubscriptionsWithOwners(ctx)
	if err != nil {
		s.log.Error("failed to list subscriptions", sl.Err(err))
		return
	}

	now := time.Now().UTC()
	var expired int
	for _, row := range rows {
		if row.Subscription.Status == models.SubscriptionStatusExpired {
			continue
		}
		if row.Subscription.EndDate.After(now) {
			continue
		}
		if row.Owner == nil {
			s.log.Warn("subscription without owner, skipping",
				slog.Int64("subscription_id", row.Subscription.ID))
			continue
		}
		err := s.repo.ExpireSubscriptionWithOwner(ctx, row.Subscription.ID, row.Owner.ID)
		if err != nil {
			s.log.Error("expiry sweep aborted",
				slog.Int64("subscription_id", row.Subscription.ID), sl.Err(err))
			return
		}
		expired++
	}
	s.log.Info("expiry sweep finished", slog.Int("expired", expired))
}

// remindExpiring публикует напоминания по подпискам, оканчивающимся в
// пределах окна напоминания. Подписка отмечается отправленной только после
// успешной публикации, так что сбой брокера означает повтор на следующем
// цикле.
func (s *Service) remindExpiring(ctx context.Context, channel *amqp.Channel) {
	rows, err := s.repo.ListActiveSubscriptionsWithOwners(ctx)
	if err != nil {
		s.log.Error("failed to list active subscriptions", sl.Err(err))
		return
	}

	now := time.Now().UTC()
	deadline := now.Add(s.reminderWindow)
	for _, row := range rows {
		sub := row.Subscription
		if row.Owner == nil {
			s.log.Warn("subscription without owner, skipping",
				slog.Int64("subscription_id", sub.ID))
			continue
		}
		// Просроченную подписку цикл гасит сам, не дожидаясь суточного
		// обхода, и снимает отметку напоминания.
		if !sub.EndDate.After(now) {
			err := s.repo.ExpireSubscriptionWithOwner(ctx, sub.ID, row.Owner.ID)
			if err != nil {
				s.log.Error("failed to expire subscription",
					slog.Int64("subscription_id", sub.ID), sl.Err(err))
				continue
			}
			s.reminders.Forget(sub.ID)
			continue
		}
		if sub.EndDate.After(deadline) {
			continue
		}
		if s.reminders.Seen(sub.ID) {
			continue
		}

		notice := models.ReminderNotice{
			Email:          row.Owner.Email,
			Prenom:         row.Owner.Prenom,
			SubscriptionID: sub.ID,
			EndDate:        sub.EndDate,
		}
		err := s.publish(channel, "notifications", rabbitmq.RoutingKeyReminder, notice)
		if err != nil {
			s.log.Error("failed to publish reminder",
				slog.Int64("subscription_id", sub.ID), sl.Err(err))
			continue
		}
		s.reminders.Mark(sub.ID)
		s.log.Info("reminder published",
			slog.Int64("subscription_id", sub.ID), slog.String("email", row.Owner.Email))
	}
}
