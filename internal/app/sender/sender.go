// Package sender собирает приложение отправки почтовых уведомлений.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/vitalfeed/vitalfeed-backend/internal/config"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/rabbitmq"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/sl"
	smtptransport "github.com/vitalfeed/vitalfeed-backend/internal/lib/smtp"
	sendersvc "github.com/vitalfeed/vitalfeed-backend/internal/services/sender"
)

// App представляет приложение отправителя уведомлений.
type App struct {
	service *sendersvc.Service
	logger  *slog.Logger
	conn    *amqp.Connection
	ch      *amqp.Channel
}

// New создает приложение отправителя со всеми зависимостями.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtptransport.NewTransport(cfg, logger)
	service := sendersvc.New(transport, logger)

	return &App{
		service: service,
		logger:  logger,
		conn:    conn,
		ch:      ch,
	}, nil
}

// Run запускает потребителей всех очередей уведомлений и блокируется
// до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	consumers := []struct {
		queue   string
		handler func([]byte) error
	}{
		{rabbitmq.QueueReminder, a.service.SendReminder},
		{rabbitmq.QueueAccess, a.service.SendAccessConfirmation},
		{rabbitmq.QueueWelcome, a.service.SendWelcome},
		{rabbitmq.QueueSubscription, a.service.SendSubscriptionInfo},
		{rabbitmq.QueueOrder, a.service.SendOrderConfirmation},
	}

	for _, c := range consumers {
		if err := rabbitmq.ConsumerMessage(ctx, a.ch, c.queue, c.handler); err != nil {
			return fmt.Errorf("app.sender.Run: queue %s: %w", c.queue, err)
		}
		a.logger.Info("consumer started", slog.String("queue", c.queue))
	}

	<-ctx.Done()

	a.logger.Info("sender shutting down")
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
