// Package scheduler собирает фоновое приложение жизненного цикла подписок.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/vitalfeed/vitalfeed-backend/internal/config"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/rabbitmq"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/sl"
	schedulersvc "github.com/vitalfeed/vitalfeed-backend/internal/services/scheduler"
	"github.com/vitalfeed/vitalfeed-backend/internal/storage"
)

// App представляет приложение планировщика подписок.
type App struct {
	service *schedulersvc.Service
	cfg     *config.Config
	logger  *slog.Logger
	db      *storage.Storage
	conn    *amqp.Connection
	ch      *amqp.Channel
}

// New создает приложение планировщика со всеми зависимостями.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.scheduler.New"

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = waitForDB(ctx, db, logger); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	service := schedulersvc.New(db, schedulersvc.NewReminderLog(), cfg.ReminderWindow, logger)

	return &App{
		service: service,
		cfg:     cfg,
		logger:  logger,
		db:      db,
		conn:    conn,
		ch:      ch,
	}, nil
}

// Run запускает обе фоновые задачи и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("scheduler starting",
		slog.Duration("sweep_interval", a.cfg.SweepInterval),
		slog.Duration("reminder_interval", a.cfg.ReminderInterval))

	go a.service.RunExpirySweep(ctx, a.cfg.SweepInterval)
	go a.service.RunReminderCycle(ctx, a.ch, a.cfg.ReminderInterval)

	<-ctx.Done()

	a.logger.Info("scheduler shutting down")
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	return nil
}

// waitForDB ждет готовности базы, миграции накатывает основной сервис.
func waitForDB(ctx context.Context, db *storage.Storage, logger *slog.Logger) error {
	const attempts = 10

	var err error
	for i := 0; i < attempts; i++ {
		if err = db.CheckDatabaseReady(ctx); err == nil {
			return nil
		}
		logger.Warn("database is not ready yet", sl.Err(err), slog.Int("attempt", i+1))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return err
}
