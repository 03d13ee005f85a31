// Package vitalfeed собирает HTTP-приложение: хранилище, кеш, брокер
// уведомлений, сервисы и маршруты.
package vitalfeed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/vitalfeed/vitalfeed-backend/internal/cache"
	"github.com/vitalfeed/vitalfeed-backend/internal/config"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/jwt"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/rabbitmq"
	"github.com/vitalfeed/vitalfeed-backend/internal/migrations"
	accesssvc "github.com/vitalfeed/vitalfeed-backend/internal/services/access"
	authsvc "github.com/vitalfeed/vitalfeed-backend/internal/services/auth"
	cartsvc "github.com/vitalfeed/vitalfeed-backend/internal/services/cart"
	usersvc "github.com/vitalfeed/vitalfeed-backend/internal/services/user"
	"github.com/vitalfeed/vitalfeed-backend/internal/storage"
)

// App представляет HTTP-приложение.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New создает HTTP-приложение со всеми зависимостями.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authsvc.New(db, jwtMaker, logger)
	userService := usersvc.New(db, cacheRedis, ch, logger)
	accessService := accesssvc.New(db, ch, logger)
	cartService := cartsvc.New(db, cacheRedis, ch, cfg.FinanceEmail, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, db,
		authService, userService, accessService, cartService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if chErr := a.ch.Close(); chErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", chErr))
		}
		if connErr := a.conn.Close(); connErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", connErr))
		}
		if dbErr := a.db.DB.Close(); dbErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", dbErr))
		}
		return err
	}
}
