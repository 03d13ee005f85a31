// Package assign реализует админский HTTP-обработчик назначения подписки
// пользователю.
package assign

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vitalfeed/vitalfeed-backend/internal/http/response"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/sl"
	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

// Service описывает интерфейс бизнес-логики назначения подписки.
type Service interface {
	AssignSubscription(ctx context.Context, userID int64, subscriptionType string) (*models.Subscription, error)
}

// Handler обрабатывает HTTP-запросы назначения подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Назначение подписки
// @Description Назначает пользователю подписку выбранного типа, начиная с текущего дня. Только для администраторов.
// @Tags Subscriptions
// @Produce  json
// @Param userId path int true "ID пользователя"
// @Param subscriptionType query string true "Тип подписки (SIX_MONTHS или ONE_YEAR)"
// @Success 201 {object} response.Response "Подписка назначена"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 409 {object} response.ErrorResponse "Подписка уже есть"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/subscriptions/assign/{userId} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.assign"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		log.Error("invalid user id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user id"))
		return
	}

	sub, err := h.service.AssignSubscription(r.Context(), userID, r.URL.Query().Get("subscriptionType"))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUserNotFound):
			log.Warn("user not found", slog.Int64("user_id", userID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.Is(err, models.ErrSubscriptionExists):
			log.Warn("subscription already exists", slog.Int64("user_id", userID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("subscription already exists"))
		default:
			log.Error("failed to assign subscription", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to assign subscription"))
		}
		return
	}

	log.Info("subscription assigned",
		slog.Int64("user_id", userID), slog.String("type", string(sub.Type)))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(sub.View()))
}
