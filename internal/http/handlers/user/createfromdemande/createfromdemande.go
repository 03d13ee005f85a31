// Package createfromdemande реализует админский HTTP-обработчик создания
// пользователя из одобренной заявки на доступ.
package createfromdemande

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

// Service описывает интерфейс бизнес-логики создания пользователя из заявки.
type Service interface {
	CreateFromRequest(ctx context.Context, accessRequestID int64, subscriptionType string) (*models.User, error)
}

// Handler обрабатывает HTTP-запросы создания пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Создание пользователя из заявки
// @Description Создает учетную запись по заявке, назначает подписку и отправляет временный пароль письмом. Только для администраторов.
// @Tags Users
// @Produce  json
// @Param demandeId path int true "ID заявки"
// @Param subscriptionType query string true "Тип подписки (SIX_MONTHS или ONE_YEAR)"
// @Success 201 {object} response.Response "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 409 {object} response.ErrorResponse "Пользователь уже существует"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/users/create-from-demande/{demandeId} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.createfromdemande"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	demandeID, err := strconv.ParseInt(chi.URLParam(r, "demandeId"), 10, 64)
	if err != nil {
		log.Error("invalid demande id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid demande id"))
		return
	}
	subscriptionType := r.URL.Query().Get("subscriptionType")

	user, err := h.service.CreateFromRequest(r.Context(), demandeID, subscriptionType)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAccessRequestNotFound):
			log.Warn("access request not found", slog.Int64("demande_id", demandeID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("access request not found"))
		case errors.Is(err, models.ErrUserAlreadyExists):
			log.Warn("user already exists", slog.Int64("demande_id", demandeID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("user already exists"))
		default:
			log.Error("failed to create user from demande", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to create user"))
		}
		return
	}

	log.Info("user created from demande",
		slog.Int64("user_id", user.ID), slog.Int64("demande_id", demandeID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(user.View()))
}
