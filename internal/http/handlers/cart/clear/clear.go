// Package clear реализует HTTP-обработчик опустошения корзины.
package clear

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vitalfeed/vitalfeed-backend/internal/http/response"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/sl"
	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

// Service описывает интерфейс бизнес-логики корзины.
type Service interface {
	Clear(ctx context.Context, userID int64) (*models.CartView, error)
}

// Handler обрабатывает HTTP-запросы опустошения корзины.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Опустошение корзины
// @Tags Cart
// @Produce  json
// @Param userId query int true "ID пользователя"
// @Success 200 {object} response.Response "Пустая корзина"
// @Failure 400 {object} response.ErrorResponse "Некорректный userId"
// @Failure 404 {object} response.ErrorResponse "Корзина не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/cart [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cart.clear"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		log.Error("invalid user id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user id"))
		return
	}

	view, err := h.service.Clear(r.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrCartNotFound) {
			log.Warn("cart not found", slog.Int64("user_id", userID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("cart not found"))
			return
		}
		log.Error("failed to clear cart", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("cart cleared", slog.Int64("user_id", userID))
	render.JSON(w, r, response.OKWithData(view))
}
