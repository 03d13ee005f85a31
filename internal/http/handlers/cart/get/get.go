// Package get реализует HTTP-обработчик чтения корзины пользователя.
package get

import (
	"context"
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
	GetCart(ctx context.Context, userID int64) (*models.CartView, error)
}

// Handler обрабатывает HTTP-запросы чтения корзины.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Корзина пользователя
// @Description Возвращает текущую корзину, создавая пустую при первом обращении.
// @Tags Cart
// @Produce  json
// @Param userId query int true "ID пользователя"
// @Success 200 {object} response.Response "Корзина"
// @Failure 400 {object} response.ErrorResponse "Некорректный userId"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/cart [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cart.get"

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

	view, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		log.Error("failed to get cart", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OKWithData(view))
}
