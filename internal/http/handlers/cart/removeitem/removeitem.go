// Package removeitem реализует HTTP-обработчик удаления позиции корзины.
package removeitem

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

// Service описывает интерфейс бизнес-логики корзины.
type Service interface {
	RemoveItem(ctx context.Context, userID, itemID int64) (*models.CartView, error)
}

// Handler обрабатывает HTTP-запросы удаления позиции.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление позиции корзины
// @Tags Cart
// @Produce  json
// @Param itemId path int true "ID позиции"
// @Param userId query int true "ID пользователя"
// @Success 200 {object} response.Response "Обновлённая корзина"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 404 {object} response.ErrorResponse "Позиция или корзина не найдены"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/cart/items/{itemId} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cart.removeitem"

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
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil {
		log.Error("invalid item id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid item id"))
		return
	}

	view, err := h.service.RemoveItem(r.Context(), userID, itemID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrCartNotFound), errors.Is(err, models.ErrItemNotFound):
			log.Warn("cart item not found", slog.Int64("item_id", itemID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("item not found"))
		case errors.Is(err, models.ErrItemNotOwned):
			log.Warn("item belongs to another cart", slog.Int64("item_id", itemID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("item belongs to another cart"))
		default:
			log.Error("failed to remove item", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(view))
}
