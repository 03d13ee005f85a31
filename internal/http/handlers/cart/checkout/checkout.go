// Package checkout реализует HTTP-обработчик оформления заказа.
package checkout

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
	cartsvc "github.com/vitalfeed/vitalfeed-backend/internal/services/cart"
)

// Service описывает интерфейс бизнес-логики оформления заказа.
type Service interface {
	Checkout(ctx context.Context, userID int64) (*cartsvc.CheckoutResult, error)
}

// Handler обрабатывает HTTP-запросы оформления заказа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Оформление заказа
// @Description Переводит корзину в подтверждённый заказ и отправляет подтверждение в финансовый отдел. Заказ остаётся оформленным даже при сбое отправки письма.
// @Tags Cart
// @Produce  json
// @Param userId query int true "ID пользователя"
// @Success 200 {object} response.Response "Номер заказа"
// @Failure 400 {object} response.ErrorResponse "Некорректный userId или пустая корзина"
// @Failure 404 {object} response.ErrorResponse "Корзина не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/cart/orders/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cart.checkout"

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

	result, err := h.service.Checkout(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrCartNotFound):
			log.Warn("cart not found", slog.Int64("user_id", userID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("cart not found"))
		case errors.Is(err, models.ErrEmptyCart):
			log.Warn("empty cart", slog.Int64("user_id", userID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("cart is empty"))
		case errors.Is(err, models.ErrNotificationFailed):
			// Заказ уже оформлен, не удалось лишь письмо.
			log.Error("order confirmed but notification failed",
				slog.String("order_number", result.OrderNumber), sl.Err(err))
			render.JSON(w, r, response.OKWithData(map[string]any{
				"orderNumber": result.OrderNumber,
				"warning":     "confirmation email could not be queued",
			}))
		default:
			log.Error("failed to checkout", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("order confirmed",
		slog.Int64("user_id", userID), slog.String("order_number", result.OrderNumber))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"orderNumber": result.OrderNumber,
		"totalAmount": result.TotalAmount,
		"confirmedAt": result.ConfirmedAt,
	}))
}
