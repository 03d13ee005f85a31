// Package additem реализует HTTP-обработчик добавления товара в корзину.
package additem

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/vitalfeed/vitalfeed-backend/internal/http/response"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/sl"
	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

// Service описывает интерфейс бизнес-логики корзины.
type Service interface {
	AddItem(ctx context.Context, userID int64, req models.DummyCartItem) (*models.CartView, error)
}

// Handler обрабатывает HTTP-запросы добавления товара.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Добавление товара в корзину
// @Description Добавляет товар с фиксацией текущей цены, повторное добавление увеличивает количество.
// @Tags Cart
// @Accept  json
// @Produce  json
// @Param userId query int true "ID пользователя"
// @Param request body models.DummyCartItem true "Товар и количество"
// @Success 200 {object} response.Response "Обновлённая корзина"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 404 {object} response.ErrorResponse "Товар не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/cart/items [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cart.additem"

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

	var req models.DummyCartItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	view, err := h.service.AddItem(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			log.Warn("product not found", slog.Int64("product_id", req.ProductID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("product not found"))
			return
		}
		log.Error("failed to add item", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("item added", slog.Int64("user_id", userID), slog.Int64("product_id", req.ProductID))
	render.JSON(w, r, response.OKWithData(view))
}
