// Package submit реализует публичный HTTP-обработчик подачи заявки на доступ.
package submit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/vitalfeed/vitalfeed-backend/internal/http/response"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/sl"
	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

// Service описывает интерфейс бизнес-логики приёма заявок.
type Service interface {
	Submit(ctx context.Context, req models.DummyAccessRequest) (*models.AccessRequest, error)
}

// Handler обрабатывает HTTP-запросы подачи заявок.
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
// @Summary Подача заявки на доступ
// @Description Принимает заявку ветеринара. Повторная заявка с тем же email отклоняется.
// @Tags Access
// @Accept  json
// @Produce  json
// @Param request body models.DummyAccessRequest true "Данные заявки"
// @Success 201 {object} response.Response "Заявка принята"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Заявка с таким email уже есть"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/access-requests [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.submit"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyAccessRequest
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

	created, err := h.service.Submit(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateAccessRequest) {
			log.Warn("duplicate access request", slog.String("email", req.Email))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("access request already submitted"))
			return
		}
		log.Error("failed to submit access request", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("access request submitted", slog.Int64("id", created.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(created.View()))
}
