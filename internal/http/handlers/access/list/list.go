// Package list реализует админский HTTP-обработчик списка заявок на доступ.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vitalfeed/vitalfeed-backend/internal/http/response"
	"github.com/vitalfeed/vitalfeed-backend/internal/lib/sl"
	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

// Service описывает интерфейс бизнес-логики списка заявок.
type Service interface {
	List(ctx context.Context) ([]*models.AccessRequest, error)
}

// Handler обрабатывает HTTP-запросы списка заявок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список заявок на доступ
// @Description Возвращает все заявки в порядке подачи. Только для администраторов.
// @Tags Access
// @Produce  json
// @Success 200 {object} response.Response "Список заявок"
// @Failure 401 {object} response.ErrorResponse "Нет аутентификации"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/access-requests [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	requests, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list access requests", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	views := make([]models.AccessRequestView, 0, len(requests))
	for _, req := range requests {
		views = append(views, req.View())
	}

	log.Info("access requests listed", slog.Int("count", len(views)))
	render.JSON(w, r, response.OKWithData(views))
}
