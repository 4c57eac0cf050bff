package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"jobvacancies/backend/internal/services"
	"jobvacancies/backend/pkg/utils"
)

type RefreshHandler struct {
	engine *services.RefreshEngine
	logger *zap.Logger
}

func NewRefreshHandler(engine *services.RefreshEngine, logger *zap.Logger) *RefreshHandler {
	return &RefreshHandler{
		engine: engine,
		logger: logger,
	}
}

// RunRefresh немедленная загрузка вакансий с HH.ru
func (h *RefreshHandler) RunRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.RunOnce(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrRefreshInProgress) {
			utils.WriteError(w, http.StatusConflict, "Refresh already in progress")
			return
		}
		if errors.Is(err, services.ErrRateLimited) {
			utils.WriteError(w, http.StatusTooManyRequests, "HH.ru rate limit exceeded")
			return
		}

		h.logger.Error("Manual refresh failed", zap.Error(err))
		utils.WriteError(w, http.StatusBadGateway, "Failed to refresh vacancies")
		return
	}

	utils.WriteSuccess(w, result)
}

// GetStatus состояние обновления
func (h *RefreshHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, h.engine.Status())
}

// Routes настройка маршрутов
func (h *RefreshHandler) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/status", h.GetStatus)

	r.Group(func(r chi.Router) {
		if auth != nil {
			r.Use(auth)
		}
		r.Post("/", h.RunRefresh)
	})

	return r
}
