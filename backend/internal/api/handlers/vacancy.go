package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"jobvacancies/backend/internal/api/middleware"
	"jobvacancies/backend/internal/models"
	"jobvacancies/backend/internal/services"
	"jobvacancies/backend/internal/storage"
	"jobvacancies/backend/pkg/utils"
)

// VacancyHandler HTTP-доступ к хранилищу вакансий
type VacancyHandler struct {
	vacancies *services.VacancyService
	logger    *zap.Logger
}

func NewVacancyHandler(vacancies *services.VacancyService, logger *zap.Logger) *VacancyHandler {
	return &VacancyHandler{
		vacancies: vacancies,
		logger:    logger,
	}
}

// ListVacancies поиск вакансий: каждый параметр query string это фильтр
func (h *VacancyHandler) ListVacancies(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	vacancies, err := h.vacancies.Query(filter)
	if err != nil {
		h.writeStorageError(w, r, err)
		return
	}

	utils.WriteSuccess(w, vacancies)
}

// CountVacancies количество вакансий в файле
func (h *VacancyHandler) CountVacancies(w http.ResponseWriter, r *http.Request) {
	count, err := h.vacancies.Count()
	if err != nil {
		h.writeStorageError(w, r, err)
		return
	}

	utils.WriteSuccess(w, map[string]int{"count": count})
}

// CreateVacancy добавление вакансии
func (h *VacancyHandler) CreateVacancy(w http.ResponseWriter, r *http.Request) {
	var vacancy models.Vacancy
	if err := utils.BindJSON(r, &vacancy); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.vacancies.Add(vacancy); err != nil {
		h.writeStorageError(w, r, err)
		return
	}

	h.logger.Info("Vacancy added via API",
		zap.Int("vacancy_id", vacancy.ID),
		zap.String("client", middleware.GetClientFromContext(r.Context())))

	utils.WriteCreated(w, vacancy)
}

// DeleteVacancy удаление первой вакансии с указанным id
func (h *VacancyHandler) DeleteVacancy(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid vacancy id")
		return
	}

	deleted, err := h.vacancies.Delete(id)
	if err != nil {
		h.writeStorageError(w, r, err)
		return
	}

	if !deleted {
		utils.WriteNotFound(w, "Vacancy")
		return
	}

	utils.WriteMessage(w, fmt.Sprintf("Vacancy %d deleted", id))
}

// DeleteLastVacancy удаление последней вакансии в файле
func (h *VacancyHandler) DeleteLastVacancy(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.vacancies.DeleteLast()
	if err != nil {
		h.writeStorageError(w, r, err)
		return
	}

	if !deleted {
		utils.WriteNotFound(w, "Vacancy")
		return
	}

	utils.WriteMessage(w, "Last vacancy deleted")
}

func (h *VacancyHandler) writeStorageError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("Vacancy storage error",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.Error(err))

	switch {
	case errors.Is(err, storage.ErrStorageUnavailable):
		utils.WriteError(w, http.StatusServiceUnavailable, "Vacancy storage unavailable")
	case errors.Is(err, storage.ErrMalformedStore):
		utils.WriteError(w, http.StatusInternalServerError, "Vacancy storage is corrupted")
	default:
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Routes настройка маршрутов. Изменяющие маршруты закрываются auth, если он задан.
func (h *VacancyHandler) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListVacancies)
	r.Get("/count", h.CountVacancies)

	r.Group(func(r chi.Router) {
		if auth != nil {
			r.Use(auth)
		}
		r.Post("/", h.CreateVacancy)
		r.Delete("/last", h.DeleteLastVacancy)
		r.Delete("/{id}", h.DeleteVacancy)
	})

	return r
}

// parseFilter переводит параметры запроса в фильтр с типами полей вакансии.
// Неизвестные поля передаются как строки: хранилище вернет для них пустой результат.
func parseFilter(values url.Values) (map[string]interface{}, error) {
	filter := make(map[string]interface{}, len(values))

	for key := range values {
		value, err := models.ParseFieldValue(key, values.Get(key))
		if err != nil {
			return nil, err
		}
		filter[key] = value
	}

	return filter, nil
}
