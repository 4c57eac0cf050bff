package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// JSONResponse стандартный JSON ответ
type JSONResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// WriteJSON записывает JSON ответ
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// WriteSuccess успешный ответ
func WriteSuccess(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, JSONResponse{
		Success: true,
		Data:    data,
	})
}

// WriteCreated ответ на создание ресурса
func WriteCreated(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusCreated, JSONResponse{
		Success: true,
		Data:    data,
	})
}

// WriteError ответ с ошибкой
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, JSONResponse{
		Success: false,
		Error:   message,
	})
}

// WriteMessage ответ с сообщением
func WriteMessage(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, JSONResponse{
		Success: true,
		Message: message,
	})
}

// WriteNotFound 404 ошибка
func WriteNotFound(w http.ResponseWriter, resource string) {
	WriteError(w, http.StatusNotFound, resource+" not found")
}

// WriteForbidden 403 ошибка
func WriteForbidden(w http.ResponseWriter) {
	WriteError(w, http.StatusForbidden, "Forbidden")
}

// HealthCheckResponse ответ для health check
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
}

// WriteHealthCheck записывает health check ответ
func WriteHealthCheck(w http.ResponseWriter, status string, services map[string]string) {
	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	WriteJSON(w, code, HealthCheckResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
	})
}

// BindJSON парсит JSON из тела запроса, неизвестные поля запрещены
func BindJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}

	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
