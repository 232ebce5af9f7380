// Пакет errors — ответы с ошибками в едином формате gateway.
// Формат: {"error": {"code": "...", "message": "...", "fields": {...}}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"encoding/json"
	"net/http"
)

// Коды ошибок.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeAPIError        = "API_ERROR"
	CodeAPIUnavailable  = "API_UNAVAILABLE"
	CodeNotImplemented  = "NOT_IMPLEMENTED"
	CodeInternalError   = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки.
type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteError записывает ответ ошибки в стандартном формате.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — текст для пользователя.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	write(w, statusCode, errorDetail{Code: code, Message: message})
}

// FieldErrors — 400 с ошибками отдельных полей формы.
func FieldErrors(w http.ResponseWriter, message string, fields map[string]string) {
	write(w, http.StatusBadRequest, errorDetail{Code: CodeValidationError, Message: message, Fields: fields})
}

func write(w http.ResponseWriter, statusCode int, detail errorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{Error: detail})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401 требуется вход.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// APIError — 502 API документов отклонил запрос; message — текст сервера.
func APIError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, CodeAPIError, message)
}

// APIUnavailable — 502 API документов недоступен.
func APIUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, CodeAPIUnavailable, message)
}

// NotImplemented — 501 функция не настроена.
func NotImplemented(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotImplemented, CodeNotImplemented, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
