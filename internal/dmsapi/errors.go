package dmsapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors.
var (
	// ErrUnauthorized — API ответил 401: credential недействителен.
	ErrUnauthorized = errors.New("требуется повторный вход")
	// ErrTokenMissing — validateOTP ответил успехом, но без токена.
	ErrTokenMissing = errors.New("токен не получен")
)

// TransportMessage — сообщение для пользователя при сетевой ошибке.
const TransportMessage = "Сервис документов недоступен, повторите попытку позже"

// APIError — ошибка приложения: не-2xx ответ или status:false.
// Message — текст сервера (если он его прислал).
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: статус %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: статус %d", e.Op, e.Status)
}

// Unwrap даёт errors.Is(err, ErrUnauthorized) для ответов 401.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// TransportError — сеть недоступна, таймаут или нечитаемый ответ.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UserMessage — текст ошибки для показа пользователю.
// Для ошибок приложения — сообщение сервера, иначе текст самой ошибки.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Status == http.StatusUnauthorized {
			return ErrUnauthorized.Error()
		}
		return fmt.Sprintf("Сервер вернул статус %d", apiErr.Status)
	}
	var trErr *TransportError
	if errors.As(err, &trErr) {
		return TransportMessage
	}
	return err.Error()
}

// messageKeys — где в теле ответа искать текст ошибки.
var messageKeys = []string{"data", "message", "error"}

// extractMessage возвращает первое строковое сообщение из тела ответа.
// Вложенные объекты проверяются по тем же ключам.
func extractMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return messageFrom(payload, 0)
}

func messageFrom(payload map[string]any, depth int) string {
	for _, k := range messageKeys {
		switch v := payload[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if depth < 2 {
				if msg := messageFrom(v, depth+1); msg != "" {
					return msg
				}
			}
		}
	}
	return ""
}
