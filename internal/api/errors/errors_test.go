package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
		wantCode   string
	}{
		{"validation", func(w http.ResponseWriter) { ValidationError(w, "x") }, http.StatusBadRequest, CodeValidationError},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "x") }, http.StatusNotFound, CodeNotFound},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "x") }, http.StatusUnauthorized, CodeUnauthorized},
		{"api error", func(w http.ResponseWriter) { APIError(w, "x") }, http.StatusBadGateway, CodeAPIError},
		{"api unavailable", func(w http.ResponseWriter) { APIUnavailable(w, "x") }, http.StatusBadGateway, CodeAPIUnavailable},
		{"not implemented", func(w http.ResponseWriter) { NotImplemented(w, "x") }, http.StatusNotImplemented, CodeNotImplemented},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "x") }, http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, ожидался %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var body errorBody
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tt.wantCode || body.Error.Message != "x" {
				t.Errorf("body = %+v", body.Error)
			}
		})
	}
}

func TestFieldErrors(t *testing.T) {
	w := httptest.NewRecorder()
	FieldErrors(w, "Проверьте поля формы", map[string]string{"otp": "Введите OTP"})

	var body errorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w.Code != http.StatusBadRequest || body.Error.Fields["otp"] != "Введите OTP" {
		t.Errorf("status=%d body=%+v", w.Code, body.Error)
	}
}
