// auth.go — вход по OTP, выход и создание пользователей.
package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/goartstore/dms-admin/internal/api/errors"
	"github.com/bigkaa/goartstore/dms-admin/internal/service"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

type otpRequest struct {
	Mobile string `json:"mobile_number"`
	OTP    string `json:"otp"`
}

type loginResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// LoginInfo — GET /login: точка входа для перенаправлений без сессии.
func (h *APIHandler) LoginInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Требуется вход: POST /login {mobile_number}"})
}

// Login — POST /login: запрос OTP на номер телефона.
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON в теле запроса")
		return
	}

	msg, err := h.svc.Auth.RequestOTP(r.Context(), req.Mobile)
	if err != nil {
		h.fail(w, r, "generateOTP", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

// ValidateOTP — POST /validate-otp: проверка OTP и сохранение credential.
// Прежнее состояние сессии (список, preview) сбрасывается.
func (h *APIHandler) ValidateOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON в теле запроса")
		return
	}

	token, err := h.svc.Auth.VerifyOTP(r.Context(), req.Mobile, req.OTP)
	if err != nil {
		h.fail(w, r, "validateOTP", err)
		return
	}

	h.forget(session.FromContext(r.Context()).SessionID)
	if _, err := h.sessions.Save(r.Context(), w, token); err != nil {
		h.logger.Error("Сессия не сохранена", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Не удалось сохранить сессию")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Message: "Вход выполнен", UserID: session.UserID(token)})
}

// Logout — POST /logout: удаление credential и состояния сессии.
func (h *APIHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cred := session.FromContext(r.Context())
	h.forget(cred.SessionID)
	h.sessions.Clear(r.Context(), w, cred)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Выход выполнен"})
}

// CreateUser — POST /dashboard/create-user.
func (h *APIHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var form service.NewUserForm
	if err := decodeJSON(r, &form); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON в теле запроса")
		return
	}

	msg, err := h.svc.Users.Create(r.Context(), session.FromContext(r.Context()), form)
	if err != nil {
		h.fail(w, r, "createUser", err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: msg})
}
