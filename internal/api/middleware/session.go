// session.go — credential пользователя в контексте запроса и проверка входа.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/bigkaa/goartstore/dms-admin/internal/api/errors"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

// LoginPath — страница входа.
const LoginPath = "/login"

// CredentialReader — источник credential запроса (session.Manager).
type CredentialReader interface {
	Credential(r *http.Request) session.Credential
}

// SessionAuth — middleware работы с сессией.
type SessionAuth struct {
	reader CredentialReader
	logger *slog.Logger
}

// NewSessionAuth создаёт middleware сессии.
func NewSessionAuth(reader CredentialReader, logger *slog.Logger) *SessionAuth {
	return &SessionAuth{
		reader: reader,
		logger: logger.With(slog.String("component", "session_middleware")),
	}
}

// Attach помещает credential (возможно пустой) в контекст каждого запроса.
func (sa *SessionAuth) Attach() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred := sa.reader.Credential(r)
			next.ServeHTTP(w, r.WithContext(session.WithCredential(r.Context(), cred)))
		})
	}
}

// Require пропускает только запросы с токеном.
// Страничный GET (Accept: text/html) перенаправляется на /login, остальные получают 401.
func (sa *SessionAuth) Require() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred := session.FromContext(r.Context())
			if cred.SessionID == "" && !cred.Authenticated() {
				cred = sa.reader.Credential(r)
			}
			if !cred.Authenticated() {
				sa.logger.Debug("Запрос без входа",
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr),
				)
				if wantsHTML(r) {
					http.Redirect(w, r, LoginPath, http.StatusFound)
					return
				}
				apierrors.Unauthorized(w, "Требуется вход")
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithCredential(r.Context(), cred)))
		})
	}
}

func wantsHTML(r *http.Request) bool {
	return r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html")
}
