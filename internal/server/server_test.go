package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bigkaa/goartstore/dms-admin/internal/api/middleware"
	"github.com/bigkaa/goartstore/dms-admin/internal/config"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

type staticReader struct{ cred session.Credential }

func (s staticReader) Credential(*http.Request) session.Credential { return s.cred }

// testRoutes — публичный маршрут, закрытый маршрут и паника.
type testRoutes struct{}

func (testRoutes) Mount(router chi.Router, requireSession func(http.Handler) http.Handler) {
	router.Get("/public", func(w http.ResponseWriter, r *http.Request) {
		if chimw.GetReqID(r.Context()) == "" {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = io.WriteString(w, "ok")
	})
	router.With(requireSession).Get("/private", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, session.FromContext(r.Context()).Token)
	})
	router.Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func newTestServer(cred session.Credential) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Port:             8040,
		HTTPReadTimeout:  time.Second,
		HTTPWriteTimeout: time.Second,
		HTTPIdleTimeout:  time.Second,
		ShutdownTimeout:  time.Second,
	}
	return New(cfg, logger, testRoutes{}, middleware.NewSessionAuth(staticReader{cred: cred}, logger))
}

func TestServer_Middleware(t *testing.T) {
	tests := []struct {
		name       string
		cred       session.Credential
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "request id в контексте", path: "/public", wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "закрытый маршрут без входа", path: "/private", wantStatus: http.StatusUnauthorized},
		{
			name:       "закрытый маршрут с входом",
			cred:       session.Credential{SessionID: "s", Token: "tok"},
			path:       "/private",
			wantStatus: http.StatusOK,
			wantBody:   "tok",
		},
		{name: "паника перехвачена", path: "/panic", wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(tt.cred)
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, ожидался %d", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && strings.TrimSpace(w.Body.String()) != tt.wantBody {
				t.Errorf("body = %q", w.Body.String())
			}
		})
	}
}

func TestServer_Addr(t *testing.T) {
	srv := newTestServer(session.Credential{})
	if srv.httpServer.Addr != ":8040" {
		t.Errorf("Addr = %q", srv.httpServer.Addr)
	}
}
