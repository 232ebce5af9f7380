package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

type staticReader struct {
	cred session.Credential
}

func (s staticReader) Credential(*http.Request) session.Credential { return s.cred }

func okHandler(t *testing.T, want session.Credential) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := session.FromContext(r.Context()); got != want {
			t.Errorf("credential в контексте = %+v, ожидался %+v", got, want)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestSessionAuth_Require(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	authed := session.Credential{SessionID: "s1", Token: "tok"}

	tests := []struct {
		name         string
		cred         session.Credential
		method       string
		accept       string
		wantStatus   int
		wantLocation string
	}{
		{name: "с токеном", cred: authed, method: http.MethodGet, wantStatus: http.StatusNoContent},
		{name: "API без токена", cred: session.Credential{SessionID: "s1"}, method: http.MethodGet, accept: "application/json", wantStatus: http.StatusUnauthorized},
		{name: "страница без токена", method: http.MethodGet, accept: "text/html,application/xhtml+xml", wantStatus: http.StatusFound, wantLocation: LoginPath},
		{name: "POST без токена", method: http.MethodPost, accept: "text/html", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sa := NewSessionAuth(staticReader{cred: tt.cred}, logger)
			h := sa.Attach()(sa.Require()(okHandler(t, authed)))

			req := httptest.NewRequest(tt.method, "/dashboard/documents", nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, ожидался %d", w.Code, tt.wantStatus)
			}
			if loc := w.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q", loc)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"/dashboard/documents", "/dashboard/documents"},
		{"/dashboard/documents/12/view", "/dashboard/documents/{n}/view"},
		{"/dashboard/documents/3/download", "/dashboard/documents/{n}/download"},
		{"/dashboard/documents/archive", "/dashboard/documents/archive"},
		{"/dashboard/previews/0b6f3c9e-1d2a-4f7e-9a51-1f0c2b3d4e5f", "/dashboard/previews/{id}"},
		{"/health/ready", "/health/ready"},
		{"/wp-admin.php", "other"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, ожидалось %q", tt.path, got, tt.want)
		}
	}
}

func TestRequestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
		_, _ = w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if buf.Len() != 0 {
		t.Errorf("health probe не должен логироваться на INFO: %s", buf.String())
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status=404") || !strings.Contains(out, "bytes=2") {
		t.Errorf("лог 404: %s", out)
	}
}
