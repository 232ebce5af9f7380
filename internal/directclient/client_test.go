package directclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestClient_Fetch проверяет скачивание без credential.
func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" || r.Header.Get("token") != "" {
			t.Error("прямое скачивание не должно передавать credential")
		}
		if r.URL.Query().Get("sig") != "abc" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF"))
	}))
	t.Cleanup(server.Close)

	client, err := New("", 5*time.Second, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	data, ct, err := client.Fetch(context.Background(), server.URL+"/doc.pdf?sig=abc")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "%PDF" || ct != "application/pdf" {
		t.Errorf("data=%q ct=%q", data, ct)
	}

	_, _, err = client.Fetch(context.Background(), server.URL+"/doc.pdf")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusForbidden {
		t.Errorf("ожидалась StatusError 403, получено %v", err)
	}
}

// TestNew_BadCACert проверяет ошибку загрузки CA-сертификата.
func TestNew_BadCACert(t *testing.T) {
	if _, err := New("/nonexistent/ca.pem", time.Second, testLogger()); err == nil {
		t.Error("ожидалась ошибка для несуществующего CA")
	}
}
