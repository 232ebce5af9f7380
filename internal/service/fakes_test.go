package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/dms-admin/internal/dmsapi"
	"github.com/bigkaa/goartstore/dms-admin/internal/domain/model"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

// testLogger создаёт logger, отбрасывающий вывод.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testCred — credential тестовой сессии.
var testCred = session.Credential{SessionID: "sess-1", Token: "tok-1"}

// fakeAPI — mock DocumentAPI и AuthAPI.
type fakeAPI struct {
	mu sync.Mutex

	rows      []model.DocumentRecord
	searchErr error
	searches  []model.SearchRequest

	// files — содержимое proxy по локатору; отсутствие — ошибка
	files       map[string][]byte
	proxyErr    error
	proxyCalls  []string
	contentType string

	tags      []string
	tagCalls  int
	uploadMsg string
	uploads   []model.UploadMetadata

	otpMsg   string
	token    string
	otpErr   error
	newUsers []dmsapi.NewUser
}

func (f *fakeAPI) Search(_ context.Context, token string, req model.SearchRequest) ([]model.DocumentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, req)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.rows, nil
}

func (f *fakeAPI) Tags(_ context.Context, _, _ string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tagCalls++
	return f.tags, nil
}

func (f *fakeAPI) Upload(_ context.Context, _ string, _ dmsapi.UploadFile, meta model.UploadMetadata) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, meta)
	return f.uploadMsg, nil
}

func (f *fakeAPI) ProxyDownload(_ context.Context, _ string, path string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.proxyCalls = append(f.proxyCalls, path)
	if f.proxyErr != nil {
		return nil, "", f.proxyErr
	}
	data, ok := f.files[path]
	if !ok {
		return nil, "", &dmsapi.APIError{Op: "downloadDocument", Status: 404}
	}
	return data, f.contentType, nil
}

func (f *fakeAPI) GenerateOTP(_ context.Context, _ string) (string, error) {
	return f.otpMsg, f.otpErr
}

func (f *fakeAPI) ValidateOTP(_ context.Context, _, _ string) (string, error) {
	if f.otpErr != nil {
		return "", f.otpErr
	}
	return f.token, nil
}

func (f *fakeAPI) CreateUser(_ context.Context, _ string, u dmsapi.NewUser) (string, error) {
	f.newUsers = append(f.newUsers, u)
	return "", nil
}

func (f *fakeAPI) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

// fakeFetcher — mock DirectFetcher: содержимое по URL.
type fakeFetcher struct {
	mu    sync.Mutex
	files map[string][]byte
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rawURL)
	if data, ok := f.files[rawURL]; ok {
		return data, "", nil
	}
	return nil, "", errors.New("403 Forbidden")
}

// newSearch создаёт SearchService над fakeAPI.
func newSearch(api *fakeAPI) *SearchService {
	return NewSearchService(api, NewStateStore(10, time.Minute), testLogger())
}

// loadRows выполняет поиск, чтобы у сессии появился ResultSet.
func loadRows(t *testing.T, s *SearchService) {
	t.Helper()
	if _, err := s.Search(context.Background(), testCred, model.SearchFilter{}); err != nil {
		t.Fatalf("Search: %v", err)
	}
}
