package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/dms-admin/internal/dmsapi"
	"github.com/bigkaa/goartstore/dms-admin/internal/domain/model"
)

func datedRows(n int) []model.DocumentRecord {
	rows := make([]model.DocumentRecord, n)
	for i := range rows {
		rows[i] = model.DocumentRecord{
			"document_date": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("02-01-2006"),
			"file_path":     fmt.Sprintf("uploads/doc-%02d.pdf", i),
		}
	}
	return rows
}

// TestSearchService_SortsAndStores проверяет сортировку и сохранение ResultSet.
func TestSearchService_SortsAndStores(t *testing.T) {
	api := &fakeAPI{rows: datedRows(23)}
	s := newSearch(api)

	state, err := s.Search(context.Background(), testCred, model.SearchFilter{MajorHead: "Personal", TagsText: "invoice, id"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(state.Rows) != 23 || state.Page != 1 {
		t.Fatalf("rows=%d page=%d", len(state.Rows), state.Page)
	}
	for i := 1; i < len(state.Rows); i++ {
		if state.Rows[i-1].Timestamp() < state.Rows[i].Timestamp() {
			t.Fatalf("нарушен порядок по убыванию даты на позиции %d", i)
		}
	}

	req := api.searches[0]
	if req.MajorHead != "Personal" || len(req.Tags) != 2 || req.Tags[0].TagName != "invoice" {
		t.Errorf("запрос поиска: %+v", req)
	}
	if req.Start != 0 || req.Length != 10 {
		t.Errorf("start/length = %d/%d", req.Start, req.Length)
	}

	stored, ok := s.State(testCred)
	if !ok || len(stored.Rows) != 23 {
		t.Error("ResultSet не сохранён в StateStore")
	}
}

// TestSearchService_PageNoNetwork проверяет, что смена страницы не обращается к API.
func TestSearchService_PageNoNetwork(t *testing.T) {
	api := &fakeAPI{rows: datedRows(23)}
	s := newSearch(api)
	loadRows(t, s)

	state, err := s.Page(context.Background(), testCred, 3)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if state.Page != 3 || len(state.Visible()) != 3 {
		t.Errorf("page=%d visible=%d", state.Page, len(state.Visible()))
	}
	if state, _ = s.Page(context.Background(), testCred, 99); state.Page != 3 {
		t.Errorf("Page(99) = %d, ожидалось 3", state.Page)
	}
	if api.searchCount() != 1 {
		t.Errorf("запросов поиска %d, ожидался 1", api.searchCount())
	}
}

// TestSearchService_InitialLoad проверяет начальную загрузку без состояния.
func TestSearchService_InitialLoad(t *testing.T) {
	api := &fakeAPI{rows: datedRows(4)}
	s := newSearch(api)

	state, err := s.Page(context.Background(), testCred, 1)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if len(state.Rows) != 4 {
		t.Errorf("rows=%d", len(state.Rows))
	}
	if api.searchCount() != 1 {
		t.Fatalf("запросов поиска %d, ожидался 1", api.searchCount())
	}
	if api.searches[0].Search.Value != "" || api.searches[0].MajorHead != "" || len(api.searches[0].Tags) != 0 {
		t.Errorf("начальная загрузка должна использовать пустой фильтр: %+v", api.searches[0])
	}
}

// TestSearchService_ValidationNoNetwork проверяет отказ до сетевого запроса.
func TestSearchService_ValidationNoNetwork(t *testing.T) {
	api := &fakeAPI{}
	s := newSearch(api)

	_, err := s.Search(context.Background(), testCred, model.SearchFilter{FromDate: "2024-13-01"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("ожидалась ValidationError, получено %v", err)
	}
	if api.searchCount() != 0 {
		t.Error("при ошибке валидации запрос не должен отправляться")
	}
}

// TestSearchService_FailureKeepsRows проверяет сохранение ResultSet при ошибке.
func TestSearchService_FailureKeepsRows(t *testing.T) {
	api := &fakeAPI{rows: datedRows(5)}
	s := newSearch(api)
	loadRows(t, s)

	api.searchErr = &dmsapi.APIError{Op: "searchDocumentEntry", Status: 500, Message: "DB down"}
	state, err := s.Refresh(context.Background(), testCred)
	if err == nil {
		t.Fatal("ожидалась ошибка")
	}
	if state.Message != "DB down" {
		t.Errorf("Message = %q", state.Message)
	}
	if len(state.Rows) != 5 {
		t.Errorf("ResultSet потерян: %d записей", len(state.Rows))
	}
	if state.Loading {
		t.Error("Loading должен быть сброшен")
	}
}

// TestSearchService_Unauthorized проверяет распознавание ErrUnauthorized.
func TestSearchService_Unauthorized(t *testing.T) {
	api := &fakeAPI{searchErr: &dmsapi.APIError{Op: "searchDocumentEntry", Status: 401}}
	s := newSearch(api)

	_, err := s.Search(context.Background(), testCred, model.SearchFilter{})
	if !errors.Is(err, dmsapi.ErrUnauthorized) {
		t.Errorf("ожидалась ErrUnauthorized, получено %v", err)
	}
}

// TestSearchService_Refresh проверяет повтор последнего фильтра.
func TestSearchService_Refresh(t *testing.T) {
	api := &fakeAPI{rows: datedRows(12)}
	s := newSearch(api)

	f := model.SearchFilter{MinorHead: "HR"}
	if _, err := s.Search(context.Background(), testCred, f); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Page(context.Background(), testCred, 2); err != nil {
		t.Fatal(err)
	}

	state, err := s.Refresh(context.Background(), testCred)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if state.Page != 1 || state.Filter != f {
		t.Errorf("после Refresh page=%d filter=%+v", state.Page, state.Filter)
	}
	if len(api.searches) != 2 || api.searches[1].MinorHead != "HR" {
		t.Errorf("Refresh должен повторить фильтр: %+v", api.searches)
	}
}

// TestView проверяет отображение страницы: абсолютная нумерация и поля.
func TestView(t *testing.T) {
	api := &fakeAPI{rows: append(datedRows(11), model.DocumentRecord{"remarks": "без файла"})}
	s := newSearch(api)
	loadRows(t, s)

	state, _ := s.Page(context.Background(), testCred, 2)
	v := View(state)

	if v.Total != 12 || v.TotalPages != 2 || v.Page != 2 {
		t.Errorf("total=%d pages=%d page=%d", v.Total, v.TotalPages, v.Page)
	}
	if len(v.Rows) != 2 {
		t.Fatalf("строк %d, ожидалось 2", len(v.Rows))
	}
	if v.Rows[0].Number != 11 || v.Rows[1].Number != 12 {
		t.Errorf("номера строк %d, %d", v.Rows[0].Number, v.Rows[1].Number)
	}
	last := v.Rows[1]
	if last.HasFile || last.Filename != "file" || last.Remarks != "без файла" {
		t.Errorf("запись без даты и файла: %+v", last)
	}
}

// TestSearchService_Forget проверяет удаление состояния.
func TestSearchService_Forget(t *testing.T) {
	s := newSearch(&fakeAPI{rows: datedRows(2)})
	loadRows(t, s)

	s.Forget(testCred.SessionID)
	if _, ok := s.State(testCred); ok {
		t.Error("состояние должно быть удалено")
	}
	if _, err := s.Record(testCred, 1); !errors.Is(err, ErrRowNotFound) {
		t.Errorf("Record после Forget: %v", err)
	}
}
