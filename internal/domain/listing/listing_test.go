package listing

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/bigkaa/goartstore/dms-admin/internal/domain/model"
)

// makeRows создаёт n записей с убывающими датами, id — номер записи.
func makeRows(n int) []model.DocumentRecord {
	rows := make([]model.DocumentRecord, n)
	for i := range rows {
		rows[i] = model.DocumentRecord{
			"id":            i,
			"document_date": fmt.Sprintf("2024-01-%02d", 28-i%28),
		}
	}
	return rows
}

func TestTotalPages(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 9: 1, 10: 1, 11: 2, 20: 2, 21: 3, 95: 10}
	for n, want := range cases {
		if got := TotalPages(n); got != want {
			t.Errorf("TotalPages(%d) = %d, ожидалось %d", n, got, want)
		}
	}
}

func TestGotoPage_Clamps(t *testing.T) {
	s := Loaded(Initial(), makeRows(25))

	tests := []struct {
		page int
		want int
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 3},
		{100, 3},
	}
	for _, tt := range tests {
		got := GotoPage(s, tt.page)
		if got.Page != tt.want {
			t.Errorf("GotoPage(%d).Page = %d, ожидалось %d", tt.page, got.Page, tt.want)
		}
		if !got.ScrollToTop {
			t.Errorf("GotoPage(%d): ScrollToTop не установлен", tt.page)
		}
	}

	empty := GotoPage(Initial(), 5)
	if empty.Page != 1 {
		t.Errorf("GotoPage для пустого ResultSet: Page = %d, ожидалось 1", empty.Page)
	}
	if v := empty.Visible(); len(v) != 0 {
		t.Errorf("Visible для пустого ResultSet: %d записей", len(v))
	}
}

func TestVisible_Slice(t *testing.T) {
	s := Loaded(Initial(), makeRows(25))

	for p := 1; p <= 3; p++ {
		s = GotoPage(s, p)
		start := (p - 1) * PageSize
		end := min(p*PageSize, len(s.Rows))
		want := s.Rows[start:end]
		if got := s.Visible(); !reflect.DeepEqual(got, want) {
			t.Errorf("страница %d: срез не совпадает с rows[%d:%d]", p, start, end)
		}
	}

	if got := len(GotoPage(s, 3).Visible()); got != 5 {
		t.Errorf("последняя страница: %d записей, ожидалось 5", got)
	}
}

func TestGotoPage_Idempotent(t *testing.T) {
	s := GotoPage(Loaded(Initial(), makeRows(33)), 2)

	first := GotoPage(s, s.Page).Visible()
	second := GotoPage(GotoPage(s, s.Page), s.Page).Visible()
	if !reflect.DeepEqual(first, second) {
		t.Error("повторный переход на текущую страницу изменил срез")
	}
}

func TestSortByDateDesc(t *testing.T) {
	rows := []model.DocumentRecord{
		{"id": "bad", "document_date": "вчера"},
		{"id": "old", "document_date": "2020-05-01"},
		{"id": "dmy", "document_date": "25-12-2023"},
		{"id": "none"},
		{"id": "new", "created_at": "2024-06-01T12:00:00Z"},
		{"id": "mid", "documentDate": "01-01-2022"},
	}

	sorted := SortByDateDesc(rows)

	var order []string
	for _, r := range sorted {
		order = append(order, r["id"].(string))
	}
	want := []string{"new", "dmy", "mid", "old", "bad", "none"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("порядок = %v, ожидалось %v", order, want)
	}

	if rows[0]["id"] != "bad" {
		t.Error("SortByDateDesc изменил входной срез")
	}
}

func TestSortByDateDesc_BeforeEpoch(t *testing.T) {
	tests := []struct {
		name string
		rows []model.DocumentRecord
		want []string
	}{
		{
			name: "дата до 1970 выше нераспознанной",
			rows: []model.DocumentRecord{
				{"id": "bad", "document_date": "bad"},
				{"id": "1965", "document_date": "1965-05-01"},
				{"id": "2024", "document_date": "2024-01-01"},
			},
			want: []string{"2024", "1965", "bad"},
		},
		{
			name: "начало эпохи считается датой",
			rows: []model.DocumentRecord{
				{"id": "none"},
				{"id": "epoch", "document_date": "1970-01-01"},
				{"id": "1969", "document_date": "31-12-1969"},
			},
			want: []string{"epoch", "1969", "none"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var order []string
			for _, r := range SortByDateDesc(tt.rows) {
				order = append(order, r["id"].(string))
			}
			if !reflect.DeepEqual(order, tt.want) {
				t.Errorf("порядок = %v, ожидалось %v", order, tt.want)
			}
		})
	}
}

func TestTransitions(t *testing.T) {
	f := model.SearchFilter{MajorHead: model.MajorPersonal}

	s := Begin(Initial(), f)
	if !s.Loading || s.Filter != f {
		t.Fatalf("Begin: %+v", s)
	}

	s = Loaded(s, makeRows(12))
	s = GotoPage(s, 2)
	s = Begin(s, f)
	s = Failed(s, "сервер недоступен")
	if s.Loading || s.Message != "сервер недоступен" {
		t.Errorf("Failed: %+v", s)
	}
	if len(s.Rows) != 12 || s.Page != 2 {
		t.Errorf("Failed не должен менять ResultSet и страницу: rows=%d page=%d", len(s.Rows), s.Page)
	}

	s = Loaded(Begin(s, f), makeRows(3))
	if s.Page != 1 || len(s.Rows) != 3 || s.Message != "" {
		t.Errorf("Loaded после новой выборки: %+v", s)
	}
}

func TestRow(t *testing.T) {
	s := Loaded(Initial(), makeRows(12))

	if _, ok := s.Row(0); ok {
		t.Error("Row(0) должен отсутствовать")
	}
	if _, ok := s.Row(13); ok {
		t.Error("Row(13) должен отсутствовать")
	}
	rec, ok := s.Row(11)
	if !ok || !reflect.DeepEqual(rec, s.Rows[10]) {
		t.Error("Row(11) должен вернуть Rows[10]")
	}
	if got := RowNumber(2, 0); got != 11 {
		t.Errorf("RowNumber(2, 0) = %d, ожидалось 11", got)
	}
}

// strip рендерит полосу страниц в строку вида "1 … 4 [5] 6 … 9".
func strip(items []PageItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		switch {
		case it.Ellipsis:
			parts = append(parts, "…")
		case it.Current:
			parts = append(parts, fmt.Sprintf("[%d]", it.Number))
		default:
			parts = append(parts, fmt.Sprint(it.Number))
		}
	}
	return strings.Join(parts, " ")
}

func TestPageNumbers(t *testing.T) {
	tests := []struct {
		current, total int
		want           string
	}{
		{1, 1, "[1]"},
		{1, 0, "[1]"},
		{1, 5, "[1] 2 3 … 5"},
		{3, 5, "1 2 [3] 4 5"},
		{5, 10, "1 … 3 4 [5] 6 7 … 10"},
		{10, 10, "1 … 8 9 [10]"},
		{4, 7, "1 2 3 [4] 5 6 7"},
		{20, 10, "1 … 8 9 [10]"},
	}

	for _, tt := range tests {
		got := strip(PageNumbers(tt.current, tt.total))
		if got != tt.want {
			t.Errorf("PageNumbers(%d, %d) = %q, ожидалось %q", tt.current, tt.total, got, tt.want)
		}
	}
}
