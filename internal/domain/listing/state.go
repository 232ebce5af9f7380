// Пакет listing — состояние списка документов одного поискового сеанса
// и чистые функции переходов между состояниями.
//
// Все функции принимают состояние по значению и возвращают новое.
// Сетевых вызовов здесь нет: смена страницы только пересчитывает срез.
package listing

import (
	"sort"

	"github.com/bigkaa/goartstore/dms-admin/internal/domain/model"
)

// PageSize — число записей на странице.
const PageSize = 10

// State — состояние списка документов.
type State struct {
	// Filter — фильтр последнего запущенного поиска
	Filter model.SearchFilter
	// Rows — полный ResultSet, отсортированный по убыванию даты
	Rows []model.DocumentRecord
	// Page — текущая страница (с 1)
	Page int
	// Loading — поиск отправлен, ответ ещё не получен
	Loading bool
	// Message — сообщение для пользователя (ошибка последнего поиска)
	Message string
	// ScrollToTop — после перехода представление прокручивается наверх
	ScrollToTop bool
}

// Initial — состояние до первого поиска.
func Initial() State {
	return State{Page: 1}
}

// Begin — поиск с фильтром f отправлен.
// Прежний ResultSet остаётся видимым до прихода ответа.
func Begin(s State, f model.SearchFilter) State {
	s.Filter = f
	s.Loading = true
	s.Message = ""
	s.ScrollToTop = false
	return s
}

// Loaded — ответ поиска получен. ResultSet заменяется целиком,
// сортируется по убыванию даты, текущая страница — первая.
func Loaded(s State, rows []model.DocumentRecord) State {
	s.Rows = SortByDateDesc(rows)
	s.Page = 1
	s.Loading = false
	s.Message = ""
	s.ScrollToTop = true
	return s
}

// Failed — поиск завершился ошибкой. Прежний ResultSet сохраняется.
func Failed(s State, message string) State {
	s.Loading = false
	s.Message = message
	s.ScrollToTop = false
	return s
}

// GotoPage переходит на страницу n, ограничивая её диапазоном [1, TotalPages].
func GotoPage(s State, n int) State {
	s.Page = clampPage(n, TotalPages(len(s.Rows)))
	s.ScrollToTop = true
	return s
}

// Visible — записи текущей страницы: rows[(p-1)*10 : p*10].
func (s State) Visible() []model.DocumentRecord {
	page := clampPage(s.Page, TotalPages(len(s.Rows)))
	start := (page - 1) * PageSize
	if start >= len(s.Rows) {
		return nil
	}
	end := min(start+PageSize, len(s.Rows))
	return s.Rows[start:end]
}

// TotalPages — число страниц для ResultSet из count записей, не меньше 1.
func TotalPages(count int) int {
	if count <= 0 {
		return 1
	}
	return (count + PageSize - 1) / PageSize
}

// RowNumber — абсолютный номер строки (с 1) для i-й записи страницы page.
func RowNumber(page, i int) int {
	return (page-1)*PageSize + i + 1
}

// Row возвращает запись по абсолютному номеру строки n (с 1).
func (s State) Row(n int) (model.DocumentRecord, bool) {
	if n < 1 || n > len(s.Rows) {
		return nil, false
	}
	return s.Rows[n-1], true
}

// SortByDateDesc возвращает копию rows, устойчиво отсортированную
// по убыванию даты документа. Записи без распознанной даты — в конце,
// в том числе после дат до 1970 года с отрицательной меткой.
func SortByDateDesc(rows []model.DocumentRecord) []model.DocumentRecord {
	type keyed struct {
		ts    int64
		known bool
		rec   model.DocumentRecord
	}
	items := make([]keyed, len(rows))
	for i, r := range rows {
		raw, _ := r.Lookup(model.DateKeys)
		t, ok := model.ParseDocumentDate(raw)
		items[i] = keyed{ts: t.UnixMilli(), known: ok, rec: r}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.known != b.known {
			return a.known
		}
		return a.known && a.ts > b.ts
	})

	sorted := make([]model.DocumentRecord, len(items))
	for i, it := range items {
		sorted[i] = it.rec
	}
	return sorted
}

func clampPage(n, total int) int {
	if n < 1 {
		return 1
	}
	if n > total {
		return total
	}
	return n
}
