// search.go — сервис поиска документов и постраничного просмотра ResultSet.
// Полный ResultSet хранится в StateStore; смена страницы не обращается к API.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/dms-admin/internal/dmsapi"
	"github.com/bigkaa/goartstore/dms-admin/internal/domain/listing"
	"github.com/bigkaa/goartstore/dms-admin/internal/domain/model"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

// Prometheus-метрики поиска.
var (
	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dms_search_total",
		Help: "Общее количество поисковых запросов (по результату).",
	}, []string{"status"})
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dms_search_duration_seconds",
		Help:    "Длительность поисковых запросов к API документов.",
		Buckets: prometheus.DefBuckets,
	})
)

// SearchService — поиск документов и пагинация.
type SearchService struct {
	api    DocumentAPI
	states *StateStore
	logger *slog.Logger
}

// NewSearchService создаёт сервис поиска.
func NewSearchService(api DocumentAPI, states *StateStore, logger *slog.Logger) *SearchService {
	return &SearchService{
		api:    api,
		states: states,
		logger: logger.With(slog.String("component", "search_service")),
	}
}

// Search запускает новый поиск. ResultSet сессии заменяется целиком,
// текущая страница — первая.
//
// Ошибка валидации возвращается до сетевого запроса, состояние не меняется.
// При ошибке API возвращается состояние с сообщением и сама ошибка.
func (s *SearchService) Search(ctx context.Context, cred session.Credential, f model.SearchFilter) (listing.State, error) {
	if err := f.Validate(); err != nil {
		state, _ := s.State(cred)
		return state, err
	}

	state, _ := s.State(cred)
	state = listing.Begin(state, f)
	s.states.Put(cred.SessionID, state)

	start := time.Now()
	rows, err := s.api.Search(ctx, cred.Token, f.Request(0, listing.PageSize))
	searchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		searchTotal.WithLabelValues("error").Inc()
		state = listing.Failed(state, dmsapi.UserMessage(err))
		s.states.Put(cred.SessionID, state)
		s.logger.Warn("Поиск документов не выполнен",
			slog.String("session_id", cred.SessionID),
			slog.String("error", err.Error()),
		)
		return state, fmt.Errorf("поиск документов: %w", err)
	}

	searchTotal.WithLabelValues("ok").Inc()
	state = listing.Loaded(state, rows)
	s.states.Put(cred.SessionID, state)

	s.logger.Debug("Поиск выполнен",
		slog.String("session_id", cred.SessionID),
		slog.Int("rows", len(rows)),
		slog.Duration("duration", time.Since(start)),
	)
	return state, nil
}

// Refresh повторяет последний поиск сессии с начала.
func (s *SearchService) Refresh(ctx context.Context, cred session.Credential) (listing.State, error) {
	state, _ := s.State(cred)
	return s.Search(ctx, cred, state.Filter)
}

// Page возвращает страницу n ResultSet. Если у сессии ещё нет состояния,
// выполняется начальная загрузка с пустым фильтром.
func (s *SearchService) Page(ctx context.Context, cred session.Credential, n int) (listing.State, error) {
	state, ok := s.State(cred)
	if !ok {
		var err error
		if state, err = s.Search(ctx, cred, model.SearchFilter{}); err != nil {
			return state, err
		}
	}

	state = listing.GotoPage(state, n)
	s.states.Put(cred.SessionID, state)
	return state, nil
}

// State возвращает состояние сессии без сетевых вызовов.
func (s *SearchService) State(cred session.Credential) (listing.State, bool) {
	if state, ok := s.states.Get(cred.SessionID); ok {
		return state, true
	}
	return listing.Initial(), false
}

// Record возвращает запись по абсолютному номеру строки n (с 1).
func (s *SearchService) Record(cred session.Credential, n int) (model.DocumentRecord, error) {
	state, _ := s.State(cred)
	rec, ok := state.Row(n)
	if !ok {
		return nil, ErrRowNotFound
	}
	return rec, nil
}

// Forget удаляет состояние сессии.
func (s *SearchService) Forget(sessionID string) {
	s.states.Delete(sessionID)
}

// Row — строка таблицы результатов.
type Row struct {
	Number     int    `json:"number"`
	Date       string `json:"date"`
	MajorHead  string `json:"major_head"`
	MinorHead  string `json:"minor_head"`
	Remarks    string `json:"remarks"`
	Tags       string `json:"tags"`
	UploadedBy string `json:"uploaded_by"`
	Filename   string `json:"filename"`
	HasFile    bool   `json:"has_file"`
}

// PageView — видимая страница ResultSet.
type PageView struct {
	Filter      model.SearchFilter `json:"filter"`
	Rows        []Row              `json:"rows"`
	Page        int                `json:"page"`
	TotalPages  int                `json:"total_pages"`
	Total       int                `json:"total"`
	Pages       []listing.PageItem `json:"pages"`
	Loading     bool               `json:"loading"`
	Message     string             `json:"message,omitempty"`
	ScrollToTop bool               `json:"scroll_to_top"`
}

// View строит отображение текущей страницы состояния.
func View(state listing.State) PageView {
	total := listing.TotalPages(len(state.Rows))
	page := min(max(state.Page, 1), total)

	visible := state.Visible()
	rows := make([]Row, 0, len(visible))
	for i, rec := range visible {
		_, hasFile := rec.Locator()
		rows = append(rows, Row{
			Number:     listing.RowNumber(page, i),
			Date:       rec.RawDate(),
			MajorHead:  rec.MajorHead(),
			MinorHead:  rec.MinorHead(),
			Remarks:    rec.Remarks(),
			Tags:       rec.TagText(),
			UploadedBy: rec.UploadedBy(),
			Filename:   rec.DisplayFilename("file"),
			HasFile:    hasFile,
		})
	}

	return PageView{
		Filter:      state.Filter,
		Rows:        rows,
		Page:        page,
		TotalPages:  total,
		Total:       len(state.Rows),
		Pages:       listing.PageNumbers(page, total),
		Loading:     state.Loading,
		Message:     state.Message,
		ScrollToTop: state.ScrollToTop,
	}
}
