// archive.go — архив всех документов ResultSet одним zip-файлом.
//
// Обходит весь ResultSet (не только видимую страницу) последовательно.
// Запись, не полученная ни одной стратегией, пропускается.
package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/dms-admin/internal/dmsapi"
	"github.com/bigkaa/goartstore/dms-admin/internal/domain/model"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

// Prometheus-метрики архивов.
var (
	archiveEntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dms_archive_entries_total",
		Help: "Общее количество файлов, добавленных в архивы.",
	})
	archiveSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dms_archive_skipped_total",
		Help: "Общее количество записей, пропущенных при сборке архивов.",
	})
)

// Archive — собранный zip-архив.
type Archive struct {
	// Filename — documents-<unix ms>.zip
	Filename string
	// Data — содержимое архива
	Data []byte
	// Entries — число файлов в архиве
	Entries int
	// Total — число записей ResultSet
	Total int
}

// Skipped — число пропущенных записей.
func (a *Archive) Skipped() int { return a.Total - a.Entries }

// ArchiveService — сборка архива ResultSet.
type ArchiveService struct {
	search *SearchService
	chain  *Chain
	now    func() time.Time
	logger *slog.Logger
}

// NewArchiveService создаёт сервис. chain — стратегии bulk-режима (direct, proxy).
func NewArchiveService(search *SearchService, chain *Chain, logger *slog.Logger) *ArchiveService {
	return &ArchiveService{
		search: search,
		chain:  chain,
		now:    time.Now,
		logger: logger.With(slog.String("component", "archive_service")),
	}
}

// Build собирает архив всех записей ResultSet сессии.
//
// Без состояния сессии сначала выполняется начальная загрузка с пустым
// фильтром. Пустой ResultSet — ErrNoFiles без запросов файлов.
// Ни одного полученного файла — ErrNothingArchived (с ErrUnauthorized,
// если API отверг credential).
func (s *ArchiveService) Build(ctx context.Context, cred session.Credential) (*Archive, error) {
	state, ok := s.search.State(cred)
	if !ok {
		var err error
		if state, err = s.search.Search(ctx, cred, model.SearchFilter{}); err != nil {
			return nil, fmt.Errorf("начальная загрузка: %w", err)
		}
	}
	if len(state.Rows) == 0 {
		return nil, ErrNoFiles
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	names := newEntryNames()
	added := 0
	unauthorized := false
	start := s.now()

	for i, rec := range state.Rows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("сборка архива прервана: %w", err)
		}

		fallback := rec.LookupString(model.FileNameKeys)
		if fallback == "" {
			fallback = fmt.Sprintf("file_%d", added+1)
		}

		out := s.chain.Retrieve(ctx, cred, rec, rec.RetrievalFilename(fallback))
		if !out.OK() {
			if errors.Is(out.Err, dmsapi.ErrUnauthorized) {
				unauthorized = true
			}
			archiveSkippedTotal.Inc()
			s.logger.Debug("Запись пропущена", slog.Int("row", i+1))
			continue
		}

		name := names.unique(out.File.Filename)
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: start,
		})
		if err != nil {
			return nil, fmt.Errorf("запись %s в архив: %w", name, err)
		}
		if _, err := w.Write(out.File.Data); err != nil {
			return nil, fmt.Errorf("запись %s в архив: %w", name, err)
		}
		added++
		archiveEntriesTotal.Inc()
	}

	if added == 0 {
		if unauthorized {
			return nil, fmt.Errorf("%w: %w", ErrNothingArchived, dmsapi.ErrUnauthorized)
		}
		return nil, ErrNothingArchived
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("завершение архива: %w", err)
	}

	archive := &Archive{
		Filename: fmt.Sprintf("documents-%d.zip", s.now().UnixMilli()),
		Data:     buf.Bytes(),
		Entries:  added,
		Total:    len(state.Rows),
	}
	s.logger.Info("Архив собран",
		slog.Int("entries", archive.Entries),
		slog.Int("skipped", archive.Skipped()),
		slog.Int("bytes", len(archive.Data)),
		slog.Duration("duration", time.Since(start)),
	)
	return archive, nil
}

// entryNames выдаёт уникальные имена записей архива.
// Повтор имени получает суффикс: "name (1).ext".
type entryNames map[string]int

func newEntryNames() entryNames { return entryNames{} }

func (n entryNames) unique(name string) string {
	name = sanitizeEntryName(name)
	if _, taken := n[name]; !taken {
		n[name] = 0
		return name
	}

	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for {
		n[name]++
		candidate := fmt.Sprintf("%s (%d)%s", base, n[name], ext)
		if _, taken := n[candidate]; !taken {
			n[candidate] = 0
			return candidate
		}
	}
}

// sanitizeEntryName убирает из имени разделители каталогов.
func sanitizeEntryName(name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
