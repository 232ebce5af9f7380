// download.go — просмотр и скачивание одного документа.
//
// Абсолютный локатор не материализуется: клиент получает ссылку для
// перехода (просмотр) или скачивания. Иначе файл получается через proxy.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bigkaa/goartstore/dms-admin/internal/domain/model"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

// defaultDocumentName — имя файла, если запись не даёт своего.
const defaultDocumentName = "document"

// Resolution — результат действия над документом: ссылка или файл.
type Resolution struct {
	// RedirectURL — абсолютный URL, открываемый клиентом напрямую
	RedirectURL string
	// File — полученное содержимое (если RedirectURL пуст)
	File *model.RetrievedFile
}

// DownloadService — просмотр и скачивание документов ResultSet.
type DownloadService struct {
	search   *SearchService
	proxy    Strategy
	previews *PreviewRegistry
	logger   *slog.Logger
}

// NewDownloadService создаёт сервис.
func NewDownloadService(search *SearchService, proxy Strategy, previews *PreviewRegistry, logger *slog.Logger) *DownloadService {
	return &DownloadService{
		search:   search,
		proxy:    proxy,
		previews: previews,
		logger:   logger.With(slog.String("component", "download_service")),
	}
}

// Resolve определяет, как получить документ строки n.
func (s *DownloadService) Resolve(ctx context.Context, cred session.Credential, n int) (Resolution, error) {
	rec, err := s.search.Record(cred, n)
	if err != nil {
		return Resolution{}, err
	}

	if loc, ok := rec.Locator(); ok && model.IsAbsoluteURL(loc) {
		return Resolution{RedirectURL: loc}, nil
	}

	out := s.proxy.Retrieve(ctx, cred, rec, rec.RetrievalFilename(s.fallbackName(rec)))
	if !out.OK() {
		s.logger.Warn("Документ не получен",
			slog.Int("row", n),
			slog.String("error", out.Err.Error()),
		)
		return Resolution{}, fmt.Errorf("%w: %w", ErrRetrievalFailed, out.Err)
	}
	return Resolution{File: out.File}, nil
}

// View открывает документ строки n для просмотра.
// Для абсолютного локатора Preview пуст, а Resolution.RedirectURL задан.
func (s *DownloadService) View(ctx context.Context, cred session.Credential, n int) (Resolution, Preview, error) {
	res, err := s.Resolve(ctx, cred, n)
	if err != nil || res.File == nil {
		return res, Preview{}, err
	}
	return res, s.previews.Open(cred.SessionID, res.File), nil
}

// TakePreview выдаёт содержимое preview и освобождает его.
func (s *DownloadService) TakePreview(cred session.Credential, id string) (*model.RetrievedFile, error) {
	return s.previews.Take(cred.SessionID, id)
}

// ReleasePreview освобождает preview без показа.
func (s *DownloadService) ReleasePreview(cred session.Credential, id string) error {
	return s.previews.Release(cred.SessionID, id)
}

// Forget освобождает preview сессии (logout).
func (s *DownloadService) Forget(sessionID string) {
	s.previews.ReleaseSession(sessionID)
}

func (s *DownloadService) fallbackName(rec model.DocumentRecord) string {
	if name := rec.LookupString(model.FileNameKeys); name != "" {
		return name
	}
	return defaultDocumentName
}
