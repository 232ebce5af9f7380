// documents.go — список документов, просмотр, скачивание и архивы.
package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/goartstore/dms-admin/internal/api/errors"
	"github.com/bigkaa/goartstore/dms-admin/internal/domain/model"
	"github.com/bigkaa/goartstore/dms-admin/internal/service"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

// Заголовки ответа архива.
const (
	HeaderArchiveEntries = "X-Archive-Entries"
	HeaderArchiveTotal   = "X-Archive-Total"
)

type exportResponse struct {
	Key     string `json:"key"`
	URL     string `json:"url"`
	Entries int    `json:"entries"`
	Total   int    `json:"total"`
}

// ListDocuments — GET /dashboard/documents?page=n.
// Страница берётся из ResultSet сессии; первый визит выполняет начальную загрузку.
func (h *APIHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			apierrors.ValidationError(w, "page должен быть целым числом")
			return
		}
		page = n
	}

	state, err := h.svc.Search.Page(r.Context(), session.FromContext(r.Context()), page)
	if err != nil {
		h.fail(w, r, "searchDocumentEntry", err)
		return
	}
	writeJSON(w, http.StatusOK, service.View(state))
}

// SearchDocuments — POST /dashboard/documents/search.
func (h *APIHandler) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	var f model.SearchFilter
	if err := decodeJSON(r, &f); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON в теле запроса")
		return
	}

	state, err := h.svc.Search.Search(r.Context(), session.FromContext(r.Context()), f)
	if err != nil {
		h.fail(w, r, "searchDocumentEntry", err)
		return
	}
	writeJSON(w, http.StatusOK, service.View(state))
}

// RefreshDocuments — POST /dashboard/documents/refresh.
func (h *APIHandler) RefreshDocuments(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.Search.Refresh(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.fail(w, r, "searchDocumentEntry", err)
		return
	}
	writeJSON(w, http.StatusOK, service.View(state))
}

// ViewDocument — GET /dashboard/documents/{n}/view.
// Абсолютный локатор — 303 на него, иначе описание preview.
func (h *APIHandler) ViewDocument(w http.ResponseWriter, r *http.Request) {
	n, ok := rowNumber(w, r)
	if !ok {
		return
	}

	res, preview, err := h.svc.Downloads.View(r.Context(), session.FromContext(r.Context()), n)
	if err != nil {
		h.fail(w, r, "viewDocument", err)
		return
	}
	if res.RedirectURL != "" {
		http.Redirect(w, r, res.RedirectURL, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// ServePreview — GET /dashboard/previews/{id}: содержимое inline, один раз.
func (h *APIHandler) ServePreview(w http.ResponseWriter, r *http.Request) {
	file, err := h.svc.Downloads.TakePreview(session.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "preview", err)
		return
	}
	writeFile(w, file, "inline")
}

// ReleasePreview — DELETE /dashboard/previews/{id}.
func (h *APIHandler) ReleasePreview(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Downloads.ReleasePreview(session.FromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "preview", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadDocument — GET /dashboard/documents/{n}/download.
// Абсолютный локатор — 302 на него, иначе файл как attachment.
func (h *APIHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	n, ok := rowNumber(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Downloads.Resolve(r.Context(), session.FromContext(r.Context()), n)
	if err != nil {
		h.fail(w, r, "downloadDocument", err)
		return
	}
	if res.RedirectURL != "" {
		http.Redirect(w, r, res.RedirectURL, http.StatusFound)
		return
	}
	writeFile(w, res.File, "attachment")
}

// DownloadArchive — GET /dashboard/documents/archive.
func (h *APIHandler) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	archive, err := h.svc.Archives.Build(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.fail(w, r, "archive", err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": archive.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(archive.Data)))
	w.Header().Set(HeaderArchiveEntries, strconv.Itoa(archive.Entries))
	w.Header().Set(HeaderArchiveTotal, strconv.Itoa(archive.Total))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive.Data)
}

// ExportArchive — POST /dashboard/documents/archive/export.
// Без настроенного S3 — 501 без сборки архива.
func (h *APIHandler) ExportArchive(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		apierrors.NotImplemented(w, "Экспорт архивов в S3 не настроен")
		return
	}

	archive, err := h.svc.Archives.Build(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.fail(w, r, "archive", err)
		return
	}

	res, err := h.exporter.Export(r.Context(), archive.Filename, archive.Data)
	if err != nil {
		h.fail(w, r, "archiveExport", err)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{
		Key:     res.Key,
		URL:     res.URL,
		Entries: archive.Entries,
		Total:   archive.Total,
	})
}

// rowNumber читает номер строки {n}; некорректный номер — 404.
func rowNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 1 {
		apierrors.NotFound(w, "Документ не найден в текущем списке")
		return 0, false
	}
	return n, true
}

// writeFile отдаёт полученный файл с указанным disposition.
func writeFile(w http.ResponseWriter, file *model.RetrievedFile, disposition string) {
	w.Header().Set("Content-Type", file.MediaType())
	w.Header().Set("Content-Disposition", contentDisposition(disposition, file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

// contentDisposition форматирует заголовок; имя, которое mime не может
// закодировать, заменяется на "document".
func contentDisposition(disposition, filename string) string {
	if v := mime.FormatMediaType(disposition, map[string]string{"filename": filename}); v != "" {
		return v
	}
	return fmt.Sprintf("%s; filename=%q", disposition, "document")
}
