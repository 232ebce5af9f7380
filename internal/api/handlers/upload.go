// upload.go — загрузка документов и справочники формы.
package handlers

import (
	"errors"
	"io"
	"net/http"

	apierrors "github.com/bigkaa/goartstore/dms-admin/internal/api/errors"
	"github.com/bigkaa/goartstore/dms-admin/internal/dmsapi"
	"github.com/bigkaa/goartstore/dms-admin/internal/domain/model"
	"github.com/bigkaa/goartstore/dms-admin/internal/service"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

// multipartOverhead — запас на поля формы сверх размера файла.
const multipartOverhead = 1 << 20

// UploadDocument — POST /dashboard/upload (multipart/form-data).
// Поля: file, document_date, major_head, minor_head, document_remarks, tags.
func (h *APIHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierrors.FieldErrors(w, "Проверьте поля формы", map[string]string{"file": "Файл слишком большой"})
			return
		}
		apierrors.ValidationError(w, "Ожидается multipart/form-data")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	form := service.UploadForm{
		DocumentDate: r.FormValue("document_date"),
		MajorHead:    r.FormValue("major_head"),
		MinorHead:    r.FormValue("minor_head"),
		Remarks:      r.FormValue("document_remarks"),
		Tags:         r.FormValue("tags"),
	}

	if file, header, err := r.FormFile("file"); err == nil {
		data, readErr := io.ReadAll(io.LimitReader(file, h.uploadMaxBytes+1))
		_ = file.Close()
		if readErr != nil {
			apierrors.ValidationError(w, "Не удалось прочитать файл")
			return
		}
		form.File = &dmsapi.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	msg, err := h.svc.Uploads.Upload(r.Context(), session.FromContext(r.Context()), form)
	if err != nil {
		h.fail(w, r, "saveDocumentEntry", err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: msg})
}

// MinorHeads — GET /dashboard/upload/minor-heads?major=.
func (h *APIHandler) MinorHeads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.MinorHeadOptions(r.URL.Query().Get("major")))
}

// SuggestTags — GET /dashboard/tags?term=.
func (h *APIHandler) SuggestTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags.Suggest(r.Context(), session.FromContext(r.Context()), r.URL.Query().Get("term"))
	if err != nil {
		h.fail(w, r, "documentTags", err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, tags)
}
