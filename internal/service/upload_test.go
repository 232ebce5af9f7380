package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/dms-admin/internal/dmsapi"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

func newUploadService(api *fakeAPI) *UploadService {
	svc := NewUploadService(api, 1<<20, testLogger())
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC) }
	return svc
}

func validForm() UploadForm {
	return UploadForm{
		File:      &dmsapi.UploadFile{Name: "scan.pdf", Data: []byte("%PDF-1.4")},
		MajorHead: "Professional",
		MinorHead: " HR ",
		Remarks:   "квартальный отчёт",
		Tags:      "report, q1, report,  ",
	}
}

// TestUploadService_Validate проверяет ошибки полей формы.
func TestUploadService_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(f *UploadForm)
		wantField string
	}{
		{name: "нет файла", modify: func(f *UploadForm) { f.File = nil }, wantField: "file"},
		{name: "пустой файл", modify: func(f *UploadForm) { f.File.Data = nil }, wantField: "file"},
		{
			name:      "текстовый файл",
			modify:    func(f *UploadForm) { f.File = &dmsapi.UploadFile{Name: "a.txt", ContentType: "text/plain", Data: []byte("x")} },
			wantField: "file",
		},
		{
			name:      "слишком большой",
			modify:    func(f *UploadForm) { f.File.Data = bytes.Repeat([]byte("x"), 1<<20+1) },
			wantField: "file",
		},
		{name: "неизвестная категория", modify: func(f *UploadForm) { f.MajorHead = "Other" }, wantField: "major_head"},
		{name: "пустой minor_head", modify: func(f *UploadForm) { f.MinorHead = "  " }, wantField: "minor_head"},
		{name: "некорректная дата", modify: func(f *UploadForm) { f.DocumentDate = "05.03.2024" }, wantField: "document_date"},
	}

	svc := newUploadService(&fakeAPI{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.modify(&form)

			_, err := svc.Validate(form, "")
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ожидалась ValidationError, получено %v", err)
			}
			if _, ok := verr.Fields[tt.wantField]; !ok {
				t.Errorf("нет ошибки поля %q: %v", tt.wantField, verr.Fields)
			}
		})
	}
}

// TestUploadService_Metadata проверяет построение метаданных.
func TestUploadService_Metadata(t *testing.T) {
	svc := newUploadService(&fakeAPI{})

	meta, err := svc.Validate(validForm(), "not-a-jwt")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if meta.DocumentDate != "05-03-2024" {
		t.Errorf("пустая дата должна стать сегодняшней: %q", meta.DocumentDate)
	}
	if meta.MinorHead != "HR" || meta.MajorHead != "Professional" {
		t.Errorf("heads = %q/%q", meta.MajorHead, meta.MinorHead)
	}
	if len(meta.Tags) != 2 || meta.Tags[0].TagName != "report" || meta.Tags[1].TagName != "q1" {
		t.Errorf("Tags = %+v", meta.Tags)
	}
	if meta.UserID != session.UnknownUser {
		t.Errorf("UserID = %q", meta.UserID)
	}

	form := validForm()
	form.DocumentDate = "2023-12-31"
	if meta, _ = svc.Validate(form, ""); meta.DocumentDate != "31-12-2023" {
		t.Errorf("DocumentDate = %q", meta.DocumentDate)
	}
}

// TestUploadService_Upload проверяет отправку и отказ без сетевого запроса.
func TestUploadService_Upload(t *testing.T) {
	api := &fakeAPI{uploadMsg: "Документ сохранён"}
	svc := newUploadService(api)

	msg, err := svc.Upload(context.Background(), testCred, validForm())
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if msg != "Документ сохранён" || len(api.uploads) != 1 {
		t.Errorf("msg=%q uploads=%d", msg, len(api.uploads))
	}

	form := validForm()
	form.MajorHead = ""
	if _, err := svc.Upload(context.Background(), testCred, form); err == nil {
		t.Error("ожидалась ошибка валидации")
	}
	if len(api.uploads) != 1 {
		t.Error("неверная форма не должна отправляться")
	}
}
