// upload.go — загрузка документа с метаданными.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bigkaa/goartstore/dms-admin/internal/dmsapi"
	"github.com/bigkaa/goartstore/dms-admin/internal/domain/model"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

// UploadForm — поля формы загрузки.
type UploadForm struct {
	// File — выбранный файл (nil, если файл не передан)
	File *dmsapi.UploadFile
	// DocumentDate — дата документа в формате YYYY-MM-DD (пусто — сегодня)
	DocumentDate string
	MajorHead    string
	MinorHead    string
	Remarks      string
	// Tags — теги через запятую
	Tags string
}

// UploadService — проверка и отправка документов.
type UploadService struct {
	api      DocumentAPI
	maxBytes int64
	now      func() time.Time
	logger   *slog.Logger
}

// NewUploadService создаёт сервис. maxBytes — предельный размер файла.
func NewUploadService(api DocumentAPI, maxBytes int64, logger *slog.Logger) *UploadService {
	return &UploadService{
		api:      api,
		maxBytes: maxBytes,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "upload_service")),
	}
}

// Validate проверяет форму и строит метаданные запроса.
func (s *UploadService) Validate(form UploadForm, token string) (model.UploadMetadata, error) {
	fields := map[string]string{}

	if form.File == nil || len(form.File.Data) == 0 {
		fields["file"] = "Выберите файл"
	} else {
		mediaType := model.DetectContentType(form.File.ContentType, form.File.Name)
		switch {
		case !strings.HasPrefix(mediaType, "image/") && mediaType != "application/pdf":
			fields["file"] = "Допускаются только изображения и PDF"
		case int64(len(form.File.Data)) > s.maxBytes:
			fields["file"] = fmt.Sprintf("Файл слишком большой, максимум %d МБ", s.maxBytes>>20)
		default:
			form.File.ContentType = mediaType
		}
	}

	if form.MajorHead != model.MajorPersonal && form.MajorHead != model.MajorProfessional {
		fields["major_head"] = "Допустимые значения: Personal, Professional"
	}
	if strings.TrimSpace(form.MinorHead) == "" {
		fields["minor_head"] = "Выберите имя или отдел"
	}

	date := form.DocumentDate
	if date == "" {
		date = s.now().Format("2006-01-02")
	}
	docDate, err := model.UploadDate(date)
	if err != nil {
		fields["document_date"] = "Ожидается дата в формате YYYY-MM-DD"
	}

	if err := newValidationError(fields); err != nil {
		return model.UploadMetadata{}, err
	}

	var names []string
	for _, t := range model.ParseTags(form.Tags) {
		names = append(names, t.TagName)
	}

	return model.UploadMetadata{
		MajorHead:       form.MajorHead,
		MinorHead:       strings.TrimSpace(form.MinorHead),
		DocumentDate:    docDate,
		DocumentRemarks: form.Remarks,
		Tags:            model.UniqueTags(names),
		UserID:          session.UserID(token),
	}, nil
}

// Upload проверяет форму и отправляет документ.
// Возвращает сообщение об успехе.
func (s *UploadService) Upload(ctx context.Context, cred session.Credential, form UploadForm) (string, error) {
	meta, err := s.Validate(form, cred.Token)
	if err != nil {
		return "", err
	}

	msg, err := s.api.Upload(ctx, cred.Token, *form.File, meta)
	if err != nil {
		return "", fmt.Errorf("загрузка документа: %w", err)
	}

	s.logger.Info("Документ загружен",
		slog.String("filename", form.File.Name),
		slog.Int("bytes", len(form.File.Data)),
		slog.String("major_head", meta.MajorHead),
	)
	return msg, nil
}
