// handler.go — основной обработчик HTTP API gateway.
// Объединяет health и бизнес-обработчики, ошибки сервисного слоя
// переводятся в HTTP-ответы централизованно (fail).
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/goartstore/dms-admin/internal/api/errors"
	"github.com/bigkaa/goartstore/dms-admin/internal/dmsapi"
	"github.com/bigkaa/goartstore/dms-admin/internal/export"
	"github.com/bigkaa/goartstore/dms-admin/internal/service"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

// SessionManager — сохранение и удаление credential (session.Manager).
type SessionManager interface {
	Save(ctx context.Context, w http.ResponseWriter, token string) (session.Credential, error)
	Clear(ctx context.Context, w http.ResponseWriter, cred session.Credential)
}

// ArchiveExporter — выгрузка архива во внешнее хранилище (export.S3Exporter).
type ArchiveExporter interface {
	Export(ctx context.Context, filename string, data []byte) (export.Result, error)
}

// Services — сервисный слой, используемый обработчиками.
type Services struct {
	Auth      *service.AuthService
	Users     *service.UserService
	Search    *service.SearchService
	Downloads *service.DownloadService
	Archives  *service.ArchiveService
	Tags      *service.TagService
	Uploads   *service.UploadService
}

// APIHandler — основной обработчик API gateway.
type APIHandler struct {
	svc      Services
	sessions SessionManager
	// exporter — nil, если экспорт архивов не настроен
	exporter       ArchiveExporter
	uploadMaxBytes int64
	health         *HealthHandler
	logger         *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	svc Services,
	sessions SessionManager,
	exporter ArchiveExporter,
	uploadMaxBytes int64,
	health *HealthHandler,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		svc:            svc,
		sessions:       sessions,
		exporter:       exporter,
		uploadMaxBytes: uploadMaxBytes,
		health:         health,
		logger:         logger.With(slog.String("component", "api_handler")),
	}
}

// messageResponse — ответ с сообщением для пользователя.
type messageResponse struct {
	Message string `json:"message"`
}

// fail переводит ошибку сервиса в HTTP-ответ.
// ErrUnauthorized очищает credential и состояние сессии: пользователь
// должен войти заново.
func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		apierrors.FieldErrors(w, "Проверьте поля формы", verr.Fields)
		return
	}

	if errors.Is(err, dmsapi.ErrUnauthorized) {
		cred := session.FromContext(r.Context())
		h.forget(cred.SessionID)
		h.sessions.Clear(r.Context(), w, cred)
		h.logger.Info("API отклонил credential, сессия очищена", slog.String("op", op))
		apierrors.Unauthorized(w, dmsapi.ErrUnauthorized.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrRowNotFound):
		apierrors.NotFound(w, "Документ не найден в текущем списке")
		return
	case errors.Is(err, service.ErrPreviewNotFound):
		apierrors.NotFound(w, "Просмотр недоступен или уже открыт")
		return
	case errors.Is(err, service.ErrNoFiles):
		apierrors.NotFound(w, "Нет файлов для скачивания")
		return
	case errors.Is(err, service.ErrNothingArchived):
		apierrors.APIError(w, "Не удалось получить ни одного файла")
		return
	case errors.Is(err, export.ErrNotConfigured):
		apierrors.NotImplemented(w, err.Error())
		return
	case errors.Is(err, context.Canceled):
		// клиент ушёл, отвечать некому
		return
	}

	var trErr *dmsapi.TransportError
	if errors.As(err, &trErr) {
		h.logger.Warn("API документов недоступен",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		apierrors.APIUnavailable(w, dmsapi.TransportMessage)
		return
	}

	var apiErr *dmsapi.APIError
	if errors.As(err, &apiErr) || errors.Is(err, dmsapi.ErrTokenMissing) || errors.Is(err, service.ErrRetrievalFailed) {
		h.logger.Warn("Запрос к API документов отклонён",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		apierrors.APIError(w, userMessage(err))
		return
	}

	h.logger.Error("Внутренняя ошибка",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	apierrors.InternalError(w, "Внутренняя ошибка gateway")
}

// userMessage — текст ошибки API для пользователя.
func userMessage(err error) string {
	switch {
	case errors.Is(err, dmsapi.ErrTokenMissing):
		return dmsapi.ErrTokenMissing.Error()
	case errors.Is(err, service.ErrRetrievalFailed):
		var apiErr *dmsapi.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return apiErr.Message
		}
		return "Не удалось получить файл документа"
	}
	return dmsapi.UserMessage(err)
}

// forget удаляет состояние списка и preview сессии.
func (h *APIHandler) forget(sessionID string) {
	if sessionID == "" {
		return
	}
	h.svc.Search.Forget(sessionID)
	h.svc.Downloads.Forget(sessionID)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса в dst. Пустое тело оставляет dst без изменений.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
