// Пакет service — бизнес-логика DMS Admin Gateway.
// Сервисы получают credential явно и обращаются к API документов
// через узкие интерфейсы, которые реализует dmsapi.Client.
package service

import (
	"context"
	"errors"

	"github.com/bigkaa/goartstore/dms-admin/internal/dmsapi"
	"github.com/bigkaa/goartstore/dms-admin/internal/domain/model"
)

// Ошибки сервисного слоя.
var (
	// ErrNoFiles — в ResultSet нет записей для архива.
	ErrNoFiles = errors.New("нет файлов для скачивания")
	// ErrNothingArchived — ни один файл не удалось получить.
	ErrNothingArchived = errors.New("не найдено ни одного доступного файла")
	// ErrRowNotFound — нет записи с таким номером строки.
	ErrRowNotFound = errors.New("запись не найдена")
	// ErrRetrievalFailed — файл не получен ни одной стратегией.
	ErrRetrievalFailed = errors.New("не удалось получить файл")
	// ErrPreviewNotFound — preview не существует или уже освобождён.
	ErrPreviewNotFound = errors.New("preview не найден")
)

// DocumentAPI — операции API документов.
type DocumentAPI interface {
	Search(ctx context.Context, token string, req model.SearchRequest) ([]model.DocumentRecord, error)
	Tags(ctx context.Context, token, term string) ([]string, error)
	Upload(ctx context.Context, token string, f dmsapi.UploadFile, meta model.UploadMetadata) (string, error)
	ProxyDownload(ctx context.Context, token, path string) ([]byte, string, error)
}

// AuthAPI — операции входа и управления пользователями.
type AuthAPI interface {
	GenerateOTP(ctx context.Context, mobile string) (string, error)
	ValidateOTP(ctx context.Context, mobile, otp string) (string, error)
	CreateUser(ctx context.Context, token string, u dmsapi.NewUser) (string, error)
}

// DirectFetcher — скачивание по абсолютному URL без credential.
type DirectFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, string, error)
}

// ValidationError — ошибки полей, найденные до сетевого запроса.
type ValidationError = model.ValidationError

// newValidationError возвращает nil, если fields пуст.
func newValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
