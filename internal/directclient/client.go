// Пакет directclient — HTTP-клиент прямого скачивания файлов по абсолютным
// URL (обычно pre-signed ссылкам). Credential не передаётся.
package directclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bigkaa/goartstore/dms-admin/internal/dmsapi"
)

// maxFileBytes — ограничение на размер скачиваемого файла.
const maxFileBytes = 256 << 20

// Client — HTTP-клиент прямого скачивания.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиент.
// caCertPath — путь к CA-сертификату для TLS (пустая строка — стандартный пул).
// timeout — таймаут скачивания (DMS_DIRECT_TIMEOUT).
func New(caCertPath string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	transport := &http.Transport{
		// Настройка пула idle-соединений для эффективного переиспользования
		MaxIdleConnsPerHost: 10,
	}

	if caCertPath != "" {
		tlsConfig, err := dmsapi.BuildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата: %w", err)
		}
		transport.TLSClientConfig = tlsConfig
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger.With(slog.String("component", "direct_client")),
	}, nil
}

// StatusError — источник ответил не-2xx.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("источник вернул статус %d", e.Status)
}

// Fetch скачивает файл по абсолютному URL целиком.
// Возвращает содержимое и объявленный Content-Type.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("создание запроса: %w", err)
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL из записи документа
	if err != nil {
		return nil, "", fmt.Errorf("запрос %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &StatusError{Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("чтение ответа: %w", err)
	}
	if len(data) > maxFileBytes {
		return nil, "", fmt.Errorf("файл больше %d байт", maxFileBytes)
	}

	c.logger.Debug("Файл получен напрямую",
		slog.String("host", req.URL.Host),
		slog.Int("bytes", len(data)),
	)
	return data, resp.Header.Get("Content-Type"), nil
}
