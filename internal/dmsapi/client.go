// Пакет dmsapi — HTTP-клиент внешнего API документов.
//
// Особенности протокола:
//   - вызовы с документами передают credential в заголовке "token";
//   - при наличии credential всегда добавляется Authorization: Bearer;
//   - ответ 401 превращается в ErrUnauthorized (через APIError.Unwrap);
//   - успешный HTTP-ответ со status:false — ошибка приложения.
package dmsapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// maxBodyBytes — ограничение на размер читаемого тела ответа.
// Тело больше лимита считается ошибкой транспорта, а не обрезается.
var maxBodyBytes int64 = 64 << 20

// Client — HTTP-клиент API документов.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// New создаёт клиент.
// baseURL — базовый URL API (например, https://apis.allsoft.co/api/documentManagement).
// caCertPath — путь к CA-сертификату для TLS (пустая строка — стандартный пул).
// timeout — таймаут HTTP-запросов (DMS_API_TIMEOUT).
func New(baseURL, caCertPath string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	httpClient := &http.Client{Timeout: timeout}

	if caCertPath != "" {
		tlsConfig, err := BuildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата API: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
		logger.Info("CA-сертификат API добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.With(slog.String("component", "dms_api_client")),
	}, nil
}

// BaseURL — базовый URL API.
func (c *Client) BaseURL() string { return c.baseURL }

// call — параметры одного запроса к API.
type call struct {
	op          string
	path        string
	token       string
	tokenHeader bool
	body        io.Reader
	contentType string
}

// rawResponse — прочитанный ответ API.
type rawResponse struct {
	status      int
	contentType string
	body        []byte
}

// do выполняет запрос и читает тело ответа.
// Не-2xx ответ возвращается как *APIError с сообщением из тела.
func (c *Client) do(ctx context.Context, in call) (*rawResponse, error) {
	body := in.body
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+in.path, body)
	if err != nil {
		return nil, fmt.Errorf("создание запроса %s: %w", in.op, err)
	}
	if in.contentType != "" {
		req.Header.Set("Content-Type", in.contentType)
	}
	if in.token != "" {
		req.Header.Set("Authorization", "Bearer "+in.token)
		if in.tokenHeader {
			req.Header.Set("token", in.token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL из конфигурации
	if err != nil {
		c.logger.Warn("Запрос к API не выполнен",
			slog.String("op", in.op),
			slog.String("error", err.Error()),
		)
		return nil, &TransportError{Op: in.op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &TransportError{Op: in.op, Err: fmt.Errorf("чтение ответа: %w", err)}
	}
	if int64(len(data)) > maxBodyBytes {
		c.logger.Warn("Ответ API превышает лимит",
			slog.String("op", in.op),
			slog.Int64("limit", maxBodyBytes),
		)
		return nil, &TransportError{Op: in.op, Err: fmt.Errorf("ответ больше %d байт", maxBodyBytes)}
	}

	c.logger.Debug("Ответ API",
		slog.String("op", in.op),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(data)),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Op: in.op, Status: resp.StatusCode, Message: extractMessage(data)}
	}

	return &rawResponse{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        data,
	}, nil
}

// postJSON отправляет payload как JSON.
func (c *Client) postJSON(ctx context.Context, op, path, token string, tokenHeader bool, payload any) (*rawResponse, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("кодирование запроса %s: %w", op, err)
	}
	return c.do(ctx, call{
		op:          op,
		path:        path,
		token:       token,
		tokenHeader: tokenHeader,
		body:        bytes.NewReader(buf),
		contentType: "application/json",
	})
}

// envelope — общая форма ответа {status, data}.
type envelope struct {
	Status any             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// decodeEnvelope разбирает {status, data}. status:false (или "false")
// становится *APIError с сообщением из тела.
func decodeEnvelope(op string, resp *rawResponse) (*envelope, error) {
	var env envelope
	// Не объект (пустое тело, массив, строка): статуса нет
	if trimmed := bytes.TrimSpace(resp.body); len(trimmed) == 0 || trimmed[0] != '{' {
		return &env, nil
	}
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("декодирование ответа: %w", err)}
	}
	if isFalse(env.Status) {
		return nil, &APIError{Op: op, Status: resp.status, Message: extractMessage(resp.body)}
	}
	return &env, nil
}

// dataText — поле data как строка (для сообщений об успехе).
func (e *envelope) dataText() string {
	var s string
	if len(e.Data) > 0 && json.Unmarshal(e.Data, &s) == nil {
		return s
	}
	return ""
}

func isFalse(status any) bool {
	switch v := status.(type) {
	case bool:
		return !v
	case string:
		return strings.EqualFold(v, "false")
	default:
		return false
	}
}

// BuildTLSConfig создаёт TLS-конфигурацию с кастомным CA-сертификатом.
func BuildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	caCertPool.AppendCertsFromPEM(caCert)

	return &tls.Config{
		RootCAs:    caCertPool,
		MinVersion: tls.VersionTLS12,
	}, nil
}
