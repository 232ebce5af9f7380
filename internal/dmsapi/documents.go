package dmsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/bigkaa/goartstore/dms-admin/internal/domain/model"
)

// rowPaths — где в ответе поиска искать массив записей, по порядку.
var rowPaths = [][]string{
	{"data", "data"},
	{"data"},
	{"rows"},
	{"documents"},
}

// Search выполняет поиск документов.
// POST /searchDocumentEntry, credential в заголовке token.
// Возвращает записи в порядке сервера; пустой срез, если массив не найден.
func (c *Client) Search(ctx context.Context, token string, req model.SearchRequest) ([]model.DocumentRecord, error) {
	const op = "searchDocumentEntry"
	resp, err := c.postJSON(ctx, op, "/searchDocumentEntry", token, true, req)
	if err != nil {
		return nil, err
	}
	if _, err := decodeEnvelope(op, resp); err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return []model.DocumentRecord{}, nil //nolint:nilerr // тело без объекта: записей нет
	}
	return ExtractRows(payload), nil
}

// ExtractRows достаёт массив записей из первого подходящего поля ответа.
func ExtractRows(payload map[string]any) []model.DocumentRecord {
	for _, p := range rowPaths {
		items, ok := lookupPath(payload, p).([]any)
		if !ok {
			continue
		}
		rows := make([]model.DocumentRecord, 0, len(items))
		for _, it := range items {
			if m, isObj := it.(map[string]any); isObj {
				rows = append(rows, model.DocumentRecord(m))
			}
		}
		return rows
	}
	return []model.DocumentRecord{}
}

func lookupPath(v any, path []string) any {
	for _, k := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}

// Tags запрашивает подсказки тегов по префиксу term.
// POST /documentTags {term}. Массив берётся из data или из корня ответа.
func (c *Client) Tags(ctx context.Context, token, term string) ([]string, error) {
	const op = "documentTags"
	resp, err := c.postJSON(ctx, op, "/documentTags", token, true, map[string]string{"term": term})
	if err != nil {
		return nil, err
	}

	var root any
	if err := json.Unmarshal(resp.body, &root); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("декодирование ответа: %w", err)}
	}

	items, ok := root.([]any)
	if !ok {
		obj, isObj := root.(map[string]any)
		if isObj && isFalse(obj["status"]) {
			return nil, &APIError{Op: op, Status: resp.status, Message: extractMessage(resp.body)}
		}
		items, _ = lookupPath(root, []string{"data"}).([]any)
	}

	names := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			if v != "" {
				names = append(names, v)
			}
		case map[string]any:
			if name, isStr := v["tag_name"].(string); isStr && name != "" {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

// UploadFile — файл для загрузки.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// DefaultUploadMessage — сообщение об успехе, если сервер не прислал своего.
const DefaultUploadMessage = "Документ загружен"

// Upload загружает документ.
// POST /saveDocumentEntry, multipart: file + data (JSON-строка метаданных).
func (c *Client) Upload(ctx context.Context, token string, f UploadFile, meta model.UploadMetadata) (string, error) {
	const op = "saveDocumentEntry"

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("кодирование метаданных: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": f.Name,
	}))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("multipart file: %w", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return "", fmt.Errorf("multipart file: %w", err)
	}
	if err := mw.WriteField("data", string(metaJSON)); err != nil {
		return "", fmt.Errorf("multipart data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("multipart: %w", err)
	}

	resp, err := c.do(ctx, call{
		op:          op,
		path:        "/saveDocumentEntry",
		token:       token,
		tokenHeader: true,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return "", err
	}
	env, err := decodeEnvelope(op, resp)
	if err != nil {
		return "", err
	}
	if msg := env.dataText(); msg != "" {
		return msg, nil
	}
	return DefaultUploadMessage, nil
}

// ProxyDownload получает содержимое файла через сервер.
// POST /downloadDocument {path}, ответ — бинарные данные.
// Возвращает данные и объявленный Content-Type.
func (c *Client) ProxyDownload(ctx context.Context, token, path string) ([]byte, string, error) {
	const op = "downloadDocument"
	resp, err := c.postJSON(ctx, op, "/downloadDocument", token, true, map[string]string{"path": path})
	if err != nil {
		return nil, "", err
	}

	// JSON со status:false вместо файла — ошибка приложения
	if mediaType, _, _ := mime.ParseMediaType(resp.contentType); strings.HasSuffix(mediaType, "json") {
		if _, err := decodeEnvelope(op, resp); err != nil {
			return nil, "", err
		}
	}

	return resp.body, resp.contentType, nil
}
