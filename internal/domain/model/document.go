// Пакет model — доменные модели DMS Admin Gateway.
// DocumentRecord — строка результата поиска в форме, определяемой сервером.
package model

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Порядок проб ключей для полей DocumentRecord.
// Сервер отдаёт одни и те же данные под разными именами, поэтому каждое
// поле читается первым непустым значением из списка.
var (
	// LocatorKeys — где лежит файл документа (абсолютный URL или путь на сервере).
	LocatorKeys = []string{"document_url", "file_url", "file_path", "document_path", "fileUrl"}
	// DateKeys — дата документа.
	DateKeys = []string{"document_date", "documentDate", "created_at"}
	// MajorHeadKeys — категория верхнего уровня.
	MajorHeadKeys = []string{"major_head", "major"}
	// MinorHeadKeys — подкатегория (имя или отдел).
	MinorHeadKeys = []string{"minor_head", "minor", "department"}
	// RemarksKeys — комментарий к документу.
	RemarksKeys = []string{"document_remarks", "remarks"}
	// TagsKeys — набор тегов.
	TagsKeys = []string{"tags", "tag"}
	// UploaderKeys — кто загрузил документ.
	UploaderKeys = []string{"user_id", "uploaded_by"}
	// FileNameKeys — имя файла, если сервер его прислал явно.
	FileNameKeys = []string{"file_name", "document_name"}
)

// DocumentRecord — запись документа из ответа /searchDocumentEntry.
// Схема не фиксирована сервером, поэтому хранится как есть.
type DocumentRecord map[string]any

// Lookup возвращает первое значение из keys, которое присутствует
// и не является null или пустой строкой.
func (d DocumentRecord) Lookup(keys []string) (any, bool) {
	for _, k := range keys {
		v, ok := d[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// LookupString — Lookup с приведением значения к строке.
func (d DocumentRecord) LookupString(keys []string) string {
	v, ok := d.Lookup(keys)
	if !ok {
		return ""
	}
	return stringify(v)
}

// Locator возвращает локатор файла и признак его наличия.
func (d DocumentRecord) Locator() (string, bool) {
	loc := strings.TrimSpace(d.LookupString(LocatorKeys))
	return loc, loc != ""
}

// MajorHead — категория документа.
func (d DocumentRecord) MajorHead() string { return d.LookupString(MajorHeadKeys) }

// MinorHead — подкатегория документа.
func (d DocumentRecord) MinorHead() string { return d.LookupString(MinorHeadKeys) }

// Remarks — комментарий.
func (d DocumentRecord) Remarks() string { return d.LookupString(RemarksKeys) }

// UploadedBy — идентификатор загрузившего.
func (d DocumentRecord) UploadedBy() string { return d.LookupString(UploaderKeys) }

// RawDate — дата документа в исходной строковой форме (для отображения).
func (d DocumentRecord) RawDate() string { return d.LookupString(DateKeys) }

// Timestamp — производная метка времени (Unix ms) для сортировки.
// 0 — дата отсутствует или не распознана.
func (d DocumentRecord) Timestamp() int64 {
	v, _ := d.Lookup(DateKeys)
	return DocumentTimestamp(v)
}

// Tags возвращает отображаемые имена тегов.
// Элемент может быть объектом {tag_name} или строкой.
func (d DocumentRecord) Tags() []string {
	v, ok := d.Lookup(TagsKeys)
	if !ok {
		return nil
	}

	switch tags := v.(type) {
	case []any:
		names := make([]string, 0, len(tags))
		for _, t := range tags {
			if name := tagDisplayName(t); name != "" {
				names = append(names, name)
			}
		}
		return names
	case []string:
		return tags
	default:
		return []string{stringify(tags)}
	}
}

// TagText — теги через запятую, как в таблице результатов.
func (d DocumentRecord) TagText() string {
	return strings.Join(d.Tags(), ", ")
}

// DisplayFilename — имя файла для отображения и скачивания.
// fallback используется, когда ни один источник не дал имени.
func (d DocumentRecord) DisplayFilename(fallback string) string {
	if name := d.LookupString(FileNameKeys); name != "" {
		return name
	}
	if loc, ok := d.Locator(); ok {
		if name := FilenameFromLocator(loc); name != "" {
			return name
		}
	}
	return fallback
}

// RetrievalFilename — имя полученного файла: последний сегмент локатора,
// затем явное имя из записи, затем fallback.
func (d DocumentRecord) RetrievalFilename(fallback string) string {
	if loc, ok := d.Locator(); ok {
		if name := FilenameFromLocator(loc); name != "" {
			return name
		}
	}
	if name := d.LookupString(FileNameKeys); name != "" {
		return name
	}
	return fallback
}

// IsAbsoluteURL — локатор является абсолютным http(s) URL.
func IsAbsoluteURL(locator string) bool {
	u, err := url.Parse(locator)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FilenameFromLocator — последний сегмент пути без query-строки и фрагмента.
func FilenameFromLocator(locator string) string {
	segment := locator
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	if i := strings.IndexAny(segment, "?#"); i >= 0 {
		segment = segment[:i]
	}
	return segment
}

// tagDisplayName извлекает имя тега из элемента массива tags.
func tagDisplayName(t any) string {
	switch v := t.(type) {
	case map[string]any:
		if name, ok := v["tag_name"]; ok && name != nil {
			return stringify(name)
		}
		return ""
	case nil:
		return ""
	default:
		return stringify(v)
	}
}

// stringify приводит значение JSON к строке.
// Числа форматируются без экспоненты (идентификаторы пользователей).
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
