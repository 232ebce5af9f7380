package model

import (
	"strings"
	"time"
)

// Допустимые значения major_head.
const (
	MajorPersonal     = "Personal"
	MajorProfessional = "Professional"
)

// inputDateLayout — формат дат фильтра и формы загрузки (HTML date input).
const inputDateLayout = "2006-01-02"

// SearchFilter — поля формы поиска документов.
// Пустой фильтр соответствует всем записям.
type SearchFilter struct {
	// MajorHead — категория: "", Personal или Professional
	MajorHead string `json:"major_head"`
	// MinorHead — имя или отдел (свободный текст)
	MinorHead string `json:"minor_head"`
	// TagsText — теги через запятую, как их ввёл пользователь
	TagsText string `json:"tagsText"`
	// FromDate — начало диапазона дат (YYYY-MM-DD)
	FromDate string `json:"from_date"`
	// ToDate — конец диапазона дат (YYYY-MM-DD)
	ToDate string `json:"to_date"`
	// SearchText — свободный поисковый запрос
	SearchText string `json:"searchText"`
}

// TagName — тег в формате API.
type TagName struct {
	TagName string `json:"tag_name"`
}

// SearchValue — вложенный объект search.value.
type SearchValue struct {
	Value string `json:"value"`
}

// SearchRequest — тело POST /searchDocumentEntry. Форма фиксирована API.
type SearchRequest struct {
	MajorHead  string      `json:"major_head"`
	MinorHead  string      `json:"minor_head"`
	FromDate   string      `json:"from_date"`
	ToDate     string      `json:"to_date"`
	Tags       []TagName   `json:"tags"`
	UploadedBy string      `json:"uploaded_by"`
	Start      int         `json:"start"`
	Length     int         `json:"length"`
	FilterID   string      `json:"filterId"`
	Search     SearchValue `json:"search"`
}

// ParseTags разбивает ввод по запятым, обрезает пробелы и отбрасывает
// пустые сегменты. Порядок ввода сохраняется. Результат никогда не nil,
// чтобы в JSON уходил пустой массив.
func ParseTags(text string) []TagName {
	tags := make([]TagName, 0)
	for _, part := range strings.Split(text, ",") {
		if name := strings.TrimSpace(part); name != "" {
			tags = append(tags, TagName{TagName: name})
		}
	}
	return tags
}

// Request строит тело запроса поиска.
// start/length отправляются, но сервер может их игнорировать:
// пагинация выполняется на стороне gateway.
func (f SearchFilter) Request(start, length int) SearchRequest {
	return SearchRequest{
		MajorHead:  f.MajorHead,
		MinorHead:  f.MinorHead,
		FromDate:   f.FromDate,
		ToDate:     f.ToDate,
		Tags:       ParseTags(f.TagsText),
		UploadedBy: "",
		Start:      start,
		Length:     length,
		FilterID:   "",
		Search:     SearchValue{Value: f.SearchText},
	}
}

// IsEmpty — все поля фильтра пустые.
func (f SearchFilter) IsEmpty() bool {
	return f == SearchFilter{}
}

// Validate проверяет фильтр до отправки запроса.
func (f SearchFilter) Validate() error {
	fields := map[string]string{}

	if f.MajorHead != "" && f.MajorHead != MajorPersonal && f.MajorHead != MajorProfessional {
		fields["major_head"] = "Допустимые значения: Personal, Professional"
	}

	from, fromOK := parseInputDate(f.FromDate)
	if f.FromDate != "" && !fromOK {
		fields["from_date"] = "Ожидается дата в формате YYYY-MM-DD"
	}
	to, toOK := parseInputDate(f.ToDate)
	if f.ToDate != "" && !toOK {
		fields["to_date"] = "Ожидается дата в формате YYYY-MM-DD"
	}
	if fromOK && toOK && from.After(to) {
		fields["from_date"] = "from_date не может быть позже to_date"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func parseInputDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(inputDateLayout, s)
	return t, err == nil
}
