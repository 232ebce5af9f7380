package model

import (
	"strconv"
	"strings"
	"time"
)

// directDateLayouts — форматы, которые распознаются без переинтерпретации.
var directDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseDocumentDate разбирает дату документа.
//
// Сначала значение разбирается как есть (ISO-подобные форматы, число —
// Unix ms). Если это не удалось, а строка разделена дефисами и первый
// сегмент из двух символов, она читается как DD-MM-YYYY.
// Любой другой ввод — (zero, false), без ошибки.
func ParseDocumentDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case string:
		return parseDateString(v)
	case float64:
		return time.UnixMilli(int64(v)).UTC(), true
	case int64:
		return time.UnixMilli(v).UTC(), true
	case int:
		return time.UnixMilli(int64(v)).UTC(), true
	default:
		return time.Time{}, false
	}
}

// DocumentTimestamp — производная метка времени в Unix ms; 0 для нераспознанных дат.
func DocumentTimestamp(raw any) int64 {
	t, ok := ParseDocumentDate(raw)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range directDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 2 {
		return time.Time{}, false
	}
	return dayMonthYear(parts[0], parts[1], parts[2])
}

// dayMonthYear собирает дату из сегментов DD, MM, YYYY.
// Несуществующие даты (31-02-2023) отклоняются.
func dayMonthYear(dd, mm, yyyy string) (time.Time, bool) {
	day, err := strconv.Atoi(dd)
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(mm)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(yyyy)
	if err != nil || len(yyyy) != 4 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}
