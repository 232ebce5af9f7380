package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/bigkaa/goartstore/dms-admin/internal/dmsapi"
	"github.com/bigkaa/goartstore/dms-admin/internal/service"
)

var tableColumns = []string{"#", "ДАТА", "КАТЕГОРИЯ", "ИМЯ/ОТДЕЛ", "ФАЙЛ", "ТЕГИ", "КОММЕНТАРИЙ"}

// printPage выводит таблицу страницы и полосу номеров страниц.
// Заголовок выделяется после выравнивания, чтобы escape-коды не сбивали tabwriter.
func printPage(w io.Writer, view service.PageView) {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(tableColumns, "\t"))
	for _, r := range view.Rows {
		file := r.Filename
		if !r.HasFile {
			file = "-"
		}
		_, _ = fmt.Fprintln(tw, strings.Join([]string{
			strconv.Itoa(r.Number), dash(r.Date), dash(r.MajorHead), dash(r.MinorHead),
			file, dash(r.Tags), dash(r.Remarks),
		}, "\t"))
	}
	_ = tw.Flush()

	header, body, _ := strings.Cut(buf.String(), "\n")
	_, _ = color.New(color.Bold).Fprintln(w, header)
	_, _ = io.WriteString(w, body)

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, pageSizeHint(view))
	_, _ = fmt.Fprintln(w, pageStrip(view))
}

// pageStrip — "Страницы: 1 … 4 [5] 6 … 12".
func pageStrip(view service.PageView) string {
	current := color.New(color.FgGreen, color.Bold).SprintFunc()
	parts := make([]string, 0, len(view.Pages))
	for _, p := range view.Pages {
		switch {
		case p.Ellipsis:
			parts = append(parts, "…")
		case p.Current:
			parts = append(parts, current("["+strconv.Itoa(p.Number)+"]"))
		default:
			parts = append(parts, strconv.Itoa(p.Number))
		}
	}
	return "Страницы: " + strings.Join(parts, " ")
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// userMessage — текст ошибки для пользователя.
// Ошибки полей выводятся по одной на строку в порядке имён.
func userMessage(err error) string {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		names := make([]string, 0, len(verr.Fields))
		for name := range verr.Fields {
			names = append(names, name)
		}
		sort.Strings(names)

		lines := make([]string, 0, len(names))
		for _, name := range names {
			lines = append(lines, name+": "+verr.Fields[name])
		}
		return strings.Join(lines, "\n")
	}

	switch {
	case errors.Is(err, service.ErrNoFiles):
		return "Нет файлов для скачивания"
	case errors.Is(err, service.ErrNothingArchived) && !errors.Is(err, dmsapi.ErrUnauthorized):
		return "Не удалось получить ни одного файла"
	}
	return dmsapi.UserMessage(err)
}
