package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/bigkaa/goartstore/dms-admin/internal/dmsapi"
	"github.com/bigkaa/goartstore/dms-admin/internal/domain/listing"
	"github.com/bigkaa/goartstore/dms-admin/internal/service"
)

func init() {
	color.NoColor = true
}

func TestPrintPage(t *testing.T) {
	view := service.PageView{
		Rows: []service.Row{
			{Number: 11, Date: "05-03-2024", MajorHead: "Personal", MinorHead: "John", Filename: "a.pdf", HasFile: true},
			{Number: 12, Remarks: "без файла", Filename: "file"},
		},
		Page:       2,
		TotalPages: 5,
		Total:      42,
		Pages:      listing.PageNumbers(2, 5),
	}

	var buf bytes.Buffer
	printPage(&buf, view)
	out := buf.String()

	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[0], "#") || !strings.Contains(lines[0], "КОММЕНТАРИЙ") {
		t.Errorf("заголовок: %q", lines[0])
	}
	if !strings.Contains(lines[1], "a.pdf") || !strings.Contains(lines[1], "Personal") {
		t.Errorf("строка 11: %q", lines[1])
	}
	if !strings.Contains(lines[2], "без файла") || strings.Contains(lines[2], " file ") {
		t.Errorf("строка без файла: %q", lines[2])
	}
	if !strings.Contains(out, "Записи 11-12 из 42") {
		t.Errorf("нет подсказки диапазона:\n%s", out)
	}
	if !strings.Contains(out, "Страницы: 1 [2] 3 4 5") {
		t.Errorf("полоса страниц:\n%s", out)
	}
}

func TestPageStrip_Ellipsis(t *testing.T) {
	view := service.PageView{Pages: listing.PageNumbers(6, 12)}
	if got, want := pageStrip(view), "Страницы: 1 … 4 5 [6] 7 8 … 12"; got != want {
		t.Errorf("pageStrip = %q, ожидалось %q", got, want)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "ошибки полей",
			err:  &service.ValidationError{Fields: map[string]string{"to_date": "b", "from_date": "a"}},
			want: "from_date: a\nto_date: b",
		},
		{
			name: "сообщение сервера",
			err:  fmt.Errorf("поиск: %w", &dmsapi.APIError{Op: "search", Status: 400, Message: "Bad filter"}),
			want: "Bad filter",
		},
		{
			name: "сеть",
			err:  &dmsapi.TransportError{Op: "search", Err: fmt.Errorf("timeout")},
			want: dmsapi.TransportMessage,
		},
		{
			name: "пустой список",
			err:  service.ErrNoFiles,
			want: "Нет файлов для скачивания",
		},
		{
			name: "нет входа",
			err:  errNotLoggedIn,
			want: errNotLoggedIn.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := userMessage(tt.err); got != tt.want {
				t.Errorf("userMessage = %q, ожидалось %q", got, tt.want)
			}
		})
	}
}
