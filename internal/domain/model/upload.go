package model

import (
	"fmt"
	"time"
)

// uploadDateLayout — формат document_date, ожидаемый /saveDocumentEntry.
const uploadDateLayout = "02-01-2006"

// UploadMetadata — JSON-строка поля data в multipart-запросе загрузки.
type UploadMetadata struct {
	MajorHead       string    `json:"major_head"`
	MinorHead       string    `json:"minor_head"`
	DocumentDate    string    `json:"document_date"`
	DocumentRemarks string    `json:"document_remarks"`
	Tags            []TagName `json:"tags"`
	UserID          string    `json:"user_id"`
}

// UploadDate переводит дату из формы (YYYY-MM-DD) в DD-MM-YYYY.
func UploadDate(input string) (string, error) {
	t, err := time.Parse(inputDateLayout, input)
	if err != nil {
		return "", fmt.Errorf("некорректная дата %q: ожидается YYYY-MM-DD", input)
	}
	return t.Format(uploadDateLayout), nil
}

// MinorHeadOptions — варианты minor_head для категории.
// API не отдаёт справочник, поэтому списки фиксированы.
func MinorHeadOptions(major string) []string {
	if major == MajorProfessional {
		return []string{"Accounts", "HR", "IT", "Finance"}
	}
	return []string{"John", "Tom", "Emily", "Sarah"}
}

// UniqueTags убирает повторы и пустые имена, сохраняя порядок.
func UniqueTags(names []string) []TagName {
	seen := make(map[string]struct{}, len(names))
	tags := make([]TagName, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		tags = append(tags, TagName{TagName: n})
	}
	return tags
}
