package model

import (
	"mime"
	"path"
	"strings"
)

// PreviewKind — как файл может быть показан в окне просмотра.
type PreviewKind string

const (
	PreviewImage       PreviewKind = "image"
	PreviewPDF         PreviewKind = "pdf"
	PreviewUnsupported PreviewKind = "unsupported"
)

// UnsupportedPreviewNotice — текст для типов, которые нельзя показать.
const UnsupportedPreviewNotice = "Просмотр этого типа файлов не поддерживается. Используйте скачивание."

const octetStream = "application/octet-stream"

// imageTypes — расширения, показываемые как изображения.
var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
}

// RetrievedFile — полученный файл документа. Существует только на время
// одного действия (просмотр, скачивание, архив) и нигде не сохраняется.
type RetrievedFile struct {
	// Data — содержимое файла
	Data []byte
	// Filename — имя для отображения и сохранения
	Filename string
	// ContentType — тип, объявленный источником (может быть пустым)
	ContentType string
	// Strategy — стратегия, которой файл был получен (direct, proxy)
	Strategy string
}

// MediaType — тип содержимого: объявленный, иначе по расширению имени.
func (f *RetrievedFile) MediaType() string {
	return DetectContentType(f.ContentType, f.Filename)
}

// Kind — вид preview для файла.
func (f *RetrievedFile) Kind() PreviewKind {
	mediaType := f.MediaType()
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return PreviewImage
	case mediaType == "application/pdf", strings.EqualFold(path.Ext(f.Filename), ".pdf"):
		return PreviewPDF
	default:
		return PreviewUnsupported
	}
}

// DetectContentType возвращает MIME-тип: объявленный источником, если он
// содержательный, иначе выведенный из расширения filename.
func DetectContentType(declared, filename string) string {
	if declared != "" {
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != octetStream {
			return mediaType
		}
	}

	ext := strings.ToLower(path.Ext(filename))
	if ext == ".pdf" {
		return "application/pdf"
	}
	if t, ok := imageTypes[ext]; ok {
		return t
	}
	return octetStream
}
