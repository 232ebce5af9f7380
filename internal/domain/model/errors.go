package model

import (
	"sort"
	"strings"
)

// ValidationError — ошибки полей формы, найденные до сетевого запроса.
// Fields: имя поля → сообщение для отображения рядом с полем.
type ValidationError struct {
	Fields map[string]string
}

// Error собирает сообщения полей в детерминированном порядке.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "ошибка валидации: " + strings.Join(parts, "; ")
}
