// preview.go — временные ссылки на полученные файлы для окна просмотра.
//
// Ссылка живёт до первого показа, до открытия следующего preview в той же
// сессии или до истечения TTL. Запись реестра после добавления не меняется:
// освобождение лишь убирает ссылку на содержимое, выданные копии остаются целыми.
package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/dms-admin/internal/domain/model"
)

var previewsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dms_previews_active",
	Help: "Количество неосвобождённых preview.",
})

// Preview — описание открытого preview для клиента.
type Preview struct {
	ID       string            `json:"id"`
	Kind     model.PreviewKind `json:"kind"`
	URL      string            `json:"url,omitempty"`
	Filename string            `json:"filename"`
	Notice   string            `json:"notice,omitempty"`
}

type previewEntry struct {
	sessionID string
	file      *model.RetrievedFile
}

// PreviewRegistry — реестр временных ссылок на содержимое файлов.
type PreviewRegistry struct {
	cache   *expirable.LRU[string, *previewEntry]
	baseURL string

	mu      sync.Mutex
	current map[string]string // sessionID → последний preview

	// takeMu гарантирует однократную выдачу содержимого
	takeMu sync.Mutex
}

// NewPreviewRegistry создаёт реестр.
// baseURL — префикс ссылок (например, /dashboard/previews/).
func NewPreviewRegistry(maxSize int, ttl time.Duration, baseURL string) *PreviewRegistry {
	// onEvict вызывается под блокировкой LRU и из горутины истечения TTL:
	// обращаться к cache и mu нельзя, запись не изменяется
	onEvict := func(string, *previewEntry) {
		previewsActive.Dec()
	}
	return &PreviewRegistry{
		cache:   expirable.NewLRU[string, *previewEntry](maxSize, onEvict, ttl),
		baseURL: baseURL,
		current: make(map[string]string),
	}
}

// Open регистрирует файл для показа и освобождает предыдущий preview сессии.
// Для неподдерживаемых типов содержимое не сохраняется.
func (p *PreviewRegistry) Open(sessionID string, file *model.RetrievedFile) Preview {
	p.ReleaseSession(sessionID)

	kind := file.Kind()
	if kind == model.PreviewUnsupported {
		return Preview{Kind: kind, Filename: file.Filename, Notice: model.UnsupportedPreviewNotice}
	}

	stored := *file
	id := uuid.NewString()
	previewsActive.Inc()
	p.cache.Add(id, &previewEntry{sessionID: sessionID, file: &stored})

	p.mu.Lock()
	p.current[sessionID] = id
	p.mu.Unlock()

	return Preview{ID: id, Kind: kind, URL: p.baseURL + id, Filename: file.Filename}
}

// Take выдаёт содержимое preview один раз и освобождает ссылку.
// Чужая сессия получает ErrPreviewNotFound.
func (p *PreviewRegistry) Take(sessionID, id string) (*model.RetrievedFile, error) {
	p.takeMu.Lock()
	defer p.takeMu.Unlock()

	e, ok := p.cache.Peek(id)
	if !ok || e.sessionID != sessionID {
		return nil, ErrPreviewNotFound
	}

	file := *e.file
	p.release(sessionID, id)
	return &file, nil
}

// Release освобождает preview без показа.
func (p *PreviewRegistry) Release(sessionID, id string) error {
	p.takeMu.Lock()
	defer p.takeMu.Unlock()

	e, ok := p.cache.Peek(id)
	if !ok || e.sessionID != sessionID {
		return ErrPreviewNotFound
	}
	p.release(sessionID, id)
	return nil
}

// ReleaseSession освобождает текущий preview сессии (если есть).
func (p *PreviewRegistry) ReleaseSession(sessionID string) {
	p.mu.Lock()
	id, ok := p.current[sessionID]
	delete(p.current, sessionID)
	p.mu.Unlock()

	if ok {
		p.cache.Remove(id)
	}
}

// Active — количество неосвобождённых preview.
func (p *PreviewRegistry) Active() int {
	return p.cache.Len()
}

func (p *PreviewRegistry) release(sessionID, id string) {
	p.mu.Lock()
	if p.current[sessionID] == id {
		delete(p.current, sessionID)
	}
	p.mu.Unlock()

	p.cache.Remove(id)
}
