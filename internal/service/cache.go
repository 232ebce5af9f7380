// cache.go — in-memory кэши gateway на hashicorp/golang-lru/v2/expirable.
//
// StateStore — состояние списка документов по идентификатору сессии.
// TagCache — подсказки тегов по префиксу.
package service

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/dms-admin/internal/domain/listing"
)

// Prometheus-метрики кэша тегов.
var (
	tagCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dms_tag_cache_hits_total",
		Help: "Общее количество попаданий в кэш подсказок тегов.",
	})
	tagCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dms_tag_cache_misses_total",
		Help: "Общее количество промахов кэша подсказок тегов.",
	})
)

// StateStore — состояние списка документов для каждой сессии.
// ResultSet живёт, пока к нему обращаются; по TTL или вытеснению
// сессия начинает с пустого списка.
type StateStore struct {
	cache *expirable.LRU[string, listing.State]
}

// NewStateStore создаёт хранилище состояний.
// maxSize — максимальное количество сессий, ttl — время жизни состояния.
func NewStateStore(maxSize int, ttl time.Duration) *StateStore {
	return &StateStore{cache: expirable.NewLRU[string, listing.State](maxSize, nil, ttl)}
}

// Get возвращает состояние сессии.
func (s *StateStore) Get(sessionID string) (listing.State, bool) {
	return s.cache.Get(sessionID)
}

// Put сохраняет состояние сессии целиком.
func (s *StateStore) Put(sessionID string, state listing.State) {
	s.cache.Add(sessionID, state)
}

// Delete удаляет состояние сессии (logout).
func (s *StateStore) Delete(sessionID string) {
	s.cache.Remove(sessionID)
}

// TagCache — LRU-кэш подсказок тегов с TTL.
// Ключ — префикс в нижнем регистре; теги общие для всех пользователей.
type TagCache struct {
	cache *expirable.LRU[string, []string]
}

// NewTagCache создаёт кэш подсказок.
func NewTagCache(maxSize int, ttl time.Duration) *TagCache {
	return &TagCache{cache: expirable.NewLRU[string, []string](maxSize, nil, ttl)}
}

// Get возвращает подсказки для term.
// Обновляет Prometheus-метрики hit/miss.
func (c *TagCache) Get(term string) ([]string, bool) {
	val, ok := c.cache.Get(tagKey(term))
	if ok {
		tagCacheHitsTotal.Inc()
		return val, true
	}
	tagCacheMissesTotal.Inc()
	return nil, false
}

// Set сохраняет подсказки для term.
func (c *TagCache) Set(term string, tags []string) {
	c.cache.Add(tagKey(term), tags)
}

func tagKey(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
