// tags.go — подсказки тегов с кэшированием.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

// TagService — подсказки тегов по префиксу.
type TagService struct {
	api    DocumentAPI
	cache  *TagCache
	logger *slog.Logger
}

// NewTagService создаёт сервис.
func NewTagService(api DocumentAPI, cache *TagCache, logger *slog.Logger) *TagService {
	return &TagService{
		api:    api,
		cache:  cache,
		logger: logger.With(slog.String("component", "tag_service")),
	}
}

// Suggest возвращает имена тегов для term (пустой term — все теги).
func (s *TagService) Suggest(ctx context.Context, cred session.Credential, term string) ([]string, error) {
	if tags, ok := s.cache.Get(term); ok {
		return tags, nil
	}

	tags, err := s.api.Tags(ctx, cred.Token, term)
	if err != nil {
		return nil, fmt.Errorf("подсказки тегов: %w", err)
	}
	s.cache.Set(term, tags)

	s.logger.Debug("Подсказки тегов получены",
		slog.String("term", term),
		slog.Int("count", len(tags)),
	)
	return tags, nil
}
