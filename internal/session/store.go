package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoToken — для сессии нет сохранённого токена.
var ErrNoToken = errors.New("токен не найден")

// Store — server-side хранилище токенов по идентификатору сессии.
type Store interface {
	Get(ctx context.Context, sessionID string) (string, error)
	Set(ctx context.Context, sessionID, token string) error
	Delete(ctx context.Context, sessionID string) error
}

// redisKeyPrefix — префикс ключей токенов в Redis.
const redisKeyPrefix = "dms:token:"

// RedisStore — хранилище токенов в Redis с TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOptions — параметры подключения к Redis.
type RedisOptions struct {
	Addr     string
	Password string //nolint:gosec // G117: поле конфигурации
	DB       int
	TTL      time.Duration
}

// NewRedisStore подключается к Redis и проверяет соединение.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("подключение к Redis %s: %w", opts.Addr, err)
	}

	return &RedisStore{client: client, ttl: opts.TTL}, nil
}

// Get возвращает токен сессии или ErrNoToken.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (string, error) {
	tok, err := s.client.Get(ctx, redisKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("чтение токена из Redis: %w", err)
	}
	return tok, nil
}

// Set сохраняет токен сессии на время TTL.
func (s *RedisStore) Set(ctx context.Context, sessionID, token string) error {
	if err := s.client.Set(ctx, redisKeyPrefix+sessionID, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("запись токена в Redis: %w", err)
	}
	return nil
}

// Delete удаляет токен сессии.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("удаление токена из Redis: %w", err)
	}
	return nil
}

// Ping проверяет соединение (readiness).
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close закрывает соединение с Redis.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// FileStore — хранилище токенов в JSON-файле (для CLI).
// Файл создаётся с правами 0600.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore создаёт хранилище в файле path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path — путь к файлу токенов.
func (s *FileStore) Path() string { return s.path }

// Get возвращает токен сессии или ErrNoToken.
func (s *FileStore) Get(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return "", err
	}
	tok, ok := tokens[sessionID]
	if !ok || tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

// Set сохраняет токен сессии.
func (s *FileStore) Set(_ context.Context, sessionID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return err
	}
	tokens[sessionID] = token
	return s.write(tokens)
}

// Delete удаляет токен сессии. Отсутствие файла не ошибка.
func (s *FileStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := tokens[sessionID]; !ok {
		return nil
	}
	delete(tokens, sessionID)
	return s.write(tokens)
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("чтение файла токенов: %w", err)
	}

	tokens := map[string]string{}
	if len(data) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("разбор файла токенов %s: %w", s.path, err)
	}
	return tokens, nil
}

func (s *FileStore) write(tokens map[string]string) error {
	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("сериализация токенов: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("создание каталога файла токенов: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("запись файла токенов: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("замена файла токенов: %w", err)
	}
	return nil
}
