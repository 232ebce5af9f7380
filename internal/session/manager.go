package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CookieName — имя cookie, в котором хранится сессия.
const CookieName = "dms_token"

// Credential — credential текущего пользователя.
// Передаётся сервисам явно; сервисы его только читают.
type Credential struct {
	// SessionID — идентификатор сессии (пуст до первого входа).
	SessionID string
	// Token — токен API (пуст, если пользователь не вошёл).
	Token string
}

// Authenticated — токен присутствует.
func (c Credential) Authenticated() bool { return c.Token != "" }

// Manager — хранение credential между HTTP-запросами.
// Без Store токен хранится в зашифрованном cookie, со Store — только
// идентификатор сессии, а токен лежит server-side.
type Manager struct {
	codec  *Codec
	store  Store
	secure bool
	ttl    time.Duration
	logger *slog.Logger
}

// NewManager создаёт менеджер сессий.
// store может быть nil (токен в cookie).
func NewManager(codec *Codec, store Store, secure bool, ttl time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		codec:  codec,
		store:  store,
		secure: secure,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "session")),
	}
}

// Credential извлекает credential из запроса.
// Отсутствующий, повреждённый или истёкший cookie — пустой Credential.
func (m *Manager) Credential(r *http.Request) Credential {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Credential{}
	}

	data, err := m.codec.Decrypt(cookie.Value)
	if err != nil {
		m.logger.Debug("Cookie сессии не расшифрован", slog.String("error", err.Error()))
		return Credential{}
	}
	if m.ttl > 0 && time.Since(time.Unix(data.IssuedAt, 0)) > m.ttl {
		return Credential{SessionID: data.SessionID}
	}

	cred := Credential{SessionID: data.SessionID, Token: data.Token}
	if m.store == nil {
		return cred
	}

	tok, err := m.store.Get(r.Context(), data.SessionID)
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			m.logger.Warn("Ошибка чтения токена из хранилища", slog.String("error", err.Error()))
		}
		return Credential{SessionID: data.SessionID}
	}
	cred.Token = tok
	return cred
}

// Save сохраняет токен после успешной проверки OTP.
// Каждый вход получает новый идентификатор сессии.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, token string) (Credential, error) {
	cred := Credential{SessionID: uuid.NewString(), Token: token}

	data := &Data{SessionID: cred.SessionID, IssuedAt: time.Now().Unix()}
	if m.store == nil {
		data.Token = token
	} else if err := m.store.Set(ctx, cred.SessionID, token); err != nil {
		return Credential{}, fmt.Errorf("сохранение токена: %w", err)
	}

	encrypted, err := m.codec.Encrypt(data)
	if err != nil {
		return Credential{}, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encrypted,
		Path:     "/",
		MaxAge:   int(m.ttl / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return cred, nil
}

// Clear удаляет credential: cookie и запись в хранилище.
func (m *Manager) Clear(ctx context.Context, w http.ResponseWriter, cred Credential) {
	if m.store != nil && cred.SessionID != "" {
		if err := m.store.Delete(ctx, cred.SessionID); err != nil {
			m.logger.Warn("Ошибка удаления токена", slog.String("error", err.Error()))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

const credentialKey contextKey = "dms_credential"

// WithCredential помещает credential в контекст запроса.
func WithCredential(ctx context.Context, cred Credential) context.Context {
	return context.WithValue(ctx, credentialKey, cred)
}

// FromContext возвращает credential из контекста (пустой, если его нет).
func FromContext(ctx context.Context) Credential {
	cred, _ := ctx.Value(credentialKey).(Credential)
	return cred
}
