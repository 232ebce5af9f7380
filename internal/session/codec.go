// Пакет session — credential пользователя и его хранение между запросами.
//
// Credential — значение, которое явно передаётся сервисам: идентификатор
// сессии и токен API. Сам токен хранится в Store: в зашифрованном cookie
// (по умолчанию), в Redis (server-side) или в файле (CLI).
package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Data — содержимое зашифрованного cookie сессии.
type Data struct {
	// SessionID — UUID сессии (ключ состояния списка и preview).
	SessionID string `json:"sid"`
	// Token — токен API. Пуст, если токен хранится server-side.
	Token string `json:"tok,omitempty"`
	// IssuedAt — время входа (Unix timestamp).
	IssuedAt int64 `json:"iat"`
}

// Codec шифрует и дешифрует Data через AES-256-GCM.
type Codec struct {
	gcm cipher.AEAD
}

// NewCodec создаёт Codec.
// key — 32-байтовый ключ в base64 или произвольная строка (хешируется SHA-256).
// Если key пустой — генерируется случайный ключ (непостоянный между рестартами).
func NewCodec(key string) (*Codec, error) {
	var keyBytes []byte

	if key == "" {
		keyBytes = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, keyBytes); err != nil {
			return nil, fmt.Errorf("ошибка генерации ключа сессии: %w", err)
		}
	} else {
		var err error
		keyBytes, err = base64.StdEncoding.DecodeString(key)
		if err != nil || len(keyBytes) != 32 {
			h := sha256.Sum256([]byte(key))
			keyBytes = h[:]
		}
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	return &Codec{gcm: gcm}, nil
}

// Encrypt шифрует Data и возвращает base64-строку (nonce + ciphertext).
func (c *Codec) Encrypt(data *Data) (string, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации сессии: %w", err)
	}

	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	ciphertext := c.gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// Decrypt дешифрует base64-строку обратно в Data.
func (c *Codec) Decrypt(encrypted string) (*Data, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования base64: %w", err)
	}

	nonceSize := c.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("зашифрованные данные слишком короткие")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка дешифрования сессии: %w", err)
	}

	var data Data
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("ошибка десериализации сессии: %w", err)
	}
	return &data, nil
}
