package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/ports"
)

// sealedPrefix marks an encrypted fields or span string.
const sealedPrefix = "enc:"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.LogArchive
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals the fields and span
// of every exported event using AES-GCM. Time, entity and metadata stay in
// clear text so archives remain browsable.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.LogArchive) ports.LogArchive {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Export(ctx context.Context, entity domain.EntityPath, events []domain.LogEvent) error {
	sealed := slices.Clone(events)
	for i := range sealed {
		var err error
		if sealed[i].Fields, err = m.seal(sealed[i].Fields); err != nil {
			return fmt.Errorf("failed to encrypt event %d: %w", i, err)
		}
		if sealed[i].Span, err = m.seal(sealed[i].Span); err != nil {
			return fmt.Errorf("failed to encrypt event %d: %w", i, err)
		}
	}
	return m.next.Export(ctx, entity, sealed)
}

func (m *encryptionMiddleware) Load(ctx context.Context, entity domain.EntityPath) ([]domain.LogEvent, error) {
	events, err := m.next.Load(ctx, entity)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].Fields, err = m.open(events[i].Fields); err != nil {
			return nil, fmt.Errorf("failed to decrypt event %d: %w", i, err)
		}
		if events[i].Span, err = m.open(events[i].Span); err != nil {
			return nil, fmt.Errorf("failed to decrypt event %d: %w", i, err)
		}
	}
	return events, nil
}

func (m *encryptionMiddleware) seal(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	ciphertext, err := encrypt([]byte(s), m.config.ActiveKey)
	if err != nil {
		return "", err
	}
	return sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (m *encryptionMiddleware) open(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	encoded, ok := strings.CutPrefix(s, sealedPrefix)
	if !ok {
		// Fail secure: a configured key means every stream is expected sealed.
		return "", errors.New("event is missing encrypted data")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}
	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
