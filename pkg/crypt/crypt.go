// Package crypt seals small values (phone numbers, contact details) with
// AES-256-GCM. Output is base64url(nonce || ciphertext || tag), safe for a
// text column.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/cafe/config"
)

// ErrDecrypt covers malformed input and failed authentication alike.
var ErrDecrypt = errors.New("crypt: decryption failed")

// Box seals and opens values under one key.
type Box struct {
	aead cipher.AEAD
}

// NewBox derives the AES key from secret with SHA-256.
func NewBox(secret string) (*Box, error) {
	if secret == "" {
		return nil, errors.New("crypt: empty secret")
	}
	k := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(k[:])
	if err != nil {
		return nil, fmt.Errorf("crypt: cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypt: gcm: %w", err)
	}
	return &Box{aead: aead}, nil
}

func (b *Box) Seal(plain []byte) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b.aead.Seal(nonce, nonce, plain, nil)), nil
}

func (b *Box) Open(sealed string) ([]byte, error) {
	raw, err := base64.URLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < b.aead.NonceSize() {
		return nil, ErrDecrypt
	}
	n := b.aead.NonceSize()
	plain, err := b.aead.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

// ─── Application key ─────────────────────────────────────────────────────────

var (
	boxMu     sync.Mutex
	boxSecret string
	appBox    *Box
)

// current returns the box for APP_KEY (falling back to JWT_SECRET),
// rebuilding it when the configured secret changes.
func current() (*Box, error) {
	secret := config.Get("APP_KEY", config.JWTSecret())

	boxMu.Lock()
	defer boxMu.Unlock()
	if appBox != nil && secret == boxSecret {
		return appBox, nil
	}
	b, err := NewBox(secret)
	if err != nil {
		return nil, fmt.Errorf("crypt: APP_KEY: %w", err)
	}
	appBox, boxSecret = b, secret
	return b, nil
}

func Encrypt(plain string) (string, error) {
	b, err := current()
	if err != nil {
		return "", err
	}
	return b.Seal([]byte(plain))
}

func Decrypt(sealed string) (string, error) {
	b, err := current()
	if err != nil {
		return "", err
	}
	plain, err := b.Open(sealed)
	return string(plain), err
}
