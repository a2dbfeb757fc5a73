package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
)

// DecryptionError wraps any failure to recover a stored secret. Connection
// construction treats it the same as an unreachable endpoint.
type DecryptionError struct {
	Err error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed: %v", e.Err)
}

func (e *DecryptionError) Unwrap() error { return e.Err }

// Manager encrypts and decrypts connection credentials with AES-256-GCM,
// keyed by a process-wide secret.
type Manager struct {
	aead cipher.AEAD
}

func New(key string) (*Manager, error) {
	sum := sha256.Sum256([]byte(key))
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Manager{aead: aead}, nil
}

// Encrypt seals plain and returns it urlsafe-base64 encoded. The empty
// string maps to the empty string without invoking the cipher.
func (m *Manager) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	nonce := make([]byte, m.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := m.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. The empty string maps to the empty string
// without invoking the cipher.
func (m *Manager) Decrypt(enc string) (string, error) {
	if enc == "" {
		return "", nil
	}
	raw, err := base64.URLEncoding.DecodeString(enc)
	if err != nil {
		return "", &DecryptionError{Err: err}
	}
	if len(raw) < m.aead.NonceSize() {
		return "", &DecryptionError{Err: fmt.Errorf("ciphertext too short")}
	}
	nonce, sealed := raw[:m.aead.NonceSize()], raw[m.aead.NonceSize():]
	plain, err := m.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", &DecryptionError{Err: err}
	}
	return string(plain), nil
}
