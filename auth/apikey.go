package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"

	"github.com/hiremind/backend/config"
)

// keySalt is the fixed scrypt salt; the secret itself comes from ENCRYPTION_KEY
var keySalt = []byte("hiremind-gemini-api-key")

// ErrInvalidCiphertext is returned for stored keys that cannot be decrypted
var ErrInvalidCiphertext = errors.New("invalid encrypted api key")

// KeyCipher encrypts user Gemini API keys at rest with AES-256-GCM.
// Ciphertexts are stored as "<hex nonce>:<hex sealed bytes>".
type KeyCipher struct {
	aead cipher.AEAD
}

// NewKeyCipher derives a 32-byte key from cfg.EncryptionKey with scrypt
func NewKeyCipher(cfg *config.Config) (*KeyCipher, error) {
	key, err := scrypt.Key([]byte(cfg.EncryptionKey), keySalt, 1<<15, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("derive encryption key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &KeyCipher{aead: aead}, nil
}

// Encrypt seals an API key. An empty key encrypts to the empty string.
func (k *KeyCipher) Encrypt(apiKey string) (string, error) {
	if apiKey == "" {
		return "", nil
	}

	nonce := make([]byte, k.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := k.aead.Seal(nil, nonce, []byte(apiKey), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(sealed), nil
}

// Decrypt opens a stored API key. The empty string decrypts to the empty string.
func (k *KeyCipher) Decrypt(encrypted string) (string, error) {
	if encrypted == "" {
		return "", nil
	}

	nonceHex, sealedHex, ok := strings.Cut(encrypted, ":")
	if !ok {
		return "", ErrInvalidCiphertext
	}
	nonce, err := hex.DecodeString(nonceHex)
	if err != nil || len(nonce) != k.aead.NonceSize() {
		return "", ErrInvalidCiphertext
	}
	sealed, err := hex.DecodeString(sealedHex)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	plain, err := k.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plain), nil
}
