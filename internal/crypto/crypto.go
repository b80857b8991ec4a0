package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// StoreKeyContext binds derived store keys to their purpose. Changing it
// invalidates every sealed key in storage.
const StoreKeyContext = "nostrvault-store-key-v1"

// DeriveStoreKey derives the 32-byte sealing key for the identity store
// from the agent secret using HKDF-SHA256.
func DeriveStoreKey(secret []byte, context string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, errors.New("agent secret must not be empty")
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, secret, nil, []byte(context))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("deriving store key: %w", err)
	}
	return key, nil
}

// Seal encrypts a private key with AES-256-GCM. The nonce is prepended to
// the ciphertext for storage.
func Seal(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	result := make([]byte, len(nonce)+len(ciphertext))
	copy(result, nonce)
	copy(result[len(nonce):], ciphertext)
	return result, nil
}

// Open decrypts a nonce-prefixed blob produced by Seal.
func Open(sealed, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	nonceSize := gcm.NonceSize()
	if len(sealed) < nonceSize {
		return nil, errors.New("sealed blob too short")
	}
	plaintext, err := gcm.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return plaintext, nil
}

// ZeroBytes wipes a key buffer after use.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
