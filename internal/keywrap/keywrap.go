// Package keywrap seals and unseals small secrets (wallet private keys)
// under a caller-supplied key string such as the account password or a
// one-time verification code. The key string is stretched with Argon2id
// and the payload is encrypted with ChaCha20-Poly1305, so a wrapped key
// is useless without the exact key string that produced it and any
// tampering fails the unseal.
package keywrap

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	saltBytes = 16
	kekBytes  = chacha20poly1305.KeySize

	// Argon2id parameters: 64 MiB, one pass, single lane.
	argonMemory = 1 << 16
	argonTime   = 1
	argonLanes  = 1
)

// ErrUnseal is returned when a ciphertext cannot be opened, whether the
// key string is wrong or the ciphertext is malformed. The two cases are
// deliberately indistinguishable to callers.
var ErrUnseal = errors.New("cannot unseal ciphertext")

// Seal encrypts plaintext under the given key string. A fresh salt and
// nonce are drawn per call, so sealing the same plaintext twice yields
// different ciphertexts. The result is salt:nonce:payload in hex.
func Seal(plaintext, key string) (string, error) {
	if plaintext == "" || key == "" {
		return "", errors.New("plaintext and key are required")
	}

	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("draw salt: %w", err)
	}

	aead, err := chacha20poly1305.New(deriveKEK(key, salt))
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("draw nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)

	return strings.Join([]string{
		hex.EncodeToString(salt),
		hex.EncodeToString(nonce),
		hex.EncodeToString(sealed),
	}, ":"), nil
}

// Unseal reverses Seal. It fails with ErrUnseal if the key string does
// not match the one used at seal time or the ciphertext is malformed.
func Unseal(ciphertext, key string) (string, error) {
	parts := strings.Split(ciphertext, ":")
	if len(parts) != 3 {
		return "", ErrUnseal
	}

	salt, err := hex.DecodeString(parts[0])
	if err != nil || len(salt) != saltBytes {
		return "", ErrUnseal
	}
	nonce, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", ErrUnseal
	}
	sealed, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", ErrUnseal
	}

	aead, err := chacha20poly1305.New(deriveKEK(key, salt))
	if err != nil {
		return "", ErrUnseal
	}
	if len(nonce) != aead.NonceSize() {
		return "", ErrUnseal
	}

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrUnseal
	}
	return string(plaintext), nil
}

func deriveKEK(key string, salt []byte) []byte {
	return argon2.IDKey([]byte(key), salt, argonTime, argonMemory, argonLanes, kekBytes)
}
