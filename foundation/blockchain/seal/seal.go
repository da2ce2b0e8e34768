// Package seal provides authenticated encryption of profile records, chat
// content and shared keys. Sealed data is laid out as nonce followed by the
// ciphertext so a single byte slice can travel inside a transaction.
package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the size in bytes of every symmetric key.
const KeySize = 32

// NonceSize is the size of the random nonce prefixed to sealed data.
const NonceSize = 12

// ErrOpen is returned when sealed data is too short or fails authentication.
var ErrOpen = errors.New("unable to open sealed data")

// Key represents a symmetric key.
type Key [KeySize]byte

// NewKey generates a random symmetric key.
func NewKey() (Key, error) {
	var k Key
	if _, err := io.ReadFull(rand.Reader, k[:]); err != nil {
		return Key{}, fmt.Errorf("generating key: %w", err)
	}

	return k, nil
}

// =============================================================================

// Algorithm names a supported AEAD construction.
type Algorithm string

// Set of supported algorithms.
const (
	AES256GCM        Algorithm = "aes-256-gcm"
	ChaCha20Poly1305 Algorithm = "chacha20-poly1305"
)

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(s)); a {
	case AES256GCM, ChaCha20Poly1305:
		return a, nil
	}

	return "", fmt.Errorf("unknown algorithm %q", s)
}

// Seal encrypts the plaintext under the key with a fresh random nonce and
// returns nonce || ciphertext.
func (a Algorithm) Seal(key Key, plaintext []byte) ([]byte, error) {
	aead, err := a.aead(key)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, NonceSize, NonceSize+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, sealed); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	return aead.Seal(sealed, sealed[:NonceSize], plaintext, nil), nil
}

// Open reverses Seal. Any failure to authenticate is reported as ErrOpen.
func (a Algorithm) Open(key Key, sealed []byte) ([]byte, error) {
	if len(sealed) < NonceSize {
		return nil, ErrOpen
	}

	aead, err := a.aead(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, sealed[:NonceSize], sealed[NonceSize:], nil)
	if err != nil {
		return nil, ErrOpen
	}

	return plaintext, nil
}

func (a Algorithm) aead(key Key) (cipher.AEAD, error) {
	switch a {
	case AES256GCM, "":
		block, err := aes.NewCipher(key[:])
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)

	case ChaCha20Poly1305:
		return chacha20poly1305.New(key[:])
	}

	return nil, fmt.Errorf("unknown algorithm %q", string(a))
}

// =============================================================================

// Default is the algorithm used by the package level functions.
const Default = AES256GCM

// Seal encrypts the plaintext using the default algorithm.
func Seal(key Key, plaintext []byte) ([]byte, error) {
	return Default.Seal(key, plaintext)
}

// Open decrypts data sealed with the default algorithm.
func Open(key Key, sealed []byte) ([]byte, error) {
	return Default.Open(key, sealed)
}
