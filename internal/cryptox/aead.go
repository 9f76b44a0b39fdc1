// Package cryptox implements the crypto primitives behind Postscript's
// envelope encryption: AES-256-GCM AEAD operations and HKDF-based derivation
// of the key-encryption key from the two secret shares.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
)

const (
	// KeySize is the byte length of DEKs and KEKs (AES-256).
	KeySize = 32
	// NonceSize is the byte length of AES-GCM nonces.
	NonceSize = 12
	// SaltSize is the byte length of the per-envelope HKDF salt.
	SaltSize = 16
)

// GenerateKey returns a fresh random 256-bit AES key.
func GenerateKey() ([]byte, error) {
	return randBytes(KeySize)
}

// GenerateNonce returns a fresh random 96-bit GCM nonce. A nonce is never
// reused with the same key: every Seal call gets its own.
func GenerateNonce() ([]byte, error) {
	return randBytes(NonceSize)
}

// GenerateSalt returns a fresh random HKDF salt.
func GenerateSalt() ([]byte, error) {
	return randBytes(SaltSize)
}

func randBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Seal encrypts plaintext with AES-256-GCM under key and nonce, binding aad
// into the authentication tag.
func Seal(key, nonce, plaintext, aad []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return aesgcm.Seal(nil, nonce, plaintext, aad), nil
}

// Open decrypts ciphertext produced by Seal. It fails if the key, nonce, aad,
// or ciphertext do not match; callers are expected to collapse that failure
// into a generic decryption error before surfacing it.
func Open(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return aesgcm.Open(nil, nonce, ciphertext, aad)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Wipe overwrites the contents of b with zeros. Used to remove recovered DEKs
// and derived keys from memory after use. A nil slice is a no-op.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
