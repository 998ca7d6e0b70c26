package crypto

import (
	"crypto/subtle"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"seahorse/internal/domain"
)

// NonceBytes is the AEAD nonce length carried in every packet.
const NonceBytes = chacha20poly1305.NonceSize

// NewSymmetricKey returns 256 fresh random bits.
func NewSymmetricKey() (domain.SymmetricKey, error) {
	var k domain.SymmetricKey
	if _, err := io.ReadFull(Rand, k[:]); err != nil {
		return domain.SymmetricKey{}, fmt.Errorf("%w: %v", domain.ErrCryptoUnavailable, err)
	}
	return k, nil
}

// SameKey reports whether a and b are equal, in constant time.
func SameKey(a, b domain.SymmetricKey) bool {
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

// NewNonce returns a fresh random nonce. Nonces are never derived or reused.
func NewNonce() ([]byte, error) {
	nonce := make([]byte, NonceBytes)
	if _, err := io.ReadFull(Rand, nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCryptoUnavailable, err)
	}
	return nonce, nil
}

// Seal encrypts plaintext under key with the given nonce. The result carries
// the 16-byte authentication tag at its end.
func Seal(key domain.SymmetricKey, nonce, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key.Slice())
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("nonce is %d bytes, want %d", len(nonce), aead.NonceSize())
	}
	return aead.Seal(nil, nonce, plaintext, nil), nil
}

// Open authenticates and decrypts ciphertext.
func Open(key domain.SymmetricKey, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key.Slice())
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("nonce is %d bytes, want %d", len(nonce), aead.NonceSize())
	}
	return aead.Open(nil, nonce, ciphertext, nil)
}
