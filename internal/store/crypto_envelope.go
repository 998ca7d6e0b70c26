package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"seahorse/internal/util/memzero"
)

const (
	envelopeVersion = 1
	saltBytes       = 16

	// Highest scrypt N accepted from disk.
	maxScryptN = 1 << 20
)

// envelopeAAD binds a sealed file to its purpose.
var envelopeAAD = []byte("seahorse/identity/v1")

var (
	// ErrWrongPassphrase is returned when the passphrase is incorrect or the
	// sealed file was modified.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted identity")

	// ErrEnvelopeFormat is returned when a sealed file cannot be parsed or
	// carries KDF parameters outside the accepted range.
	ErrEnvelopeFormat = errors.New("malformed identity envelope")
)

type kdfParams struct {
	Salt []byte `json:"salt"`
	N    int    `json:"n"`
	R    int    `json:"r"`
	P    int    `json:"p"`
}

func (k kdfParams) valid() bool {
	return len(k.Salt) == saltBytes &&
		k.N > 1 && k.N <= maxScryptN && k.N&(k.N-1) == 0 &&
		k.R > 0 && k.P > 0 && k.R*k.P < 1<<30
}

func (k kdfParams) derive(passphrase string) ([]byte, error) {
	return scrypt.Key([]byte(passphrase), k.Salt, k.N, k.R, k.P, chacha20poly1305.KeySize)
}

// envelope is the JSON document written to disk.
type envelope struct {
	Version int       `json:"version"`
	KDF     kdfParams `json:"kdf"`
	Nonce   []byte    `json:"nonce"`
	Sealed  []byte    `json:"sealed"`
}

// sealWithPassphrase derives a key from passphrase and seals plaintext.
func sealWithPassphrase(passphrase string, plaintext []byte, cost kdfParams) ([]byte, error) {
	cost.Salt = make([]byte, saltBytes)
	if _, err := rand.Read(cost.Salt /* #nosec G404 */); err != nil {
		return nil, err
	}
	if !cost.valid() {
		return nil, fmt.Errorf("%w: scrypt N=%d r=%d p=%d", ErrEnvelopeFormat, cost.N, cost.R, cost.P)
	}
	key, err := cost.derive(passphrase)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return json.Marshal(envelope{
		Version: envelopeVersion,
		KDF:     cost,
		Nonce:   nonce,
		Sealed:  aead.Seal(nil, nonce, plaintext, envelopeAAD),
	})
}

// openWithPassphrase reverses sealWithPassphrase.
func openWithPassphrase(passphrase string, doc []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(doc, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvelopeFormat, err)
	}
	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("%w: version %d", ErrEnvelopeFormat, env.Version)
	}
	if !env.KDF.valid() || len(env.Nonce) != chacha20poly1305.NonceSize {
		return nil, ErrEnvelopeFormat
	}
	key, err := env.KDF.derive(passphrase)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, env.Nonce, env.Sealed, envelopeAAD)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}

// defaultCost is the interactive-login scrypt profile.
func defaultCost() kdfParams { return kdfParams{N: 1 << 15, R: 8, P: 1} }
