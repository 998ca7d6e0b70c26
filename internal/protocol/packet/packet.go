package packet

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf16"

	"seahorse/internal/crypto"
	"seahorse/internal/domain"
)

// Version is the only packet version this codec reads and writes.
const Version = 1

// ErrAuthentication is returned when the AEAD tag does not verify.
var ErrAuthentication = errors.New("packet authentication failed")

// Seal encrypts plaintext under key into a new packet.
func Seal(key domain.SymmetricKey, plaintext []byte) (domain.EncryptedPacket, error) {
	nonce, err := crypto.NewNonce()
	if err != nil {
		return domain.EncryptedPacket{}, err
	}
	ct, err := crypto.Seal(key, nonce, plaintext)
	if err != nil {
		return domain.EncryptedPacket{}, err
	}
	return domain.EncryptedPacket{
		Version:  Version,
		IV:       crypto.B64(nonce),
		Data:     crypto.B64(ct),
		Checksum: checksum(plaintext),
	}, nil
}

// SealJSON serialises v and seals it.
func SealJSON(key domain.SymmetricKey, v any) (domain.EncryptedPacket, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return domain.EncryptedPacket{}, fmt.Errorf("serialise payload: %w", err)
	}
	return Seal(key, raw)
}

// Open verifies and decrypts p.
func Open(key domain.SymmetricKey, p domain.EncryptedPacket) ([]byte, error) {
	if p.Version != Version {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnsupportedVersion, p.Version)
	}
	nonce, err := crypto.FromB64(p.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: iv: %v", domain.ErrInvalidPacketFormat, err)
	}
	if len(nonce) != crypto.NonceBytes {
		return nil, fmt.Errorf("%w: iv is %d bytes, want %d", domain.ErrInvalidPacketFormat, len(nonce), crypto.NonceBytes)
	}
	ct, err := crypto.FromB64(p.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: data: %v", domain.ErrInvalidPacketFormat, err)
	}
	pt, err := crypto.Open(key, nonce, ct)
	if err != nil {
		return nil, ErrAuthentication
	}
	return pt, nil
}

// Marshal returns the JSON string stored in the registry.
func Marshal(p domain.EncryptedPacket) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Parse decodes the JSON string form of a packet.
func Parse(s string) (domain.EncryptedPacket, error) {
	var p domain.EncryptedPacket
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return domain.EncryptedPacket{}, fmt.Errorf("%w: %v", domain.ErrInvalidPacketFormat, err)
	}
	return p, nil
}

// checksum is the length hint browsers write: the plaintext length in UTF-16
// code units. Open does not check it; the AEAD tag authenticates the payload.
func checksum(plaintext []byte) string {
	n := 0
	for _, r := range string(plaintext) {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return crypto.B64([]byte(strconv.Itoa(n)))
}
