package crypto

import (
	"fmt"

	"golang.org/x/crypto/nacl/box"

	"seahorse/internal/domain"
	"seahorse/internal/util/memzero"
)

// wrappedKeyLen is the sealed size of a 32-byte key: ephemeral public key,
// Poly1305 tag and the key itself.
const wrappedKeyLen = box.AnonymousOverhead + len(domain.SymmetricKey{})

// WrapKey seals key to the recipient public key. Only the holder of the
// matching private key can open it; the sender stays anonymous.
func WrapKey(key domain.SymmetricKey, recipient domain.X25519Public) ([]byte, error) {
	if recipient.IsZero() {
		return nil, fmt.Errorf("%w: zero recipient key", domain.ErrInvalidKeyFormat)
	}
	pub := [32]byte(recipient)
	out, err := box.SealAnonymous(nil, key.Slice(), &pub, Rand)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCryptoUnavailable, err)
	}
	return out, nil
}

// UnwrapKey opens a key sealed by WrapKey using kp.
func UnwrapKey(wrapped []byte, kp domain.KeyPair) (domain.SymmetricKey, error) {
	var key domain.SymmetricKey
	if len(wrapped) != wrappedKeyLen {
		return key, fmt.Errorf("%w: wrapped key is %d bytes, want %d",
			domain.ErrInvalidKeyFormat, len(wrapped), wrappedKeyLen)
	}
	pub, priv := [32]byte(kp.Public), [32]byte(kp.Private)
	defer memzero.Key(&priv)

	raw, ok := box.OpenAnonymous(nil, wrapped, &pub, &priv)
	if !ok {
		return key, fmt.Errorf("%w: wrapped key does not open with our key pair", domain.ErrInvalidKeyFormat)
	}
	copy(key[:], raw)
	memzero.Zero(raw)
	return key, nil
}
