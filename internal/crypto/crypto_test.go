package crypto_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"seahorse/internal/crypto"
	"seahorse/internal/domain"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy source gone") }

func TestWrapKey_RoundTrip(t *testing.T) {
	alice, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	key, err := crypto.NewSymmetricKey()
	require.NoError(t, err)

	wrapped, err := crypto.WrapKey(key, alice.Public)
	require.NoError(t, err)
	require.False(t, bytes.Contains(wrapped, key.Slice()), "wrapped key must not contain the raw key")

	got, err := crypto.UnwrapKey(wrapped, alice)
	require.NoError(t, err)
	require.Equal(t, key, got)
}

func TestUnwrapKey_WrongKeyPairFails(t *testing.T) {
	alice, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	mallory, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	key, err := crypto.NewSymmetricKey()
	require.NoError(t, err)
	wrapped, err := crypto.WrapKey(key, alice.Public)
	require.NoError(t, err)

	_, err = crypto.UnwrapKey(wrapped, mallory)
	require.ErrorIs(t, err, domain.ErrInvalidKeyFormat)

	_, err = crypto.UnwrapKey(wrapped[:10], alice)
	require.ErrorIs(t, err, domain.ErrInvalidKeyFormat)
}

func TestWrapKey_ZeroRecipientRejected(t *testing.T) {
	_, err := crypto.WrapKey(domain.SymmetricKey{1}, domain.X25519Public{})
	require.ErrorIs(t, err, domain.ErrInvalidKeyFormat)
}

func TestSealOpen(t *testing.T) {
	key, err := crypto.NewSymmetricKey()
	require.NoError(t, err)
	nonce, err := crypto.NewNonce()
	require.NoError(t, err)
	require.Len(t, nonce, crypto.NonceBytes)

	ct, err := crypto.Seal(key, nonce, []byte("hello"))
	require.NoError(t, err)

	pt, err := crypto.Open(key, nonce, ct)
	require.NoError(t, err)
	require.Equal(t, "hello", string(pt))

	ct[0] ^= 0x01
	_, err = crypto.Open(key, nonce, ct)
	require.Error(t, err)
}

func TestFailingRandomness(t *testing.T) {
	orig := crypto.Rand
	crypto.Rand = failingReader{}
	t.Cleanup(func() { crypto.Rand = orig })

	_, err := crypto.GenerateKeyPair()
	require.ErrorIs(t, err, domain.ErrCryptoUnavailable)
	_, err = crypto.NewSymmetricKey()
	require.ErrorIs(t, err, domain.ErrCryptoUnavailable)
	_, err = crypto.NewNonce()
	require.ErrorIs(t, err, domain.ErrCryptoUnavailable)
}

func TestPublicFromPrivate(t *testing.T) {
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	pub, err := crypto.PublicFromPrivate(kp.Private)
	require.NoError(t, err)
	require.Equal(t, kp.Public, pub)
	require.Len(t, crypto.Fingerprint(pub).String(), 20)
}

func TestFromB64_ToleratesMissingPadding(t *testing.T) {
	b, err := crypto.FromB64(" aGk ")
	require.NoError(t, err)
	require.Equal(t, "hi", string(b))
}

func TestSameKey(t *testing.T) {
	a, err := crypto.NewSymmetricKey()
	require.NoError(t, err)
	b := a
	require.True(t, crypto.SameKey(a, b))
	b[31] ^= 0x80
	require.False(t, crypto.SameKey(a, b))
}
