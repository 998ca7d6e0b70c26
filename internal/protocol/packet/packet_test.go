package packet_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"seahorse/internal/crypto"
	"seahorse/internal/domain"
	"seahorse/internal/protocol/packet"
)

func newKey(t *testing.T) domain.SymmetricKey {
	t.Helper()
	k, err := crypto.NewSymmetricKey()
	require.NoError(t, err)
	return k
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := newKey(t)
	payloads := []any{
		map[string]any{"note": "hello"},
		map[string]any{"calendar": []any{"standup", "therapy"}, "emails": map[string]any{"unread": 3.0}},
		"plain string",
		[]any{1.0, 2.0, 3.0},
		nil,
	}
	for _, in := range payloads {
		p, err := packet.SealJSON(key, in)
		require.NoError(t, err)
		require.Equal(t, packet.Version, p.Version)

		pt, err := packet.Open(key, p)
		require.NoError(t, err)

		want, err := json.Marshal(in)
		require.NoError(t, err)
		require.JSONEq(t, string(want), string(pt))
	}
}

func TestSeal_FreshNonceEachTime(t *testing.T) {
	key := newKey(t)
	a, err := packet.Seal(key, []byte(`{"note":"same"}`))
	require.NoError(t, err)
	b, err := packet.Seal(key, []byte(`{"note":"same"}`))
	require.NoError(t, err)

	require.NotEqual(t, a.IV, b.IV)
	require.NotEqual(t, a.Data, b.Data)

	iv, err := crypto.FromB64(a.IV)
	require.NoError(t, err)
	require.Len(t, iv, 12)
}

func TestOpen_VersionMismatchFailsClosed(t *testing.T) {
	key := newKey(t)
	p, err := packet.Seal(key, []byte(`{}`))
	require.NoError(t, err)

	for _, v := range []int{0, 2, -1} {
		p.Version = v
		_, err = packet.Open(key, p)
		require.ErrorIs(t, err, domain.ErrUnsupportedVersion)
	}
}

func TestOpen_TamperedData(t *testing.T) {
	key := newKey(t)
	p, err := packet.Seal(key, []byte(`{"note":"hello"}`))
	require.NoError(t, err)

	ct, err := crypto.FromB64(p.Data)
	require.NoError(t, err)
	ct[0] ^= 0x01
	p.Data = crypto.B64(ct)

	_, err = packet.Open(key, p)
	require.ErrorIs(t, err, packet.ErrAuthentication)
}

func TestOpen_WrongKey(t *testing.T) {
	p, err := packet.Seal(newKey(t), []byte(`{}`))
	require.NoError(t, err)
	_, err = packet.Open(newKey(t), p)
	require.ErrorIs(t, err, packet.ErrAuthentication)
}

func TestOpen_MalformedFields(t *testing.T) {
	key := newKey(t)
	good, err := packet.Seal(key, []byte(`{}`))
	require.NoError(t, err)

	badIV := good
	badIV.IV = crypto.B64(make([]byte, 8))
	_, err = packet.Open(key, badIV)
	require.ErrorIs(t, err, domain.ErrInvalidPacketFormat)

	notB64 := good
	notB64.Data = "%%%"
	_, err = packet.Open(key, notB64)
	require.ErrorIs(t, err, domain.ErrInvalidPacketFormat)
}

func TestSeal_ChecksumCountsUTF16Units(t *testing.T) {
	key := newKey(t)
	plaintext := []byte(`{"note":"héllo 🙂"}`)
	require.Len(t, plaintext, 22)

	p, err := packet.Seal(key, plaintext)
	require.NoError(t, err)
	sum, err := crypto.FromB64(p.Checksum)
	require.NoError(t, err)
	require.Equal(t, "19", string(sum))
}

func TestOpen_IgnoresChecksumHint(t *testing.T) {
	key := newKey(t)
	plaintext := []byte(`{"note":"héllo 🙂"}`)
	p, err := packet.Seal(key, plaintext)
	require.NoError(t, err)

	for _, hint := range []string{"19", "22", "999", ""} {
		q := p
		q.Checksum = crypto.B64([]byte(hint))
		got, err := packet.Open(key, q)
		require.NoError(t, err, hint)
		require.Equal(t, plaintext, got)
	}
}

func TestMarshalParse_WireShape(t *testing.T) {
	key := newKey(t)
	p, err := packet.Seal(key, []byte(`{"a":1}`))
	require.NoError(t, err)

	s, err := packet.Marshal(p)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &fields))
	require.ElementsMatch(t, []string{"version", "iv", "data", "checksum"}, keys(fields))
	require.Equal(t, 1.0, fields["version"])

	sum, err := crypto.FromB64(p.Checksum)
	require.NoError(t, err)
	require.Equal(t, "7", string(sum))

	back, err := packet.Parse(s)
	require.NoError(t, err)
	require.Equal(t, p, back)

	_, err = packet.Parse("not json")
	require.ErrorIs(t, err, domain.ErrInvalidPacketFormat)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
