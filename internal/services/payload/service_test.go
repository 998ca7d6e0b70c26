package payload_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"seahorse/internal/domain"
	"seahorse/internal/protocol/packet"
	"seahorse/internal/registry"
	"seahorse/internal/services/keys"
	"seahorse/internal/services/payload"
	"seahorse/internal/store"
	"seahorse/internal/util/logging"
)

type pair struct {
	reg          *registry.Memory
	alice, bob   *payload.Service
	aliceK, bobK *keys.Manager
}

func newManager(t *testing.T, self domain.AccountID) *keys.Manager {
	t.Helper()
	m := keys.New(self, store.NewKeyStore(store.NewMemoryStore()), keys.WithLogger(logging.Discard()))
	require.NoError(t, m.Initialize())
	return m
}

// newPair returns alice and bob sharing one key over a memory registry.
func newPair(t *testing.T, opts ...payload.Option) *pair {
	t.Helper()
	p := &pair{reg: registry.NewMemory(), aliceK: newManager(t, "alice"), bobK: newManager(t, "bob")}

	k, err := p.aliceK.GenerateSymmetricKey()
	require.NoError(t, err)
	require.NoError(t, p.aliceK.StoreBidirectionalKey("bob", k))
	require.NoError(t, p.bobK.StoreBidirectionalKey("alice", k))

	opts = append([]payload.Option{payload.WithLogger(logging.Discard())}, opts...)
	p.alice = payload.New(p.aliceK, p.reg, opts...)
	p.bob = payload.New(p.bobK, p.reg, opts...)
	return p
}

func TestEncrypt_NoKeyIsNil(t *testing.T) {
	p := newPair(t)
	require.Nil(t, p.alice.Encrypt(map[string]int{"x": 1}, "carol"))
	require.Nil(t, p.alice.Decrypt(&domain.EncryptedPacket{Version: 1}, "carol"))
}

func TestEncryptDecrypt_BetweenFriends(t *testing.T) {
	p := newPair(t)
	data := map[string]any{"calendar": []string{"yoga", "therapy"}, "mood": 7}

	pkt := p.alice.Encrypt(data, "bob")
	require.NotNil(t, pkt)
	require.Equal(t, packet.Version, pkt.Version)

	got := p.bob.Decrypt(pkt, "alice")
	require.JSONEq(t, `{"calendar":["yoga","therapy"],"mood":7}`, string(got))

	require.Nil(t, p.bob.Decrypt(nil, "alice"))
}

func TestDecrypt_FailuresAreNil(t *testing.T) {
	p := newPair(t)
	pkt := p.alice.Encrypt("hello", "bob")
	require.NotNil(t, pkt)

	tampered := *pkt
	tampered.Data = tampered.Data[:len(tampered.Data)-4] + "AAAA"
	require.Nil(t, p.bob.Decrypt(&tampered, "alice"))

	future := *pkt
	future.Version = 2
	require.Nil(t, p.bob.Decrypt(&future, "alice"))

	require.Nil(t, p.bob.DecryptString("not json", "alice"))
	require.Nil(t, p.bob.DecryptString(`{"version":1,"iv":"AAAA","data":"AAAA"}`, "alice"))

	raw, err := packet.Marshal(*pkt)
	require.NoError(t, err)
	require.JSONEq(t, `"hello"`, string(p.bob.DecryptString(raw, "alice")))
}

func TestVerifyChannel(t *testing.T) {
	p := newPair(t)
	require.NoError(t, p.alice.VerifyChannel("bob"))
	require.ErrorIs(t, p.alice.VerifyChannel("carol"), domain.ErrNoSecureChannel)
}

func TestEncryptAndStore_RequiresChannel(t *testing.T) {
	p := newPair(t)
	err := p.alice.EncryptAndStore(context.Background(), "x", "carol")
	require.ErrorIs(t, err, domain.ErrNoSecureChannel)

	_, ok, err := p.reg.GetEncryptedSlot(context.Background(), "alice")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEncryptAndStore_FetchedByFriend(t *testing.T) {
	ctx := context.Background()
	p := newPair(t)

	got, err := p.bob.DecryptFetched(ctx, "alice")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, p.alice.EncryptAndStore(ctx, map[string]string{"hello": "bob"}, "bob"))

	got, err = p.bob.DecryptFetched(ctx, "alice")
	require.NoError(t, err)
	require.JSONEq(t, `{"hello":"bob"}`, string(got))

	// A stranger with a different key reads nothing.
	carol := newManager(t, "carol")
	k, _ := carol.GenerateSymmetricKey()
	require.NoError(t, carol.StoreBidirectionalKey("alice", k))
	stranger := payload.New(carol, p.reg, payload.WithLogger(logging.Discard()))
	got, err = stranger.DecryptFetched(ctx, "alice")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestDecryptFetched_GarbageSlotIsNil(t *testing.T) {
	ctx := context.Background()
	p := newPair(t)
	require.NoError(t, p.reg.PutEncryptedSlot(ctx, "alice", "{{{"))

	got, err := p.bob.DecryptFetched(ctx, "alice")
	require.NoError(t, err)
	require.Nil(t, got)
}

type flakyRegistry struct {
	domain.Registry
	fail domain.AccountID
}

func (f flakyRegistry) GetEncryptedSlot(ctx context.Context, a domain.AccountID) (string, bool, error) {
	if a == f.fail {
		return "", false, errors.New("registry unreachable")
	}
	return f.Registry.GetEncryptedSlot(ctx, a)
}

func TestDecryptFetched_RegistryErrorPropagates(t *testing.T) {
	p := newPair(t)
	svc := payload.New(p.bobK, flakyRegistry{Registry: p.reg, fail: "alice"}, payload.WithLogger(logging.Discard()))

	_, err := svc.DecryptFetched(context.Background(), "alice")
	require.Error(t, err)
}

func TestFetchFriendsData_SkipsFailures(t *testing.T) {
	ctx := context.Background()
	p := newPair(t)
	require.NoError(t, p.alice.EncryptAndStore(ctx, map[string]int{"steps": 9000}, "bob"))

	// dave is a friend of bob whose slot cannot be fetched, carol shares
	// nothing readable.
	for _, peer := range []domain.AccountID{"carol", "dave"} {
		k, _ := p.bobK.GenerateSymmetricKey()
		require.NoError(t, p.bobK.StoreBidirectionalKey(peer, k))
	}
	require.NoError(t, p.reg.PutEncryptedSlot(ctx, "carol", "garbage"))

	svc := payload.New(p.bobK, flakyRegistry{Registry: p.reg, fail: "dave"},
		payload.WithLogger(logging.Discard()), payload.WithConcurrency(2))
	out := svc.FetchFriendsData(ctx, []domain.AccountID{"alice", "carol", "dave", "erin"})

	require.Len(t, out, 1)
	require.JSONEq(t, `{"steps":9000}`, string(out["alice"]))
}

func TestPostMessage_BuildsConversation(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := newPair(t, payload.WithClock(func() time.Time { return clock }))

	require.ErrorIs(t, p.alice.PostMessage(ctx, "bob", "  "), payload.ErrEmptyMessage)
	require.ErrorIs(t, p.alice.PostMessage(ctx, "carol", "hi"), domain.ErrNoSecureChannel)

	require.NoError(t, p.alice.PostMessage(ctx, "bob", "hi bob"))
	require.NoError(t, p.alice.PostMessage(ctx, "bob", "you there?"))
	require.NoError(t, p.bob.PostMessage(ctx, "alice", "hey alice"))

	got, err := p.alice.DecryptFetched(ctx, "bob")
	require.NoError(t, err)

	var doc struct {
		Messages []domain.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(got, &doc))
	require.Equal(t, []domain.ChatMessage{
		{Text: "hi bob", Timestamp: "2024-05-01T12:00:00.000Z"},
		{Text: "you there?", Timestamp: "2024-05-01T12:00:00.000Z"},
		{Text: "hey alice", Timestamp: "2024-05-01T12:00:00.000Z"},
	}, doc.Messages)
}

func TestPostMessage_KeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	p := newPair(t)
	require.NoError(t, p.alice.EncryptAndStore(ctx, map[string]any{"calendar": []string{"run"}}, "bob"))
	require.NoError(t, p.alice.PostMessage(ctx, "bob", "see my calendar"))

	got, err := p.bob.DecryptFetched(ctx, "alice")
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(got, &doc))
	require.JSONEq(t, `["run"]`, string(doc["calendar"]))
	require.Contains(t, string(doc["messages"]), "see my calendar")
}
