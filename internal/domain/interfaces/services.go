package interfaces

import (
	"context"
	"encoding/json"

	domaintypes "seahorse/internal/domain/types"
)

// KeyManager holds one participant's key material for a session.
type KeyManager interface {
	Self() domaintypes.AccountID
	Initialize() error
	ExportPublicKey() (string, error)
	ImportPublicKey(encoded string) (domaintypes.X25519Public, error)
	GenerateSymmetricKey() (domaintypes.SymmetricKey, error)
	StoreBidirectionalKey(peer domaintypes.AccountID, key domaintypes.SymmetricKey) error
	RemoveBidirectionalKey(peer domaintypes.AccountID) error
	LoadStoredKeys() error
	StoredKeyIDs() []domaintypes.PairwiseKeyID
	HasKeyFor(peer domaintypes.AccountID) bool
	SymmetricKey(peer domaintypes.AccountID) (domaintypes.SymmetricKey, bool)
	WrapKey(key domaintypes.SymmetricKey, peer domaintypes.X25519Public) (string, error)
	UnwrapKey(wrapped string) (domaintypes.SymmetricKey, error)
	EncodeTransportKey(key domaintypes.SymmetricKey) string
	DecodeTransportKey(encoded string) (domaintypes.SymmetricKey, error)
	Fingerprint() (domaintypes.Fingerprint, error)
	ForgetAll() error
}

// ChannelVerifier checks that a usable secure channel exists with a peer.
type ChannelVerifier interface {
	VerifyChannel(peer domaintypes.AccountID) error
}

// FriendService runs the friend-request handshake against the registry.
type FriendService interface {
	SendRequest(ctx context.Context, peer domaintypes.AccountID) (domaintypes.FriendRequest, error)
	AcceptRequest(ctx context.Context, from domaintypes.AccountID) (domaintypes.FriendRequest, error)
	RejectRequest(ctx context.Context, from domaintypes.AccountID) error
	ConfirmFriendship(ctx context.Context, peer domaintypes.AccountID) error
	RemoveFriend(ctx context.Context, peer domaintypes.AccountID) error
	PendingRequests(ctx context.Context, account domaintypes.AccountID) ([]domaintypes.FriendRequest, error)
	OutgoingRequests(ctx context.Context, account domaintypes.AccountID) ([]domaintypes.FriendRequest, error)
	Friends(ctx context.Context, account domaintypes.AccountID) ([]domaintypes.AccountID, error)
	ClearAll(ctx context.Context) error
}

// PayloadService encrypts application data for a peer and moves it through
// the registry. Encrypt and Decrypt return nil instead of failing.
type PayloadService interface {
	ChannelVerifier
	Encrypt(data any, peer domaintypes.AccountID) *domaintypes.EncryptedPacket
	Decrypt(packet *domaintypes.EncryptedPacket, peer domaintypes.AccountID) json.RawMessage
	DecryptString(raw string, peer domaintypes.AccountID) json.RawMessage
	EncryptAndStore(ctx context.Context, data any, peer domaintypes.AccountID) error
	DecryptFetched(ctx context.Context, peer domaintypes.AccountID) (json.RawMessage, error)
	FetchFriendsData(ctx context.Context, peers []domaintypes.AccountID) map[domaintypes.AccountID]json.RawMessage
	PostMessage(ctx context.Context, peer domaintypes.AccountID, text string) error
}
