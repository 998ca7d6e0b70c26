package interfaces

import (
	"context"

	domaintypes "seahorse/internal/domain/types"
)

// Registry is the shared store holding friend requests and per-account
// encrypted slots. It is a key/value abstraction; protocol rules live in the
// services, not here.
type Registry interface {
	PutFriendRequest(ctx context.Context, id domaintypes.RequestID, request domaintypes.FriendRequest) error
	GetFriendRequest(ctx context.Context, id domaintypes.RequestID) (domaintypes.FriendRequest, bool, error)
	ListFriendRequests(ctx context.Context, filter domaintypes.RequestFilter) ([]domaintypes.FriendRequest, error)
	DeleteFriendRequest(ctx context.Context, id domaintypes.RequestID) error

	PutEncryptedSlot(ctx context.Context, account domaintypes.AccountID, ciphertext string) error
	GetEncryptedSlot(ctx context.Context, account domaintypes.AccountID) (string, bool, error)
	DeleteEncryptedSlot(ctx context.Context, account domaintypes.AccountID) error
}

// AccountClearer is implemented by registries that can drop every request
// touching an account, and its slot, in one step.
type AccountClearer interface {
	ClearAccount(ctx context.Context, account domaintypes.AccountID) error
}
