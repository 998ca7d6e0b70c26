package domain

import (
	interfaces "seahorse/internal/domain/interfaces"
	types "seahorse/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	AccountID       = types.AccountID
	Fingerprint     = types.Fingerprint
	PairwiseKeyID   = types.PairwiseKeyID
	RequestID       = types.RequestID
	X25519Public    = types.X25519Public
	X25519Private   = types.X25519Private
	KeyPair         = types.KeyPair
	SymmetricKey    = types.SymmetricKey
	Identity        = types.Identity
	RequestStatus   = types.RequestStatus
	FriendRequest   = types.FriendRequest
	RequestFilter   = types.RequestFilter
	EncryptedPacket = types.EncryptedPacket
	ChatMessage     = types.ChatMessage
)

// Request status values.
const (
	StatusPending  = types.StatusPending
	StatusAccepted = types.StatusAccepted
	StatusRejected = types.StatusRejected
	StatusRemoved  = types.StatusRemoved
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	LocalStore        = interfaces.LocalStore
	SymmetricKeyStore = interfaces.SymmetricKeyStore
	IdentityStore     = interfaces.IdentityStore
	Registry          = interfaces.Registry
	AccountClearer    = interfaces.AccountClearer
	KeyManager        = interfaces.KeyManager
	ChannelVerifier   = interfaces.ChannelVerifier
	FriendService     = interfaces.FriendService
	PayloadService    = interfaces.PayloadService
)

// ParseRequestStatus maps a lowercase status name to its value.
var ParseRequestStatus = types.ParseRequestStatus
