package domain

import "errors"

var (
	// ErrNotInitialized is returned when key material is used before Initialize.
	ErrNotInitialized = errors.New("key manager not initialized")
	// ErrCryptoUnavailable means the platform could not supply randomness or
	// primitives. It is fatal and not retried.
	ErrCryptoUnavailable = errors.New("cryptographic primitives unavailable")
	// ErrInvalidKeyFormat marks a malformed counterparty key or wrapped key.
	ErrInvalidKeyFormat = errors.New("invalid key format")
	// ErrInvalidPacketFormat marks a malformed encrypted packet.
	ErrInvalidPacketFormat = errors.New("invalid packet format")
	// ErrUnsupportedVersion is returned for packets of another codec version.
	ErrUnsupportedVersion = errors.New("unsupported packet version")

	ErrRequestNotFound = errors.New("friend request not found")
	ErrInvalidState    = errors.New("friend request in invalid state")
	// ErrKeyExchangeVerificationFailed aborts an accept before the registry is
	// updated; the request stays pending.
	ErrKeyExchangeVerificationFailed = errors.New("key exchange verification failed")
	ErrFriendshipNotFound            = errors.New("friend relationship not found")

	ErrSelfRequest     = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends  = errors.New("already friends")
	ErrCrossedRequest  = errors.New("peer already sent you a pending request; accept it instead")
	ErrKeyMismatch     = errors.New("echoed key does not match local key")
	ErrNoSecureChannel = errors.New("no secure channel established with peer")
	ErrNoAccount       = errors.New("no account configured")
	ErrWeakPassphrase  = errors.New("passphrase is too weak")
)
