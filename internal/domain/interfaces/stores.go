package interfaces

import domaintypes "seahorse/internal/domain/types"

// LocalStore is durable device-local key/value storage (the browser's
// localStorage on the original platform).
type LocalStore interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// SymmetricKeyStore persists pairwise symmetric keys on the device.
type SymmetricKeyStore interface {
	// SaveKey overwrites any previous key under id.
	SaveKey(id domaintypes.PairwiseKeyID, key []byte) error
	DeleteKey(id domaintypes.PairwiseKeyID) error
	// LoadKeys returns the raw stored entries. Entries are not validated.
	LoadKeys() (map[domaintypes.PairwiseKeyID][]byte, error)
	Clear() error
}

// IdentityStore persists your keypair encrypted under a passphrase.
type IdentityStore interface {
	SaveIdentity(passphrase string, id domaintypes.Identity) error
	LoadIdentity(passphrase string) (domaintypes.Identity, bool, error)
}
