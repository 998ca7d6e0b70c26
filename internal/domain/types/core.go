package types

// AccountID is an externally authenticated account identifier (a wallet
// account on the original platform).
type AccountID string

// String returns the string form of the account id.
func (a AccountID) String() string { return string(a) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// PairwiseKeyID names the symmetric key shared by two accounts. It is
// order-independent: both participants resolve the same id.
type PairwiseKeyID string

// String returns the string form of the identifier.
func (id PairwiseKeyID) String() string { return string(id) }

// RequestID identifies a friend request record. Unlike PairwiseKeyID it is
// directional ("<from>-<to>").
type RequestID string

// String returns the string form of the identifier.
func (id RequestID) String() string { return string(id) }
