// Package handshake holds the pure rules of the friend-request handshake.
//
// # Identifiers
//
// PairwiseKeyID names the symmetric key two accounts share. It sorts the two
// account ids and joins them with ':' so both sides resolve the same slot.
// RequestID names a friend request record as "<from>-<to>" and keeps the
// direction of the request.
//
// # State machine
//
// A record is created pending. From there:
//
//	pending  --accept--> accepted
//	pending  --reject--> rejected
//	accepted --remove--> removed
//
// Every other (status, event) pair is rejected with domain.ErrInvalidState, so
// a request is decided exactly once and removed at most once.
package handshake
