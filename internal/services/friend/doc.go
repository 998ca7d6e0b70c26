// Package friend runs the friend-request handshake against the registry.
//
// The initiator publishes a pending request carrying its public key and a
// fresh pairwise key K. The responder adopts K, proves locally that it can
// encrypt and decrypt with it, and only then marks the request accepted,
// echoing K wrapped under the initiator's public key. The initiator can
// check that echo with ConfirmFriendship.
//
// Every registry call takes a context; the service itself never retries.
package friend
