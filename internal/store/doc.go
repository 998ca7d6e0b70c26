// Package store provides device-local persistence for Seahorse.
//
// It contains concrete implementations of the domain storage interfaces:
//   - LocalStore backends: BadgerStore (durable, embedded) and MemoryStore
//   - KeyStore: the pairwise symmetric key map, kept under the single
//     well-known key "symmetricKeys" as JSON arrays of byte values
//   - IdentityFileStore: the account keypair, sealed with a passphrase
//     (scrypt + ChaCha20-Poly1305) and written atomically
//
// All methods are concurrency-safe via internal locking. Nothing in this
// package ever leaves the device.
package store
