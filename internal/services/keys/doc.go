// Package keys holds one participant's key material for a session.
//
// A Manager owns:
//   - the account's X25519 keypair, generated on Initialize or restored from
//     a passphrase-sealed identity store,
//   - the in-memory map of pairwise symmetric keys, mirrored to a durable
//     SymmetricKeyStore on every write.
//
// Managers are constructed explicitly and passed to the services that need
// them. There is no package-level instance.
package keys
