// Package crypto exposes the minimal primitives used by Seahorse.
//
// Contents
//
//   - X25519 key generation and clamping (GenerateKeyPair)
//   - Anonymous key wrapping to a peer public key (WrapKey, UnwrapKey)
//   - ChaCha20-Poly1305 sealing with caller-visible nonces (NewNonce, Seal, Open)
//   - Random symmetric keys (NewSymmetricKey)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//   - Base64 helpers used by every wire format (B64, FromB64)
//
// # Notes
//
// All randomness is read from Rand, which defaults to crypto/rand. A failing
// reader surfaces as domain.ErrCryptoUnavailable.
package crypto
