// Package packet implements the versioned encrypted envelope friends use to
// exchange data.
//
// # Format
//
// A packet is JSON:
//
//	{"version":1,"iv":"<b64 12 bytes>","data":"<b64 ciphertext+tag>","checksum":"<b64 decimal UTF-16 length>"}
//
// The payload is sealed with ChaCha20-Poly1305 under the pairwise key, using a
// fresh random nonce per packet. The checksum is a length hint that Open
// ignores; the AEAD tag authenticates the content.
//
// # Failure
//
// Open checks the version before anything else and never attempts to decrypt
// a packet of another version.
package packet
