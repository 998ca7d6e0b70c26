// Package payload encrypts application data for a friend and moves it
// through the registry's per-account slots.
//
// Encrypt, Decrypt and DecryptString never fail loudly: any problem
// (missing key, malformed packet, failed authentication) is logged and
// reported as nil. Operations that touch the registry return errors.
package payload
