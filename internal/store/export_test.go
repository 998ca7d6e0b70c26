package store

// FastScrypt lowers the KDF cost so tests stay quick.
func FastScrypt(s *IdentityFileStore) { s.cost = kdfParams{N: 1 << 10, R: 8, P: 1} }
