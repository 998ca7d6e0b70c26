package store

import (
	"encoding/json"
	"path/filepath"
	"sync"

	"seahorse/internal/domain"
	"seahorse/internal/util/memzero"
)

const idFilename = "identity.json.enc"

// IdentityFileStore persists the local keypair to disk, sealed with a
// passphrase.
type IdentityFileStore struct {
	dir string
	mu  sync.Mutex

	cost kdfParams // tests lower it
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir.
func NewIdentityFileStore(dir string) *IdentityFileStore {
	return &IdentityFileStore{dir: dir, cost: defaultCost()}
}

// SaveIdentity writes the encrypted identity to disk.
func (s *IdentityFileStore) SaveIdentity(passphrase string, id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	defer memzero.Zero(raw)

	sealed, err := sealWithPassphrase(passphrase, raw, s.cost)
	if err != nil {
		return err
	}
	return replaceFile(filepath.Join(s.dir, idFilename), sealed, 0o600)
}

// LoadIdentity reads and decrypts the identity. A missing file is reported
// as ok == false.
func (s *IdentityFileStore) LoadIdentity(passphrase string) (domain.Identity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readOptional(filepath.Join(s.dir, idFilename))
	if err != nil {
		return domain.Identity{}, false, err
	}
	if b == nil {
		return domain.Identity{}, false, nil
	}
	pt, err := openWithPassphrase(passphrase, b)
	if err != nil {
		return domain.Identity{}, false, err
	}
	defer memzero.Zero(pt)

	var id domain.Identity
	if err := json.Unmarshal(pt, &id); err != nil {
		return domain.Identity{}, false, err
	}
	return id, true, nil
}

// Compile-time assertion that IdentityFileStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
