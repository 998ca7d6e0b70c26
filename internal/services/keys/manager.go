package keys

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"seahorse/internal/crypto"
	"seahorse/internal/domain"
	"seahorse/internal/protocol/handshake"
	"seahorse/internal/util/memzero"
)

// Manager implements domain.KeyManager.
type Manager struct {
	self  domain.AccountID
	store domain.SymmetricKeyStore
	log   logrus.FieldLogger

	ids        domain.IdentityStore
	passphrase string

	mu        sync.RWMutex
	kp        *domain.KeyPair
	symmetric map[domain.PairwiseKeyID]domain.SymmetricKey
}

// Option configures a Manager.
type Option func(*Manager)

// WithIdentityStore persists the keypair in ids, sealed with passphrase, so
// later sessions reuse it.
func WithIdentityStore(ids domain.IdentityStore, passphrase string) Option {
	return func(m *Manager) {
		m.ids = ids
		m.passphrase = passphrase
	}
}

// WithLogger sets the logger. The default is logrus' standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) { m.log = log }
}

// New returns a Manager for self backed by store. It holds no keypair until
// Initialize is called.
func New(self domain.AccountID, store domain.SymmetricKeyStore, opts ...Option) *Manager {
	m := &Manager{
		self:      self,
		store:     store,
		log:       logrus.StandardLogger(),
		symmetric: make(map[domain.PairwiseKeyID]domain.SymmetricKey),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.WithField("component", "keys")
	return m
}

// Self returns the account this manager holds keys for.
func (m *Manager) Self() domain.AccountID { return m.self }

// Initialize obtains a keypair and loads stored symmetric keys. Calling it
// again once a keypair is held does nothing.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	if m.kp != nil {
		m.mu.Unlock()
		return nil
	}
	kp, err := m.loadOrCreateKeyPair()
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.kp = &kp
	m.mu.Unlock()

	if err := m.LoadStoredKeys(); err != nil {
		m.log.WithError(err).Warn("could not load stored symmetric keys")
	}
	return nil
}

// loadOrCreateKeyPair must be called with m.mu held.
func (m *Manager) loadOrCreateKeyPair() (domain.KeyPair, error) {
	persist := m.ids != nil && m.passphrase != ""
	if persist {
		id, ok, err := m.ids.LoadIdentity(m.passphrase)
		if err != nil {
			return domain.KeyPair{}, fmt.Errorf("load identity: %w", err)
		}
		if ok {
			if id.Account != "" && id.Account != m.self {
				return domain.KeyPair{}, fmt.Errorf("stored identity belongs to %q, not %q", id.Account, m.self)
			}
			m.log.Debug("restored keypair from identity store")
			return id.KeyPair, nil
		}
		if err := checkPassphrase(m.passphrase); err != nil {
			return domain.KeyPair{}, err
		}
	}

	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		return domain.KeyPair{}, err
	}
	if persist {
		id := domain.Identity{Account: m.self, KeyPair: kp, Created: time.Now().UTC().Unix()}
		if err := m.ids.SaveIdentity(m.passphrase, id); err != nil {
			return domain.KeyPair{}, fmt.Errorf("save identity: %w", err)
		}
	}
	m.log.Info("generated keypair")
	return kp, nil
}

func (m *Manager) keyPair() (domain.KeyPair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.kp == nil {
		return domain.KeyPair{}, domain.ErrNotInitialized
	}
	return *m.kp, nil
}

// ExportPublicKey returns the base64 public key.
func (m *Manager) ExportPublicKey() (string, error) {
	kp, err := m.keyPair()
	if err != nil {
		return "", err
	}
	return crypto.B64(kp.Public.Slice()), nil
}

// ImportPublicKey decodes a counterparty public key.
func (m *Manager) ImportPublicKey(encoded string) (domain.X25519Public, error) {
	return parsePublicKey(encoded)
}

// Fingerprint returns the short fingerprint of the local public key.
func (m *Manager) Fingerprint() (domain.Fingerprint, error) {
	kp, err := m.keyPair()
	if err != nil {
		return "", err
	}
	return crypto.Fingerprint(kp.Public), nil
}

// GenerateSymmetricKey returns 256 fresh random bits.
func (m *Manager) GenerateSymmetricKey() (domain.SymmetricKey, error) {
	return crypto.NewSymmetricKey()
}

// StoreBidirectionalKey persists key as the one shared with peer and makes it
// available to both directions of the pair. A previous key is replaced.
func (m *Manager) StoreBidirectionalKey(peer domain.AccountID, key domain.SymmetricKey) error {
	id := handshake.PairwiseKeyID(m.self, peer)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.SaveKey(id, key.Slice()); err != nil {
		return fmt.Errorf("save key %s: %w", id, err)
	}
	m.symmetric[id] = key
	m.log.WithField("key_id", id).Debug("stored symmetric key")
	return nil
}

// RemoveBidirectionalKey forgets the key shared with peer.
func (m *Manager) RemoveBidirectionalKey(peer domain.AccountID) error {
	id := handshake.PairwiseKeyID(m.self, peer)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.DeleteKey(id); err != nil {
		return fmt.Errorf("delete key %s: %w", id, err)
	}
	delete(m.symmetric, id)
	return nil
}

// LoadStoredKeys replaces the in-memory keys with the durable ones. Entries
// that do not decode to a key are logged and skipped.
func (m *Manager) LoadStoredKeys() error {
	stored, err := m.store.LoadKeys()
	if err != nil {
		return err
	}

	loaded := make(map[domain.PairwiseKeyID]domain.SymmetricKey, len(stored))
	for id, raw := range stored {
		var k domain.SymmetricKey
		if len(raw) != len(k) {
			m.log.WithFields(logrus.Fields{"key_id": id, "len": len(raw)}).Warn("skipping malformed stored key")
			continue
		}
		copy(k[:], raw)
		memzero.Zero(raw)
		loaded[id] = k
	}

	m.mu.Lock()
	m.symmetric = loaded
	m.mu.Unlock()
	m.log.WithField("count", len(loaded)).Debug("loaded stored keys")
	return nil
}

// StoredKeyIDs lists the ids of all keys in memory, sorted.
func (m *Manager) StoredKeyIDs() []domain.PairwiseKeyID {
	m.mu.RLock()
	ids := make([]domain.PairwiseKeyID, 0, len(m.symmetric))
	for id := range m.symmetric {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// HasKeyFor reports whether a key is shared with peer.
func (m *Manager) HasKeyFor(peer domain.AccountID) bool {
	_, ok := m.SymmetricKey(peer)
	return ok
}

// SymmetricKey returns the key shared with peer.
func (m *Manager) SymmetricKey(peer domain.AccountID) (domain.SymmetricKey, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	k, ok := m.symmetric[handshake.PairwiseKeyID(m.self, peer)]
	return k, ok
}

// WrapKey seals key so only the holder of peer's private key can read it.
func (m *Manager) WrapKey(key domain.SymmetricKey, peer domain.X25519Public) (string, error) {
	wrapped, err := crypto.WrapKey(key, peer)
	if err != nil {
		return "", err
	}
	return crypto.B64(wrapped), nil
}

// UnwrapKey opens a key wrapped for this manager's keypair.
func (m *Manager) UnwrapKey(wrapped string) (domain.SymmetricKey, error) {
	kp, err := m.keyPair()
	if err != nil {
		return domain.SymmetricKey{}, err
	}
	raw, err := crypto.FromB64(wrapped)
	if err != nil {
		return domain.SymmetricKey{}, fmt.Errorf("%w: %v", domain.ErrInvalidKeyFormat, err)
	}
	return crypto.UnwrapKey(raw, kp)
}

// EncodeTransportKey renders key the way an initiator publishes it in a
// pending request.
func (m *Manager) EncodeTransportKey(key domain.SymmetricKey) string {
	return crypto.B64(key.Slice())
}

// DecodeTransportKey reverses EncodeTransportKey.
func (m *Manager) DecodeTransportKey(encoded string) (domain.SymmetricKey, error) {
	raw, err := crypto.FromB64(encoded)
	if err != nil {
		return domain.SymmetricKey{}, fmt.Errorf("%w: %v", domain.ErrInvalidKeyFormat, err)
	}
	var k domain.SymmetricKey
	if len(raw) != len(k) {
		return domain.SymmetricKey{}, fmt.Errorf("%w: key is %d bytes, want %d", domain.ErrInvalidKeyFormat, len(raw), len(k))
	}
	copy(k[:], raw)
	return k, nil
}

// ForgetAll wipes every symmetric key, durable and in memory. The keypair is
// kept.
func (m *Manager) ForgetAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Clear(); err != nil {
		return err
	}
	m.symmetric = make(map[domain.PairwiseKeyID]domain.SymmetricKey)
	return nil
}

// Compile-time assertion that Manager implements domain.KeyManager.
var _ domain.KeyManager = (*Manager)(nil)
