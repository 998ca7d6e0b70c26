package store

import (
	"encoding/json"
	"sync"

	"seahorse/internal/domain"
)

// SymmetricKeysKey is the well-known LocalStore key holding every pairwise
// key. Its value is a JSON object of id to an array of byte values, e.g.
// {"alice:bob":[12,250,...]}.
const SymmetricKeysKey = "symmetricKeys"

// KeyStore persists pairwise symmetric keys inside a LocalStore.
type KeyStore struct {
	local domain.LocalStore
	mu    sync.Mutex
}

// NewKeyStore returns a KeyStore over local.
func NewKeyStore(local domain.LocalStore) *KeyStore {
	return &KeyStore{local: local}
}

// SaveKey overwrites the entry for id.
func (s *KeyStore) SaveKey(id domain.PairwiseKeyID, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if err != nil {
		return err
	}
	m[string(id)] = encodeByteArray(key)
	return s.write(m)
}

// DeleteKey removes the entry for id, if any.
func (s *KeyStore) DeleteKey(id domain.PairwiseKeyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := m[string(id)]; !ok {
		return nil
	}
	delete(m, string(id))
	return s.write(m)
}

// LoadKeys returns every stored entry. An entry that is not an array of
// byte values comes back as nil so callers can report and skip it.
func (s *KeyStore) LoadKeys() (map[domain.PairwiseKeyID][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make(map[domain.PairwiseKeyID][]byte, len(m))
	for id, raw := range m {
		out[domain.PairwiseKeyID(id)] = decodeByteArray(raw)
	}
	return out, nil
}

// Clear drops every stored key.
func (s *KeyStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local.Delete(SymmetricKeysKey)
}

func (s *KeyStore) read() (map[string]json.RawMessage, error) {
	b, ok, err := s.local.Get(SymmetricKeysKey)
	if err != nil {
		return nil, err
	}
	m := make(map[string]json.RawMessage)
	if !ok || len(b) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *KeyStore) write(m map[string]json.RawMessage) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.local.Put(SymmetricKeysKey, b)
}

// encodeByteArray renders b as a JSON array of numbers rather than base64.
func encodeByteArray(b []byte) json.RawMessage {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	out, _ := json.Marshal(ints)
	return out
}

func decodeByteArray(raw json.RawMessage) []byte {
	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return nil
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil
		}
		out[i] = byte(v)
	}
	return out
}

var _ domain.SymmetricKeyStore = (*KeyStore)(nil)
