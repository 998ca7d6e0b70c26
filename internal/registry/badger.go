package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"seahorse/internal/domain"
	"seahorse/internal/protocol/handshake"
)

const (
	requestPrefix = "req:"
	slotPrefix    = "slot:"
)

// Badger is a registry persisted in an embedded Badger database. Requests
// live under "req:<id>" as JSON, slots under "slot:<account>" as raw bytes.
type Badger struct {
	db  *badger.DB
	log logrus.FieldLogger

	closeOnce sync.Once
}

// OpenBadger opens the registry database in dir. An empty dir keeps
// everything in memory.
func OpenBadger(dir string, log logrus.FieldLogger) (*Badger, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open registry db: %w", err)
	}
	return &Badger{db: db, log: log.WithField("component", "registry.badger")}, nil
}

// Close releases the database. It is safe to call more than once.
func (b *Badger) Close() error {
	var err error
	b.closeOnce.Do(func() { err = b.db.Close() })
	return err
}

func requestKey(id domain.RequestID) []byte { return []byte(requestPrefix + id.String()) }
func slotKey(a domain.AccountID) []byte     { return []byte(slotPrefix + a.String()) }

func (b *Badger) PutFriendRequest(_ context.Context, id domain.RequestID, r domain.FriendRequest) error {
	val, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(requestKey(id), val)
	})
}

func (b *Badger) GetFriendRequest(_ context.Context, id domain.RequestID) (domain.FriendRequest, bool, error) {
	var r domain.FriendRequest
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(requestKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.FriendRequest{}, false, nil
	}
	if err != nil {
		return domain.FriendRequest{}, false, fmt.Errorf("get request %s: %w", id, err)
	}
	return r, true, nil
}

// ListFriendRequests scans every request in key order. Records that fail to
// decode are logged and skipped.
func (b *Badger) ListFriendRequests(_ context.Context, f domain.RequestFilter) ([]domain.FriendRequest, error) {
	out := []domain.FriendRequest{}
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 64, Prefix: []byte(requestPrefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var r domain.FriendRequest
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &r) }); err != nil {
				b.log.WithError(err).WithField("key", string(item.Key())).Warn("skipping undecodable request")
				continue
			}
			if f.Match(r) {
				out = append(out, r)
			}
		}
		return nil
	})
	return out, err
}

func (b *Badger) DeleteFriendRequest(_ context.Context, id domain.RequestID) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(requestKey(id))
	})
}

func (b *Badger) PutEncryptedSlot(_ context.Context, account domain.AccountID, ciphertext string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(slotKey(account), []byte(ciphertext))
	})
}

func (b *Badger) GetEncryptedSlot(_ context.Context, account domain.AccountID) (string, bool, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(slotKey(account))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get slot %s: %w", account, err)
	}
	return string(out), true, nil
}

func (b *Badger) DeleteEncryptedSlot(_ context.Context, account domain.AccountID) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(slotKey(account))
	})
}

// ClearAccount removes every request involving account, and its slot, in a
// single transaction.
func (b *Badger) ClearAccount(_ context.Context, account domain.AccountID) error {
	return b.db.Update(func(txn *badger.Txn) error {
		var doomed [][]byte
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, Prefix: []byte(requestPrefix)})
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var r domain.FriendRequest
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &r) }); err != nil {
				continue
			}
			if handshake.Involves(r, account) {
				doomed = append(doomed, item.KeyCopy(nil))
			}
		}
		it.Close()

		for _, k := range doomed {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return txn.Delete(slotKey(account))
	})
}

var (
	_ domain.Registry       = (*Badger)(nil)
	_ domain.AccountClearer = (*Badger)(nil)
)
