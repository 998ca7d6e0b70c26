package app

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"seahorse/internal/registry"
	friendsvc "seahorse/internal/services/friend"
	keysvc "seahorse/internal/services/keys"
	payloadsvc "seahorse/internal/services/payload"
	"seahorse/internal/store"
)

// LocalDB is the device store directory inside the home directory.
const LocalDB = "local.db"

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	*App

	Config Config
	Local  *store.BadgerStore
	Log    logrus.FieldLogger
}

// NewWire constructs the dependency graph from cfg and initialises the key
// manager. Call Close when done.
func NewWire(cfg Config, log logrus.FieldLogger) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}

	local, err := store.OpenBadger(filepath.Join(cfg.Home, LocalDB), log.WithField("component", "store"))
	if err != nil {
		return nil, fmt.Errorf("open device store: %w", err)
	}

	// Registry client (uses provided HTTP client)
	reg := cfg.Registry
	if reg == nil {
		rc := registry.NewHTTPClient(cfg.RegistryURL, cfg.Timeout)
		if cfg.HTTP != nil {
			rc.HTTP = cfg.HTTP
		} else {
			rc.HTTP = http.DefaultClient
		}
		reg = rc
	}

	keyOpts := []keysvc.Option{keysvc.WithLogger(log)}
	if cfg.Passphrase != "" {
		keyOpts = append(keyOpts, keysvc.WithIdentityStore(store.NewIdentityFileStore(cfg.Home), cfg.Passphrase))
	}
	km := keysvc.New(cfg.Account, store.NewKeyStore(local), keyOpts...)
	if err := km.Initialize(); err != nil {
		_ = local.Close()
		return nil, err
	}

	// High-level services
	payloadSvc := payloadsvc.New(km, reg, payloadsvc.WithLogger(log))
	friendSvc := friendsvc.New(km, reg, payloadSvc, friendsvc.WithLogger(log))

	return &Wire{
		App:    New(km, friendSvc, payloadSvc, reg),
		Config: cfg,
		Local:  local,
		Log:    log,
	}, nil
}

// Close releases the device store.
func (w *Wire) Close() error {
	return w.Local.Close()
}
