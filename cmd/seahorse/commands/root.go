package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"seahorse/internal/app"
	"seahorse/internal/domain"
	"seahorse/internal/util/logging"
)

// ErrPassphraseRequired is returned by commands that need the persisted keypair.
var ErrPassphraseRequired = errors.New("passphrase required (-p or $" + PassphraseEnv + ")")

// PassphraseEnv is read when --passphrase is not given.
const PassphraseEnv = "SEAHORSE_PASSPHRASE"

// env is the state shared by every subcommand of one invocation.
type env struct {
	home       string
	passphrase string
	account    string
	registry   string
	timeout    time.Duration
	logLevel   string
	logFormat  string

	cfg app.Config
	log *logrus.Logger

	// override, when set, replaces the registry built from cfg.
	override domain.Registry
}

// Execute runs the CLI with os.Args. An interrupt cancels in-flight
// registry calls.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&env{})
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:          "seahorse",
		Short:        "Share end-to-end encrypted data with friends",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&e.home, "home", "", "config dir (default ~/.seahorse)")
	pf.StringVarP(&e.passphrase, "passphrase", "p", "", "passphrase protecting your keypair (or $"+PassphraseEnv+")")
	pf.StringVar(&e.account, "account", "", "your account id")
	pf.StringVar(&e.registry, "registry", "", "registry base URL (e.g. http://127.0.0.1:8080)")
	pf.DurationVar(&e.timeout, "timeout", 0, "timeout per registry call")
	pf.StringVar(&e.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&e.logFormat, "log-format", "", "log format (text or json)")

	root.AddCommand(
		initCmd(e),
		fingerprintCmd(e),
		keysCmd(e),
		friendCmd(e),
		shareCmd(e),
		fetchCmd(e),
		messageCmd(e),
		resetCmd(e),
	)
	return root
}

// load resolves the home directory, reads the config file and applies flags
// that were set explicitly.
func (e *env) load(cmd *cobra.Command) error {
	if e.home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		e.home = filepath.Join(dir, ".seahorse")
	}
	if err := os.MkdirAll(e.home, 0o700); err != nil {
		return err
	}

	cfg, err := app.LoadConfig(e.home)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("account") {
		cfg.Account = domain.AccountID(e.account)
	}
	if flags.Changed("registry") {
		cfg.RegistryURL = e.registry
	}
	if flags.Changed("timeout") {
		cfg.Timeout = e.timeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = e.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = e.logFormat
	}
	cfg.Passphrase = e.passphrase
	if cfg.Passphrase == "" {
		cfg.Passphrase = os.Getenv(PassphraseEnv)
	}
	cfg.Registry = e.override

	log, err := logging.NewTo(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	e.cfg, e.log = cfg, log
	return nil
}

// wire builds the dependency graph. The caller must Close it.
func (e *env) wire() (*app.Wire, error) {
	w, err := app.NewWire(e.cfg, e.log)
	if err != nil {
		return nil, fmt.Errorf("set up %s: %w", e.cfg.Account, err)
	}
	return w, nil
}

// withWire runs fn with a freshly built Wire.
func (e *env) withWire(fn func(w *app.Wire) error) error {
	w, err := e.wire()
	if err != nil {
		return err
	}
	defer w.Close()
	return fn(w)
}
