package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"seahorse/internal/app"
)

func initCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Save account settings and create your keypair",
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.Passphrase == "" {
				return ErrPassphraseRequired
			}
			if err := e.cfg.Validate(); err != nil {
				return err
			}
			if err := e.cfg.Save(); err != nil {
				return err
			}
			return e.withWire(func(w *app.Wire) error {
				fp, err := w.Keys.Fingerprint()
				if err != nil {
					return err
				}
				pub, err := w.Keys.ExportPublicKey()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Account: %s\nFingerprint: %s\nPublic key: %s\n", w.Config.Account, fp, pub)
				return nil
			})
		},
	}
}
