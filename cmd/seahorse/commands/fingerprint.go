package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"seahorse/internal/app"
)

func fingerprintCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print your public key fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withWire(func(w *app.Wire) error {
				fp, err := w.Keys.Fingerprint()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\n", fp)
				return nil
			})
		},
	}
	return cmd
}
