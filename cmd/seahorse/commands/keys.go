package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"seahorse/internal/app"
)

func keysCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List pairwise keys held on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withWire(func(w *app.Wire) error {
				for _, id := range w.Keys.StoredKeyIDs() {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}
}
