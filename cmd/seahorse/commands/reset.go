package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"seahorse/internal/app"
)

func resetCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all your registry records and every local key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("this deletes all friendships and shared data; pass --yes to continue")
			}
			return e.withWire(func(w *app.Wire) error {
				if err := w.Friends.ClearAll(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "all friend data cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
