package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"seahorse/internal/app"
	"seahorse/internal/domain"
)

func messageCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "message <peer> <text>...",
		Short: "Append a chat message to the conversation with peer",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withWire(func(w *app.Wire) error {
				if err := w.Payload.PostMessage(cmd.Context(), domain.AccountID(args[0]), strings.Join(args[1:], " ")); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "sent")
				return nil
			})
		},
	}
}
