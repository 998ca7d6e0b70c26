package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"seahorse/internal/app"
	"seahorse/internal/domain"
)

func fetchCmd(e *env) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "fetch [peer]",
		Short: "Fetch and decrypt what a friend shared",
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withWire(func(w *app.Wire) error {
				out := cmd.OutOrStdout()
				if !all {
					data, err := w.Payload.DecryptFetched(cmd.Context(), domain.AccountID(args[0]))
					if err != nil {
						return err
					}
					if data == nil {
						return fmt.Errorf("nothing readable from %s", args[0])
					}
					return printJSON(out, data)
				}

				friends, err := w.Friends.Friends(cmd.Context(), w.Config.Account)
				if err != nil {
					return err
				}
				return printJSON(out, w.Payload.FetchFriendsData(cmd.Context(), friends))
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "fetch from every friend")
	return cmd
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
