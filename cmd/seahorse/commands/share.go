package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"seahorse/internal/app"
	"seahorse/internal/domain"
)

func shareCmd(e *env) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "share <peer> [json]",
		Short: "Encrypt JSON data for peer and store it in your slot",
		Long: "Encrypt JSON data for peer and store it in your slot, replacing what was there.\n" +
			"The data comes from the second argument, from --file, or from stdin when --file is \"-\".",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readPayload(cmd, args[1:], file)
			if err != nil {
				return err
			}
			return e.withWire(func(w *app.Wire) error {
				if err := w.Payload.EncryptAndStore(cmd.Context(), raw, domain.AccountID(args[0])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "shared %d bytes with %s\n", len(raw), args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read JSON from file (- for stdin)")
	return cmd
}

func readPayload(cmd *cobra.Command, args []string, file string) (json.RawMessage, error) {
	var (
		raw []byte
		err error
	)
	switch {
	case len(args) == 1 && file != "":
		return nil, fmt.Errorf("give data as an argument or with --file, not both")
	case len(args) == 1:
		raw = []byte(args[0])
	case file == "-":
		raw, err = io.ReadAll(cmd.InOrStdin())
	case file != "":
		raw, err = os.ReadFile(file)
	default:
		return nil, fmt.Errorf("no data to share")
	}
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("data is not valid JSON")
	}
	return json.RawMessage(raw), nil
}
