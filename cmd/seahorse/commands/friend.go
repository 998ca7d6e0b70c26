package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"seahorse/internal/app"
	"seahorse/internal/domain"
)

func friendCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friend",
		Short: "Manage friend requests and friendships",
	}
	cmd.AddCommand(
		friendRequestCmd(e),
		friendAcceptCmd(e),
		friendRejectCmd(e),
		friendConfirmCmd(e),
		friendRemoveCmd(e),
		friendListCmd(e),
		friendPendingCmd(e),
		friendOutgoingCmd(e),
	)
	return cmd
}

func friendRequestCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "request <peer>",
		Short: "Send a friend request carrying a fresh shared key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withWire(func(w *app.Wire) error {
				if _, err := w.Friends.SendRequest(cmd.Context(), domain.AccountID(args[0])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "request sent to %s\n", args[0])
				return nil
			})
		},
	}
}

func friendAcceptCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "accept <peer>",
		Short: "Accept a pending request from peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withWire(func(w *app.Wire) error {
				if _, err := w.Friends.AcceptRequest(cmd.Context(), domain.AccountID(args[0])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "now friends with %s\n", args[0])
				return nil
			})
		},
	}
}

func friendRejectCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <peer>",
		Short: "Decline a pending request from peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withWire(func(w *app.Wire) error {
				if err := w.Friends.RejectRequest(cmd.Context(), domain.AccountID(args[0])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "request from %s rejected\n", args[0])
				return nil
			})
		},
	}
}

func friendConfirmCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <peer>",
		Short: "Check the key peer echoed when accepting your request",
		Long: "Check the key peer echoed when accepting your request.\n" +
			"The echo is sealed to the keypair that sent the request, so confirm needs the passphrase that persists it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.Passphrase == "" {
				return fmt.Errorf("%w: friend confirm opens the echoed key with your persisted keypair", ErrPassphraseRequired)
			}
			return e.withWire(func(w *app.Wire) error {
				if err := w.Friends.ConfirmFriendship(cmd.Context(), domain.AccountID(args[0])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "key shared with %s confirmed\n", args[0])
				return nil
			})
		},
	}
}

func friendRemoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <peer>",
		Short: "End an accepted friendship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withWire(func(w *app.Wire) error {
				if err := w.Friends.RemoveFriend(cmd.Context(), domain.AccountID(args[0])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
				return nil
			})
		},
	}
}

func friendListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your friends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withWire(func(w *app.Wire) error {
				friends, err := w.Friends.Friends(cmd.Context(), w.Config.Account)
				if err != nil {
					return err
				}
				for _, f := range friends {
					marker := ""
					if !w.Keys.HasKeyFor(f) {
						marker = " (no key on this device)"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", f, marker)
				}
				return nil
			})
		},
	}
}

func friendPendingCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List requests waiting for you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withWire(func(w *app.Wire) error {
				reqs, err := w.Friends.PendingRequests(cmd.Context(), w.Config.Account)
				if err != nil {
					return err
				}
				printRequests(cmd.OutOrStdout(), reqs, func(r domain.FriendRequest) domain.AccountID { return r.From })
				return nil
			})
		},
	}
}

func friendOutgoingCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "outgoing",
		Short: "List your requests that are still pending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withWire(func(w *app.Wire) error {
				reqs, err := w.Friends.OutgoingRequests(cmd.Context(), w.Config.Account)
				if err != nil {
					return err
				}
				printRequests(cmd.OutOrStdout(), reqs, func(r domain.FriendRequest) domain.AccountID { return r.To })
				return nil
			})
		},
	}
}

func printRequests(out io.Writer, reqs []domain.FriendRequest, who func(domain.FriendRequest) domain.AccountID) {
	for _, r := range reqs {
		fmt.Fprintf(out, "%s\t%s\n", who(r), r.Status)
	}
}
