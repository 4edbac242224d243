package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittodav/pkg/namespace"
)

func NewLockCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "lock LOCATION",
		Short: "lock a document for the acting user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := deps.Backend()
			node, err := resolveRequired(cmd.Context(), b, args[0])
			if err != nil {
				return err
			}

			result, err := b.Lock(cmd.Context(), node.Ref())
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (owner %s)\n", result.Status, result.Owner); err != nil {
				return err
			}
			if result.Status == namespace.LockDenied {
				return fmt.Errorf("%s is locked by %s", args[0], result.Owner)
			}
			return nil
		},
	}
}

func NewUnlockCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock LOCATION",
		Short: "release a lock held by the acting user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := deps.Backend()
			node, err := resolveRequired(cmd.Context(), b, args[0])
			if err != nil {
				return err
			}

			unlocked, err := b.Unlock(cmd.Context(), node.Ref())
			if err != nil {
				return err
			}
			if !unlocked {
				owner, err := b.GetCheckoutUser(cmd.Context(), node.Ref())
				if err != nil {
					return err
				}
				if owner == "" {
					return fmt.Errorf("%s is not locked", args[0])
				}
				return fmt.Errorf("%s is locked by %s", args[0], owner)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "unlocked %s\n", args[0])
			return err
		},
	}
}
