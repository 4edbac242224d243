package cli

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittodav/pkg/namespace"
	"github.com/marmos91/dittodav/pkg/repository"
)

// splitLocation splits a location into its parent location and last segment.
func splitLocation(location string) (parent, name string, err error) {
	cleaned := path.Clean("/" + location)
	if cleaned == "/" {
		return "", "", fmt.Errorf("%q has no name", location)
	}
	return path.Dir(cleaned), path.Base(cleaned), nil
}

// readPayload reads FILE, or stdin when FILE is missing or "-".
func readPayload(cmd *cobra.Command, args []string, name string) (*repository.Payload, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return repository.NewPayload(name, "", data), nil
}

func printNode(cmd *cobra.Command, b *namespace.Backend, verb string, node *repository.Node) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, virtualPath(b, node))
	return err
}

func NewMkdirCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir LOCATION",
		Short: "create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, name, err := splitLocation(args[0])
			if err != nil {
				return err
			}
			b := deps.Backend()
			folder, err := b.CreateFolder(cmd.Context(), parent, name)
			if err != nil {
				return err
			}
			return printNode(cmd, b, "created", folder)
		},
	}
}

func NewPutCmd(deps *Deps) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "put LOCATION [FILE]",
		Short: "upload a file (stdin when FILE is omitted or -)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, name, err := splitLocation(args[0])
			if err != nil {
				return err
			}
			payload, err := readPayload(cmd, args[1:], name)
			if err != nil {
				return err
			}

			b := deps.Backend()
			create := b.CreateFile
			if overwrite {
				create = b.PutFile
			}
			file, err := create(cmd.Context(), parent, name, payload)
			if err != nil {
				return err
			}
			return printNode(cmd, b, "stored", file)
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace the payload of an existing file")
	return cmd
}

func NewTouchCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "touch LOCATION",
		Short: "create an empty file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, name, err := splitLocation(args[0])
			if err != nil {
				return err
			}
			b := deps.Backend()
			file, err := b.CreateEmptyFile(cmd.Context(), parent, name)
			if err != nil {
				return err
			}
			return printNode(cmd, b, "created", file)
		},
	}
}

func NewUpdateCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "update LOCATION [FILE]",
		Short: "replace the payload of an existing document",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := deps.Backend()
			node, err := resolveRequired(cmd.Context(), b, args[0])
			if err != nil {
				return err
			}
			name := namespace.NodeDisplayName(node)
			payload, err := readPayload(cmd, args[1:], name)
			if err != nil {
				return err
			}
			updated, err := b.UpdateDocument(cmd.Context(), node, name, payload)
			if err != nil {
				return err
			}
			return printNode(cmd, b, "updated", updated)
		},
	}
}

func NewMoveCmd(deps *Deps) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:     "mv SOURCE DESTINATION",
		Short:   "move or rename a document",
		Aliases: []string{"move"},
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b := deps.Backend()

			source, err := resolveRequired(ctx, b, args[0])
			if err != nil {
				return err
			}
			targetParent, name, err := splitLocation(args[1])
			if err != nil {
				return err
			}

			occupant, err := b.ResolveLocation(ctx, args[1])
			if err != nil {
				return err
			}
			if occupant != nil && occupant.ID != source.ID {
				if !overwrite {
					return fmt.Errorf("%s already exists (use --overwrite)", args[1])
				}
				if err := b.RemoveRef(ctx, occupant.Ref()); err != nil {
					return err
				}
			}

			if namespace.IsRename(args[0], args[1]) {
				_, err = b.RenameItem(ctx, source, name)
			} else {
				var parent *repository.Node
				if parent, err = resolveRequired(ctx, b, targetParent); err != nil {
					return err
				}
				_, err = b.MoveItem(ctx, source, parent.Ref(), name)
			}
			if err != nil {
				return err
			}
			// a renamed leaf keeps its path, so report the location asked for
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "moved to %s\n", path.Join(targetParent, name))
			return err
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "trash an existing destination first")
	return cmd
}

func NewCopyCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:     "cp SOURCE DESTINATION",
		Short:   "copy a document or folder",
		Aliases: []string{"copy"},
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b := deps.Backend()

			source, err := resolveRequired(ctx, b, args[0])
			if err != nil {
				return err
			}
			targetParent, name, err := splitLocation(args[1])
			if err != nil {
				return err
			}
			parent, err := resolveRequired(ctx, b, targetParent)
			if err != nil {
				return err
			}

			copied, err := b.CopyItem(ctx, source, parent.Ref(), name)
			if err != nil {
				return err
			}
			return printNode(cmd, b, "copied to", copied)
		},
	}
}

func NewRenameCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "rename LOCATION NEW_NAME",
		Short: "rename a document in place",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := deps.Backend()
			source, err := resolveRequired(cmd.Context(), b, args[0])
			if err != nil {
				return err
			}
			if _, err := b.RenameItem(cmd.Context(), source, args[1]); err != nil {
				return err
			}
			parent, _, err := splitLocation(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "renamed to %s\n", path.Join(parent, args[1]))
			return err
		},
	}
}

func NewRemoveCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:     "rm LOCATION",
		Short:   "move a document to the trash",
		Aliases: []string{"remove"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.Backend().RemoveItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "trashed %s\n", args[0])
			return err
		},
	}
}
