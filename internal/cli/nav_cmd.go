package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittodav/pkg/namespace"
	"github.com/marmos91/dittodav/pkg/repository"
)

// resolveRequired resolves location and turns absence into an error.
func resolveRequired(ctx context.Context, b *namespace.Backend, location string) (*repository.Node, error) {
	node, err := b.ResolveLocation(ctx, location)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("%s: not found", location)
	}
	return node, nil
}

// virtualPath renders the location of node, falling back to its
// repository path when it lies outside the backend.
func virtualPath(b *namespace.Backend, node *repository.Node) string {
	if location, ok := b.GetVirtualPath(node.Path); ok {
		return location
	}
	return node.Path
}

func NewListCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:     "ls [LOCATION]",
		Short:   "list the visible children of a folder",
		Aliases: []string{"list"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := deps.Backend()
			location := b.RootURL()
			if len(args) == 1 {
				location = args[0]
			}

			node, err := resolveRequired(cmd.Context(), b, location)
			if err != nil {
				return err
			}
			if !node.IsFolder() {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), namespace.NodeDisplayName(node))
				return err
			}

			children, err := b.VisibleChildren(cmd.Context(), node.Ref())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, child := range children {
				name := namespace.NodeDisplayName(child)
				size := "-"
				if child.IsFolder() {
					name += "/"
				} else if child.Payload != nil {
					size = fmt.Sprint(child.Payload.Length)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, child.Type, size)
			}
			return w.Flush()
		},
	}
}

func NewStatCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "stat LOCATION",
		Short: "show the document a location resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b := deps.Backend()

			node, err := resolveRequired(ctx, b, args[0])
			if err != nil {
				return err
			}
			owner, err := b.GetCheckoutUser(ctx, node.Ref())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 1, ' ', 0)
			fmt.Fprintf(w, "Name:\t%s\n", namespace.NodeDisplayName(node))
			fmt.Fprintf(w, "Location:\t%s\n", virtualPath(b, node))
			fmt.Fprintf(w, "Path:\t%s\n", node.Path)
			fmt.Fprintf(w, "ID:\t%s\n", node.ID)
			fmt.Fprintf(w, "Type:\t%s\n", node.Type)
			fmt.Fprintf(w, "Title:\t%s\n", node.Title)
			fmt.Fprintf(w, "State:\t%s\n", node.State)
			if node.Payload != nil {
				fmt.Fprintf(w, "Filename:\t%s\n", node.Payload.Filename)
				fmt.Fprintf(w, "Media type:\t%s\n", node.Payload.MediaType)
				fmt.Fprintf(w, "Length:\t%d\n", node.Payload.Length)
			}
			if owner != "" {
				fmt.Fprintf(w, "Locked by:\t%s\n", owner)
			}
			fmt.Fprintf(w, "Modified:\t%s\n", node.Modified.Format("2006-01-02 15:04:05"))
			return w.Flush()
		},
	}
}

func NewGetCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:     "get LOCATION",
		Short:   "write the payload of a document to stdout",
		Aliases: []string{"cat"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := resolveRequired(cmd.Context(), deps.Backend(), args[0])
			if err != nil {
				return err
			}
			if node.Payload == nil {
				return fmt.Errorf("%s: no payload", args[0])
			}
			_, err = cmd.OutOrStdout().Write(node.Payload.Data)
			return err
		},
	}
}

func NewFoldersCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "list the top-level folders of the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := deps.Backend().VirtualFolderNames(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func NewVPathCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "vpath REPOSITORY_PATH",
		Short: "print the location of a repository path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location, ok := deps.Backend().GetVirtualPath(args[0])
			if !ok {
				return fmt.Errorf("%s is outside backend %s", args[0], deps.Backend().Name())
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), location)
			return err
		},
	}
}
