package cli

import (
	"github.com/spf13/cobra"
)

// skipSetup marks commands that run without a repository.
const skipSetup = "skip-setup"

// NewRootCmd builds the root command and installs every subcommand.
//
// PersistentPreRunE prepares deps once; commands annotated with skipSetup
// (config init, help) never touch the repository.
func NewRootCmd(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = &Deps{}
	}

	cmd := &cobra.Command{
		Use:   "dittodav",
		Short: "Browse and edit a document repository through its WebDAV namespace",
		Long: `dittodav maps WebDAV-style locations onto a soft-deleting document
repository. Locations are URLs under a backend's root URL, e.g.
/dav/workspaces/project/report.pdf.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsSetup(cmd) {
				return nil
			}
			return deps.Setup(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&deps.ConfigPath, "config", "c", "", "path to config file (default $XDG_CONFIG_HOME/dittodav/config.yaml)")
	cmd.PersistentFlags().StringVarP(&deps.User, "user", "u", "", "principal to act as (default repository.admin_user)")
	cmd.PersistentFlags().StringVarP(&deps.BackendName, "backend", "b", "", "backend name (default: first configured backend)")

	cmd.AddCommand(
		NewListCmd(deps),
		NewStatCmd(deps),
		NewGetCmd(deps),
		NewFoldersCmd(deps),
		NewVPathCmd(deps),
		NewMkdirCmd(deps),
		NewPutCmd(deps),
		NewTouchCmd(deps),
		NewUpdateCmd(deps),
		NewMoveCmd(deps),
		NewCopyCmd(deps),
		NewRenameCmd(deps),
		NewRemoveCmd(deps),
		NewLockCmd(deps),
		NewUnlockCmd(deps),
		NewShellCmd(deps),
		NewConfigCmd(deps),
	)
	return cmd
}

func needsSetup(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipSetup] != "" {
			return false
		}
		switch c.Name() {
		case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd, "completion":
			return false
		}
	}
	return true
}
