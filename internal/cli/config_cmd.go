package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittodav/pkg/config"
)

func NewConfigCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "manage the configuration file",
		Annotations: map[string]string{skipSetup: "true"},
	}
	cmd.AddCommand(newConfigInitCmd(deps))
	return cmd
}

func newConfigInitCmd(deps *Deps) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := deps.ConfigPath
			if configPath == "" {
				var err error
				if configPath, err = config.InitConfig(force); err != nil {
					return err
				}
			} else if err := config.InitConfigToPath(configPath, force); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", configPath)
			return err
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")
	return cmd
}
