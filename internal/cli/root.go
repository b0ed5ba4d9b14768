package cli

import (
	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yaml"

// NewRoot builds the slotsctl command tree.
func NewRoot() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "slotsctl",
		Short:         "Restaurant booking slots",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to config.yaml")

	cmd.AddCommand(newSlotsCmd(&configPath))
	cmd.AddCommand(newExportCmd(&configPath))
	cmd.AddCommand(newSeedCmd(&configPath))
	return cmd
}
