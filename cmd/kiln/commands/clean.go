package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the build state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetBool("output")
			configPath, _ := cmd.Flags().GetString("config")

			return c.app.Clean(cmd.Context(), app.CleanOptions{
				ConfigPath: configPath,
				Output:     output,
			})
		},
	}

	cmd.Flags().BoolP("output", "o", false, "Also remove the output directory")

	return cmd
}
