package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/stitch/internal/app"
)

func (c *CLI) newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Expand every document into the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			timings, _ := cmd.Flags().GetInt("timings")

			report, err := c.app.Render(cmd.Context(), app.RenderOptions{
				Settings: c.settings(),
				Timings:  timings,
			})
			newPrinter(cmd.OutOrStdout()).report(report)
			return err
		},
	}
	cmd.Flags().IntP("timings", "t", 0, "Show the N slowest documents")
	return cmd
}
