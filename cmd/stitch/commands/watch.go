package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"go.trai.ch/stitch/internal/app"
	"go.trai.ch/stitch/internal/core/domain"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Render, then re-render documents as they or their includes change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrinter(cmd.OutOrStdout())
			first := true

			return c.app.Watch(cmd.Context(), app.WatchOptions{
				Settings: c.settings(),
				OnRender: func(report *app.Report, err error) {
					p.report(report)
					if err != nil && !errors.Is(err, domain.ErrExpansionFailed) {
						p.fail(err.Error())
					}
					if first {
						p.note("watching for changes, press Ctrl+C to stop")
						first = false
					}
				},
			})
		},
	}
}
