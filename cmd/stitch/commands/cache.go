package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/stitch/internal/app"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the remote include cache",
	}
	cmd.AddCommand(c.newCacheCleanCmd())
	return cmd
}

func (c *CLI) newCacheCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all")

			removed, err := c.app.CleanCache(cmd.Context(), app.CacheCleanOptions{
				Settings: c.settings(),
				All:      all,
			})
			if err != nil {
				return err
			}

			noun := "entries"
			if removed == 1 {
				noun = "entry"
			}
			newPrinter(cmd.OutOrStdout()).ok(fmt.Sprintf("removed %d cache %s", removed, noun))
			return nil
		},
	}
	cmd.Flags().BoolP("all", "a", false, "Remove every entry, not only expired ones")
	return cmd
}
