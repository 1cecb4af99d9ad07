package commands

import (
	"bufio"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/stitch/internal/app"
	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newExpandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand [file|-]",
		Short: "Expand one document and print the result",
		Long: "Expand one document and print the result.\n\n" +
			"Without a file, or with \"-\", the document is read from stdin. Relative\n" +
			"include targets in stdin input resolve against the documents root.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.ExpandOptions{
				Settings: c.settings(),
				Stdin:    cmd.InOrStdin(),
				Output:   cmd.OutOrStdout(),
			}
			if len(args) == 1 {
				opts.Input = args[0]
			}

			outPath, _ := cmd.Flags().GetString("output")
			if outPath == "" {
				return c.app.Expand(cmd.Context(), opts)
			}
			return expandToFile(cmd, c.app, opts, outPath)
		},
	}
	cmd.Flags().String("output", "", "Write the result to a file instead of stdout")
	return cmd
}

func expandToFile(cmd *cobra.Command, a Application, opts app.ExpandOptions, path string) error {
	f, err := os.Create(path) //nolint:gosec // path is provided by user
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrWriteFailed, err.Error()), "path", path)
	}
	defer func() { _ = f.Close() }()

	buf := bufio.NewWriter(f)
	opts.Output = buf
	if err := a.Expand(cmd.Context(), opts); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrWriteFailed, err.Error()), "path", path)
	}
	if err := f.Close(); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrWriteFailed, err.Error()), "path", path)
	}
	return nil
}
