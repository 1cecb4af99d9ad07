// Package commands implements the CLI commands for stitch.
package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.trai.ch/stitch/internal/app"
	"go.trai.ch/stitch/internal/build"
	"go.trai.ch/stitch/internal/core/ports"
)

// EnvPrefix prefixes the environment variables that stand in for flags,
// e.g. STITCH_DOCS_DIR for --docs-dir.
const EnvPrefix = "STITCH"

// CLI represents the command line interface for stitch.
type CLI struct {
	app     Application
	logger  ports.Logger
	v       *viper.Viper
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Render(ctx context.Context, opts app.RenderOptions) (*app.Report, error)
	Expand(ctx context.Context, opts app.ExpandOptions) error
	Watch(ctx context.Context, opts app.WatchOptions) error
	CleanCache(ctx context.Context, opts app.CacheCleanOptions) (int, error)
}

// logSettings is implemented by loggers whose format can change at runtime.
type logSettings interface {
	SetJSON(enable bool)
	SetQuiet(quiet bool)
}

// New creates a new CLI instance with the given app and logger.
func New(a Application, log ports.Logger) *CLI {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           "stitch",
		Short:         "Expand include directives in Markdown documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to stitch.yaml (default: discovered upward from the working directory)")
	flags.StringP("docs-dir", "d", "", "Documents root, overriding the config file")
	flags.StringP("out-dir", "o", "", "Output directory, overriding the config file")
	flags.IntP("jobs", "j", 0, "Documents to expand in parallel (default: number of CPUs)")
	flags.Duration("cache-ttl", 0, "Lifetime of cached remote includes; 0 disables the cache")
	flags.String("log-format", "pretty", "Log format: pretty or json")
	flags.BoolP("quiet", "q", false, "Only log warnings and errors")

	c := &CLI{
		app:     a,
		logger:  log,
		v:       v,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRunE = c.configure

	rootCmd.AddCommand(c.newRenderCmd())
	rootCmd.AddCommand(c.newExpandCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// configure binds the parsed flags to the environment and applies the log
// settings.
func (c *CLI) configure(cmd *cobra.Command, _ []string) error {
	if err := c.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	format := c.v.GetString("log-format")
	if format != "pretty" && format != "json" {
		return fmt.Errorf("invalid log format %q: must be pretty or json", format)
	}
	if ls, ok := c.logger.(logSettings); ok {
		ls.SetJSON(format == "json")
		ls.SetQuiet(c.v.GetBool("quiet"))
	}
	return nil
}

// settings collects the overrides shared by every command.
func (c *CLI) settings() app.Settings {
	s := app.Settings{
		ConfigPath: c.v.GetString("config"),
		DocsDir:    c.v.GetString("docs-dir"),
		OutDir:     c.v.GetString("out-dir"),
		Jobs:       c.v.GetInt("jobs"),
	}
	if c.v.IsSet("cache-ttl") {
		ttl := c.v.GetDuration("cache-ttl")
		s.CacheTTL = &ttl
	}
	return s
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// SetInput sets the input stream for the root command.
func (c *CLI) SetInput(in io.Reader) {
	c.rootCmd.SetIn(in)
}
