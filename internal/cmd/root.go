package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/gsms/gsms/internal/app"
	"github.com/gsms/gsms/internal/config"
	gerrors "github.com/gsms/gsms/internal/errors"
	"github.com/gsms/gsms/internal/metrics"
	"github.com/gsms/gsms/internal/telemetry"
	"github.com/gsms/gsms/internal/tui"
)

// CLI is one invocation of the gsms command tree. Config and the wired App
// are built lazily by the commands that need them.
type CLI struct {
	loader     *config.Loader
	appOptions []app.Option
	prompt     func(username, password string) (string, string, error)
	confirm    func(message string, defaultValue bool) (bool, error)

	cfg  *config.Config
	app  *app.App
	span trace.Span
}

// Option configures a CLI.
type Option func(*CLI)

// WithLoader sets the config loader.
func WithLoader(l *config.Loader) Option {
	return func(c *CLI) { c.loader = l }
}

// WithAppOptions passes options through to app.New.
func WithAppOptions(opts ...app.Option) Option {
	return func(c *CLI) { c.appOptions = append(c.appOptions, opts...) }
}

// WithPrompter replaces the interactive credential prompt.
func WithPrompter(fn func(username, password string) (string, string, error)) Option {
	return func(c *CLI) { c.prompt = fn }
}

// WithConfirmer replaces the interactive yes/no prompt.
func WithConfirmer(fn func(message string, defaultValue bool) (bool, error)) Option {
	return func(c *CLI) { c.confirm = fn }
}

// New creates a CLI.
func New(opts ...Option) *CLI {
	c := &CLI{
		loader:  config.NewLoader(),
		prompt:  tui.PromptCredentials,
		confirm: tui.PromptForConfirmation,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Command builds the root command.
func (c *CLI) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "gsms",
		Short: "Command line client for the GSMS project management backend",
		Long: `gsms talks to a GSMS backend: it logs you in, keeps the session,
and opens projects, tasks, iterations, work hours and system screens
subject to the same login and permission rules as the web client.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.gsms/config.yaml)")
	flags.StringP("format", "o", "", "output format: text, json or yaml")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.Bool("dump-metrics", false, "print collected metrics to stderr on exit")

	root.AddCommand(
		c.newAuthCmd(),
		c.newPermsCmd(),
		c.newNavCmd(),
		c.newRoutesCmd(),
		c.newDashboardCmd(),
		c.newProjectCmd(),
		c.newTaskCmd(),
		c.newIterationCmd(),
		c.newWorkHourCmd(),
		c.newUserCmd(),
		c.newRoleCmd(),
		c.newPermissionCmd(),
		c.newMenuCmd(),
		c.newConfigCmd(),
		c.newDoctorCmd(),
		c.newVersionCmd(),
	)
	return root
}

// Execute runs the command tree with args, then records command metrics
// and releases the App.
func (c *CLI) Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := c.Command()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	start := time.Now()
	executed, err := root.ExecuteContextC(ctx)

	if c.span != nil {
		if err != nil {
			telemetry.RecordError(c.span, err)
		} else {
			telemetry.RecordSuccess(c.span)
		}
		c.span.End()
		c.span = nil
	}
	if c.app != nil {
		m := c.app.Metrics
		if executed != nil {
			m.RecordCommand(executed.CommandPath(), time.Since(start), err == nil)
		}
		if code := gerrors.CodeOf(err); code != "" {
			m.RecordError(string(code), "cli")
		}
		if dump, _ := root.PersistentFlags().GetBool("dump-metrics"); dump {
			if werr := metrics.WriteText(stderr, c.app.Registry); werr != nil {
				c.app.Logger.Warn("failed to write metrics", "error", werr.Error())
			}
		}
		if cerr := c.app.Close(ctx); cerr != nil {
			c.app.Logger.Warn("shutdown incomplete", "error", cerr.Error())
		}
		c.app = nil
	}
	return err
}

// ExecuteContext runs gsms with the process arguments.
func ExecuteContext(ctx context.Context) error {
	return New().Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// config loads the configuration once per invocation and applies flag
// overrides.
func (c *CLI) config(cmd *cobra.Command) (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	gf, err := readGlobalFlags(cmd)
	if err != nil {
		return nil, err
	}
	path, err := c.configPath(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := c.loader.Load(path)
	if err != nil {
		return nil, err
	}
	if gf.logLevel != "" {
		cfg.Logging.Level = gf.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	c.cfg = cfg
	return cfg, nil
}

// session returns the wired App with any persisted session restored.
func (c *CLI) session(cmd *cobra.Command) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	cfg, err := c.config(cmd)
	if err != nil {
		return nil, err
	}
	a, err := app.New(cmd.Context(), cfg, c.appOptions...)
	if err != nil {
		return nil, err
	}
	c.app = a

	// The tracer provider exists only once the App is built.
	ctx, span := telemetry.StartCommandSpan(cmd.Context(), cmd.CommandPath())
	cmd.SetContext(ctx)
	c.span = span

	if err := a.Start(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// open navigates to the screen backing a command and fails the way the
// guard would refuse it.
func (c *CLI) open(cmd *cobra.Command, path string) (*app.App, error) {
	a, err := c.session(cmd)
	if err != nil {
		return nil, err
	}
	if _, err := a.Open(cmd.Context(), path); err != nil {
		return nil, err
	}
	return a, nil
}
