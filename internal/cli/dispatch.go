// Package cli builds the command tree and dispatches to commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/store"
)

// GatewayFactory creates the task service gateway from config.
// Used to inject the backend during dispatch.
type GatewayFactory func(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.Gateway, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  GatewayFactory
	in       io.Reader
}

// NewDispatcher creates a new dispatcher with the given registry and gateway factory.
func NewDispatcher(registry *commands.Registry, factory GatewayFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// SetInput sets the reader interactive commands read from (default os.Stdin).
func (d *Dispatcher) SetInput(r io.Reader) {
	d.in = r
}

// globalFlags are accepted before or after any command.
type globalFlags struct {
	configDir string
	baseURL   string
	quiet     bool
	debug     bool
}

// Run parses arguments and dispatches to the appropriate command.
// No args runs "list". Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	return d.run(ctx, args, out, errOut, nil)
}

// run builds a fresh command tree so flag fields start from defaults.
// session is the shell's store, nil outside a shell.
func (d *Dispatcher) run(ctx context.Context, args []string, out, errOut io.Writer, session *store.Store) int {
	var gf globalFlags
	code := exitcode.Success

	root := &cobra.Command{
		Use:           "todo",
		Short:         "A command-line client for a remote to-do service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&gf.configDir, "config", "", "config directory (default $XDG_CONFIG_HOME/todo)")
	root.PersistentFlags().StringVar(&gf.baseURL, "base-url", "", "task service base URL")
	root.PersistentFlags().BoolVarP(&gf.quiet, "quiet", "q", false, "suppress informational output")
	root.PersistentFlags().BoolVar(&gf.debug, "debug", false, "enable debug logging")

	for _, c := range d.registry.All() {
		c := c // per-iteration copy; go.mod targets go1.21 loop semantics
		sub := &cobra.Command{
			// cobra looks commands up by the first word of Use.
			Use:     c.Name() + strings.TrimPrefix(c.Usage(), "todo "+c.Name()),
			Aliases: c.Aliases(),
			Short:   c.Synopsis(),
			RunE: func(cmd *cobra.Command, args []string) error {
				code = d.dispatchCommand(cmd.Context(), c, gf, args, out, errOut, session)
				return nil
			},
		}
		c.RegisterFlags(sub.Flags())
		root.AddCommand(sub)
	}

	root.RunE = func(cmd *cobra.Command, args []string) error {
		c, ok := d.registry.Find("list")
		if !ok {
			return fmt.Errorf("no default command")
		}
		code = d.dispatchCommand(cmd.Context(), c, gf, nil, out, errOut, session)
		return nil
	}

	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	return code
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, gf globalFlags, args []string, out, errOut io.Writer, session *store.Store) int {
	cfg, err := config.New(gf.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.ConfigError
	}
	cfg.Quiet = gf.quiet
	cfg.Debug = gf.debug
	if gf.baseURL != "" {
		cfg.Remote.BaseURL = gf.baseURL
	}

	log := newLogger(cfg, errOut)
	env := &commands.Env{
		Config:  cfg,
		Log:     log,
		Session: session != nil,
		In:      d.in,
	}

	if cmd.NeedsBackend() {
		if session != nil {
			env.Store = session
		} else {
			settings, err := cfg.Settings()
			if err != nil {
				fmt.Fprintf(errOut, "error: invalid defaults in %s: %s\n", cfg.ConfigPath(), err)
				return exitcode.ConfigError
			}
			gw, err := d.factory(ctx, cfg, log)
			if err != nil {
				fmt.Fprintf(errOut, "error: %s\n", err)
				return exitcode.ConfigError
			}
			env.Store = store.New(gw, settings, log)
		}
		st := env.Store
		env.Exec = func(ctx context.Context, args []string, out, errOut io.Writer) int {
			return d.run(ctx, args, out, errOut, st)
		}
	}

	log.Debug("running command", "command", cmd.Name(), "session", env.Session)
	return cmd.Run(ctx, env, args, out, errOut)
}

// newLogger builds the text logger on errOut; --debug forces debug level.
func newLogger(cfg *config.Config, errOut io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "ERROR":
		level = slog.LevelError
	case "WARN":
		level = slog.LevelWarn
	default:
		level = slog.LevelInfo
	}
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
}
