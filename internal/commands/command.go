// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"todo/internal/config"
	"todo/internal/store"
)

// Env is what a command runs against.
type Env struct {
	// Config is always provided.
	Config *config.Config

	// Log is always provided.
	Log *slog.Logger

	// Store is nil if NeedsBackend() returns false. Inside a shell session it is
	// the session's store, shared by every line.
	Store *store.Store

	// Exec dispatches another command line against the same store (used by shell).
	Exec func(ctx context.Context, args []string, out, errOut io.Writer) int

	// Session is true when running inside a shell.
	Session bool

	// In is the command input; nil means os.Stdin.
	In io.Reader
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsBackend returns true if the command talks to the task service.
	// Commands like version return false.
	NeedsBackend() bool

	// RegisterFlags registers command-specific flags. It is called before every
	// run, so flag fields start from their defaults each time.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command with positional args and returns the exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}
