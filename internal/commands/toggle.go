package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/exitcode"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string       { return "toggle" }
func (c *ToggleCmd) Aliases() []string  { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string   { return "Flip a task between open and completed" }
func (c *ToggleCmd) Usage() string      { return "todo toggle <ref>" }
func (c *ToggleCmd) NeedsBackend() bool { return true }

func (c *ToggleCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	task, code, ok := resolveArgs(ctx, env, args, errOut)
	if !ok {
		return code
	}

	if err := env.Store.ToggleCompletion(ctx, task); err != nil {
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		state := "completed"
		if task.Completed {
			state = "open"
		}
		fmt.Fprintf(out, "ok %s\n", state)
	}
	return exitcode.Success
}
