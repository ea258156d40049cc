package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/exitcode"
	"todo/internal/output"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command. The task is reloaded from the service
// so the details are current even in a long shell session.
type ShowCmd struct {
	format string
}

func (c *ShowCmd) Name() string       { return "show" }
func (c *ShowCmd) Aliases() []string  { return nil }
func (c *ShowCmd) Synopsis() string   { return "Show task details" }
func (c *ShowCmd) Usage() string      { return "todo show [--output text|json|yaml] <ref>" }
func (c *ShowCmd) NeedsBackend() bool { return true }

func (c *ShowCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.format, "output", "o", "text", "output format: text, json or yaml")
}

func (c *ShowCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	format, err := output.ParseFormat(c.format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, code, ok := resolveArgs(ctx, env, args, errOut)
	if !ok {
		return code
	}
	task, err = env.Store.RefreshTask(ctx, task.ID)
	if err != nil {
		return reportError(errOut, err)
	}

	if err := output.WriteTask(out, format, task); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
