package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	due  string
	done bool
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "todo add [--due YYYY-MM-DD] [--done] <description...>" }
func (c *AddCmd) NeedsBackend() bool { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.due, "due", "d", "", "due date (YYYY-MM-DD)")
	fs.BoolVar(&c.done, "done", false, "create the task already completed")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	description := strings.Join(args, " ")
	if strings.TrimSpace(description) == "" {
		fmt.Fprintln(errOut, "error: description required")
		return exitcode.UserError
	}

	draft := service.Draft{Description: description, Completed: c.done}
	if c.due != "" {
		due, err := parseDue(c.due)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		draft.DueDate = due
	}

	task, err := env.Store.CreateTask(ctx, draft)
	if err != nil {
		return reportError(errOut, err)
	}
	env.Log.Debug("task created", "id", task.ID)

	// The create succeeded even if the follow-up refetch did not.
	if msg := env.Store.Err(); msg != "" {
		fmt.Fprintf(errOut, "warning: %s\n", msg)
	}
	if !env.Config.Quiet {
		fmt.Fprintf(out, "ok %s\n", task.ID)
	}
	return exitcode.Success
}

// parseDue parses a due date flag in the local time zone.
func parseDue(s string) (time.Time, error) {
	t, err := time.ParseInLocation(output.DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date: %s (want YYYY-MM-DD)", s)
	}
	return t, nil
}
