package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Fields without a flag keep their
// current values.
type EditCmd struct {
	description string
	due         string
	done        string
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Edit a task" }
func (c *EditCmd) Usage() string {
	return "todo edit [--desc <text>] [--due YYYY-MM-DD] [--done true|false] <ref>"
}
func (c *EditCmd) NeedsBackend() bool { return true }

func (c *EditCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.description, "desc", "", "new description")
	fs.StringVarP(&c.due, "due", "d", "", "new due date (YYYY-MM-DD)")
	fs.StringVar(&c.done, "done", "", "completion state: true or false")
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if c.description == "" && c.due == "" && c.done == "" {
		fmt.Fprintln(errOut, "error: nothing to change (use --desc, --due or --done)")
		return exitcode.UserError
	}

	// Validate flags before touching the service
	var draftDone *bool
	if c.done != "" {
		v, err := strconv.ParseBool(c.done)
		if err != nil {
			fmt.Fprintf(errOut, "error: invalid --done value: %s\n", c.done)
			return exitcode.UserError
		}
		draftDone = &v
	}
	if c.description != "" && strings.TrimSpace(c.description) == "" {
		fmt.Fprintln(errOut, "error: description cannot be blank")
		return exitcode.UserError
	}
	var due time.Time
	if c.due != "" {
		var err error
		if due, err = parseDue(c.due); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}

	task, code, ok := resolveArgs(ctx, env, args, errOut)
	if !ok {
		return code
	}

	draft := service.DraftFrom(task)
	if c.description != "" {
		draft.Description = c.description
	}
	if c.due != "" {
		draft.DueDate = due
	}
	if draftDone != nil {
		draft.Completed = *draftDone
	}

	if _, err := env.Store.UpdateTask(ctx, task.ID, draft); err != nil {
		return reportError(errOut, err)
	}
	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
