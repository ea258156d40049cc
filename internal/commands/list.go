package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command, also run by `todo` with no args.
// Flags override the current settings for this and (in a shell) later fetches.
type ListCmd struct {
	filter string
	sort   string
	order  string
	format string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "todo list [--filter all|complete|incomplete] [--sort due|created] [--order asc|desc] [--output text|json|yaml]"
}
func (c *ListCmd) NeedsBackend() bool { return true }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {
	registerSettingsFlags(fs, &c.filter, &c.sort, &c.order)
	fs.StringVarP(&c.format, "output", "o", "text", "output format: text, json or yaml")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	format, err := output.ParseFormat(c.format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	settings, err := service.ParseSettings(env.Store.Settings(), c.filter, c.sort, c.order)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	env.Store.ApplySettings(settings)

	if err := env.Store.FetchTasks(ctx); err != nil {
		return reportError(errOut, err)
	}

	tasks := env.Store.Tasks()
	if len(tasks) == 0 && format == output.Text {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}
	if err := output.WriteTasks(out, format, tasks); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

// registerSettingsFlags binds the filter/sort/order flags shared by list and settings.
// Empty values leave the corresponding setting unchanged.
func registerSettingsFlags(fs *pflag.FlagSet, filter, sort, order *string) {
	fs.StringVarP(filter, "filter", "f", "", "filter: all, complete or incomplete")
	fs.StringVarP(sort, "sort", "s", "", "sort key: due or created")
	fs.StringVar(order, "order", "", "sort order: asc or desc")
}
