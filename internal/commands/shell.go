package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"todo/internal/exitcode"
	"todo/internal/store"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd implements the interactive shell. Every line runs as a command
// against one store, so settings and the fetched list carry over between lines.
type ShellCmd struct{}

func (c *ShellCmd) Name() string       { return "shell" }
func (c *ShellCmd) Aliases() []string  { return []string{"sh"} }
func (c *ShellCmd) Synopsis() string   { return "Run commands interactively in one session" }
func (c *ShellCmd) Usage() string      { return "todo shell" }
func (c *ShellCmd) NeedsBackend() bool { return true }

func (c *ShellCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ShellCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if env.Session {
		fmt.Fprintln(errOut, "error: already in a shell")
		return exitcode.UserError
	}
	if env.Exec == nil {
		fmt.Fprintln(errOut, "error: shell is not available")
		return exitcode.UserError
	}

	in := env.In
	if in == nil {
		in = os.Stdin
	}

	updates, cancel := env.Store.Subscribe()
	defer cancel()
	latest := <-updates

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt(latest))
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return exitcode.Success
		case "error":
			if latest.Err == "" {
				fmt.Fprintln(out, "no error")
			} else {
				fmt.Fprintln(out, latest.Err)
			}
			continue
		}

		env.Exec(ctx, strings.Fields(line), out, errOut)

		// Every store change is published before the command returns.
		select {
		case snap, ok := <-updates:
			if ok {
				latest = snap
			}
		default:
		}
	}
	fmt.Fprintln(out)

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

// prompt shows the cached task count and flags a pending error.
func prompt(s store.Snapshot) string {
	mark := ""
	if s.Err != "" {
		mark = " !"
	}
	return fmt.Sprintf("todo [%d%s]> ", len(s.Tasks), mark)
}
