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
	Register(&SettingsCmd{})
}

// SettingsCmd implements the settings command: it applies the given filter and
// sort settings without fetching, then prints the result.
type SettingsCmd struct {
	filter string
	sort   string
	order  string
	save   bool
}

func (c *SettingsCmd) Name() string      { return "settings" }
func (c *SettingsCmd) Aliases() []string { return nil }
func (c *SettingsCmd) Synopsis() string  { return "Show or change filter and sort settings" }
func (c *SettingsCmd) Usage() string {
	return "todo settings [--filter all|complete|incomplete] [--sort due|created] [--order asc|desc] [--save]"
}
func (c *SettingsCmd) NeedsBackend() bool { return true }

func (c *SettingsCmd) RegisterFlags(fs *pflag.FlagSet) {
	registerSettingsFlags(fs, &c.filter, &c.sort, &c.order)
	fs.BoolVar(&c.save, "save", false, "store the settings as defaults in the config file")
}

func (c *SettingsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	settings, err := service.ParseSettings(env.Store.Settings(), c.filter, c.sort, c.order)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	env.Store.ApplySettings(settings)

	if c.save {
		if err := env.Config.SaveDefaults(settings); err != nil {
			fmt.Fprintf(errOut, "error: failed to save settings: %v\n", err)
			return exitcode.ConfigError
		}
		env.Log.Debug("settings saved", "path", env.Config.ConfigPath())
	}

	output.FormatSettings(out, env.Store.Settings())
	return exitcode.Success
}
