// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task reference, bad flag value).
	UserError = 1

	// ConfigError indicates an unreadable or invalid config, or an unusable base URL.
	ConfigError = 2

	// BackendError indicates the task service call failed (network, status or protocol).
	BackendError = 3
)
