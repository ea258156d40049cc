package cli_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"todo/internal/backend/todoapi"
	"todo/internal/cli"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/fakeremote"
	"todo/internal/service"
	"todo/internal/testutil"
)

var due = time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

// testFactory creates a gateway factory that returns the given FakeGateway.
func testFactory(gw *testutil.FakeGateway) cli.GatewayFactory {
	return func(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.Gateway, error) {
		return gw, nil
	}
}

// run dispatches args with an isolated config directory.
func run(t *testing.T, d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	args = append([]string{"--config", t.TempDir()}, args...)
	code = d.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeGateway()))

	_, stderr, code := run(t, dispatcher, "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, `unknown command "unknowncmd"`) {
		t.Errorf("expected unknown command error, got %q", stderr)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeGateway()))

	_, stderr, code := run(t, dispatcher, "list", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "unknown flag: --unknown") {
		t.Errorf("expected unknown flag error, got %q", stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeGateway()))

	stdout, stderr, code := run(t, dispatcher, "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "list", "toggle", "shell"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected help output to contain %q", want)
		}
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.Gateway, error) {
		t.Error("version should not create a gateway")
		return nil, errors.New("unexpected")
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	stdout, stderr, code := run(t, dispatcher, "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "todo 0.1.0\n" {
		t.Errorf("expected %q, got %q", "todo 0.1.0\n", stdout)
	}
}

func TestDispatcher_NoArgsRunsList(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.AddTask(service.Task{ID: "a", Description: "Buy milk", DueDate: due})
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(gw))

	stdout, stderr, code := run(t, dispatcher)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	expected := "   1  [ ] Buy milk  (due 2026-11-01)\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestDispatcher_AliasAndQuiet(t *testing.T) {
	gw := testutil.NewFakeGateway()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(gw))

	stdout, _, code := run(t, dispatcher, "--quiet", "create", "Buy", "milk")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no output with --quiet, got %q", stdout)
	}
	stored := gw.Stored()
	if len(stored) != 1 || stored[0].Description != "Buy milk" {
		t.Errorf("expected one task 'Buy milk', got %+v", stored)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.Gateway, error) {
		return nil, errors.New("invalid base URL")
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	_, stderr, code := run(t, dispatcher, "list")

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if stderr != "error: invalid base URL\n" {
		t.Errorf("expected %q, got %q", "error: invalid base URL\n", stderr)
	}
}

func TestDispatcher_InvalidConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	data := "defaults:\n  filter: someday\n"
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeGateway()))

	var outBuf, errBuf bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"--config", dir, "list"}, &outBuf, &errBuf)

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if !strings.Contains(errBuf.String(), "invalid filter: someday") {
		t.Errorf("expected invalid filter error, got %q", errBuf.String())
	}
}

func TestDispatcher_ConfigDefaultsApply(t *testing.T) {
	dir := t.TempDir()
	data := "defaults:\n  filter: complete\n  sort: created\n  order: desc\n"
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
	gw := testutil.NewFakeGateway()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(gw))

	var outBuf, errBuf bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"--config", dir, "list"}, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, errBuf.String())
	}
	if gw.LastCompleted == nil || !*gw.LastCompleted {
		t.Errorf("expected completed=true, got %v", gw.LastCompleted)
	}
	if gw.LastSortSpec != "-createdDate" {
		t.Errorf("expected %q, got %q", "-createdDate", gw.LastSortSpec)
	}
}

func TestDispatcher_BackendFailure(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.ListErr = service.NetworkFailure("fetching tasks", errors.New("connection refused"))
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(gw))

	_, stderr, code := run(t, dispatcher, "list")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.Contains(stderr, "error: network error: connection refused\n") {
		t.Errorf("expected network error, got %q", stderr)
	}
}

func TestDispatcher_ShellKeepsSession(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.AddTask(service.Task{ID: "a", Description: "Buy milk", DueDate: due, Completed: true})
	gw.AddTask(service.Task{ID: "b", Description: "File taxes", DueDate: due})
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(gw))
	dispatcher.SetInput(strings.NewReader("list --filter incomplete\nlist\nshell\nexit\n"))

	stdout, stderr, code := run(t, dispatcher, "shell")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	// The second list reuses the filter set by the first.
	if strings.Contains(stdout, "Buy milk") {
		t.Errorf("expected completed task to stay filtered out, got %q", stdout)
	}
	if strings.Count(stdout, "   1  [ ] File taxes") != 2 {
		t.Errorf("expected open task listed twice, got %q", stdout)
	}
	if gw.LastCompleted == nil || *gw.LastCompleted {
		t.Errorf("expected completed=false on the last fetch, got %v", gw.LastCompleted)
	}
	if !strings.Contains(stdout, "todo [1]> ") {
		t.Errorf("expected prompt with cached count, got %q", stdout)
	}
	if !strings.Contains(stderr, "error: already in a shell") {
		t.Errorf("expected nested shell to be refused, got %q", stderr)
	}
}

func TestDispatcher_EndToEndAgainstFakeRemote(t *testing.T) {
	remote := fakeremote.New(func() time.Time { return due })
	srv := httptest.NewServer(remote.Handler())
	t.Cleanup(srv.Close)

	factory := func(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.Gateway, error) {
		return todoapi.NewWithHTTPClient(cfg.Remote.BaseURL, srv.Client(), log)
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	dispatcher.SetInput(strings.NewReader("add --due 2026-12-24 Wrap presents\ntoggle 1\nlist\nrm 1\nlist\n"))

	stdout, stderr, code := run(t, dispatcher, "--base-url", srv.URL, "shell")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	for _, want := range []string{
		"ok completed\n",
		"   1  [x] Wrap presents  (due 2026-12-24)\n",
		"no tasks found\n",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected output to contain %q, got %q", want, stdout)
		}
	}
	if n := len(remote.Tasks()); n != 0 {
		t.Errorf("expected remote to be empty, got %d tasks", n)
	}
}
