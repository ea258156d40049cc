package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/store"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num int    // 1-based position in the listed tasks, 0 if ID is set
	ID  string // task id, "" if Num is set
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
// An all-digit first arg is a list position ("3"); anything else is taken as a
// task id. Exactly one reference is accepted.
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("too many arguments: %s", strings.Join(args[1:], " "))
	}

	ref := strings.TrimSpace(args[0])
	if isAllDigits(ref) {
		num, err := strconv.Atoi(ref)
		if err != nil || num < 1 {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", ref)
		}
		return TaskRef{Num: num}, nil
	}
	if strings.HasPrefix(ref, "-") {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", ref)
	}
	return TaskRef{ID: ref}, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ResolveTask finds the task a reference points to.
//
// Positions index the cached list; an empty cache is fetched first, so in a
// one-shot command positions match what `todo list` prints with the same
// settings. IDs are looked up in the cache and loaded from the service if absent.
func ResolveTask(ctx context.Context, st *store.Store, ref TaskRef) (service.Task, error) {
	if ref.ID != "" {
		if t, ok := st.Lookup(ref.ID); ok {
			return t, nil
		}
		return st.RefreshTask(ctx, ref.ID)
	}

	tasks := st.Tasks()
	if len(tasks) == 0 {
		if err := st.FetchTasks(ctx); err != nil {
			return service.Task{}, err
		}
		tasks = st.Tasks()
	}
	if ref.Num > len(tasks) {
		return service.Task{}, fmt.Errorf("task number out of range: %d", ref.Num)
	}
	return tasks[ref.Num-1], nil
}

// resolveArgs parses and resolves the single task reference in args,
// reporting failures. ok is false if the command should exit with code.
func resolveArgs(ctx context.Context, env *Env, args []string, errOut io.Writer) (task service.Task, code int, ok bool) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError, false
	}
	task, err = ResolveTask(ctx, env.Store, ref)
	if err != nil {
		return service.Task{}, reportError(errOut, err), false
	}
	return task, exitcode.Success, true
}

// reportError prints err and maps it to an exit code: service failures are
// backend errors, everything else is a user error.
func reportError(errOut io.Writer, err error) int {
	var f *service.Failure
	if errors.As(err, &f) {
		fmt.Fprintf(errOut, "error: %s\n", f.Message)
		return exitcode.BackendError
	}
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.UserError
}
