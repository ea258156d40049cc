// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"todo/internal/service"
)

// DateLayout is the layout for due dates in text output and --due flags.
const DateLayout = "2006-01-02"

// Format selects how tasks are rendered.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat parses an output format name; "" means Text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", Text:
		return Text, nil
	case JSON, YAML:
		return f, nil
	}
	return "", fmt.Errorf("invalid output format: %s", s)
}

// FormatTask formats a numbered task line.
// Format: "{N:>4}  [{x| }] {DESCRIPTION}  (due {DATE})\n"; the due part is
// omitted when the task has no due date.
func FormatTask(w io.Writer, num int, task service.Task) {
	mark := " "
	if task.Completed {
		mark = "x"
	}
	line := fmt.Sprintf("%4d  [%s] %s", num, mark, normalizeDescription(task.Description))
	if !task.DueDate.IsZero() {
		line += fmt.Sprintf("  (due %s)", task.DueDate.Format(DateLayout))
	}
	fmt.Fprintln(w, line)
}

// FormatTaskDetail prints every field of a task, one per line.
func FormatTaskDetail(w io.Writer, task service.Task) {
	status := "open"
	if task.Completed {
		status = "completed"
	}
	fmt.Fprintf(w, "id:          %s\n", task.ID)
	fmt.Fprintf(w, "description: %s\n", normalizeDescription(task.Description))
	fmt.Fprintf(w, "status:      %s\n", status)
	fmt.Fprintf(w, "created:     %s\n", formatDate(task.CreatedDate))
	fmt.Fprintf(w, "due:         %s\n", formatDate(task.DueDate))
}

// FormatSettings prints filter and sort settings.
func FormatSettings(w io.Writer, s service.Settings) {
	fmt.Fprintf(w, "filter: %s\n", s.Filter)
	fmt.Fprintf(w, "sort:   %s\n", s.SortKey)
	fmt.Fprintf(w, "order:  %s\n", s.Direction)
}

// WriteTasks renders a task list in the given format.
func WriteTasks(w io.Writer, f Format, tasks []service.Task) error {
	switch f {
	case JSON:
		return writeJSON(w, tasks)
	case YAML:
		return writeYAML(w, tasks)
	}
	for i, t := range tasks {
		FormatTask(w, i+1, t)
	}
	return nil
}

// WriteTask renders a single task in the given format.
func WriteTask(w io.Writer, f Format, task service.Task) error {
	switch f {
	case JSON:
		return writeJSON(w, task)
	case YAML:
		return writeYAML(w, task)
	}
	FormatTaskDetail(w, task)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateLayout)
}

// normalizeDescription normalizes a task description for display.
// - Empty or whitespace-only descriptions become "(untitled)"
// - Newlines are replaced with spaces
func normalizeDescription(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	if strings.TrimSpace(s) == "" {
		return "(untitled)"
	}
	return s
}
