// Package service defines the backend-agnostic task model and gateway contract.
package service

import (
	"fmt"
	"strings"
	"time"
)

// Task represents a single task owned by the remote service.
type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Description string    `json:"taskDescription" yaml:"taskDescription"`
	CreatedDate time.Time `json:"createdDate" yaml:"createdDate"`
	DueDate     time.Time `json:"dueDate" yaml:"dueDate"`
	Completed   bool      `json:"completed" yaml:"completed"`
}

// Draft is the payload for creating or updating a task.
// The server assigns ID and CreatedDate.
type Draft struct {
	Description string    `json:"taskDescription"`
	DueDate     time.Time `json:"dueDate"`
	Completed   bool      `json:"completed"`
}

// DraftFrom copies the mutable fields of t.
func DraftFrom(t Task) Draft {
	return Draft{
		Description: t.Description,
		DueDate:     t.DueDate,
		Completed:   t.Completed,
	}
}

// Filter selects tasks by completion state.
type Filter int

const (
	FilterAll Filter = iota
	FilterComplete
	FilterIncomplete
)

func (f Filter) String() string {
	switch f {
	case FilterComplete:
		return "complete"
	case FilterIncomplete:
		return "incomplete"
	default:
		return "all"
	}
}

// ParseFilter parses a filter name (case-insensitive).
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return FilterAll, nil
	case "complete", "completed", "done":
		return FilterComplete, nil
	case "incomplete", "open":
		return FilterIncomplete, nil
	}
	return FilterAll, fmt.Errorf("invalid filter: %s", s)
}

// SortKey is the field the server sorts by.
type SortKey int

const (
	SortByDueDate SortKey = iota
	SortByCreatedDate
)

// Field returns the remote field name for the key.
func (k SortKey) Field() string {
	if k == SortByCreatedDate {
		return "createdDate"
	}
	return "dueDate"
}

func (k SortKey) String() string {
	if k == SortByCreatedDate {
		return "created"
	}
	return "due"
}

// ParseSortKey parses a sort key name (case-insensitive).
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "due", "duedate":
		return SortByDueDate, nil
	case "created", "createddate":
		return SortByCreatedDate, nil
	}
	return SortByDueDate, fmt.Errorf("invalid sort key: %s", s)
}

// Direction is the sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseDirection parses a direction name (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return Ascending, fmt.Errorf("invalid sort order: %s", s)
}

// Settings holds the filter and sort preferences used on every fetch.
type Settings struct {
	Filter    Filter
	SortKey   SortKey
	Direction Direction
}

// DefaultSettings returns (All, DueDate, Ascending).
func DefaultSettings() Settings {
	return Settings{Filter: FilterAll, SortKey: SortByDueDate, Direction: Ascending}
}

// Completed returns the completed query constraint, or nil for no constraint.
func (s Settings) Completed() *bool {
	var v bool
	switch s.Filter {
	case FilterComplete:
		v = true
	case FilterIncomplete:
		v = false
	default:
		return nil
	}
	return &v
}

// SortSpec returns the sort_by value, e.g. "+dueDate" or "-createdDate".
func (s Settings) SortSpec() string {
	sign := "+"
	if s.Direction == Descending {
		sign = "-"
	}
	return sign + s.SortKey.Field()
}

// ParseSettings builds Settings from names; empty names keep the value from base.
func ParseSettings(base Settings, filter, sortKey, order string) (Settings, error) {
	s := base
	var err error
	if filter != "" {
		if s.Filter, err = ParseFilter(filter); err != nil {
			return base, err
		}
	}
	if sortKey != "" {
		if s.SortKey, err = ParseSortKey(sortKey); err != nil {
			return base, err
		}
	}
	if order != "" {
		if s.Direction, err = ParseDirection(order); err != nil {
			return base, err
		}
	}
	return s, nil
}
