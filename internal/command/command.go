// Package command decodes, validates and applies the state changes the
// assistant is allowed to request.
package command

import (
	"errors"

	"github.com/rpggio/streamos/internal/domain/item"
)

// Kind tags a command variant on the wire.
type Kind string

const (
	KindGrantXP       Kind = "grant_xp"
	KindReplaceAgenda Kind = "replace_agenda"
	KindReplaceTasks  Kind = "replace_tasks"
	KindAddTask       Kind = "add_task"
	KindCompleteTask  Kind = "complete_task"
)

var (
	// ErrMalformed indicates a payload that is not a command envelope.
	ErrMalformed = errors.New("malformed command payload")
	// ErrUnknownKind indicates an unsupported command type.
	ErrUnknownKind = errors.New("unknown command type")
	// ErrSchema indicates a command that failed schema validation.
	ErrSchema = errors.New("command failed validation")
	// ErrNoMatch indicates a complete_task query matching no open task.
	ErrNoMatch = errors.New("no matching task")
	// ErrConflict indicates commands that cannot be applied together.
	ErrConflict = errors.New("conflicting commands")
	// ErrListFull indicates add_task commands that would overflow the task list.
	ErrListFull = errors.New("task list is full")
	// ErrEmptyBatch indicates an envelope with no commands.
	ErrEmptyBatch = errors.New("empty command batch")
)

// Command is one of GrantXP, ReplaceAgenda, ReplaceTasks, AddTask or
// CompleteTask.
type Command interface {
	Kind() Kind
}

// GrantXP adds (or with a negative amount revokes) experience.
type GrantXP struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason,omitempty"`
}

// ReplaceAgenda overwrites the day's schedule.
type ReplaceAgenda struct {
	Items []item.Draft `json:"items"`
}

// ReplaceTasks overwrites the daily chores.
type ReplaceTasks struct {
	Items []item.Draft `json:"items"`
}

// AddTask appends one chore.
type AddTask struct {
	Title    string `json:"title"`
	XP       *int   `json:"xp,omitempty"`
	Category string `json:"category,omitempty"`
}

// CompleteTask completes the open task whose title best matches Query.
type CompleteTask struct {
	Query string `json:"query"`
}

func (GrantXP) Kind() Kind       { return KindGrantXP }
func (ReplaceAgenda) Kind() Kind { return KindReplaceAgenda }
func (ReplaceTasks) Kind() Kind  { return KindReplaceTasks }
func (AddTask) Kind() Kind       { return KindAddTask }
func (CompleteTask) Kind() Kind  { return KindCompleteTask }

func (a AddTask) draft() item.Draft {
	return item.Draft{Title: a.Title, Category: a.Category, XPReward: a.XP}
}
