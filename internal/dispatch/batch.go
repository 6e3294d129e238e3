package dispatch

import (
	"context"
	"errors"
	"strings"

	"github.com/hyprspaces/hyprspaces/internal/state"
)

// ErrEmptyBatch is returned when an empty batch is handed to a transport.
var ErrEmptyBatch = errors.New("empty dispatch batch")

// Command is a single Hyprland dispatcher invocation.
type Command struct {
	Name string
	Arg  string
}

// String renders the command the way hyprctl batches expect it.
func (c Command) String() string {
	if c.Arg == "" {
		return "dispatch " + c.Name
	}
	return "dispatch " + c.Name + " " + c.Arg
}

// Batch is an ordered list of commands applied as one unit.
type Batch struct {
	Commands []Command
}

// Add appends a dispatch invocation.
func (b *Batch) Add(name, arg string) {
	b.Commands = append(b.Commands, Command{Name: name, Arg: arg})
}

// Append appends already built commands.
func (b *Batch) Append(cmds ...Command) {
	b.Commands = append(b.Commands, cmds...)
}

// Merge appends every command of other.
func (b *Batch) Merge(other Batch) {
	b.Commands = append(b.Commands, other.Commands...)
}

// Len returns the number of commands.
func (b Batch) Len() int {
	return len(b.Commands)
}

// Empty reports whether the batch carries no commands.
func (b Batch) Empty() bool {
	return len(b.Commands) == 0
}

// String joins the commands with the hyprctl batch separator.
func (b Batch) String() string {
	parts := make([]string, 0, len(b.Commands))
	for _, cmd := range b.Commands {
		parts = append(parts, cmd.String())
	}
	return strings.Join(parts, " ; ")
}

// Dispatcher executes commands against the compositor. DispatchBatch must
// either apply the whole batch or fail as a whole.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd Command) error
	DispatchBatch(ctx context.Context, batch Batch) error
}

// Control is the full compositor surface used by paired operations.
type Control interface {
	state.DataSource
	Dispatcher
}
