// Package command defines the boundary to the command processor and a
// registry-backed processor with a few built-in commands.
package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mattn/go-shellwords"
)

var (
	// ErrUnknownCommand is returned when no command matches the input
	ErrUnknownCommand = errors.New("unknown command")
	// ErrNoCommand is returned for empty input
	ErrNoCommand = errors.New("no command given")
	// ErrInvalidCommandLine is returned for unbalanced quotes or escapes
	ErrInvalidCommandLine = errors.New("invalid command line")
	// ErrUnsupportedOperator is returned for shell operators like ; | & < >
	ErrUnsupportedOperator = errors.New("unsupported shell operator")
)

// Result is the outcome of processing one command
type Result struct {
	Success bool
	Content string
}

// Failure builds a failed Result carrying err's message.
func Failure(err error) Result {
	return Result{Success: false, Content: err.Error()}
}

// Processor executes a command string
type Processor interface {
	Process(ctx context.Context, command string) Result
}

// ProcessorFunc adapts a function returning (text, error) to Processor.
// A non-nil error becomes a failed Result with the error's message.
type ProcessorFunc func(ctx context.Context, command string) (string, error)

// Process calls f and converts its return values into a Result
func (f ProcessorFunc) Process(ctx context.Context, command string) Result {
	out, err := f(ctx, command)
	if err != nil {
		return Failure(err)
	}
	return Result{Success: true, Content: out}
}

// Func runs a registered command with its parsed arguments
type Func func(ctx context.Context, args []string) (string, error)

// Command is a named entry in a Registry
type Command struct {
	Name        string
	Description string
	Run         Func
}

// Registry is a Processor dispatching on the first word of the input
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
}

// NewRegistry creates an empty registry. Use NewDefaultRegistry for one
// with the built-in commands.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

// Register adds or replaces a command. Names are case-insensitive.
func (r *Registry) Register(cmd *Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[strings.ToLower(cmd.Name)] = cmd
}

// Lookup finds a command by name
func (r *Registry) Lookup(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[strings.ToLower(name)]
	return cmd, ok
}

// Commands returns all registered commands sorted by name
func (r *Registry) Commands() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Process parses the input and runs the matching command
func (r *Registry) Process(ctx context.Context, input string) Result {
	out, err := r.Execute(ctx, input)
	if err != nil {
		return Failure(err)
	}
	return Result{Success: true, Content: out}
}

// Execute is Process with an explicit error return
func (r *Registry) Execute(ctx context.Context, input string) (string, error) {
	args, err := Split(input)
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return "", ErrNoCommand
	}

	cmd, ok := r.Lookup(args[0])
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return cmd.Run(ctx, args[1:])
}

// Split tokenizes input with shell quoting rules. Quotes group words and a
// backslash escapes the next character outside single quotes. Shell
// operators such as ; or | are rejected since commands never run in a shell.
func Split(input string) ([]string, error) {
	p := shellwords.NewParser()
	args, err := p.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommandLine, err)
	}
	if p.Position >= 0 {
		return nil, fmt.Errorf("%w at offset %d", ErrUnsupportedOperator, p.Position)
	}
	return args, nil
}
