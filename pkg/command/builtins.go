package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewDefaultRegistry creates a registry with the built-in commands.
// version is reported by the version command.
func NewDefaultRegistry(version string) *Registry {
	r := NewRegistry()

	r.Register(&Command{
		Name:        "echo",
		Description: "Print the arguments",
		Run: func(ctx context.Context, args []string) (string, error) {
			return strings.Join(args, " "), nil
		},
	})

	r.Register(&Command{
		Name:        "time",
		Description: "Print the server time (RFC 3339, UTC)",
		Run: func(ctx context.Context, args []string) (string, error) {
			return time.Now().UTC().Format(time.RFC3339), nil
		},
	})

	r.Register(&Command{
		Name:        "uuid",
		Description: "Generate random UUIDs, optionally a count of them",
		Run: func(ctx context.Context, args []string) (string, error) {
			n := 1
			if len(args) > 0 {
				count, err := strconv.Atoi(args[0])
				if err != nil || count < 1 || count > 100 {
					return "", fmt.Errorf("uuid: count must be between 1 and 100, got %q", args[0])
				}
				n = count
			}
			ids := make([]string, n)
			for i := range ids {
				ids[i] = uuid.NewString()
			}
			return strings.Join(ids, "\n"), nil
		},
	})

	r.Register(&Command{
		Name:        "version",
		Description: "Print the server version",
		Run: func(ctx context.Context, args []string) (string, error) {
			return version, nil
		},
	})

	r.Register(&Command{
		Name:        "help",
		Description: "List available commands",
		Run: func(ctx context.Context, args []string) (string, error) {
			var b strings.Builder
			for _, cmd := range r.Commands() {
				fmt.Fprintf(&b, "%-10s %s\n", cmd.Name, cmd.Description)
			}
			return strings.TrimRight(b.String(), "\n"), nil
		},
	})

	return r
}
