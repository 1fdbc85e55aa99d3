package sensor

import (
	"context"
	"os/exec"
)

// Runner executes an external command and returns its standard output.
// On a non-zero exit the output read so far is returned with the error.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands through os/exec; ctx cancellation kills the process.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
