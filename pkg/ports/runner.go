package ports

import "context"

// Command describes an external program invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory. Empty means the current one.
	Dir string
	// Env is appended to the current process environment.
	Env []string
}

// CommandRunner executes external programs.
type CommandRunner interface {
	// Output runs the command to completion and returns its combined stdout/stderr.
	Output(ctx context.Context, cmd Command) ([]byte, error)
	// Attach runs the command wired to the current terminal (stdin/stdout/stderr).
	Attach(ctx context.Context, cmd Command) error
	// LookPath reports the resolved path of an executable on PATH.
	LookPath(name string) (string, error)
}
