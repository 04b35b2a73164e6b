package ports

import (
	"context"
	"io"
)

//go:generate go run go.uber.org/mock/mockgen -source=execution_queue.go -destination=mocks/execution_queue_mock.go -package=mocks

// Job is the body submitted to an ExecutionQueue. It owns its ctx and must
// eventually signal completion through whatever mechanism the caller of
// AddJob arranged (a channel, a callback closure over task_is_complete).
type Job func(ctx context.Context)

// ExecutionQueue is the injected collaborator that performs all process
// creation; the core never launches a process itself. AddJob is called at
// most once per CommandTask per build.
type ExecutionQueue interface {
	AddJob(job Job)

	// ExecuteShellCommand runs args as a shell command in workDir, streaming
	// stdout/stderr to the given writers, and reports whether it exited zero.
	ExecuteShellCommand(ctx context.Context, workDir string, args string, stdout, stderr io.Writer) bool

	// Wait blocks until all jobs submitted via AddJob have completed.
	Wait() error
}
