// Package queue implements the build system's execution queue using
// golang.org/x/sync/errgroup, grounded in the teacher's scheduler worker
// pool (errgroup.WithContext + SetLimit(runtime.NumCPU())).
package queue

import (
	"context"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Queue implements ports.ExecutionQueue over an errgroup-backed worker pool.
// Jobs submitted via AddJob run with bounded parallelism; Wait blocks until
// every submitted job has returned.
type Queue struct {
	ctx   context.Context
	group *errgroup.Group
}

// New creates an execution queue bounded to parallelism concurrent jobs. A
// parallelism of 0 defaults to runtime.NumCPU().
func New(ctx context.Context, parallelism int) *Queue {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallelism)
	return &Queue{ctx: groupCtx, group: group}
}

// AddJob submits job to the worker pool. It never blocks the caller past
// the point where a free worker slot is claimed.
func (q *Queue) AddJob(job ports.Job) {
	q.group.Go(func() error {
		job(q.ctx)
		return nil
	})
}

// ExecuteShellCommand runs args through the platform shell in workDir,
// streaming stdout/stderr to the given writers. Returns false on any
// non-zero exit or launch failure.
func (q *Queue) ExecuteShellCommand(ctx context.Context, workDir, args string, stdout, stderr io.Writer) bool {
	shell, shellFlag := "/bin/sh", "-c"
	if runtime.GOOS == "windows" {
		shell, shellFlag = "cmd", "/C"
	}

	cmd := exec.CommandContext(ctx, shell, shellFlag, args) // #nosec G204 -- args is declared build-file content
	if workDir != "" && workDir != "." {
		cmd.Dir = workDir
	}
	cmd.Env = os.Environ()
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		writeLaunchError(stderr, args, err)
		return false
	}
	return true
}

func writeLaunchError(w io.Writer, args string, err error) {
	_, _ = io.WriteString(w, zerr.With(zerr.Wrap(err, "command failed"), "args", strings.TrimSpace(args)).Error()+"\n")
}

// Wait blocks until every job submitted via AddJob has returned, returning
// the first non-nil error, if any (jobs themselves never return an error
// today, but Wait is part of the port contract for graceful shutdown).
func (q *Queue) Wait() error {
	return q.group.Wait()
}
