package app

import (
	"context"
	"sync/atomic"

	"go.trai.ch/keel/internal/adapters/queue"
	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/zerr"
)

// ClientName is keel's declared build-file client identity (§6 configureClient).
const ClientName = "keel"

// SchemaVersion is keel's declared schema version, validated against both
// the build file's client block and the result database's stored version.
const SchemaVersion uint32 = 1

// Delegate implements ports.HostDelegate for the keel CLI: it never
// extends tool lookup beyond the three built-ins, routes diagnostics to a
// ports.Logger, and creates an errgroup-backed execution queue bound to the
// build's own context.
type Delegate struct {
	ctx         context.Context
	logger      ports.Logger
	parallelism int
	failures    atomic.Int64
}

// NewDelegate constructs a Delegate. parallelism of 0 lets the execution
// queue default to runtime.NumCPU().
func NewDelegate(ctx context.Context, logger ports.Logger, parallelism int) *Delegate {
	return &Delegate{ctx: ctx, logger: logger, parallelism: parallelism}
}

func (d *Delegate) GetName() string    { return ClientName }
func (d *Delegate) GetVersion() uint32 { return SchemaVersion }

// LookupTool never resolves a host-supplied tool today; keel ships only the
// three built-ins (phony, shell, clang). A future host extension point
// would implement this by consulting a registered-tool map instead.
func (d *Delegate) LookupTool(name string) (ports.Tool, bool) { return nil, false }

func (d *Delegate) CreateExecutionQueue() ports.ExecutionQueue {
	return queue.New(d.ctx, d.parallelism)
}

func (d *Delegate) Error(filename string, token ports.Token, message string) {
	err := zerr.With(zerr.New(message), "file", filename)
	err = zerr.With(err, "offset", token.Offset)
	d.logger.Error(err)
}

// Logger exposes the delegate's logger to the build system, which uses it
// for command descriptions and command output.
func (d *Delegate) Logger() ports.Logger { return d.logger }

func (d *Delegate) HadCommandFailure() { d.failures.Add(1) }

func (d *Delegate) IsCancelled() bool { return d.ctx.Err() != nil }

// FailureCount reports how many command failures this build observed.
func (d *Delegate) FailureCount() int64 { return d.failures.Load() }

var _ ports.HostDelegate = (*Delegate)(nil)
