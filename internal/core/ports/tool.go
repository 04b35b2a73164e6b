package ports

import (
	"context"

	"go.trai.ch/keel/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=tool.go -destination=mocks/tool_mock.go -package=mocks

// Tool is a factory mapping a tool name to a command constructor. A tool
// exposes ConfigureAttribute (all unknown attributes are an error) and
// CreateCommand, which returns both the declarative command and the
// behavior object that knows how to sign, validate, project, and execute it.
type Tool interface {
	ConfigureAttribute(name, value string) error
	CreateCommand(name string) (*domain.Command, ExternalCommand, error)
}

// ExternalCommand is the behavior every built-in command type specializes:
// deterministic signing, validity against a stored value, output
// projection, and the side-effecting execution hook.
type ExternalCommand interface {
	// Signature is a deterministic 64-bit digest of the command's
	// declarative content; it must not depend on runtime state.
	Signature(cmd *domain.Command) uint64

	// IsResultValid returns false if value is not SuccessfulCommand, the
	// stored signature differs from the current one, or any non-virtual
	// output is missing or has changed on disk; true otherwise.
	IsResultValid(cmd *domain.Command, nodes NodeLookup, value domain.BuildValue) bool

	// GetResultForOutput projects a command's completion value through the
	// lens of one of its declared outputs, for ProducedNodeTask.
	GetResultForOutput(cmd *domain.Command, nodes NodeLookup, outputName string, value domain.BuildValue) domain.BuildValue

	// ExecuteExternalCommand performs the side effect and reports success.
	// discover is called once per dependency the command finds at execution
	// time (e.g. by parsing a compiler-emitted dependency file); commands
	// that never discover dependencies simply never call it.
	ExecuteExternalCommand(ctx context.Context, cmd *domain.Command, queue ExecutionQueue, logger Logger, discover func(nodeName string)) bool
}

// NodeLookup resolves a node by name; implemented by the build file model
// plus its dynamic-node cache.
type NodeLookup interface {
	GetOrCreateNode(name string) *domain.Node
}
