package ports

//go:generate go run go.uber.org/mock/mockgen -source=host_delegate.go -destination=mocks/host_delegate_mock.go -package=mocks

// Token locates a diagnostic within the file being parsed. {0,0} denotes
// "no location".
type Token struct {
	Offset int
	Length int
}

// HostDelegate is the collaborator the core calls out to for identity,
// tool resolution, diagnostics, and cancellation.
type HostDelegate interface {
	// GetName and GetVersion are the client identity/schema validated against
	// the build file's declared client.
	GetName() string
	GetVersion() uint32

	// LookupTool consults host-registered tools before the three built-ins.
	LookupTool(name string) (Tool, bool)

	// CreateExecutionQueue is called once per build system instance.
	CreateExecutionQueue() ExecutionQueue

	// Error routes a diagnostic for filename at token with message.
	Error(filename string, token Token, message string)

	// HadCommandFailure is called each time a command fails or is skipped
	// due to a missing input.
	HadCommandFailure()

	// IsCancelled is polled once at the entry to a command task's
	// inputs_available.
	IsCancelled() bool
}
