package ports

import "go.trai.ch/keel/internal/core/domain"

//go:generate go run go.uber.org/mock/mockgen -source=build_file_loader.go -destination=mocks/build_file_loader_mock.go -package=mocks

// BuildFileLoader loads a declarative build-file into a domain.BuildFile.
// configureClient validation (client name/version match) happens inside
// Load; a mismatch is a load error. The returned map carries, per command
// name, the ExternalCommand behavior object the command's tool produced
// when the command was declared (signature/validity/execution), keeping
// domain.Command itself free of any dependency on tool implementations.
type BuildFileLoader interface {
	Load(path string, delegate HostDelegate) (*domain.BuildFile, map[string]ExternalCommand, error)
}
