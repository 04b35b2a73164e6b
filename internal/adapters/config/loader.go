// Package config implements the YAML build-file loader (the declarative
// build-file parser the core spec treats as an external collaborator),
// grounded in the teacher's own DTO-then-validate-then-build-domain-object
// config loader.
package config

import (
	"os"

	"go.trai.ch/keel/internal/buildsystem"
	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// ErrClientMissing is returned when the build file omits the required
// "client" block.
var ErrClientMissing = zerr.New("build file missing client block")

// keelFile mirrors the YAML structure of a build file: client identity,
// tool attributes, targets, and commands. Nodes are never declared
// directly; they come into existence as inputs/outputs of commands and
// members of targets.
type keelFile struct {
	Client  clientDTO            `yaml:"client"`
	Tools   map[string]toolDTO   `yaml:"tools"`
	Targets map[string]targetDTO `yaml:"targets"`
	Commands map[string]commandDTO `yaml:"commands"`
}

type clientDTO struct {
	Name    string `yaml:"name"`
	Version uint32 `yaml:"version"`
}

// toolDTO carries free-form attributes forwarded to Tool.ConfigureAttribute
// before any command is created from it.
type toolDTO map[string]string

type targetDTO struct {
	Members []string `yaml:"members"`
}

type commandDTO struct {
	Tool        string            `yaml:"tool"`
	Description string            `yaml:"description"`
	Inputs      []string          `yaml:"inputs"`
	Outputs     []string          `yaml:"outputs"`
	Attributes  map[string]string `yaml:"attributes"`
}

// Loader implements ports.BuildFileLoader using a YAML file on disk.
type Loader struct {
	registry *buildsystem.ToolRegistry
}

// NewLoader constructs a Loader that resolves tool names through registry.
func NewLoader(registry *buildsystem.ToolRegistry) *Loader {
	return &Loader{registry: registry}
}

// Load reads path, validates it against delegate's identity, and builds a
// domain.BuildFile plus the per-command ExternalCommand behaviors.
func (l *Loader) Load(path string, delegate ports.HostDelegate) (*domain.BuildFile, map[string]ports.ExternalCommand, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is a CLI-provided build file, trusted input
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to read build file")
	}

	var raw keelFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, zerr.Wrap(err, "failed to parse build file")
	}

	if err := configureClient(raw.Client, delegate); err != nil {
		return nil, nil, err
	}

	file := domain.NewBuildFile()
	file.ClientName = raw.Client.Name
	file.ClientVersion = raw.Client.Version

	for toolName, attrs := range raw.Tools {
		tool, err := l.registry.LookupTool(toolName)
		if err != nil {
			return nil, nil, zerr.With(err, "tool", toolName)
		}
		for attrName, attrValue := range attrs {
			if err := tool.ConfigureAttribute(attrName, attrValue); err != nil {
				return nil, nil, zerr.With(err, "tool", toolName)
			}
		}
	}

	behaviors := make(map[string]ports.ExternalCommand, len(raw.Commands))
	for name, dto := range raw.Commands {
		cmd, behavior, err := l.buildCommand(name, dto, file)
		if err != nil {
			return nil, nil, err
		}
		file.Commands[name] = cmd
		behaviors[name] = behavior
	}

	for name, dto := range raw.Targets {
		file.Targets[name] = domain.NewTarget(name, dto.Members)
	}

	return file, behaviors, nil
}

func (l *Loader) buildCommand(name string, dto commandDTO, file *domain.BuildFile) (*domain.Command, ports.ExternalCommand, error) {
	tool, err := l.registry.LookupTool(dto.Tool)
	if err != nil {
		return nil, nil, zerr.With(err, "command", name)
	}

	cmd, behavior, err := tool.CreateCommand(name)
	if err != nil {
		return nil, nil, zerr.With(err, "command", name)
	}

	if dto.Description != "" {
		cmd.ConfigureDescription(dto.Description)
	}
	cmd.ConfigureInputs(dto.Inputs)
	cmd.ConfigureOutputs(dto.Outputs)
	for attrName, attrValue := range dto.Attributes {
		cmd.ConfigureAttribute(attrName, attrValue)
	}
	if validator, ok := tool.(interface {
		ValidateCommand(*domain.Command) error
	}); ok {
		if err := validator.ValidateCommand(cmd); err != nil {
			return nil, nil, zerr.With(err, "command", name)
		}
	}

	for _, out := range dto.Outputs {
		node := file.GetOrCreateNode(out)
		if err := node.AddProducer(name); err != nil {
			return nil, nil, zerr.With(err, "command", name)
		}
	}

	return cmd, behavior, nil
}

func configureClient(c clientDTO, delegate ports.HostDelegate) error {
	if c.Name == "" {
		return ErrClientMissing
	}
	if c.Name != delegate.GetName() || c.Version != delegate.GetVersion() {
		return zerr.With(buildsystem.ErrClientMismatch, "client", c.Name)
	}
	return nil
}
