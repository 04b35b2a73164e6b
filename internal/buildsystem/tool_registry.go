// Package buildsystem implements the build-graph semantics layered on top
// of the generic keyed dependency engine: the node/command/target model's
// behavior, the built-in tools, the rule dispatcher, the four task state
// machines, and the public build(target) entry point. This mirrors the
// BuildSystem.cpp layer of the source this specification distills, with the
// generic incremental-recomputation algorithm itself factored out into
// internal/engine.
package buildsystem

import (
	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	// ErrUnknownTool is returned when a build file references a tool name
	// the registry (and host delegate) do not recognize.
	ErrUnknownTool = zerr.New("unknown tool")
)

// ToolRegistry is the tool registry (C5): lookup_tool first consults the
// host delegate, then falls back to the three built-ins.
type ToolRegistry struct {
	delegate ports.HostDelegate
}

// NewToolRegistry constructs a registry backed by delegate for host-supplied
// tool extension lookups.
func NewToolRegistry(delegate ports.HostDelegate) *ToolRegistry {
	return &ToolRegistry{delegate: delegate}
}

// LookupTool resolves name to a Tool, consulting the host delegate before
// the built-ins.
func (r *ToolRegistry) LookupTool(name string) (ports.Tool, error) {
	if r.delegate != nil {
		if tool, ok := r.delegate.LookupTool(name); ok {
			return tool, nil
		}
	}
	switch name {
	case "phony":
		return &PhonyTool{}, nil
	case "shell":
		return &ShellTool{}, nil
	case "clang":
		return &ClangTool{}, nil
	default:
		return nil, zerr.With(ErrUnknownTool, "tool", name)
	}
}

// baseSignature mixes the declared inputs' and outputs' names with XOR, the
// signature policy every built-in command starts from (deliberately cheap,
// order-insensitive; see the signature policy design note).
func baseSignature(cmd *domain.Command) uint64 {
	var sig uint64
	for _, in := range cmd.Inputs {
		sig ^= hashString(in)
	}
	for _, out := range cmd.Outputs {
		sig ^= hashString("out:" + out)
	}
	return sig
}
