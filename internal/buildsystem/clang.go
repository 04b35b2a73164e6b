package buildsystem

import (
	"context"
	"os"

	"go.trai.ch/keel/internal/adapters/makefiledeps"
	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/zerr"
)

// ErrDepsFileUnreadable is returned when a clang-style command's deps file
// cannot be opened after execution.
var ErrDepsFileUnreadable = zerr.New("dependency file unreadable")

// ErrDepsFileUnparseable is returned when a clang-style command's deps file
// fails to parse as makefile-rule syntax.
var ErrDepsFileUnparseable = zerr.New("dependency file unparseable")

// ClangTool is the built-in dependency-emitting compiler wrapper: like
// ShellTool, but after a successful run it parses the "deps" attribute's
// file and reports every dependency it names as discovered. The deps path
// itself is not part of the signature; only discovered dependencies feed
// back into incremental recomputation.
type ClangTool struct{}

func (t *ClangTool) ConfigureAttribute(name, value string) error {
	return zerr.With(ErrUnknownToolAttribute, "attribute", name)
}

func (t *ClangTool) CreateCommand(name string) (*domain.Command, ports.ExternalCommand, error) {
	cmd := domain.NewCommand(name, "clang")
	return cmd, &clangCommand{}, nil
}

// ValidateCommand requires "args" and permits the optional "deps" attribute.
func (t *ClangTool) ValidateCommand(cmd *domain.Command) error {
	for k := range cmd.Attributes {
		if k != "args" && k != "deps" {
			return zerr.With(ErrUnknownCommandAttribute, "attribute", k)
		}
	}
	if cmd.Attributes["args"] == "" {
		return zerr.With(ErrMissingArgs, "command", cmd.Name)
	}
	return nil
}

type clangCommand struct{}

// Signature deliberately excludes the "deps" attribute: the deps path
// names a file whose contents are captured only through discovered
// dependencies, never through the path itself.
func (c *clangCommand) Signature(cmd *domain.Command) uint64 {
	return baseSignature(cmd) ^ hashString("args:"+cmd.Attributes["args"])
}

func (c *clangCommand) IsResultValid(cmd *domain.Command, nodes ports.NodeLookup, value domain.BuildValue) bool {
	return isResultValid(cmd, nodes, c.Signature(cmd), value)
}

func (c *clangCommand) GetResultForOutput(cmd *domain.Command, nodes ports.NodeLookup, outputName string, value domain.BuildValue) domain.BuildValue {
	return getResultForOutput(cmd, nodes, outputName, value)
}

func (c *clangCommand) ExecuteExternalCommand(ctx context.Context, cmd *domain.Command, queue ports.ExecutionQueue, logger ports.Logger, discover func(string)) bool {
	args := cmd.Attributes["args"]
	if cmd.Description != "" {
		logger.Info(cmd.Description)
	} else {
		logger.Info(args)
	}
	if !queue.ExecuteShellCommand(ctx, ".", args, logWriter{logger, false}, logWriter{logger, true}) {
		return false
	}

	depsPath := cmd.Attributes["deps"]
	if depsPath == "" {
		return true
	}

	f, err := os.Open(depsPath) // #nosec G304 -- depsPath is declared build-file content, not user input
	if err != nil {
		logger.Error(zerr.With(ErrDepsFileUnreadable, "path", depsPath))
		return false
	}
	defer f.Close()

	err = makefiledeps.Parse(f, makefiledeps.Actions{
		OnRuleDependency: func(path string) { discover(path) },
	})
	if err != nil {
		logger.Error(zerr.With(ErrDepsFileUnparseable, "path", depsPath))
		return false
	}
	return true
}
