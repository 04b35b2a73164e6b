package buildsystem

import (
	"context"

	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/zerr"
)

// ErrMissingArgs is returned when a shell command is declared without the
// required "args" attribute.
var ErrMissingArgs = zerr.New("shell command missing required 'args' attribute")

// ShellTool is the built-in "shell" tool: runs its "args" attribute as a
// shell command via the execution queue.
type ShellTool struct{}

func (t *ShellTool) ConfigureAttribute(name, value string) error {
	return zerr.With(ErrUnknownToolAttribute, "attribute", name)
}

func (t *ShellTool) CreateCommand(name string) (*domain.Command, ports.ExternalCommand, error) {
	cmd := domain.NewCommand(name, "shell")
	return cmd, &shellCommand{}, nil
}

// ValidateCommand requires the "args" attribute and rejects anything else.
func (t *ShellTool) ValidateCommand(cmd *domain.Command) error {
	for k := range cmd.Attributes {
		if k != "args" {
			return zerr.With(ErrUnknownCommandAttribute, "attribute", k)
		}
	}
	if cmd.Attributes["args"] == "" {
		return zerr.With(ErrMissingArgs, "command", cmd.Name)
	}
	return nil
}

type shellCommand struct{}

func (c *shellCommand) Signature(cmd *domain.Command) uint64 {
	return baseSignature(cmd) ^ hashString("args:"+cmd.Attributes["args"])
}

func (c *shellCommand) IsResultValid(cmd *domain.Command, nodes ports.NodeLookup, value domain.BuildValue) bool {
	return isResultValid(cmd, nodes, c.Signature(cmd), value)
}

func (c *shellCommand) GetResultForOutput(cmd *domain.Command, nodes ports.NodeLookup, outputName string, value domain.BuildValue) domain.BuildValue {
	return getResultForOutput(cmd, nodes, outputName, value)
}

func (c *shellCommand) ExecuteExternalCommand(ctx context.Context, cmd *domain.Command, queue ports.ExecutionQueue, logger ports.Logger, discover func(string)) bool {
	args := cmd.Attributes["args"]
	if cmd.Description != "" {
		logger.Info(cmd.Description)
	} else {
		logger.Info(args)
	}
	return queue.ExecuteShellCommand(ctx, ".", args, logWriter{logger, false}, logWriter{logger, true})
}

// logWriter adapts ports.Logger to io.Writer, one line per Write call's
// worth of output, matching the teacher's shell executor's logWriter.
type logWriter struct {
	logger ports.Logger
	stderr bool
}

func (w logWriter) Write(p []byte) (int, error) {
	line := string(p)
	if w.stderr {
		w.logger.Error(zerr.New(line))
	} else {
		w.logger.Info(line)
	}
	return len(p), nil
}
