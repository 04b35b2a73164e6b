package buildsystem

import (
	"context"

	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/zerr"
)

// PhonyTool is the built-in "phony" tool: used to group nodes, its command
// performs no side effect.
type PhonyTool struct{}

func (t *PhonyTool) ConfigureAttribute(name, value string) error {
	return zerr.With(ErrUnknownToolAttribute, "attribute", name)
}

func (t *PhonyTool) CreateCommand(name string) (*domain.Command, ports.ExternalCommand, error) {
	cmd := domain.NewCommand(name, "phony")
	return cmd, &phonyCommand{}, nil
}

// ValidateCommand rejects any attribute; phony recognizes none.
func (t *PhonyTool) ValidateCommand(cmd *domain.Command) error {
	if len(cmd.Attributes) > 0 {
		for k := range cmd.Attributes {
			return zerr.With(ErrUnknownCommandAttribute, "attribute", k)
		}
	}
	return nil
}

type phonyCommand struct{}

func (c *phonyCommand) Signature(cmd *domain.Command) uint64 {
	return baseSignature(cmd)
}

func (c *phonyCommand) IsResultValid(cmd *domain.Command, nodes ports.NodeLookup, value domain.BuildValue) bool {
	return isResultValid(cmd, nodes, c.Signature(cmd), value)
}

func (c *phonyCommand) GetResultForOutput(cmd *domain.Command, nodes ports.NodeLookup, outputName string, value domain.BuildValue) domain.BuildValue {
	return getResultForOutput(cmd, nodes, outputName, value)
}

func (c *phonyCommand) ExecuteExternalCommand(ctx context.Context, cmd *domain.Command, queue ports.ExecutionQueue, logger ports.Logger, discover func(string)) bool {
	return true
}

var ErrUnknownToolAttribute = zerr.New("unknown tool attribute")
var ErrUnknownCommandAttribute = domain.ErrUnknownCommandAttribute
