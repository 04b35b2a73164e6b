package buildsystem

import (
	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports"
)

// isResultValid implements the shared validity rule every built-in
// ExternalCommand uses (C3): false unless value is SuccessfulCommand, its
// signature matches the command's current signature, and every non-virtual
// output still exists on disk with unchanged FileInfo.
func isResultValid(cmd *domain.Command, nodes ports.NodeLookup, signature uint64, value domain.BuildValue) bool {
	if value.Kind != domain.ValueKindSuccessfulCommand {
		return false
	}
	if value.Signature != signature {
		return false
	}
	if len(value.Outputs) != len(cmd.Outputs) {
		return false
	}
	for i, outName := range cmd.Outputs {
		node := nodes.GetOrCreateNode(outName)
		if node.IsVirtual {
			continue
		}
		current, err := domain.StatFileInfo(outName)
		if err != nil {
			return false
		}
		if current.Missing {
			return false
		}
		if !current.Equal(value.Outputs[i]) {
			return false
		}
	}
	return true
}

// getResultForOutput implements the shared projection rule every built-in
// ExternalCommand uses (C3): the produced-node task's view of a command's
// completion value.
func getResultForOutput(cmd *domain.Command, nodes ports.NodeLookup, outputName string, value domain.BuildValue) domain.BuildValue {
	if value.Kind == domain.ValueKindFailedCommand || value.Kind == domain.ValueKindSkippedCommand {
		return domain.FailedInputValue()
	}
	if value.Kind != domain.ValueKindSuccessfulCommand {
		return domain.FailedInputValue()
	}
	node := nodes.GetOrCreateNode(outputName)
	if node.IsVirtual {
		return domain.VirtualInputValue()
	}
	idx := cmd.OutputIndex(outputName)
	if idx < 0 || idx >= len(value.Outputs) {
		return domain.MissingInputValue()
	}
	info := value.Outputs[idx]
	if info.Missing {
		return domain.MissingInputValue()
	}
	return domain.ExistingInputValue(info)
}
