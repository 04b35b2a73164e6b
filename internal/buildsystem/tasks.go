package buildsystem

import (
	"context"
	"fmt"

	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/keel/internal/engine"
)

// targetTask implements TargetTask (C7): requests each member as a Node
// key, reports missing inputs, and completes with the Target sentinel
// regardless of outcome (completion, not success).
type targetTask struct {
	key             domain.BuildKey
	target          *domain.Target
	dispatcher      *Dispatcher
	hasMissingInput bool
}

func newTargetTask(key domain.BuildKey, target *domain.Target, d *Dispatcher) *targetTask {
	return &targetTask{key: key, target: target, dispatcher: d}
}

func (t *targetTask) Start(eng *engine.Engine) {
	for i, member := range t.target.Members {
		eng.NeedsInput(t.key, domain.NodeKey(member), i)
	}
}

func (t *targetTask) ProvidePriorValue(eng *engine.Engine, value domain.BuildValue) {}

func (t *targetTask) ProvideValue(eng *engine.Engine, inputID int, value domain.BuildValue) {
	if value.Kind == domain.ValueKindMissingInput {
		t.hasMissingInput = true
		member := t.target.Members[inputID]
		t.dispatcher.delegate.Error(t.dispatcher.mainFileName, ports.Token{},
			fmt.Sprintf("missing input '%s' and no rule to build it", member))
	}
}

func (t *targetTask) InputsAvailable(eng *engine.Engine) {
	if t.hasMissingInput {
		t.dispatcher.delegate.HadCommandFailure()
	}
	eng.TaskIsComplete(t.key, domain.TargetValue(), false)
}

// inputNodeTask implements InputNodeTask (C7): a node with no producers.
type inputNodeTask struct {
	key  domain.BuildKey
	node *domain.Node
}

func newInputNodeTask(key domain.BuildKey, node *domain.Node) *inputNodeTask {
	return &inputNodeTask{key: key, node: node}
}

func (t *inputNodeTask) Start(eng *engine.Engine) {}

func (t *inputNodeTask) ProvidePriorValue(eng *engine.Engine, value domain.BuildValue) {}

func (t *inputNodeTask) ProvideValue(eng *engine.Engine, inputID int, value domain.BuildValue) {}

func (t *inputNodeTask) InputsAvailable(eng *engine.Engine) {
	if t.node.IsVirtual {
		eng.TaskIsComplete(t.key, domain.VirtualInputValue(), false)
		return
	}
	fi, err := domain.StatFileInfo(t.node.Name)
	if err != nil || fi.Missing {
		eng.TaskIsComplete(t.key, domain.MissingInputValue(), false)
		return
	}
	eng.TaskIsComplete(t.key, domain.ExistingInputValue(fi), false)
}

// producedNodeTask implements ProducedNodeTask (C7): a node with a
// producing command. Validity is always true for its rule; freshness is
// delegated entirely to the command's own rule.
type producedNodeTask struct {
	key         domain.BuildKey
	node        *domain.Node
	producerCmd *domain.Command
	behavior    ports.ExternalCommand
	dispatcher  *Dispatcher
	projected   domain.BuildValue
}

func newProducedNodeTask(key domain.BuildKey, node *domain.Node, producerCmd *domain.Command, behavior ports.ExternalCommand, d *Dispatcher) *producedNodeTask {
	return &producedNodeTask{key: key, node: node, producerCmd: producerCmd, behavior: behavior, dispatcher: d}
}

func (t *producedNodeTask) Start(eng *engine.Engine) {
	eng.NeedsInput(t.key, domain.CommandKey(t.producerCmd.Name), 0)
}

func (t *producedNodeTask) ProvidePriorValue(eng *engine.Engine, value domain.BuildValue) {}

func (t *producedNodeTask) ProvideValue(eng *engine.Engine, inputID int, value domain.BuildValue) {
	t.projected = t.behavior.GetResultForOutput(t.producerCmd, t.dispatcher.file, t.node.Name, value)
}

func (t *producedNodeTask) InputsAvailable(eng *engine.Engine) {
	eng.TaskIsComplete(t.key, t.projected, false)
}

// commandTask implements CommandTask (C7): delegates the task protocol to
// the underlying ExternalCommand, requesting both declared inputs and any
// dependencies discovered during a previous run, then enqueues the actual
// execution on the execution queue once every input is available.
type commandTask struct {
	key             domain.BuildKey
	cmd             *domain.Command
	behavior        ports.ExternalCommand
	dispatcher      *Dispatcher
	shouldSkip      bool
	hasMissingInput bool
}

func newCommandTask(key domain.BuildKey, cmd *domain.Command, behavior ports.ExternalCommand, d *Dispatcher) *commandTask {
	return &commandTask{key: key, cmd: cmd, behavior: behavior, dispatcher: d}
}

func (t *commandTask) Start(eng *engine.Engine) {
	t.shouldSkip = false
	t.hasMissingInput = false

	requested := map[string]bool{}
	id := 0
	for _, in := range t.cmd.Inputs {
		eng.NeedsInput(t.key, domain.NodeKey(in), id)
		requested[in] = true
		id++
	}
	for _, prior := range eng.PriorDependencyKeys(t.key) {
		if prior.Kind != domain.KeyKindNode || requested[prior.Name] {
			continue
		}
		eng.NeedsInput(t.key, prior, id)
		requested[prior.Name] = true
		id++
	}
}

func (t *commandTask) ProvidePriorValue(eng *engine.Engine, value domain.BuildValue) {}

func (t *commandTask) ProvideValue(eng *engine.Engine, inputID int, value domain.BuildValue) {
	switch value.Kind {
	case domain.ValueKindMissingInput:
		t.shouldSkip = true
		t.hasMissingInput = true
		t.dispatcher.delegate.Error(t.dispatcher.mainFileName, ports.Token{},
			fmt.Sprintf("missing input for command '%s'", t.cmd.Name))
	case domain.ValueKindFailedInput:
		t.shouldSkip = true
	}
}

func (t *commandTask) InputsAvailable(eng *engine.Engine) {
	if t.dispatcher.delegate.IsCancelled() {
		eng.TaskIsComplete(t.key, domain.SkippedCommandValue(), false)
		return
	}

	if t.shouldSkip {
		eng.TaskIsComplete(t.key, domain.SkippedCommandValue(), false)
		if t.hasMissingInput {
			name := t.cmd.Name
			if len(t.cmd.Outputs) > 0 {
				name = t.cmd.Outputs[0]
			}
			t.dispatcher.delegate.Error(t.dispatcher.mainFileName, ports.Token{},
				fmt.Sprintf("command '%s' skipped due to missing input", name))
			t.dispatcher.delegate.HadCommandFailure()
		}
		return
	}

	cmd := t.cmd
	behavior := t.behavior
	key := t.key
	dispatcher := t.dispatcher

	declaredInputs := make(map[string]bool, len(cmd.Inputs))
	for _, in := range cmd.Inputs {
		declaredInputs[in] = true
	}

	dispatcher.queue.AddJob(func(ctx context.Context) {
		discover := func(nodeName string) {
			if declaredInputs[nodeName] {
				// Already tracked as an explicit input; deps files (e.g. clang's
				// .d output) routinely re-list the primary source here too.
				return
			}
			fi, _ := domain.StatFileInfo(nodeName)
			var value domain.BuildValue
			if fi.Missing {
				value = domain.MissingInputValue()
			} else {
				value = domain.ExistingInputValue(fi)
			}
			eng.TaskDiscoveredDependency(key, domain.NodeKey(nodeName), value, true)
		}

		ok := behavior.ExecuteExternalCommand(ctx, cmd, dispatcher.queue, dispatcher.logger, discover)
		if !ok {
			dispatcher.delegate.HadCommandFailure()
			eng.TaskIsComplete(key, domain.FailedCommandValue(), true)
			return
		}

		outputs := make([]domain.FileInfo, len(cmd.Outputs))
		for i, outName := range cmd.Outputs {
			node := dispatcher.file.GetOrCreateNode(outName)
			if node.IsVirtual {
				outputs[i] = domain.FileInfo{}
				continue
			}
			fi, _ := domain.StatFileInfo(outName)
			outputs[i] = fi
		}
		sig := behavior.Signature(cmd)
		eng.TaskIsComplete(key, domain.SuccessfulCommandValue(sig, outputs), true)
	})
}
