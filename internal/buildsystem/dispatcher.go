package buildsystem

import (
	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/keel/internal/engine"
	"go.trai.ch/zerr"
)

var (
	// ErrNoSuchCommand is a protocol invariant violation: a Command key was
	// requested for a name absent from the build file. Reached only through
	// keys the core itself produced.
	ErrNoSuchCommand = zerr.New("no such command")

	// ErrNoSuchTarget is a protocol invariant violation analogous to
	// ErrNoSuchCommand, for Target keys.
	ErrNoSuchTarget = zerr.New("no such target")
)

// Dispatcher is the rule/task dispatcher (C6): it maps any key to the rule
// that computes its value and the validity predicate for a stored value.
type Dispatcher struct {
	file         *domain.BuildFile
	behaviors    map[string]ports.ExternalCommand
	delegate     ports.HostDelegate
	queue        ports.ExecutionQueue
	logger       ports.Logger
	mainFileName string
}

// NewDispatcher constructs a dispatcher over a loaded build file.
func NewDispatcher(file *domain.BuildFile, behaviors map[string]ports.ExternalCommand, delegate ports.HostDelegate, queue ports.ExecutionQueue, logger ports.Logger, mainFileName string) *Dispatcher {
	return &Dispatcher{
		file:         file,
		behaviors:    behaviors,
		delegate:     delegate,
		queue:        queue,
		logger:       logger,
		mainFileName: mainFileName,
	}
}

// Rule implements engine.RuleProvider.
func (d *Dispatcher) Rule(key domain.BuildKey) (engine.Rule, error) {
	switch key.Kind {
	case domain.KeyKindCommand:
		return d.commandRule(key)
	case domain.KeyKindNode:
		return d.nodeRule(key)
	case domain.KeyKindTarget:
		return d.targetRule(key)
	default:
		return engine.Rule{}, zerr.With(domain.ErrUnknownKeyTag, "key", key.String())
	}
}

func (d *Dispatcher) commandRule(key domain.BuildKey) (engine.Rule, error) {
	cmd, ok := d.file.Commands[key.Name]
	if !ok {
		return engine.Rule{}, zerr.With(ErrNoSuchCommand, "command", key.Name)
	}
	behavior := d.behaviors[key.Name]
	return engine.Rule{
		Key: key,
		Action: func(k domain.BuildKey) engine.Task {
			return newCommandTask(k, cmd, behavior, d)
		},
		IsValid: func(stored domain.BuildValue) bool {
			return behavior.IsResultValid(cmd, d.file, stored)
		},
	}, nil
}

func (d *Dispatcher) nodeRule(key domain.BuildKey) (engine.Rule, error) {
	node := d.file.GetOrCreateNode(key.Name)

	if !node.HasProducer() {
		return engine.Rule{
			Key: key,
			Action: func(k domain.BuildKey) engine.Task {
				return newInputNodeTask(k, node)
			},
			IsValid: func(stored domain.BuildValue) bool {
				return isInputNodeValid(node, stored)
			},
		}, nil
	}

	if len(node.Producers) > 1 {
		return engine.Rule{}, zerr.With(domain.ErrMultipleProducers, "node", node.Name)
	}

	producerCmd, ok := d.file.Commands[node.Producers[0]]
	if !ok {
		return engine.Rule{}, zerr.With(ErrNoSuchCommand, "command", node.Producers[0])
	}
	behavior := d.behaviors[node.Producers[0]]

	return engine.Rule{
		Key: key,
		Action: func(k domain.BuildKey) engine.Task {
			return newProducedNodeTask(k, node, producerCmd, behavior, d)
		},
		// Validity is always true: freshness is fully delegated to the
		// producing command's own rule.
		IsValid: func(stored domain.BuildValue) bool { return true },
	}, nil
}

func (d *Dispatcher) targetRule(key domain.BuildKey) (engine.Rule, error) {
	target, ok := d.file.Targets[key.Name]
	if !ok {
		return engine.Rule{}, zerr.With(ErrNoSuchTarget, "target", key.Name)
	}
	return engine.Rule{
		Key: key,
		Action: func(k domain.BuildKey) engine.Task {
			return newTargetTask(k, target, d)
		},
		// Targets are re-traversed on every build so missing-input reports
		// stay current; downstream work is still elided per member.
		IsValid: func(stored domain.BuildValue) bool { return false },
	}, nil
}

func isInputNodeValid(node *domain.Node, stored domain.BuildValue) bool {
	if node.IsVirtual {
		return stored.Kind == domain.ValueKindVirtualInput
	}
	if stored.Kind != domain.ValueKindExistingInput {
		return false
	}
	current, err := domain.StatFileInfo(node.Name)
	if err != nil || current.Missing {
		return false
	}
	return current.Equal(stored.FileInfo)
}
