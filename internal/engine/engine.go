// Package engine implements the generic keyed dependency engine the
// buildsystem package's rules run on: a single-threaded cooperative
// dispatcher that drives the four-method task protocol, persists values to
// a result database, and determines whether a previously stored value can
// be reused without recomputation.
//
// This layer corresponds to llbuild's BuildEngine, which is referenced but
// not implemented by the retrieved BuildSystem.cpp source; its design here
// is grounded in the channel-serialized, goroutine-parallel scheduler idiom
// used by the teacher's own task schedulers (a single dispatcher goroutine
// draining a command channel, with worker goroutines reporting completion
// back onto that channel rather than mutating engine state directly).
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	// ErrCycleDetected is handed to the requesting rule's input callback (which
	// passes FailedInput to its task) when the dispatcher loop finds a key
	// already open earlier in the current synchronous call chain; the cycle
	// path itself goes to the OnCycle handler.
	ErrCycleDetected = zerr.New("cycle detected while building")

	// ErrNoRuleForKey is a protocol invariant violation: the rule provider
	// could not produce a rule for a key the engine itself requested.
	ErrNoRuleForKey = zerr.New("no rule for key")
)

// Task is the engine-facing half of the four-method protocol. Each task
// implementation owns the key it was constructed for and calls back into
// the Engine via NeedsInput/TaskIsComplete/TaskDiscoveredDependency.
type Task interface {
	Start(eng *Engine)
	ProvidePriorValue(eng *Engine, value domain.BuildValue)
	ProvideValue(eng *Engine, inputID int, value domain.BuildValue)
	InputsAvailable(eng *Engine)
}

// Rule is what a RuleProvider returns for a key: an action constructing the
// task that computes its value, and the validity predicate for a stored
// value (the C6 dispatcher's per-key is_valid callback).
type Rule struct {
	Key     domain.BuildKey
	Action  func(key domain.BuildKey) Task
	IsValid func(stored domain.BuildValue) bool
}

// RuleProvider maps any key to its Rule; implemented by the buildsystem
// package's dispatcher (C6).
type RuleProvider interface {
	Rule(key domain.BuildKey) (Rule, error)
}

type depSnapshot struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}

type storedRecord struct {
	Value []byte        `json:"value"`
	Deps  []depSnapshot `json:"deps"`
}

type ruleStatus int

const (
	statusWaiting ruleStatus = iota
	statusComplete
)

type waiter struct {
	resume func(value domain.BuildValue)
}

type ruleState struct {
	key     domain.BuildKey
	rule    Rule
	task    Task
	status  ruleStatus
	result  domain.BuildValue
	pending int
	waiters []waiter

	stored        *storedRecord // loaded once, at open time
	observed      []depSnapshot // deps actually requested+observed this run
	discovered    []depSnapshot // deps discovered mid-execution this run
	shortCircuit  bool          // unused: no code path sets it; reuse of stored.Value is decided in advanceToInputsAvailable
}

// Engine is the single-threaded cooperative dependency engine. All task
// protocol methods and rule lookups run on its one dispatcher goroutine;
// external completions (execution-queue jobs) are serialized back onto it
// through TaskIsComplete.
type Engine struct {
	rules RuleProvider
	db    ports.ResultDatabase

	cmds chan func()

	mu     sync.Mutex // unused: states and stack are only touched on the dispatcher goroutine
	states map[string]*ruleState
	stack  []string // keys of rules currently inside their synchronous Start() call

	cycleHandler func(cyclePath []string)
}

// New constructs an engine over the given rule provider and result database.
// db may be nil, in which case nothing is persisted: only values computed
// earlier by this same engine are reused by later Build calls.
func New(rules RuleProvider, db ports.ResultDatabase) *Engine {
	e := &Engine{
		rules:  rules,
		db:     db,
		cmds:   make(chan func(), 64),
		states: map[string]*ruleState{},
	}
	go e.run()
	return e
}

// OnCycle registers a callback invoked (on the dispatcher goroutine) with
// the path of keys forming a detected cycle.
func (e *Engine) OnCycle(fn func(cyclePath []string)) { e.cycleHandler = fn }

func (e *Engine) run() {
	for cmd := range e.cmds {
		cmd()
	}
}

// Close stops the dispatcher goroutine. Call after all Build calls have
// returned.
func (e *Engine) Close() { close(e.cmds) }

// Build brings key up to date and returns its final value. It is safe to
// call from any goroutine; the actual work happens on the engine's
// dispatcher goroutine.
func (e *Engine) Build(ctx context.Context, key domain.BuildKey) (domain.BuildValue, error) {
	type outcome struct {
		value domain.BuildValue
		err   error
	}
	done := make(chan outcome, 1)
	e.cmds <- func() {
		e.open(key, func(v domain.BuildValue, err error) {
			done <- outcome{value: v, err: err}
		})
	}
	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		return domain.BuildValue{}, ctx.Err()
	}
}

// open resolves key, invoking resume exactly once with its final value. It
// must only be called on the dispatcher goroutine.
func (e *Engine) open(key domain.BuildKey, resume func(domain.BuildValue, error)) {
	enc := string(key.Encode())
	state, existing := e.states[enc]

	if existing {
		if state.status == statusComplete {
			resume(state.result, nil)
			return
		}
		if e.onStack(enc) {
			// Cycle: key is an ancestor in the current synchronous call chain.
			e.reportCycle(enc)
			resume(domain.BuildValue{}, ErrCycleDetected)
			return
		}
		state.waiters = append(state.waiters, waiter{resume: func(v domain.BuildValue) { resume(v, nil) }})
		return
	}

	rule, err := e.rules.Rule(key)
	if err != nil {
		resume(domain.BuildValue{}, err)
		return
	}

	state = &ruleState{key: key, rule: rule, status: statusWaiting}
	e.states[enc] = state
	state.stored = e.loadStored(key)

	e.stack = append(e.stack, enc)
	state.task = rule.Action(key)
	if state.stored != nil {
		if priorValue, err := domain.DecodeValue(state.stored.Value); err == nil {
			state.task.ProvidePriorValue(e, priorValue)
		}
	}
	// pending starts at 1 as a placeholder for "Start is still running", so
	// that a NeedsInput call resolving synchronously cannot make pending
	// transiently hit zero before Start has issued every request.
	state.pending = 1
	state.task.Start(e)
	e.stack = e.stack[:len(e.stack)-1]
	state.pending--

	if state.pending == 0 {
		e.advanceToInputsAvailable(state)
	}
	if state.status != statusComplete {
		state.waiters = append(state.waiters, waiter{resume: func(v domain.BuildValue) { resume(v, nil) }})
	} else {
		resume(state.result, nil)
	}
}

func (e *Engine) onStack(enc string) bool {
	for _, s := range e.stack {
		if s == enc {
			return true
		}
	}
	return false
}

func (e *Engine) reportCycle(fromEnc string) {
	if e.cycleHandler == nil {
		return
	}
	path := make([]string, len(e.stack))
	copy(path, e.stack)
	path = append(path, fromEnc)
	e.cycleHandler(path)
}

// NeedsInput is called by a task's Start/ProvideValue to request the value
// of dep as input input Id. It must only be called on the dispatcher
// goroutine (i.e. synchronously from within a task protocol method).
func (e *Engine) NeedsInput(owner domain.BuildKey, dep domain.BuildKey, inputID int) {
	ownerEnc := string(owner.Encode())
	state := e.states[ownerEnc]
	state.pending++

	e.open(dep, func(value domain.BuildValue, err error) {
		state.observed = append(state.observed, depSnapshot{Key: dep.Encode(), Value: value.Encode()})
		if err == nil {
			state.task.ProvideValue(e, inputID, value)
		} else {
			state.task.ProvideValue(e, inputID, domain.FailedInputValue())
		}
		state.pending--
		if state.pending == 0 {
			e.advanceToInputsAvailable(state)
			e.drainIfComplete(state)
		}
	})
}

// advanceToInputsAvailable decides whether a rule's prior stored value can
// be reused (its own validity predicate holds and every previously
// recorded dependency's freshly observed value matches its snapshot) or
// whether the task must actually run inputs_available.
func (e *Engine) advanceToInputsAvailable(state *ruleState) {
	if state.status == statusComplete {
		return
	}
	if state.stored != nil && state.rule.IsValid != nil {
		if priorValue, err := domain.DecodeValue(state.stored.Value); err == nil && state.rule.IsValid(priorValue) {
			if depsUnchanged(state.stored.Deps, state.observed) {
				e.completeRule(state, priorValue)
				return
			}
		}
	}
	state.status = statusWaiting
	state.task.InputsAvailable(e)
}

func depsUnchanged(stored []depSnapshot, observed []depSnapshot) bool {
	if len(stored) != len(observed) {
		return false
	}
	storedByKey := make(map[string][]byte, len(stored))
	for _, d := range stored {
		storedByKey[string(d.Key)] = d.Value
	}
	for _, d := range observed {
		sv, ok := storedByKey[string(d.Key)]
		if !ok || string(sv) != string(d.Value) {
			return false
		}
	}
	return true
}

// TaskIsComplete is called exactly once per task, either synchronously from
// InputsAvailable for work with no real side effect, or asynchronously
// (posted back onto the dispatcher goroutine) from an execution-queue job
// running on a worker goroutine.
func (e *Engine) TaskIsComplete(key domain.BuildKey, value domain.BuildValue, async bool) {
	complete := func() {
		enc := string(key.Encode())
		state := e.states[enc]
		if state == nil || state.status == statusComplete {
			return
		}
		e.completeRule(state, value)
		e.drainIfComplete(state)
	}
	if async {
		e.cmds <- complete
	} else {
		complete()
	}
}

// TaskDiscoveredDependency records that key's command discovered dep during
// execution (e.g. via a dependency file). The snapshot of dep's current
// value is captured immediately so the next build can detect whether dep
// has since changed, even though dep itself was never a declared input.
func (e *Engine) TaskDiscoveredDependency(owner domain.BuildKey, dep domain.BuildKey, value domain.BuildValue, async bool) {
	record := func() {
		enc := string(owner.Encode())
		state := e.states[enc]
		if state == nil {
			return
		}
		state.discovered = append(state.discovered, depSnapshot{Key: dep.Encode(), Value: value.Encode()})
	}
	if async {
		e.cmds <- record
	} else {
		record()
	}
}

func (e *Engine) completeRule(state *ruleState, value domain.BuildValue) {
	state.status = statusComplete
	state.result = value
	e.persist(state)
}

func (e *Engine) drainIfComplete(state *ruleState) {
	if state.status != statusComplete {
		return
	}
	waiters := state.waiters
	state.waiters = nil
	for _, w := range waiters {
		w.resume(state.result)
	}
}

func (e *Engine) loadStored(key domain.BuildKey) *storedRecord {
	if e.db == nil {
		return nil
	}
	raw, ok, err := e.db.Get(storageKey(key))
	if err != nil || !ok {
		return nil
	}
	var rec storedRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil
	}
	return &rec
}

func (e *Engine) persist(state *ruleState) {
	if e.db == nil || state.result.Kind == domain.ValueKindInvalid {
		return
	}
	deps := append(append([]depSnapshot{}, state.observed...), state.discovered...)
	rec := storedRecord{Value: state.result.Encode(), Deps: deps}
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	_ = e.db.Put(storageKey(state.key), raw)
}

func storageKey(key domain.BuildKey) []byte {
	return append([]byte("keel:record:"), key.Encode()...)
}

// PriorDependencyKeys returns the dependency keys recorded the last time
// key completed (declared inputs observed plus any dependencies discovered
// mid-execution), decoded back into domain.BuildKey. It must only be called
// synchronously from within the task's own Start method, after the key's
// ruleState has been created by open but before the stack entry is popped.
func (e *Engine) PriorDependencyKeys(key domain.BuildKey) []domain.BuildKey {
	enc := string(key.Encode())
	state := e.states[enc]
	if state == nil || state.stored == nil {
		return nil
	}
	keys := make([]domain.BuildKey, 0, len(state.stored.Deps))
	for _, d := range state.stored.Deps {
		k, err := domain.DecodeKey(d.Key)
		if err == nil {
			keys = append(keys, k)
		}
	}
	return keys
}

// DescribeKey is a diagnostics helper used by cycle-path messages.
func DescribeKey(enc string) string {
	k, err := domain.DecodeKey([]byte(enc))
	if err != nil {
		return fmt.Sprintf("%x", enc)
	}
	return k.String()
}
