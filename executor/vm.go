// Package executor runs session and contract code against a tracking copy
// of the global state. It dispatches execution requests to a registered
// wasm engine, routes host calls back into the state, and maps engine
// outcomes to the callee-observable error taxonomy.
package executor

import (
	"fmt"
	"strings"
	"sync"

	"github.com/meridian-network/meridian/types"
	"golang.org/x/exp/maps"
)

// OutcomeKind is the terminal state of a wasm invocation.
type OutcomeKind uint8

const (
	OutcomeCompleted OutcomeKind = iota
	OutcomeOutOfGas
	OutcomeTrapped
	OutcomeMissingExport
)

// ReturnFlags is the bit set a callee passes when returning control.
type ReturnFlags uint32

// ReturnFlagRevert marks a completed execution whose effects must be
// discarded.
const ReturnFlagRevert ReturnFlags = 1

func (f ReturnFlags) Reverted() bool {
	return f&ReturnFlagRevert != 0
}

// Outcome is the raw result of calling an export, before it is mapped to a
// host error. Output is only meaningful for OutcomeCompleted, Trap for
// OutcomeTrapped, and Export for OutcomeMissingExport.
type Outcome struct {
	Kind   OutcomeKind
	Flags  ReturnFlags
	Output []byte
	Trap   TrapCode
	Export string
}

//go:generate mockgen -source vm.go -destination vm_mocks.go -package executor

// InstanceLimits bound a single instantiation.
type InstanceLimits struct {
	GasLimit         types.Gas
	MemoryLimitPages uint32
}

// Instance is one instantiated wasm module bound to an execution context.
type Instance interface {
	// CallExport runs the named export to completion and reports the gas
	// spent doing so.
	CallExport(name string) (Outcome, types.GasUsage)
	// Teardown releases the instance and hands the execution context back.
	Teardown() *Context
}

// Engine turns bytecode into runnable instances. Implementations are safe
// for concurrent use, instances are not.
type Engine interface {
	Instantiate(bytecode []byte, context *Context, limits InstanceLimits) (Instance, error)
}

// EngineFactory constructs an engine from an implementation-specific
// configuration.
type EngineFactory func(config any) (Engine, error)

var (
	engineRegistryLock sync.Mutex
	engineRegistry     = map[string]EngineFactory{}
)

// RegisterEngineFactory registers an engine under a (case-insensitive)
// unique name. It is intended to be called from the init function of engine
// packages.
func RegisterEngineFactory(name string, factory EngineFactory) error {
	if factory == nil {
		return fmt.Errorf("invalid nil factory for engine %q", name)
	}
	key := strings.ToLower(name)
	engineRegistryLock.Lock()
	defer engineRegistryLock.Unlock()
	if _, found := engineRegistry[key]; found {
		return fmt.Errorf("engine %q already registered", key)
	}
	engineRegistry[key] = factory
	return nil
}

// NewEngine instantiates a registered engine. The optional config is passed
// through to the factory.
func NewEngine(name string, config ...any) (Engine, error) {
	engineRegistryLock.Lock()
	factory, found := engineRegistry[strings.ToLower(name)]
	engineRegistryLock.Unlock()
	if !found {
		return nil, fmt.Errorf("no engine registered under %q", name)
	}
	var cfg any
	if len(config) > 0 {
		cfg = config[0]
	}
	return factory(cfg)
}

// GetAllRegisteredEngineNames lists the registered engines.
func GetAllRegisteredEngineNames() []string {
	engineRegistryLock.Lock()
	defer engineRegistryLock.Unlock()
	return maps.Keys(engineRegistry)
}
