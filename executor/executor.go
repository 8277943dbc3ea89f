package executor

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/storage/state"
	"github.com/meridian-network/meridian/storage/tracking"
	"github.com/meridian-network/meridian/types"
)

// ErrNoLegacyEngine is reported when a request resolves to a legacy
// contract but the executor was configured without a legacy engine.
const ErrNoLegacyEngine = common.ConstError("no legacy engine configured")

// Config assembles an ExecutorV2.
type Config struct {
	// Engine runs modern wasm targets. Required.
	Engine Engine
	// Legacy runs first-generation contracts. Optional, requests resolving
	// to legacy targets fail without it.
	Legacy LegacyEngine
	// MessageLimits bound message emission, the zero value means defaults.
	MessageLimits MessageLimits
}

// ExecutorV2 dispatches execution requests. It is stateless between
// requests and safe for concurrent use, every request works on its own
// tracking copy fork.
type ExecutorV2 struct {
	engine Engine
	legacy LegacyEngine
	limits MessageLimits
	log    log.Logger
}

func New(config Config) (*ExecutorV2, error) {
	if config.Engine == nil {
		return nil, fmt.Errorf("invalid configuration, no engine")
	}
	limits := config.MessageLimits
	if limits == (MessageLimits{}) {
		limits = DefaultMessageLimits()
	}
	return &ExecutorV2{
		engine: config.Engine,
		legacy: config.Legacy,
		limits: limits,
		log:    log.Root(),
	}, nil
}

// Execute runs the request against the given tracking copy. The copy
// absorbs the effects of successful branches, failed branches only leave
// their read footprint. The returned error covers internal failures only,
// callee failures travel in the result's HostError.
func (e *ExecutorV2) Execute(tc *tracking.TrackingCopy, req ExecuteRequest) (ExecuteResult, error) {
	generator := state.NewAddressGenerator(req.TransactionHash[:])
	return e.execute(tc, req, &executionStack{}, generator)
}

// ExecuteWithProvider checks out the pre-state, runs the request, and
// commits the effects, returning the result and the post-state root. A
// result carrying a host error is still committed, its journal holds the
// footprint that priced the failure.
func (e *ExecutorV2) ExecuteWithProvider(provider state.CommitProvider, pre common.Hash, req ExecuteRequest) (ExecuteResult, common.Hash, error) {
	reader, err := provider.Checkout(pre)
	if err != nil {
		return ExecuteResult{}, common.EmptyHash, err
	}
	tc := tracking.New(reader, 0)
	result, err := e.Execute(tc, req)
	if err != nil {
		return ExecuteResult{}, common.EmptyHash, err
	}
	post, err := provider.Commit(pre, result.Effects)
	if err != nil {
		return ExecuteResult{}, common.EmptyHash, err
	}
	return result, post, nil
}

// resolvedTarget is what a request's target dereferences to.
type resolvedTarget struct {
	callee     types.Key
	entryPoint string
	runtime    types.RuntimeKind
	bytecode   []byte
}

func (e *ExecutorV2) execute(tc *tracking.TrackingCopy, req ExecuteRequest, stack *executionStack, generator *state.AddressGenerator) (ExecuteResult, error) {
	target, hostErr, err := e.resolveTarget(tc, req)
	if err != nil {
		return ExecuteResult{}, err
	}
	if hostErr != nil {
		return ExecuteResult{
			HostError: hostErr,
			GasUsage:  types.NewGasUsage(req.GasLimit, req.GasLimit),
			Effects:   tc.Effects(),
		}, nil
	}

	// a carried value is moved to the callee before any code runs
	vmGasLimit := req.GasLimit
	value := req.TransferredValue
	if value == nil {
		value = uint256.NewInt(0)
	}
	if !value.IsZero() && req.Target.Tag == ExecutionKindStored {
		if req.GasLimit < DefaultMintTransferGasCost {
			return ExecuteResult{
				HostError: gasDepleted(),
				GasUsage:  types.NewGasUsage(req.GasLimit, 0),
				Effects:   tc.Effects(),
			}, nil
		}
		hostErr, err := mintTransfer(tc, types.AccountKey(req.Initiator), target.callee, value)
		if err != nil {
			return ExecuteResult{}, err
		}
		if hostErr != nil {
			return ExecuteResult{
				HostError: hostErr,
				GasUsage:  types.NewGasUsage(req.GasLimit, req.GasLimit-DefaultMintTransferGasCost),
				Effects:   tc.Effects(),
			}, nil
		}
		vmGasLimit -= DefaultMintTransferGasCost
	}

	fork := tc.Fork2()
	ctx := &Context{
		executor:         e,
		stack:            stack,
		State:            fork,
		Initiator:        req.Initiator,
		Caller:           req.Caller,
		Callee:           target.callee,
		TransferredValue: value,
		Input:            req.Input,
		GasLimit:         vmGasLimit,
		ChainName:        req.ChainName,
		TransactionHash:  req.TransactionHash,
		AddressGenerator: generator,
		Block:            req.Block,
		Limits:           e.limits,
	}

	current := frame{callee: target.callee}
	stack.push(current)
	outcome, usage, err := e.invoke(ctx, target)
	if popErr := stack.pop(current); popErr != nil {
		e.log.Error("Execution stack out of balance", "callee", target.callee)
		return ExecuteResult{}, popErr
	}
	if err != nil {
		return ExecuteResult{}, err
	}

	result := ExecuteResult{
		GasUsage: types.NewGasUsage(req.GasLimit, usage.Remaining()),
	}
	switch outcome.Kind {
	case OutcomeCompleted:
		result.Output = outcome.Output
		if outcome.Flags.Reverted() {
			result.HostError = reverted()
		} else {
			tc.ApplyChanges(fork)
			result.Messages = ctx.Messages()
		}
	case OutcomeOutOfGas:
		result.HostError = gasDepleted()
		result.GasUsage = types.NewGasUsage(req.GasLimit, 0)
	case OutcomeTrapped:
		result.HostError = trapped(outcome.Trap)
	case OutcomeMissingExport:
		result.HostError = notCallable()
	default:
		return ExecuteResult{}, fmt.Errorf("unknown outcome kind %d", outcome.Kind)
	}
	result.Effects = tc.Effects()
	return result, nil
}

// invoke hands the resolved target to the matching engine.
func (e *ExecutorV2) invoke(ctx *Context, target resolvedTarget) (Outcome, types.GasUsage, error) {
	if target.runtime == types.RuntimeV1 {
		if e.legacy == nil {
			return Outcome{}, types.GasUsage{}, ErrNoLegacyEngine
		}
		legacy, err := e.legacy.Execute(ctx, target.bytecode, target.entryPoint, ctx.Input)
		if err != nil {
			return Outcome{}, types.GasUsage{}, err
		}
		return mapLegacyOutcome(legacy, ctx.GasLimit)
	}

	instance, err := e.engine.Instantiate(target.bytecode, ctx, InstanceLimits{GasLimit: ctx.GasLimit})
	if err != nil {
		return Outcome{}, types.GasUsage{}, fmt.Errorf("failed to instantiate module: %w", err)
	}
	outcome, usage := instance.CallExport(target.entryPoint)
	instance.Teardown()
	return outcome, usage, nil
}

// resolveTarget dereferences the request's target down to runnable
// bytecode. Session bytes run in the initiator's account context. Stored
// targets are probed first in the legacy hash space, then in the smart
// contract space, an address holding neither is not callable.
func (e *ExecutorV2) resolveTarget(tc *tracking.TrackingCopy, req ExecuteRequest) (resolvedTarget, *HostError, error) {
	if req.Target.Tag == ExecutionKindSessionBytes {
		return resolvedTarget{
			callee:     types.AccountKey(req.Initiator),
			entryPoint: DefaultWasmEntryPoint,
			runtime:    types.RuntimeV2,
			bytecode:   req.Target.Module,
		}, nil, nil
	}

	address := req.Target.Address
	entryPoint := req.Target.EntryPoint

	value, found, err := tc.Read(types.HashKey(address))
	if err != nil {
		return resolvedTarget{}, nil, err
	}
	if found {
		switch stored := value.(type) {
		case *types.ContractV1:
			return e.resolveLegacyContract(tc, types.HashKey(address), stored, entryPoint)
		case *types.Package:
			implementation, ok := stored.LatestEnabled()
			if !ok {
				return resolvedTarget{}, notCallable(), nil
			}
			inner, found, err := tc.Read(types.HashKey(implementation))
			if err != nil {
				return resolvedTarget{}, nil, err
			}
			contract, ok := inner.(*types.ContractV1)
			if !found || !ok {
				return resolvedTarget{}, notCallable(), nil
			}
			return e.resolveLegacyContract(tc, types.HashKey(implementation), contract, entryPoint)
		default:
			return resolvedTarget{}, notCallable(), nil
		}
	}

	value, found, err = tc.Read(types.SmartContractKey(address))
	if err != nil {
		return resolvedTarget{}, nil, err
	}
	if !found {
		return resolvedTarget{}, notCallable(), nil
	}
	pkg, ok := value.(*types.Package)
	if !ok {
		return resolvedTarget{}, notCallable(), nil
	}
	implementation, ok := pkg.LatestEnabled()
	if !ok {
		return resolvedTarget{}, notCallable(), nil
	}
	entityKey := types.EntityKey(types.EntityKindContract, implementation)
	value, found, err = tc.Read(entityKey)
	if err != nil {
		return resolvedTarget{}, nil, err
	}
	entity, ok := value.(*types.Entity)
	if !found || !ok {
		return resolvedTarget{}, notCallable(), nil
	}

	kind := types.ByteCodeKindV2Wasm
	if entity.Runtime == types.RuntimeV1 {
		kind = types.ByteCodeKindV1Wasm
	}
	bytecode, err := e.loadByteCode(tc, kind, entity.ByteCodeHash)
	if err != nil {
		return resolvedTarget{}, nil, err
	}
	return resolvedTarget{
		callee:     entityKey,
		entryPoint: entryPoint,
		runtime:    entity.Runtime,
		bytecode:   bytecode,
	}, nil, nil
}

func (e *ExecutorV2) resolveLegacyContract(tc *tracking.TrackingCopy, callee types.Key, contract *types.ContractV1, entryPoint string) (resolvedTarget, *HostError, error) {
	if !contract.HasEntryPoint(entryPoint) {
		return resolvedTarget{}, notCallable(), nil
	}
	bytecode, err := e.loadByteCode(tc, types.ByteCodeKindV1Wasm, contract.WasmHash)
	if err != nil {
		return resolvedTarget{}, nil, err
	}
	return resolvedTarget{
		callee:     callee,
		entryPoint: entryPoint,
		runtime:    types.RuntimeV1,
		bytecode:   bytecode,
	}, nil, nil
}

// loadByteCode fetches a stored bytecode blob. A contract referencing a
// missing blob is a broken state, not a callee failure.
func (e *ExecutorV2) loadByteCode(tc *tracking.TrackingCopy, kind types.ByteCodeKind, hash common.Hash) ([]byte, error) {
	key := types.ByteCodeKey(kind, types.AddressFromBytes(hash[:]))
	value, found, err := tc.Read(key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("missing bytecode %v", hash)
	}
	bytecode, ok := value.(*types.ByteCode)
	if !ok {
		return nil, fmt.Errorf("%w: %v does not hold bytecode", types.ErrTypeMismatch, key)
	}
	return bytecode.Bytes, nil
}
