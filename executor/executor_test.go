package executor

import (
	"fmt"
	"testing"

	"github.com/holiman/uint256"
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/storage/state"
	"github.com/meridian-network/meridian/storage/tracking"
	"github.com/meridian-network/meridian/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testAddress(fill byte) types.Address {
	var a types.Address
	for i := range a {
		a[i] = fill
	}
	return a
}

// ---------------------------------------------------------------------------
// scripted engines

type scriptFunc func(ctx *Context, export string) (Outcome, types.GasUsage)

type fakeEngine struct {
	script         scriptFunc
	instantiations int
	lastBytecode   []byte
	lastLimits     InstanceLimits
}

func (e *fakeEngine) Instantiate(bytecode []byte, ctx *Context, limits InstanceLimits) (Instance, error) {
	e.instantiations++
	e.lastBytecode = bytecode
	e.lastLimits = limits
	return &fakeInstance{engine: e, ctx: ctx}, nil
}

type fakeInstance struct {
	engine *fakeEngine
	ctx    *Context
}

func (i *fakeInstance) CallExport(name string) (Outcome, types.GasUsage) {
	return i.engine.script(i.ctx, name)
}

func (i *fakeInstance) Teardown() *Context {
	return i.ctx
}

type fakeLegacyEngine struct {
	outcome        LegacyOutcome
	calls          int
	lastEntryPoint string
	lastInput      []byte
}

func (e *fakeLegacyEngine) Execute(ctx *Context, bytecode []byte, entryPoint string, input []byte) (LegacyOutcome, error) {
	e.calls++
	e.lastEntryPoint = entryPoint
	e.lastInput = input
	return e.outcome, nil
}

// spendGas reports an execution that consumed the given number of points.
func spendGas(ctx *Context, points types.Gas) types.GasUsage {
	return types.NewGasUsage(ctx.GasLimit, ctx.GasLimit-points)
}

// ---------------------------------------------------------------------------
// state seeding

type testWorld struct {
	pairs map[types.Key]types.StoredValue
}

func newTestWorld() *testWorld {
	return &testWorld{pairs: map[types.Key]types.StoredValue{}}
}

func derivedPurse(owner types.Address) types.Address {
	hash := common.HashOf([]byte("purse"), owner[:])
	return types.AddressFromBytes(hash[:])
}

func (w *testWorld) addAccount(addr types.Address, balance uint64) types.Address {
	purse := derivedPurse(addr)
	w.pairs[types.AccountKey(addr)] = &types.Account{MainPurse: purse}
	w.pairs[types.BalanceKey(purse)] = types.U256Value(uint256.NewInt(balance))
	return purse
}

func (w *testWorld) addContract(addr types.Address, bytecode []byte, balance uint64) types.Address {
	purse := derivedPurse(addr)
	codeHash := common.HashOf(bytecode)
	w.pairs[types.ByteCodeKey(types.ByteCodeKindV2Wasm, types.AddressFromBytes(codeHash[:]))] =
		&types.ByteCode{Kind: types.ByteCodeKindV2Wasm, Bytes: bytecode}
	w.pairs[types.EntityKey(types.EntityKindContract, addr)] = &types.Entity{
		Kind:         types.EntityKindContract,
		Runtime:      types.RuntimeV2,
		Package:      addr,
		ByteCodeHash: codeHash,
		MainPurse:    purse,
	}
	w.pairs[types.SmartContractKey(addr)] = &types.Package{
		Versions: []types.PackageVersion{{Number: 1, Entity: addr}},
	}
	w.pairs[types.BalanceKey(purse)] = types.U256Value(uint256.NewInt(balance))
	return purse
}

func (w *testWorld) addLegacyContract(addr types.Address, bytecode []byte, entryPoints ...string) {
	codeHash := common.HashOf(bytecode)
	w.pairs[types.HashKey(addr)] = &types.ContractV1{WasmHash: codeHash, EntryPoints: entryPoints}
	w.pairs[types.ByteCodeKey(types.ByteCodeKindV1Wasm, types.AddressFromBytes(codeHash[:]))] =
		&types.ByteCode{Kind: types.ByteCodeKindV1Wasm, Bytes: bytecode}
}

func (w *testWorld) build(t *testing.T) (*state.GlobalState, common.Hash, *tracking.TrackingCopy) {
	t.Helper()
	gs, root, err := state.NewTemporaryGlobalState(w.pairs)
	require.NoError(t, err)
	t.Cleanup(func() { gs.Close() })
	reader, err := gs.Checkout(root)
	require.NoError(t, err)
	return gs, root, tracking.New(reader, 0)
}

func newTestExecutor(t *testing.T, engine Engine, legacy LegacyEngine) *ExecutorV2 {
	t.Helper()
	executor, err := New(Config{Engine: engine, Legacy: legacy})
	require.NoError(t, err)
	return executor
}

// ---------------------------------------------------------------------------

func TestExecutor_SessionBytesEnterTheDefaultEntryPoint(t *testing.T) {
	initiator := testAddress(1)
	world := newTestWorld()
	world.addAccount(initiator, 100)
	_, _, tc := world.build(t)

	module := []byte("session module")
	var calledExport string
	engine := &fakeEngine{script: func(ctx *Context, export string) (Outcome, types.GasUsage) {
		calledExport = export
		return Outcome{Kind: OutcomeCompleted, Output: []byte("done")}, spendGas(ctx, 10)
	}}
	executor := newTestExecutor(t, engine, nil)

	result, err := executor.Execute(tc, ExecuteRequest{
		Initiator: initiator,
		Caller:    types.AccountKey(initiator),
		GasLimit:  1000,
		Target:    SessionBytes(module),
	})
	require.NoError(t, err)
	require.Nil(t, result.HostError)
	require.Equal(t, []byte("done"), result.Output)
	require.Equal(t, DefaultWasmEntryPoint, calledExport)
	require.Equal(t, module, engine.lastBytecode)
	require.Equal(t, types.Gas(10), result.GasUsage.GasSpent())
}

func TestExecutor_CompletedExecutionMergesItsEffects(t *testing.T) {
	initiator := testAddress(1)
	world := newTestWorld()
	world.addAccount(initiator, 100)
	_, _, tc := world.build(t)

	engine := &fakeEngine{script: func(ctx *Context, export string) (Outcome, types.GasUsage) {
		require.Equal(t, HostResultSuccess, ctx.StorageWrite([]byte("slot"), []byte("stored")))
		return Outcome{Kind: OutcomeCompleted}, spendGas(ctx, 1)
	}}
	executor := newTestExecutor(t, engine, nil)

	result, err := executor.Execute(tc, ExecuteRequest{
		Initiator: initiator,
		Caller:    types.AccountKey(initiator),
		GasLimit:  1000,
		Target:    SessionBytes([]byte("m")),
	})
	require.NoError(t, err)
	require.Nil(t, result.HostError)

	// the write of the callee survived the call
	key := types.NamedKeyKey(initiator, common.HashOf([]byte("slot")))
	value, found, err := tc.Read(key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("stored"), value.(*types.RawBytes).Data)
}

func TestExecutor_RevertKeepsOutputButDiscardsEffects(t *testing.T) {
	initiator := testAddress(1)
	world := newTestWorld()
	world.addAccount(initiator, 100)
	_, _, tc := world.build(t)

	engine := &fakeEngine{script: func(ctx *Context, export string) (Outcome, types.GasUsage) {
		ctx.StorageWrite([]byte("slot"), []byte("doomed"))
		require.Equal(t, HostResultSuccess, ctx.EmitMessage("topic", []byte("doomed too")))
		return Outcome{Kind: OutcomeCompleted, Flags: ReturnFlagRevert, Output: []byte("reason")}, spendGas(ctx, 7)
	}}
	executor := newTestExecutor(t, engine, nil)

	result, err := executor.Execute(tc, ExecuteRequest{
		Initiator: initiator,
		Caller:    types.AccountKey(initiator),
		GasLimit:  1000,
		Target:    SessionBytes([]byte("m")),
	})
	require.NoError(t, err)
	require.NotNil(t, result.HostError)
	require.Equal(t, HostErrorReverted, result.HostError.Kind)
	require.Equal(t, []byte("reason"), result.Output)
	require.Empty(t, result.Messages)
	require.Equal(t, types.Gas(7), result.GasUsage.GasSpent())

	key := types.NamedKeyKey(initiator, common.HashOf([]byte("slot")))
	_, found, err := tc.Read(key)
	require.NoError(t, err)
	require.False(t, found, "reverted write leaked out of the call")
}

func TestExecutor_TrapRollsBackAndCarriesTheTrapCode(t *testing.T) {
	initiator := testAddress(1)
	world := newTestWorld()
	world.addAccount(initiator, 100)
	_, _, tc := world.build(t)

	engine := &fakeEngine{script: func(ctx *Context, export string) (Outcome, types.GasUsage) {
		ctx.StorageWrite([]byte("slot"), []byte("doomed"))
		return Outcome{Kind: OutcomeTrapped, Trap: TrapDivisionByZero}, spendGas(ctx, 3)
	}}
	executor := newTestExecutor(t, engine, nil)

	result, err := executor.Execute(tc, ExecuteRequest{
		Initiator: initiator,
		Caller:    types.AccountKey(initiator),
		GasLimit:  1000,
		Target:    SessionBytes([]byte("m")),
	})
	require.NoError(t, err)
	require.NotNil(t, result.HostError)
	require.Equal(t, HostErrorTrapped, result.HostError.Kind)
	require.Equal(t, TrapDivisionByZero, result.HostError.Trap)

	key := types.NamedKeyKey(initiator, common.HashOf([]byte("slot")))
	_, found, err := tc.Read(key)
	require.NoError(t, err)
	require.False(t, found)
}

func TestExecutor_OutOfGasConsumesTheWholeBudget(t *testing.T) {
	initiator := testAddress(1)
	world := newTestWorld()
	world.addAccount(initiator, 100)
	_, _, tc := world.build(t)

	engine := &fakeEngine{script: func(ctx *Context, export string) (Outcome, types.GasUsage) {
		return Outcome{Kind: OutcomeOutOfGas}, types.NewGasUsage(ctx.GasLimit, 0)
	}}
	executor := newTestExecutor(t, engine, nil)

	result, err := executor.Execute(tc, ExecuteRequest{
		Initiator: initiator,
		Caller:    types.AccountKey(initiator),
		GasLimit:  500,
		Target:    SessionBytes([]byte("m")),
	})
	require.NoError(t, err)
	require.NotNil(t, result.HostError)
	require.Equal(t, HostErrorGasDepleted, result.HostError.Kind)
	require.Equal(t, types.Gas(500), result.GasUsage.GasSpent())
	require.Zero(t, result.GasUsage.Remaining())
}

func TestExecutor_MissingExportIsNotCallable(t *testing.T) {
	initiator := testAddress(1)
	world := newTestWorld()
	world.addAccount(initiator, 100)
	_, _, tc := world.build(t)

	engine := &fakeEngine{script: func(ctx *Context, export string) (Outcome, types.GasUsage) {
		return Outcome{Kind: OutcomeMissingExport, Export: export}, spendGas(ctx, 0)
	}}
	executor := newTestExecutor(t, engine, nil)

	result, err := executor.Execute(tc, ExecuteRequest{
		Initiator: initiator,
		Caller:    types.AccountKey(initiator),
		GasLimit:  1000,
		Target:    SessionBytes([]byte("m")),
	})
	require.NoError(t, err)
	require.NotNil(t, result.HostError)
	require.Equal(t, HostErrorNotCallable, result.HostError.Kind)
}

func TestExecutor_UnknownStoredTargetIsNotCallable(t *testing.T) {
	initiator := testAddress(1)
	world := newTestWorld()
	world.addAccount(initiator, 100)
	_, _, tc := world.build(t)

	engine := &fakeEngine{}
	executor := newTestExecutor(t, engine, nil)

	result, err := executor.Execute(tc, ExecuteRequest{
		Initiator: initiator,
		Caller:    types.AccountKey(initiator),
		GasLimit:  1000,
		Target:    StoredContract(testAddress(0xEE), "run"),
	})
	require.NoError(t, err)
	require.NotNil(t, result.HostError)
	require.Equal(t, HostErrorNotCallable, result.HostError.Kind)
	require.Zero(t, result.GasUsage.GasSpent())
	require.Zero(t, engine.instantiations, "unresolvable target must not instantiate anything")
}

func TestExecutor_StoredTargetResolvesThroughThePackage(t *testing.T) {
	initiator := testAddress(1)
	contract := testAddress(2)
	bytecode := []byte("contract code")
	world := newTestWorld()
	world.addAccount(initiator, 100)
	world.addContract(contract, bytecode, 0)
	_, _, tc := world.build(t)

	var calledExport string
	engine := &fakeEngine{script: func(ctx *Context, export string) (Outcome, types.GasUsage) {
		calledExport = export
		require.Equal(t, types.EntityKey(types.EntityKindContract, contract), ctx.Callee)
		return Outcome{Kind: OutcomeCompleted}, spendGas(ctx, 1)
	}}
	executor := newTestExecutor(t, engine, nil)

	result, err := executor.Execute(tc, ExecuteRequest{
		Initiator: initiator,
		Caller:    types.AccountKey(initiator),
		GasLimit:  1000,
		Target:    StoredContract(contract, "do_something"),
	})
	require.NoError(t, err)
	require.Nil(t, result.HostError)
	require.Equal(t, "do_something", calledExport)
	require.Equal(t, bytecode, engine.lastBytecode)
}

func TestExecutor_TransferredValueArrivesBeforeExecution(t *testing.T) {
	initiator := testAddress(1)
	contract := testAddress(2)
	world := newTestWorld()
	initiatorPurse := world.addAccount(initiator, 100)
	contractPurse := world.addContract(contract, []byte("code"), 0)
	_, _, tc := world.build(t)

	engine := &fakeEngine{script: func(ctx *Context, export string) (Outcome, types.GasUsage) {
		balance, code := ctx.Balance()
		require.Equal(t, HostResultSuccess, code)
		require.Zero(t, balance.Cmp(uint256.NewInt(30)), "value not on the callee purse yet")
		return Outcome{Kind: OutcomeCompleted}, spendGas(ctx, 2)
	}}
	executor := newTestExecutor(t, engine, nil)

	result, err := executor.Execute(tc, ExecuteRequest{
		Initiator:        initiator,
		Caller:           types.AccountKey(initiator),
		GasLimit:         1000,
		Target:           StoredContract(contract, "deposit"),
		TransferredValue: uint256.NewInt(30),
	})
	require.NoError(t, err)
	require.Nil(t, result.HostError)
	// the flat transfer fee is part of the spent gas
	require.Equal(t, types.Gas(2)+DefaultMintTransferGasCost, result.GasUsage.GasSpent())

	source, err := readBalance(tc, initiatorPurse)
	require.NoError(t, err)
	require.Zero(t, source.Cmp(uint256.NewInt(70)))
	target, err := readBalance(tc, contractPurse)
	require.NoError(t, err)
	require.Zero(t, target.Cmp(uint256.NewInt(30)))
}

func TestExecutor_InsufficientTransferFailsBeforeTheEngineRuns(t *testing.T) {
	initiator := testAddress(1)
	contract := testAddress(2)
	world := newTestWorld()
	world.addAccount(initiator, 5)
	world.addContract(contract, []byte("code"), 0)
	_, _, tc := world.build(t)

	engine := &fakeEngine{}
	executor := newTestExecutor(t, engine, nil)

	result, err := executor.Execute(tc, ExecuteRequest{
		Initiator:        initiator,
		Caller:           types.AccountKey(initiator),
		GasLimit:         1000,
		Target:           StoredContract(contract, "deposit"),
		TransferredValue: uint256.NewInt(10),
	})
	require.NoError(t, err)
	require.NotNil(t, result.HostError)
	require.Equal(t, HostErrorReverted, result.HostError.Kind)
	require.Equal(t, DefaultMintTransferGasCost, result.GasUsage.GasSpent())
	require.Zero(t, engine.instantiations, "the failed transfer must keep the module uninstantiated")
}

func TestExecutor_LegacyRevertCodeBecomesTheOutput(t *testing.T) {
	initiator := testAddress(1)
	contract := testAddress(2)
	world := newTestWorld()
	world.addAccount(initiator, 100)
	world.addLegacyContract(contract, []byte("old code"), "run")
	_, _, tc := world.build(t)

	legacy := &fakeLegacyEngine{outcome: LegacyOutcome{Kind: LegacyReverted, RevertCode: 3, GasSpent: 8}}
	executor := newTestExecutor(t, &fakeEngine{}, legacy)

	result, err := executor.Execute(tc, ExecuteRequest{
		Initiator: initiator,
		Caller:    types.AccountKey(initiator),
		GasLimit:  1000,
		Target:    StoredContract(contract, "run"),
	})
	require.NoError(t, err)
	require.NotNil(t, result.HostError)
	require.Equal(t, HostErrorReverted, result.HostError.Kind)
	require.Equal(t, []byte{3, 0, 0, 0}, result.Output)
	require.Equal(t, types.Gas(8), result.GasUsage.GasSpent())
	require.Equal(t, 1, legacy.calls)
}

func TestExecutor_LegacyContractChecksItsEntryPoints(t *testing.T) {
	initiator := testAddress(1)
	contract := testAddress(2)
	world := newTestWorld()
	world.addAccount(initiator, 100)
	world.addLegacyContract(contract, []byte("old code"), "run")
	_, _, tc := world.build(t)

	legacy := &fakeLegacyEngine{outcome: LegacyOutcome{Kind: LegacyCompleted}}
	executor := newTestExecutor(t, &fakeEngine{}, legacy)

	result, err := executor.Execute(tc, ExecuteRequest{
		Initiator: initiator,
		Caller:    types.AccountKey(initiator),
		GasLimit:  1000,
		Target:    StoredContract(contract, "no_such_entry"),
	})
	require.NoError(t, err)
	require.NotNil(t, result.HostError)
	require.Equal(t, HostErrorNotCallable, result.HostError.Kind)
	require.Zero(t, legacy.calls)
}

func TestExecutor_LegacyCompletionMergesEffects(t *testing.T) {
	initiator := testAddress(1)
	contract := testAddress(2)
	world := newTestWorld()
	world.addAccount(initiator, 100)
	world.addLegacyContract(contract, []byte("old code"), "run")
	_, _, tc := world.build(t)

	legacy := &fakeLegacyEngine{outcome: LegacyOutcome{Kind: LegacyCompleted, Output: []byte("ok"), GasSpent: 4}}
	executor := newTestExecutor(t, &fakeEngine{}, legacy)

	result, err := executor.Execute(tc, ExecuteRequest{
		Initiator: initiator,
		Caller:    types.AccountKey(initiator),
		GasLimit:  1000,
		Target:    StoredContract(contract, "run"),
		Input:     []byte("payload"),
	})
	require.NoError(t, err)
	require.Nil(t, result.HostError)
	require.Equal(t, []byte("ok"), result.Output)
	require.Equal(t, "run", legacy.lastEntryPoint)
	require.Equal(t, []byte("payload"), legacy.lastInput)
}

func TestExecutor_NestedCallEffectsFollowTheOuterOutcome(t *testing.T) {
	initiator := testAddress(1)
	outer := testAddress(2)
	inner := testAddress(3)
	outerCode := []byte("outer code")
	innerCode := []byte("inner code")
	world := newTestWorld()
	world.addAccount(initiator, 100)
	world.addContract(outer, outerCode, 0)
	world.addContract(inner, innerCode, 0)
	_, _, tc := world.build(t)

	engine := &fakeEngine{}
	engine.script = func(ctx *Context, export string) (Outcome, types.GasUsage) {
		switch export {
		case "outer":
			output, hostErr, err := ctx.Call(inner, "inner", nil, nil, 100)
			require.NoError(t, err)
			require.Nil(t, hostErr)
			return Outcome{Kind: OutcomeCompleted, Output: output}, spendGas(ctx, 5)
		case "inner":
			ctx.StorageWrite([]byte("inner-slot"), []byte("inner-value"))
			return Outcome{Kind: OutcomeCompleted, Output: []byte("from inner")}, spendGas(ctx, 2)
		default:
			t.Fatalf("unexpected export %q", export)
			return Outcome{}, types.GasUsage{}
		}
	}
	executor := newTestExecutor(t, engine, nil)

	result, err := executor.Execute(tc, ExecuteRequest{
		Initiator: initiator,
		Caller:    types.AccountKey(initiator),
		GasLimit:  1000,
		Target:    StoredContract(outer, "outer"),
	})
	require.NoError(t, err)
	require.Nil(t, result.HostError)
	require.Equal(t, []byte("from inner"), result.Output)
	require.Equal(t, 2, engine.instantiations)

	key := types.NamedKeyKey(inner, common.HashOf([]byte("inner-slot")))
	value, found, err := tc.Read(key)
	require.NoError(t, err)
	require.True(t, found, "inner write lost after a fully successful call chain")
	require.Equal(t, []byte("inner-value"), value.(*types.RawBytes).Data)
}

func TestExecutor_RevertedNestedCallLeavesTheOuterStateClean(t *testing.T) {
	initiator := testAddress(1)
	outer := testAddress(2)
	inner := testAddress(3)
	world := newTestWorld()
	world.addAccount(initiator, 100)
	world.addContract(outer, []byte("outer code"), 0)
	world.addContract(inner, []byte("inner code"), 0)
	_, _, tc := world.build(t)

	engine := &fakeEngine{}
	engine.script = func(ctx *Context, export string) (Outcome, types.GasUsage) {
		switch export {
		case "outer":
			_, hostErr, err := ctx.Call(inner, "inner", nil, nil, 100)
			require.NoError(t, err)
			require.NotNil(t, hostErr)
			require.Equal(t, HostErrorReverted, hostErr.Kind)
			return Outcome{Kind: OutcomeCompleted}, spendGas(ctx, 5)
		case "inner":
			ctx.StorageWrite([]byte("inner-slot"), []byte("doomed"))
			return Outcome{Kind: OutcomeCompleted, Flags: ReturnFlagRevert}, spendGas(ctx, 2)
		default:
			t.Fatalf("unexpected export %q", export)
			return Outcome{}, types.GasUsage{}
		}
	}
	executor := newTestExecutor(t, engine, nil)

	result, err := executor.Execute(tc, ExecuteRequest{
		Initiator: initiator,
		Caller:    types.AccountKey(initiator),
		GasLimit:  1000,
		Target:    StoredContract(outer, "outer"),
	})
	require.NoError(t, err)
	require.Nil(t, result.HostError, "the outer call absorbed the inner revert")

	key := types.NamedKeyKey(inner, common.HashOf([]byte("inner-slot")))
	_, found, err := tc.Read(key)
	require.NoError(t, err)
	require.False(t, found)
}

func TestExecutor_ExecuteWithProviderCommitsTheEffects(t *testing.T) {
	initiator := testAddress(1)
	world := newTestWorld()
	world.addAccount(initiator, 100)
	gs, pre, _ := world.build(t)

	engine := &fakeEngine{script: func(ctx *Context, export string) (Outcome, types.GasUsage) {
		ctx.StorageWrite([]byte("slot"), []byte("committed"))
		return Outcome{Kind: OutcomeCompleted}, spendGas(ctx, 1)
	}}
	executor := newTestExecutor(t, engine, nil)

	result, post, err := executor.ExecuteWithProvider(gs, pre, ExecuteRequest{
		Initiator: initiator,
		Caller:    types.AccountKey(initiator),
		GasLimit:  1000,
		Target:    SessionBytes([]byte("m")),
	})
	require.NoError(t, err)
	require.Nil(t, result.HostError)
	require.NotEqual(t, pre, post)

	reader, err := gs.Checkout(post)
	require.NoError(t, err)
	key := types.NamedKeyKey(initiator, common.HashOf([]byte("slot")))
	value, found, err := reader.Read(key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("committed"), value.(*types.RawBytes).Data)
}

func TestExecutor_InstantiationFailureIsAnInternalError(t *testing.T) {
	initiator := testAddress(1)
	world := newTestWorld()
	world.addAccount(initiator, 100)
	_, _, tc := world.build(t)

	ctrl := gomock.NewController(t)
	engine := NewMockEngine(ctrl)
	engine.EXPECT().
		Instantiate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("malformed module"))
	executor := newTestExecutor(t, engine, nil)

	_, err := executor.Execute(tc, ExecuteRequest{
		Initiator: initiator,
		Caller:    types.AccountKey(initiator),
		GasLimit:  1000,
		Target:    SessionBytes([]byte("garbage")),
	})
	require.ErrorContains(t, err, "failed to instantiate")
}

func TestExecuteRequestBuilder_RejectsIncompleteRequests(t *testing.T) {
	_, err := NewExecuteRequestBuilder().WithGasLimit(10).Build()
	require.ErrorIs(t, err, ErrIncompleteRequest)
	_, err = NewExecuteRequestBuilder().WithTarget(SessionBytes(nil)).Build()
	require.ErrorIs(t, err, ErrIncompleteRequest)

	req, err := NewExecuteRequestBuilder().
		WithInitiator(testAddress(1)).
		WithGasLimit(10).
		WithTarget(SessionBytes([]byte("m"))).
		WithChainName("meridian-test").
		Build()
	require.NoError(t, err)
	require.Equal(t, types.AccountKey(testAddress(1)), req.Caller)
	require.Equal(t, types.Gas(10), req.GasLimit)
}
