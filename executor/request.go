package executor

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/types"
)

// DefaultWasmEntryPoint is the export session bytecode is entered through.
const DefaultWasmEntryPoint = "call"

// ErrIncompleteRequest is reported by request builders when a required
// field was not set.
const ErrIncompleteRequest = common.ConstError("incomplete request")

// ExecutionKindTag discriminates what an execution request targets.
type ExecutionKindTag uint8

const (
	// ExecutionKindSessionBytes runs a fresh wasm module passed with the
	// request, entered through DefaultWasmEntryPoint.
	ExecutionKindSessionBytes ExecutionKindTag = iota
	// ExecutionKindStored runs an entry point of a contract stored in the
	// global state.
	ExecutionKindStored
)

// ExecutionKind is the target of an execution request.
type ExecutionKind struct {
	Tag        ExecutionKindTag
	Module     []byte        // session bytecode
	Address    types.Address // stored contract address
	EntryPoint string        // stored entry point
}

// SessionBytes targets a wasm module carried by the request itself.
func SessionBytes(module []byte) ExecutionKind {
	return ExecutionKind{Tag: ExecutionKindSessionBytes, Module: module}
}

// StoredContract targets an entry point of a stored contract.
func StoredContract(address types.Address, entryPoint string) ExecutionKind {
	return ExecutionKind{Tag: ExecutionKindStored, Address: address, EntryPoint: entryPoint}
}

// ExecuteRequest is one unit of execution against a state.
type ExecuteRequest struct {
	Initiator        types.Address
	Caller           types.Key
	GasLimit         types.Gas
	Target           ExecutionKind
	Input            []byte
	TransferredValue *uint256.Int
	TransactionHash  common.Hash
	ChainName        string
	Block            BlockInfo
}

// ExecuteRequestBuilder assembles an ExecuteRequest field by field.
type ExecuteRequestBuilder struct {
	req       ExecuteRequest
	hasTarget bool
	hasGas    bool
}

func NewExecuteRequestBuilder() *ExecuteRequestBuilder {
	return &ExecuteRequestBuilder{}
}

func (b *ExecuteRequestBuilder) WithInitiator(initiator types.Address) *ExecuteRequestBuilder {
	b.req.Initiator = initiator
	b.req.Caller = types.AccountKey(initiator)
	return b
}

// WithCaller overrides the caller key, which WithInitiator defaults to the
// initiator's account.
func (b *ExecuteRequestBuilder) WithCaller(caller types.Key) *ExecuteRequestBuilder {
	b.req.Caller = caller
	return b
}

func (b *ExecuteRequestBuilder) WithGasLimit(limit types.Gas) *ExecuteRequestBuilder {
	b.req.GasLimit = limit
	b.hasGas = true
	return b
}

func (b *ExecuteRequestBuilder) WithTarget(target ExecutionKind) *ExecuteRequestBuilder {
	b.req.Target = target
	b.hasTarget = true
	return b
}

func (b *ExecuteRequestBuilder) WithInput(input []byte) *ExecuteRequestBuilder {
	b.req.Input = input
	return b
}

func (b *ExecuteRequestBuilder) WithTransferredValue(value *uint256.Int) *ExecuteRequestBuilder {
	b.req.TransferredValue = value
	return b
}

func (b *ExecuteRequestBuilder) WithTransactionHash(hash common.Hash) *ExecuteRequestBuilder {
	b.req.TransactionHash = hash
	return b
}

func (b *ExecuteRequestBuilder) WithChainName(name string) *ExecuteRequestBuilder {
	b.req.ChainName = name
	return b
}

func (b *ExecuteRequestBuilder) WithBlock(block BlockInfo) *ExecuteRequestBuilder {
	b.req.Block = block
	return b
}

func (b *ExecuteRequestBuilder) Build() (ExecuteRequest, error) {
	if !b.hasTarget {
		return ExecuteRequest{}, fmt.Errorf("%w: no target", ErrIncompleteRequest)
	}
	if !b.hasGas {
		return ExecuteRequest{}, fmt.Errorf("%w: no gas limit", ErrIncompleteRequest)
	}
	return b.req, nil
}

// ExecuteResult is the outcome of one execution request. A nil HostError
// means success. Effects is the full journal of the request including the
// footprint of failed branches' reads, Messages holds only messages of
// surviving branches.
type ExecuteResult struct {
	HostError *HostError
	Output    []byte
	GasUsage  types.GasUsage
	Effects   types.Effects
	Messages  []Message
}
