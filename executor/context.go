package executor

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/storage/state"
	"github.com/meridian-network/meridian/storage/tracking"
	"github.com/meridian-network/meridian/types"
)

// BlockInfo carries the block environment an execution runs in.
type BlockInfo struct {
	Time       uint64
	Height     uint64
	ParentHash common.Hash
	StateHash  common.Hash
}

// MessageLimits bound the message topics and payloads a contract may emit.
type MessageLimits struct {
	MaxTopicNameSize    uint32
	MaxMessageSize      uint32
	MaxTopicsPerEntity  uint32
	MaxMessagesPerBlock uint32
}

// DefaultMessageLimits returns the production limits.
func DefaultMessageLimits() MessageLimits {
	return MessageLimits{
		MaxTopicNameSize:    256,
		MaxMessageSize:      1024,
		MaxTopicsPerEntity:  128,
		MaxMessagesPerBlock: 512,
	}
}

// Message is one message emitted by an entity during an execution.
type Message struct {
	Entity      types.Address
	Topic       string
	TopicDigest [32]byte
	Payload     []byte
	BlockTime   uint64
}

// frame is one entry of the execution stack.
type frame struct {
	callee types.Key
}

// executionStack tracks the chain of active callees of one top-level
// execution. Each top-level request owns its own stack, nested calls share
// their parent's.
type executionStack struct {
	lock   sync.Mutex
	frames []frame
}

func (s *executionStack) push(f frame) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.frames = append(s.frames, f)
}

// pop removes the top frame and checks it is the one that was pushed.
func (s *executionStack) pop(expected frame) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.frames) == 0 || s.frames[len(s.frames)-1] != expected {
		return ErrStackMismatch
	}
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

// Context is the world a single wasm instance sees. It carries the forked
// state the callee mutates, the identities of the parties involved, and the
// block environment. The engine hands it to every host function.
type Context struct {
	executor *ExecutorV2
	stack    *executionStack

	State            *tracking.TrackingCopy
	Initiator        types.Address
	Caller           types.Key
	Callee           types.Key
	TransferredValue *uint256.Int
	Input            []byte
	GasLimit         types.Gas
	ChainName        string
	TransactionHash  common.Hash
	AddressGenerator *state.AddressGenerator
	Block            BlockInfo
	Limits           MessageLimits

	messages []Message

	returned    bool
	returnFlags ReturnFlags
	returnData  []byte
}

// CalleeAddress is the address component of the callee key.
func (c *Context) CalleeAddress() types.Address {
	return c.Callee.Address
}

// Messages returns the messages emitted so far, in emission order.
func (c *Context) Messages() []Message {
	return c.messages
}

// Return records the callee's return payload and flags. The engine reads
// them back when building the outcome of the call.
func (c *Context) Return(flags ReturnFlags, data []byte) {
	c.returned = true
	c.returnFlags = flags
	c.returnData = append([]byte(nil), data...)
}

// ReturnedData reports what the callee handed to Return, if anything.
func (c *Context) ReturnedData() (ReturnFlags, []byte, bool) {
	return c.returnFlags, c.returnData, c.returned
}
