package executor

import (
	"errors"
	"math"

	"github.com/holiman/uint256"
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/types"
)

// The functions in this file form the host surface engines expose to wasm
// code. They operate on the context's forked tracking copy, so everything a
// callee does through them is merged or discarded wholesale with the call.

// StorageWrite stores a value under the callee's own storage namespace.
func (c *Context) StorageWrite(key []byte, value []byte) HostResultCode {
	c.State.Write(c.storageKey(key), &types.RawBytes{Data: append([]byte(nil), value...)})
	return HostResultSuccess
}

// StorageRead reads a value from the callee's own storage namespace.
func (c *Context) StorageRead(key []byte) ([]byte, HostResultCode) {
	value, found, err := c.State.Read(c.storageKey(key))
	if err != nil {
		return nil, HostResultInternal
	}
	if !found {
		return nil, HostResultNotFound
	}
	raw, ok := value.(*types.RawBytes)
	if !ok {
		return nil, HostResultInvalidData
	}
	return raw.Data, HostResultSuccess
}

// StorageRemove removes a value from the callee's own storage namespace.
func (c *Context) StorageRemove(key []byte) HostResultCode {
	c.State.Prune(c.storageKey(key))
	return HostResultSuccess
}

// storageKey maps a user-chosen byte key into the callee's named-key space.
// Hashing the name keeps the trie key fixed-size and the namespace
// collision-free across entities.
func (c *Context) storageKey(name []byte) types.Key {
	digest := common.HashOf(name)
	return types.NamedKeyKey(c.CalleeAddress(), digest)
}

// EmitMessage emits a message on a topic of the callee and updates the
// topic's per-block summary in the state.
func (c *Context) EmitMessage(topic string, payload []byte) HostResultCode {
	if uint32(len(topic)) > c.Limits.MaxTopicNameSize {
		return HostResultTopicTooLong
	}
	if uint32(len(payload)) > c.Limits.MaxMessageSize {
		return HostResultPayloadTooLong
	}
	digest := common.HashOf([]byte(topic))
	topicKey := types.MessageKey(c.CalleeAddress(), digest)

	count := uint32(1)
	current, found, err := c.State.Read(topicKey)
	if err != nil {
		return HostResultInternal
	}
	if found {
		summary, ok := current.(*types.MessageTopicSummary)
		if !ok {
			return HostResultInvalidData
		}
		if summary.BlockTime == c.Block.Time {
			if summary.MessageCount == math.MaxUint32 {
				return HostResultMessageTopicFull
			}
			count = summary.MessageCount + 1
		}
	} else {
		topics, err := c.State.Keys(types.MessagePrefix(c.CalleeAddress()))
		if err != nil {
			return HostResultInternal
		}
		if uint32(len(topics)) >= c.Limits.MaxTopicsPerEntity {
			return HostResultTooManyTopics
		}
	}
	if count > c.Limits.MaxMessagesPerBlock {
		return HostResultMaxMessagesPerBlockExceeded
	}

	c.State.Write(topicKey, &types.MessageTopicSummary{MessageCount: count, BlockTime: c.Block.Time})
	c.messages = append(c.messages, Message{
		Entity:      c.CalleeAddress(),
		Topic:       topic,
		TopicDigest: digest,
		Payload:     append([]byte(nil), payload...),
		BlockTime:   c.Block.Time,
	})
	return HostResultSuccess
}

// Balance returns the balance of the callee's main purse.
func (c *Context) Balance() (*uint256.Int, HostResultCode) {
	purse, err := resolvePurse(c.State, c.Callee)
	if err != nil {
		return nil, HostResultNotFound
	}
	balance, err := readBalance(c.State, purse)
	if err != nil {
		if errors.Is(err, errPurseNotFound) {
			return nil, HostResultNotFound
		}
		return nil, HostResultInternal
	}
	return balance, HostResultSuccess
}

// Transfer moves tokens from the callee's main purse to the main purse of
// the target account. A missing party maps to NotFound, an amount the
// callee cannot cover to InvalidInput.
func (c *Context) Transfer(target types.Address, amount *uint256.Int) HostResultCode {
	source, err := resolvePurse(c.State, c.Callee)
	if err != nil {
		return HostResultNotFound
	}
	targetPurse, err := resolvePurse(c.State, types.AccountKey(target))
	if err != nil {
		return HostResultNotFound
	}
	if err := transferBetweenPurses(c.State, source, targetPurse, amount); err != nil {
		switch {
		case errors.Is(err, ErrInsufficientFunds):
			return HostResultInvalidInput
		case errors.Is(err, errPurseNotFound):
			return HostResultNotFound
		default:
			return HostResultInternal
		}
	}
	return HostResultSuccess
}

// Call invokes an entry point of another stored contract. The nested call
// runs on its own fork of this context's state, so its effects become
// visible here only if it succeeds.
func (c *Context) Call(target types.Address, entryPoint string, input []byte, value *uint256.Int, gasLimit types.Gas) ([]byte, *HostError, error) {
	req := ExecuteRequest{
		Initiator:        c.Initiator,
		Caller:           c.Callee,
		GasLimit:         gasLimit,
		Target:           StoredContract(target, entryPoint),
		Input:            input,
		TransferredValue: value,
		TransactionHash:  c.TransactionHash,
		ChainName:        c.ChainName,
		Block:            c.Block,
	}
	result, err := c.executor.execute(c.State, req, c.stack, c.AddressGenerator)
	if err != nil {
		return nil, nil, err
	}
	c.messages = append(c.messages, result.Messages...)
	return result.Output, result.HostError, nil
}
