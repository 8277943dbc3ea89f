package protocol

import (
	"errors"

	"github.com/meridian-network/meridian/executor"
	"github.com/meridian-network/meridian/storage/kvstore"
	"github.com/meridian-network/meridian/storage/state"
	"github.com/meridian-network/meridian/storage/trie"
	"github.com/meridian-network/meridian/types"
)

// CodeForError maps an internal failure to its wire code. A nil error is
// NoError, anything unrecognized is InternalError.
func CodeForError(err error) ErrorCode {
	switch {
	case err == nil:
		return NoError
	case errors.Is(err, state.ErrRootNotFound):
		return RootNotFound
	case errors.Is(err, state.ErrKeyNotFound):
		return KeyNotFound
	case errors.Is(err, trie.ErrCorruptTrie):
		return CorruptState
	case errors.Is(err, kvstore.ErrNotFound):
		return ValueNotFound
	case errors.Is(err, kvstore.ErrClosed):
		return StorageFailure
	case errors.Is(err, types.ErrUnexpectedEOF),
		errors.Is(err, types.ErrTrailingBytes),
		errors.Is(err, types.ErrInvalidTag):
		return SerializationFailure
	default:
		return InternalError
	}
}

// CodeForHostError maps a callee-observable execution failure to its wire
// code. A nil host error is NoError.
func CodeForHostError(hostErr *executor.HostError) ErrorCode {
	if hostErr == nil {
		return NoError
	}
	switch hostErr.Kind {
	case executor.HostErrorReverted:
		return Reverted
	case executor.HostErrorTrapped:
		return Trapped
	case executor.HostErrorGasDepleted:
		return GasLimitExceeded
	case executor.HostErrorNotCallable:
		return NotCallable
	default:
		return InternalError
	}
}
