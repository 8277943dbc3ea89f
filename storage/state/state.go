// Package state provides the global state of the chain: a versioned view
// of key/value data where every committed block of effects yields a new
// immutable state root.
package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/storage/kvstore"
	"github.com/meridian-network/meridian/storage/trie"
	"github.com/meridian-network/meridian/types"
)

const (
	// ErrRootNotFound is reported when a root hash does not name a known
	// state.
	ErrRootNotFound = common.ConstError("state root not found")
	// ErrKeyNotFound is reported when a commit transform addresses a key
	// that holds no value.
	ErrKeyNotFound = common.ConstError("transform key not found")
)

//go:generate mockgen -source state.go -destination state_mocks.go -package state

// Reader is a consistent point-in-time view of the global state at one
// root. Implementations are safe for concurrent use.
type Reader interface {
	// Read returns the value stored under the key, or false if the key
	// holds no value.
	Read(key types.Key) (types.StoredValue, bool, error)
	// ReadWithProof additionally returns the Merkle proof tying the value
	// to the reader's root.
	ReadWithProof(key types.Key) (types.StoredValue, *trie.Proof[types.Key, types.StoredValue], bool, error)
	// Keys lists all keys whose canonical byte form starts with the given
	// prefix, in byte order.
	Keys(prefix []byte) ([]types.Key, error)
	// Root is the state root this reader is pinned to.
	Root() common.Hash
}

// Provider checks out read access to historical states.
type Provider interface {
	// Checkout returns a reader pinned to the given root, or
	// ErrRootNotFound.
	Checkout(root common.Hash) (Reader, error)
	// EmptyRootHash is the root of the state without any entries.
	EmptyRootHash() common.Hash
}

// CommitProvider extends a Provider with the ability to commit execution
// effects, producing new states.
type CommitProvider interface {
	Provider
	// Commit applies the effects on top of the given pre-state and returns
	// the resulting post-state root.
	Commit(pre common.Hash, effects types.Effects) (common.Hash, error)
}

// KeyCodec translates keys to their canonical byte form for the trie.
type KeyCodec struct{}

func (KeyCodec) Encode(k types.Key) []byte {
	return k.Bytes()
}

func (KeyCodec) Decode(data []byte) (types.Key, error) {
	return types.DecodeKey(data)
}

// ValueCodec translates stored values to their canonical byte form for the
// trie.
type ValueCodec struct{}

func (ValueCodec) Encode(v types.StoredValue) []byte {
	return types.EncodeValue(v)
}

func (ValueCodec) Decode(data []byte) (types.StoredValue, error) {
	return types.DecodeValue(data)
}

// GlobalState is the CommitProvider over a transactional key-value source.
// It follows the single-writer / many-reader model: any number of readers
// may be active at any roots while one commit runs.
type GlobalState struct {
	source kvstore.Source
	store  *trie.Store[types.Key, types.StoredValue]
	log    log.Logger
}

// NewGlobalState opens the global state over the given source and makes
// sure the empty root exists.
func NewGlobalState(source kvstore.Source) (*GlobalState, error) {
	store, err := trie.NewStore[types.Key, types.StoredValue](KeyCodec{}, ValueCodec{}, 0)
	if err != nil {
		return nil, err
	}
	txn, err := source.WriteTxn()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	if _, err := store.WriteEmptyRoot(txn); err != nil {
		return nil, fmt.Errorf("failed to initialize empty root: %w", err)
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	return &GlobalState{source: source, store: store, log: log.Root()}, nil
}

// NewTemporaryGlobalState creates an in-memory global state seeded with the
// given pairs, returning the state and the root holding them.
func NewTemporaryGlobalState(pairs map[types.Key]types.StoredValue) (*GlobalState, common.Hash, error) {
	gs, err := NewGlobalState(kvstore.NewMemory())
	if err != nil {
		return nil, common.EmptyHash, err
	}
	effects := types.Effects{}
	for key := range pairs {
		effects = effects.Append(types.WriteTransform(key, pairs[key]))
	}
	root, err := gs.Commit(gs.EmptyRootHash(), effects)
	if err != nil {
		return nil, common.EmptyHash, err
	}
	return gs, root, nil
}

func (s *GlobalState) EmptyRootHash() common.Hash {
	return s.store.EmptyRootHash()
}

func (s *GlobalState) Checkout(root common.Hash) (Reader, error) {
	txn, err := s.source.ReadTxn()
	if err != nil {
		return nil, err
	}
	defer txn.Release()
	if _, err := txn.Get(root[:]); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrRootNotFound, root)
		}
		return nil, err
	}
	return &stateReader{state: s, root: root}, nil
}

// Commit applies the effects sequentially on top of the pre-state and
// returns the new root. The whole commit shares one write transaction, the
// new root becomes visible only if every transform applies.
func (s *GlobalState) Commit(pre common.Hash, effects types.Effects) (common.Hash, error) {
	txn, err := s.source.WriteTxn()
	if err != nil {
		return common.EmptyHash, err
	}
	defer txn.Discard()

	if _, err := txn.Get(pre[:]); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return common.EmptyHash, fmt.Errorf("%w: pre-state %v", ErrRootNotFound, pre)
		}
		return common.EmptyHash, err
	}

	root := pre
	for _, transform := range effects {
		root, err = s.applyTransform(txn, root, transform)
		if err != nil {
			return common.EmptyHash, err
		}
	}
	if err := txn.Commit(); err != nil {
		return common.EmptyHash, err
	}
	return root, nil
}

func (s *GlobalState) applyTransform(txn kvstore.WriteTxn, root common.Hash, transform types.Transform) (common.Hash, error) {
	if transform.Kind == types.TransformIdentity {
		return root, nil
	}
	current, err := s.store.Read(txn, root, transform.Key)
	if err != nil {
		return common.EmptyHash, err
	}
	switch current.Kind {
	case trie.ReadRootNotFound:
		// the root was produced by this very commit, losing it mid-way
		// means the store dropped data
		return common.EmptyHash, fmt.Errorf("%w: root %v vanished during commit", trie.ErrCorruptTrie, root)
	case trie.ReadNotFound:
		switch transform.Kind {
		case types.TransformWrite:
			return s.writeValue(txn, root, transform.Key, transform.Value)
		case types.TransformPrune:
			s.log.Warn("Pruning a key that holds no value", "key", transform.Key)
			return root, nil
		default:
			return common.EmptyHash, fmt.Errorf("%w: %v", ErrKeyNotFound, transform.Key)
		}
	default:
		if transform.Kind == types.TransformPrune {
			result, err := s.store.Prune(txn, root, transform.Key)
			if err != nil {
				return common.EmptyHash, err
			}
			switch result.Kind {
			case trie.PrunePruned:
				return result.Root, nil
			case trie.PruneDoesNotExist:
				return root, nil
			default:
				return common.EmptyHash, fmt.Errorf("%w: root %v vanished during prune", trie.ErrCorruptTrie, root)
			}
		}
		value, err := transform.Apply(current.Value)
		if err != nil {
			return common.EmptyHash, err
		}
		return s.writeValue(txn, root, transform.Key, value)
	}
}

func (s *GlobalState) writeValue(txn kvstore.WriteTxn, root common.Hash, key types.Key, value types.StoredValue) (common.Hash, error) {
	result, err := s.store.Write(txn, root, key, value)
	if err != nil {
		return common.EmptyHash, err
	}
	switch result.Kind {
	case trie.WriteWritten:
		return result.Root, nil
	case trie.WriteAlreadyExists:
		return root, nil
	default:
		return common.EmptyHash, fmt.Errorf("%w: root %v vanished during write", trie.ErrCorruptTrie, root)
	}
}

func (s *GlobalState) Close() error {
	return s.source.Close()
}

// stateReader implements Reader. Every call runs in its own short-lived
// read transaction, consistency follows from the immutability of the root.
type stateReader struct {
	state *GlobalState
	root  common.Hash
}

func (r *stateReader) Root() common.Hash {
	return r.root
}

func (r *stateReader) Read(key types.Key) (types.StoredValue, bool, error) {
	txn, err := r.state.source.ReadTxn()
	if err != nil {
		return nil, false, err
	}
	defer txn.Release()
	result, err := r.state.store.Read(txn, r.root, key)
	if err != nil {
		return nil, false, err
	}
	switch result.Kind {
	case trie.ReadFound:
		return result.Value, true, nil
	case trie.ReadNotFound:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("%w: %v", ErrRootNotFound, r.root)
	}
}

func (r *stateReader) ReadWithProof(key types.Key) (types.StoredValue, *trie.Proof[types.Key, types.StoredValue], bool, error) {
	txn, err := r.state.source.ReadTxn()
	if err != nil {
		return nil, nil, false, err
	}
	defer txn.Release()
	result, proof, err := r.state.store.ReadWithProof(txn, r.root, key)
	if err != nil {
		return nil, nil, false, err
	}
	switch result.Kind {
	case trie.ReadFound:
		return result.Value, proof, true, nil
	case trie.ReadNotFound:
		return nil, nil, false, nil
	default:
		return nil, nil, false, fmt.Errorf("%w: %v", ErrRootNotFound, r.root)
	}
}

func (r *stateReader) Keys(prefix []byte) ([]types.Key, error) {
	txn, err := r.state.source.ReadTxn()
	if err != nil {
		return nil, err
	}
	defer txn.Release()
	return r.state.store.KeysWithPrefix(txn, r.root, prefix).Collect()
}

// VerifyProof reports whether the proof commits to the given root. It is a
// free function because proof verification needs no state access.
func (s *GlobalState) VerifyProof(proof *trie.Proof[types.Key, types.StoredValue], root common.Hash) bool {
	return s.store.VerifyProof(proof, root)
}
