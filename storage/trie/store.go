package trie

import (
	"bytes"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/storage/kvstore"
)

// DefaultNodeCacheCapacity is the number of decoded nodes a store retains
// in memory.
const DefaultNodeCacheCapacity = 100_000

// Store provides hash-addressed access to trie nodes of one key/value
// domain and carries the trie operations. Nodes pass through an LRU cache,
// which is safe to share between transactions because nodes are content
// addressed and immutable.
//
// A store is safe for concurrent readers. Writes follow the single-writer
// model of the underlying source.
type Store[K, V any] struct {
	keys   Codec[K]
	values Codec[V]
	cache  *lru.Cache[common.Hash, *node[K, V]]

	emptyRootHash common.Hash
}

// NewStore creates a node store for the given codecs. A non-positive cache
// capacity falls back to the default.
func NewStore[K, V any](keys Codec[K], values Codec[V], cacheCapacity int) (*Store[K, V], error) {
	if cacheCapacity <= 0 {
		cacheCapacity = DefaultNodeCacheCapacity
	}
	cache, err := lru.New[common.Hash, *node[K, V]](cacheCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create node cache: %w", err)
	}
	empty := newBranch[K, V](nil)
	return &Store[K, V]{
		keys:          keys,
		values:        values,
		cache:         cache,
		emptyRootHash: common.HashOf(empty.encode(keys, values)),
	}, nil
}

// EmptyRootHash is the hash of the empty branch node, the root of a trie
// without any entries.
func (s *Store[K, V]) EmptyRootHash() common.Hash {
	return s.emptyRootHash
}

// WriteEmptyRoot materializes the empty root node in the backing store and
// returns its hash.
func (s *Store[K, V]) WriteEmptyRoot(txn kvstore.Writer) (common.Hash, error) {
	return s.putNode(txn, newBranch[K, V](nil))
}

// getNode loads the node stored under the given hash. A kvstore miss maps
// to kvstore.ErrNotFound, data that does not hash to its address to
// ErrCorruptTrie.
func (s *Store[K, V]) getNode(txn kvstore.Reader, hash common.Hash) (*node[K, V], error) {
	if cached, found := s.cache.Get(hash); found {
		return cached, nil
	}
	data, err := txn.Get(hash[:])
	if err != nil {
		return nil, err
	}
	if common.HashOf(data) != hash {
		return nil, fmt.Errorf("%w: data under %v does not match its hash", ErrCorruptTrie, hash)
	}
	res, err := decodeNode(s.keys, s.values, data)
	if err != nil {
		return nil, err
	}
	s.cache.Add(hash, res)
	return res, nil
}

// putNode stores the node under the hash of its encoding and returns that
// hash. Storing an existing node is a harmless overwrite with identical
// data.
func (s *Store[K, V]) putNode(txn kvstore.Writer, n *node[K, V]) (common.Hash, error) {
	data := n.encode(s.keys, s.values)
	hash := common.HashOf(data)
	if err := txn.Put(hash[:], data); err != nil {
		return common.EmptyHash, err
	}
	s.cache.Add(hash, n)
	return hash, nil
}

// encodeKey returns the canonical path of a key.
func (s *Store[K, V]) encodeKey(key K) []byte {
	return s.keys.Encode(key)
}

// sameKey compares two keys by their canonical byte form.
func (s *Store[K, V]) sameKey(a, b K) bool {
	return bytes.Equal(s.keys.Encode(a), s.keys.Encode(b))
}

// sameValue compares two values by their canonical byte form.
func (s *Store[K, V]) sameValue(a, b V) bool {
	return bytes.Equal(s.values.Encode(a), s.values.Encode(b))
}
