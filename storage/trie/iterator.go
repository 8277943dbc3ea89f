package trie

import (
	"bytes"
	"errors"

	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/storage/kvstore"
)

// KeyIterator walks the keys of one trie lazily, depth-first, in ascending
// canonical byte order. A missing root yields an empty iteration, other
// failures surface through Err after Next returned false.
type KeyIterator[K, V any] struct {
	store  *Store[K, V]
	txn    kvstore.Reader
	prefix []byte
	stack  []iteratorFrame
	err    error
}

// iteratorFrame is a pending pointer together with the path bytes consumed
// on the way to it.
type iteratorFrame struct {
	pointer Pointer
	path    []byte
}

// Keys iterates all keys of the trie named by root.
func (s *Store[K, V]) Keys(txn kvstore.Reader, root common.Hash) *KeyIterator[K, V] {
	return s.KeysWithPrefix(txn, root, nil)
}

// KeysWithPrefix iterates the keys of the trie named by root whose
// canonical byte form starts with the given prefix.
func (s *Store[K, V]) KeysWithPrefix(txn kvstore.Reader, root common.Hash, prefix []byte) *KeyIterator[K, V] {
	it := &KeyIterator[K, V]{store: s, txn: txn, prefix: prefix}
	rootNode, err := s.getNode(txn, root)
	if errors.Is(err, kvstore.ErrNotFound) {
		return it
	}
	if err != nil {
		it.err = err
		return it
	}
	it.push(rootNode, nil)
	return it
}

// push schedules the children of a branch or the target of an extension,
// skipping subtrees that cannot contain the prefix. Branch children are
// pushed in descending order so that pops come out ascending.
func (it *KeyIterator[K, V]) push(n *node[K, V], path []byte) {
	switch n.kind {
	case branchNode:
		for i := len(n.children) - 1; i >= 0; i-- {
			childPath := append(append([]byte{}, path...), n.children[i].Index)
			if prefixCompatible(childPath, it.prefix) {
				it.stack = append(it.stack, iteratorFrame{pointer: n.children[i].Pointer, path: childPath})
			}
		}
	case extensionNode:
		childPath := append(append([]byte{}, path...), n.affix...)
		if prefixCompatible(childPath, it.prefix) {
			it.stack = append(it.stack, iteratorFrame{pointer: n.pointer, path: childPath})
		}
	}
}

// prefixCompatible reports whether a subtree reached via path can still
// contain keys starting with prefix.
func prefixCompatible(path, prefix []byte) bool {
	n := len(path)
	if len(prefix) < n {
		n = len(prefix)
	}
	return bytes.Equal(path[:n], prefix[:n])
}

// Next advances to the next key. It returns false when the iteration is
// exhausted or failed, check Err to tell the two apart.
func (it *KeyIterator[K, V]) Next() (K, bool) {
	var zero K
	if it.err != nil {
		return zero, false
	}
	for len(it.stack) > 0 {
		frame := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]
		current, err := it.store.getExisting(it.txn, frame.pointer.Hash)
		if err != nil {
			it.err = err
			return zero, false
		}
		if current.kind == leafNode {
			if bytes.HasPrefix(it.store.encodeKey(current.key), it.prefix) {
				return current.key, true
			}
			continue
		}
		it.push(current, frame.path)
	}
	return zero, false
}

// Err reports the failure that terminated the iteration, if any.
func (it *KeyIterator[K, V]) Err() error {
	return it.err
}

// Collect drains the iterator into a slice.
func (it *KeyIterator[K, V]) Collect() ([]K, error) {
	var res []K
	for {
		key, ok := it.Next()
		if !ok {
			return res, it.Err()
		}
		res = append(res, key)
	}
}
