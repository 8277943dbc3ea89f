package trie

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/storage/kvstore"
)

// ReadResultKind classifies the outcome of a read.
type ReadResultKind uint8

const (
	// ReadFound means the key holds a value under the given root.
	ReadFound ReadResultKind = iota
	// ReadNotFound means the trie exists but the key holds no value.
	ReadNotFound
	// ReadRootNotFound means the root hash does not name a stored trie.
	ReadRootNotFound
)

// ReadResult is the outcome of a read. Value is only meaningful for
// ReadFound.
type ReadResult[V any] struct {
	Kind  ReadResultKind
	Value V
}

// WriteResultKind classifies the outcome of a write.
type WriteResultKind uint8

const (
	// WriteWritten means a new root was produced.
	WriteWritten WriteResultKind = iota
	// WriteAlreadyExists means the identical pair is already present, no
	// new nodes were stored.
	WriteAlreadyExists
	// WriteRootNotFound means the root hash does not name a stored trie.
	WriteRootNotFound
)

// WriteResult is the outcome of a write. Root is only meaningful for
// WriteWritten.
type WriteResult struct {
	Kind WriteResultKind
	Root common.Hash
}

// PruneResultKind classifies the outcome of a prune.
type PruneResultKind uint8

const (
	// PrunePruned means a new root without the key was produced.
	PrunePruned PruneResultKind = iota
	// PruneDoesNotExist means the key holds no value under the root.
	PruneDoesNotExist
	// PruneRootNotFound means the root hash does not name a stored trie.
	PruneRootNotFound
)

// PruneResult is the outcome of a prune. Root is only meaningful for
// PrunePruned.
type PruneResult struct {
	Kind PruneResultKind
	Root common.Hash
}

// internal control-flow sentinels of the write and prune walks
const (
	errAlreadyExists = common.ConstError("pair already present")
	errDoesNotExist  = common.ConstError("key not present")
)

// getExisting loads a node that is referenced by another node. A missing
// referenced node means the store lost data and is reported as corruption.
func (s *Store[K, V]) getExisting(txn kvstore.Reader, hash common.Hash) (*node[K, V], error) {
	res, err := s.getNode(txn, hash)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: referenced node %v is missing", ErrCorruptTrie, hash)
	}
	return res, err
}

// Read looks up the value stored under the key in the trie named by root.
func (s *Store[K, V]) Read(txn kvstore.Reader, root common.Hash, key K) (ReadResult[V], error) {
	path := s.encodeKey(key)
	current, err := s.getNode(txn, root)
	if errors.Is(err, kvstore.ErrNotFound) {
		return ReadResult[V]{Kind: ReadRootNotFound}, nil
	}
	if err != nil {
		return ReadResult[V]{}, err
	}
	depth := 0
	for {
		switch current.kind {
		case leafNode:
			if bytes.Equal(s.encodeKey(current.key), path) {
				return ReadResult[V]{Kind: ReadFound, Value: current.value}, nil
			}
			return ReadResult[V]{Kind: ReadNotFound}, nil
		case extensionNode:
			rest := path[depth:]
			if !bytes.HasPrefix(rest, current.affix) {
				return ReadResult[V]{Kind: ReadNotFound}, nil
			}
			depth += len(current.affix)
			current, err = s.getExisting(txn, current.pointer.Hash)
			if err != nil {
				return ReadResult[V]{}, err
			}
		case branchNode:
			if depth >= len(path) {
				return ReadResult[V]{Kind: ReadNotFound}, nil
			}
			pointer, found := current.child(path[depth])
			if !found {
				return ReadResult[V]{Kind: ReadNotFound}, nil
			}
			depth++
			current, err = s.getExisting(txn, pointer.Hash)
			if err != nil {
				return ReadResult[V]{}, err
			}
		}
	}
}

// Write stores the key/value pair in the trie named by root and returns the
// root of the updated trie. The previous root remains intact, the update
// only adds nodes.
func (s *Store[K, V]) Write(txn kvstore.Writer, root common.Hash, key K, value V) (WriteResult, error) {
	path := s.encodeKey(key)
	rootNode, err := s.getNode(txn, root)
	if errors.Is(err, kvstore.ErrNotFound) {
		return WriteResult{Kind: WriteRootNotFound}, nil
	}
	if err != nil {
		return WriteResult{}, err
	}
	pointer, err := s.insert(txn, rootNode, path, 0, newLeaf[K, V](key, value))
	if errors.Is(err, errAlreadyExists) {
		return WriteResult{Kind: WriteAlreadyExists}, nil
	}
	if err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Kind: WriteWritten, Root: pointer.Hash}, nil
}

// insert adds the leaf below the given node and returns the pointer to the
// rebuilt subtree.
func (s *Store[K, V]) insert(txn kvstore.Writer, current *node[K, V], path []byte, depth int, leaf *node[K, V]) (Pointer, error) {
	switch current.kind {
	case branchNode:
		if depth >= len(path) {
			return Pointer{}, fmt.Errorf("%w: path exhausted at a branch", ErrCorruptTrie)
		}
		index := path[depth]
		childPointer, found := current.child(index)
		var newChild Pointer
		switch {
		case !found:
			hash, err := s.putNode(txn, leaf)
			if err != nil {
				return Pointer{}, err
			}
			newChild = Pointer{Kind: LeafPointer, Hash: hash}
		case childPointer.Kind == LeafPointer:
			existing, err := s.getExisting(txn, childPointer.Hash)
			if err != nil {
				return Pointer{}, err
			}
			existingPath := s.encodeKey(existing.key)
			if bytes.Equal(existingPath, path) {
				if s.sameValue(existing.value, leaf.value) {
					return Pointer{}, errAlreadyExists
				}
				hash, err := s.putNode(txn, leaf)
				if err != nil {
					return Pointer{}, err
				}
				newChild = Pointer{Kind: LeafPointer, Hash: hash}
			} else {
				newChild, err = s.splitLeaf(txn, childPointer, existingPath, leaf, path, depth+1)
				if err != nil {
					return Pointer{}, err
				}
			}
		default:
			next, err := s.getExisting(txn, childPointer.Hash)
			if err != nil {
				return Pointer{}, err
			}
			newChild, err = s.insert(txn, next, path, depth+1, leaf)
			if err != nil {
				return Pointer{}, err
			}
		}
		hash, err := s.putNode(txn, newBranch[K, V](withChild(current.children, index, newChild, true)))
		if err != nil {
			return Pointer{}, err
		}
		return Pointer{Kind: NodePointer, Hash: hash}, nil

	case extensionNode:
		rest := path[depth:]
		shared := commonPrefixLength(current.affix, rest)
		if shared == len(current.affix) {
			next, err := s.getExisting(txn, current.pointer.Hash)
			if err != nil {
				return Pointer{}, err
			}
			newChild, err := s.insert(txn, next, path, depth+shared, leaf)
			if err != nil {
				return Pointer{}, err
			}
			hash, err := s.putNode(txn, newExtension[K, V](current.affix, newChild))
			if err != nil {
				return Pointer{}, err
			}
			return Pointer{Kind: NodePointer, Hash: hash}, nil
		}
		// The paths diverge inside the affix, the extension is split into
		// a branch at the divergence.
		oldChild := current.pointer
		if remainder := current.affix[shared+1:]; len(remainder) > 0 {
			hash, err := s.putNode(txn, newExtension[K, V](remainder, current.pointer))
			if err != nil {
				return Pointer{}, err
			}
			oldChild = Pointer{Kind: NodePointer, Hash: hash}
		}
		leafHash, err := s.putNode(txn, leaf)
		if err != nil {
			return Pointer{}, err
		}
		if shared >= len(rest) {
			return Pointer{}, fmt.Errorf("%w: key encoding is not prefix-free", ErrCorruptTrie)
		}
		children := withChild(nil, current.affix[shared], oldChild, true)
		children = withChild(children, rest[shared], Pointer{Kind: LeafPointer, Hash: leafHash}, true)
		hash, err := s.putNode(txn, newBranch[K, V](children))
		if err != nil {
			return Pointer{}, err
		}
		result := Pointer{Kind: NodePointer, Hash: hash}
		if shared > 0 {
			hash, err := s.putNode(txn, newExtension[K, V](current.affix[:shared], result))
			if err != nil {
				return Pointer{}, err
			}
			result = Pointer{Kind: NodePointer, Hash: hash}
		}
		return result, nil

	default:
		return Pointer{}, fmt.Errorf("%w: unexpected leaf during descent", ErrCorruptTrie)
	}
}

// splitLeaf replaces a single leaf by a subtree holding both the existing
// leaf and the new one, diverging at the first byte where their paths
// differ.
func (s *Store[K, V]) splitLeaf(txn kvstore.Writer, existing Pointer, existingPath []byte, leaf *node[K, V], path []byte, depth int) (Pointer, error) {
	restExisting := existingPath[depth:]
	restNew := path[depth:]
	shared := commonPrefixLength(restExisting, restNew)
	if shared >= len(restExisting) || shared >= len(restNew) {
		return Pointer{}, fmt.Errorf("%w: key encoding is not prefix-free", ErrCorruptTrie)
	}
	leafHash, err := s.putNode(txn, leaf)
	if err != nil {
		return Pointer{}, err
	}
	children := withChild(nil, restExisting[shared], existing, true)
	children = withChild(children, restNew[shared], Pointer{Kind: LeafPointer, Hash: leafHash}, true)
	hash, err := s.putNode(txn, newBranch[K, V](children))
	if err != nil {
		return Pointer{}, err
	}
	result := Pointer{Kind: NodePointer, Hash: hash}
	if shared > 0 {
		hash, err := s.putNode(txn, newExtension[K, V](restExisting[:shared], result))
		if err != nil {
			return Pointer{}, err
		}
		result = Pointer{Kind: NodePointer, Hash: hash}
	}
	return result, nil
}

// Prune removes the key from the trie named by root and returns the root of
// the updated trie. The removal is soft, all nodes of the previous root
// stay in the store, the new root merely does not reach the key anymore.
// Branches left with a single child are contracted on the way up.
func (s *Store[K, V]) Prune(txn kvstore.Writer, root common.Hash, key K) (PruneResult, error) {
	path := s.encodeKey(key)
	rootNode, err := s.getNode(txn, root)
	if errors.Is(err, kvstore.ErrNotFound) {
		return PruneResult{Kind: PruneRootNotFound}, nil
	}
	if err != nil {
		return PruneResult{}, err
	}
	if rootNode.kind != branchNode {
		return PruneResult{}, fmt.Errorf("%w: root is not a branch", ErrCorruptTrie)
	}
	pointer, err := s.removeFromBranch(txn, rootNode, path, 0, true)
	if errors.Is(err, errDoesNotExist) {
		return PruneResult{Kind: PruneDoesNotExist}, nil
	}
	if err != nil {
		return PruneResult{}, err
	}
	return PruneResult{Kind: PrunePruned, Root: pointer.Hash}, nil
}

func (s *Store[K, V]) removeFromBranch(txn kvstore.Writer, current *node[K, V], path []byte, depth int, isRoot bool) (Pointer, error) {
	if depth >= len(path) {
		return Pointer{}, errDoesNotExist
	}
	index := path[depth]
	childPointer, found := current.child(index)
	if !found {
		return Pointer{}, errDoesNotExist
	}
	var children []ChildEntry
	if childPointer.Kind == LeafPointer {
		existing, err := s.getExisting(txn, childPointer.Hash)
		if err != nil {
			return Pointer{}, err
		}
		if !bytes.Equal(s.encodeKey(existing.key), path) {
			return Pointer{}, errDoesNotExist
		}
		children = withChild(current.children, index, Pointer{}, false)
	} else {
		next, err := s.getExisting(txn, childPointer.Hash)
		if err != nil {
			return Pointer{}, err
		}
		var newChild Pointer
		if next.kind == extensionNode {
			newChild, err = s.removeFromExtension(txn, next, path, depth+1)
		} else {
			newChild, err = s.removeFromBranch(txn, next, path, depth+1, false)
		}
		if err != nil {
			return Pointer{}, err
		}
		children = withChild(current.children, index, newChild, true)
	}
	return s.contractBranch(txn, children, isRoot)
}

// contractBranch rebuilds a branch from its remaining children. Below the
// root a branch with a single child collapses: a leaf pointer propagates
// up unchanged, a node pointer turns into an extension, merging with an
// extension target.
func (s *Store[K, V]) contractBranch(txn kvstore.Writer, children []ChildEntry, isRoot bool) (Pointer, error) {
	if isRoot || len(children) >= 2 {
		hash, err := s.putNode(txn, newBranch[K, V](children))
		if err != nil {
			return Pointer{}, err
		}
		return Pointer{Kind: NodePointer, Hash: hash}, nil
	}
	if len(children) == 0 {
		return Pointer{}, fmt.Errorf("%w: empty branch below the root", ErrCorruptTrie)
	}
	only := children[0]
	if only.Pointer.Kind == LeafPointer {
		return only.Pointer, nil
	}
	target, err := s.getExisting(txn, only.Pointer.Hash)
	if err != nil {
		return Pointer{}, err
	}
	if target.kind == extensionNode {
		affix := append([]byte{only.Index}, target.affix...)
		hash, err := s.putNode(txn, newExtension[K, V](affix, target.pointer))
		if err != nil {
			return Pointer{}, err
		}
		return Pointer{Kind: NodePointer, Hash: hash}, nil
	}
	hash, err := s.putNode(txn, newExtension[K, V]([]byte{only.Index}, only.Pointer))
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{Kind: NodePointer, Hash: hash}, nil
}

func (s *Store[K, V]) removeFromExtension(txn kvstore.Writer, current *node[K, V], path []byte, depth int) (Pointer, error) {
	rest := path[depth:]
	if !bytes.HasPrefix(rest, current.affix) {
		return Pointer{}, errDoesNotExist
	}
	next, err := s.getExisting(txn, current.pointer.Hash)
	if err != nil {
		return Pointer{}, err
	}
	if next.kind != branchNode {
		return Pointer{}, fmt.Errorf("%w: extension does not point at a branch", ErrCorruptTrie)
	}
	newChild, err := s.removeFromBranch(txn, next, path, depth+len(current.affix), false)
	if err != nil {
		return Pointer{}, err
	}
	// A leaf propagating up absorbs the extension, the leaf carries its
	// full key anyway.
	if newChild.Kind == LeafPointer {
		return newChild, nil
	}
	target, err := s.getExisting(txn, newChild.Hash)
	if err != nil {
		return Pointer{}, err
	}
	if target.kind == extensionNode {
		affix := append(append([]byte{}, current.affix...), target.affix...)
		hash, err := s.putNode(txn, newExtension[K, V](affix, target.pointer))
		if err != nil {
			return Pointer{}, err
		}
		return Pointer{Kind: NodePointer, Hash: hash}, nil
	}
	hash, err := s.putNode(txn, newExtension[K, V](current.affix, newChild))
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{Kind: NodePointer, Hash: hash}, nil
}
