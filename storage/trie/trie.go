// Package trie implements the Merkle radix trie backing the global state.
//
// The trie is radix-256, a path is the canonical byte form of a key and
// every byte selects one of up to 256 children of a branch. Three node
// shapes exist: leaves holding a full key together with its value,
// extensions compressing a shared run of path bytes, and branches fanning
// out. Nodes are content addressed, a node's hash is the hash of its
// canonical encoding, and all updates are copy-on-write, so every root that
// ever existed remains readable.
package trie

import (
	"fmt"

	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/types"
)

// Codec translates keys and values to and from their canonical byte form.
// Key encodings must be prefix-free, no encoded key may be a prefix of
// another one. The canonical forms produced by the types package satisfy
// this.
type Codec[T any] interface {
	Encode(value T) []byte
	Decode(data []byte) (T, error)
}

// ErrCorruptTrie is reported when stored node data does not match the hash
// it is addressed by, or cannot be decoded.
const ErrCorruptTrie = common.ConstError("corrupt trie node")

// PointerKind distinguishes what a pointer's hash addresses.
type PointerKind uint8

const (
	// LeafPointer addresses a leaf node.
	LeafPointer PointerKind = iota
	// NodePointer addresses a branch or extension node.
	NodePointer
)

// Pointer is a typed reference to another node.
type Pointer struct {
	Kind PointerKind
	Hash common.Hash
}

// ChildEntry is one occupied slot of a branch.
type ChildEntry struct {
	Index   byte
	Pointer Pointer
}

type nodeKind uint8

const (
	leafNode nodeKind = iota
	extensionNode
	branchNode
)

// node is a single trie node of any shape. Which fields are meaningful
// depends on the kind.
type node[K, V any] struct {
	kind nodeKind

	// leaf
	key   K
	value V

	// extension
	affix   []byte
	pointer Pointer

	// branch, sorted by index
	children []ChildEntry
}

func newLeaf[K, V any](key K, value V) *node[K, V] {
	return &node[K, V]{kind: leafNode, key: key, value: value}
}

func newExtension[K, V any](affix []byte, pointer Pointer) *node[K, V] {
	return &node[K, V]{kind: extensionNode, affix: affix, pointer: pointer}
}

func newBranch[K, V any](children []ChildEntry) *node[K, V] {
	return &node[K, V]{kind: branchNode, children: children}
}

// child returns the pointer stored under the given index, if any.
func (n *node[K, V]) child(index byte) (Pointer, bool) {
	for _, entry := range n.children {
		if entry.Index == index {
			return entry.Pointer, true
		}
		if entry.Index > index {
			break
		}
	}
	return Pointer{}, false
}

// withChild returns the branch's child list with the given slot replaced,
// inserted, or removed (remove via present == false). The input list is not
// modified.
func withChild(children []ChildEntry, index byte, pointer Pointer, present bool) []ChildEntry {
	res := make([]ChildEntry, 0, len(children)+1)
	inserted := false
	for _, entry := range children {
		if entry.Index == index {
			if present {
				res = append(res, ChildEntry{Index: index, Pointer: pointer})
			}
			inserted = true
			continue
		}
		if !inserted && entry.Index > index && present {
			res = append(res, ChildEntry{Index: index, Pointer: pointer})
			inserted = true
		}
		res = append(res, entry)
	}
	if !inserted && present {
		res = append(res, ChildEntry{Index: index, Pointer: pointer})
	}
	return res
}

// encode produces the canonical byte form of the node.
func (n *node[K, V]) encode(keys Codec[K], values Codec[V]) []byte {
	e := types.NewEncoder()
	e.PutU8(uint8(n.kind))
	switch n.kind {
	case leafNode:
		e.PutBytes(keys.Encode(n.key))
		e.PutBytes(values.Encode(n.value))
	case extensionNode:
		e.PutBytes(n.affix)
		encodePointer(e, n.pointer)
	case branchNode:
		e.PutU16(uint16(len(n.children)))
		for _, entry := range n.children {
			e.PutU8(entry.Index)
			encodePointer(e, entry.Pointer)
		}
	}
	return e.Bytes()
}

func encodePointer(e *types.Encoder, p Pointer) {
	e.PutU8(uint8(p.Kind))
	e.PutFixed(p.Hash[:])
}

func decodePointer(d *types.Decoder) Pointer {
	kind := PointerKind(d.U8())
	return Pointer{Kind: kind, Hash: common.HashFromBytes(d.Fixed(common.HashLength))}
}

// decodeNode parses a canonical node byte form.
func decodeNode[K, V any](keys Codec[K], values Codec[V], data []byte) (*node[K, V], error) {
	d := types.NewDecoder(data)
	kind := nodeKind(d.U8())
	res := &node[K, V]{kind: kind}
	switch kind {
	case leafNode:
		keyBytes := d.Bytes()
		valueBytes := d.Bytes()
		if err := d.Finish(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptTrie, err)
		}
		key, err := keys.Decode(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: leaf key: %v", ErrCorruptTrie, err)
		}
		value, err := values.Decode(valueBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: leaf value: %v", ErrCorruptTrie, err)
		}
		res.key = key
		res.value = value
	case extensionNode:
		res.affix = d.Bytes()
		res.pointer = decodePointer(d)
		if err := d.Finish(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptTrie, err)
		}
	case branchNode:
		count := d.U16()
		for i := uint16(0); i < count && d.Err() == nil; i++ {
			index := d.U8()
			res.children = append(res.children, ChildEntry{Index: index, Pointer: decodePointer(d)})
		}
		if err := d.Finish(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptTrie, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown node kind %d", ErrCorruptTrie, kind)
	}
	return res, nil
}

// commonPrefixLength returns the length of the longest common prefix of the
// two byte slices.
func commonPrefixLength(a, b []byte) int {
	limit := len(a)
	if len(b) < limit {
		limit = len(b)
	}
	for i := 0; i < limit; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return limit
}
