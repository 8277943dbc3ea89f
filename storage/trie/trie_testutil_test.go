package trie

import (
	"fmt"
	"testing"

	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/storage/kvstore"
)

// The tests in this package run against a small fixed key domain of 7-byte
// keys mapped to strings, which keeps the reference tries below small
// enough to spell out node by node.

type testKey [7]byte

type testKeyCodec struct{}

func (testKeyCodec) Encode(k testKey) []byte {
	res := make([]byte, len(k))
	copy(res, k[:])
	return res
}

func (testKeyCodec) Decode(data []byte) (testKey, error) {
	var k testKey
	if len(data) != len(k) {
		return k, fmt.Errorf("invalid test key length %d", len(data))
	}
	copy(k[:], data)
	return k, nil
}

type stringCodec struct{}

func (stringCodec) Encode(v string) []byte {
	return []byte(v)
}

func (stringCodec) Decode(data []byte) (string, error) {
	return string(data), nil
}

// testLeaves is the leaf corpus all reference tries are built from. The
// order matters, fixture k is the result of writing the first k leaves
// into an empty trie in this order.
var testLeaves = []struct {
	key   testKey
	value string
}{
	{testKey{0, 0, 0, 0, 0, 0, 0}, "value0"},
	{testKey{0, 0, 0, 0, 0, 0, 1}, "value1"},
	{testKey{0, 0, 0, 2, 0, 0, 0}, "value2"},
	{testKey{0, 0, 0, 0, 0, 255, 0}, "value3"},
	{testKey{0, 1, 0, 0, 0, 0, 0}, "value4"},
	{testKey{0, 0, 2, 0, 0, 0, 0}, "value5"},
}

func newTestStore(t *testing.T) (*Store[testKey, string], kvstore.Source) {
	t.Helper()
	store, err := NewStore[testKey, string](testKeyCodec{}, stringCodec{}, 1024)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	source := kvstore.NewMemory()
	t.Cleanup(func() { source.Close() })
	return store, source
}

func newWriteTxn(t *testing.T, source kvstore.Source) kvstore.WriteTxn {
	t.Helper()
	txn, err := source.WriteTxn()
	if err != nil {
		t.Fatalf("failed to open write txn: %v", err)
	}
	return txn
}

// fixture builds reference tries node by node.
type fixture struct {
	t     *testing.T
	store *Store[testKey, string]
	txn   kvstore.WriteTxn
}

func (f fixture) put(n *node[testKey, string]) common.Hash {
	f.t.Helper()
	hash, err := f.store.putNode(f.txn, n)
	if err != nil {
		f.t.Fatalf("failed to store fixture node: %v", err)
	}
	return hash
}

func (f fixture) leaf(i int) Pointer {
	return Pointer{Kind: LeafPointer, Hash: f.put(newLeaf[testKey, string](testLeaves[i].key, testLeaves[i].value))}
}

func (f fixture) branch(entries ...ChildEntry) Pointer {
	children := []ChildEntry{}
	for _, entry := range entries {
		children = withChild(children, entry.Index, entry.Pointer, true)
	}
	return Pointer{Kind: NodePointer, Hash: f.put(newBranch[testKey, string](children))}
}

func (f fixture) extension(affix []byte, pointer Pointer) Pointer {
	return Pointer{Kind: NodePointer, Hash: f.put(newExtension[testKey, string](affix, pointer))}
}

func entry(index byte, pointer Pointer) ChildEntry {
	return ChildEntry{Index: index, Pointer: pointer}
}

// buildFixture materializes the reference trie holding the first count
// leaves and returns its root hash. The shapes are spelled out explicitly,
// they are the contract the write operation is tested against.
func buildFixture(t *testing.T, store *Store[testKey, string], txn kvstore.WriteTxn, count int) common.Hash {
	t.Helper()
	f := fixture{t: t, store: store, txn: txn}
	switch count {
	case 0:
		return f.branch().Hash
	case 1:
		return f.branch(entry(0, f.leaf(0))).Hash
	case 2:
		node1 := f.branch(entry(0, f.leaf(0)), entry(1, f.leaf(1)))
		ext := f.extension([]byte{0, 0, 0, 0, 0}, node1)
		return f.branch(entry(0, ext)).Hash
	case 3:
		node1 := f.branch(entry(0, f.leaf(0)), entry(1, f.leaf(1)))
		ext1 := f.extension([]byte{0, 0}, node1)
		node2 := f.branch(entry(0, ext1), entry(2, f.leaf(2)))
		ext2 := f.extension([]byte{0, 0}, node2)
		return f.branch(entry(0, ext2)).Hash
	case 4:
		node1 := f.branch(entry(0, f.leaf(0)), entry(1, f.leaf(1)))
		node2 := f.branch(entry(0, node1), entry(255, f.leaf(3)))
		ext1 := f.extension([]byte{0}, node2)
		node3 := f.branch(entry(0, ext1), entry(2, f.leaf(2)))
		ext2 := f.extension([]byte{0, 0}, node3)
		return f.branch(entry(0, ext2)).Hash
	case 5:
		node1 := f.branch(entry(0, f.leaf(0)), entry(1, f.leaf(1)))
		node2 := f.branch(entry(0, node1), entry(255, f.leaf(3)))
		ext1 := f.extension([]byte{0}, node2)
		node3 := f.branch(entry(0, ext1), entry(2, f.leaf(2)))
		ext2 := f.extension([]byte{0}, node3)
		node4 := f.branch(entry(0, ext2), entry(1, f.leaf(4)))
		return f.branch(entry(0, node4)).Hash
	case 6:
		node1 := f.branch(entry(0, f.leaf(0)), entry(1, f.leaf(1)))
		node2 := f.branch(entry(0, node1), entry(255, f.leaf(3)))
		ext := f.extension([]byte{0}, node2)
		node3 := f.branch(entry(0, ext), entry(2, f.leaf(2)))
		node4 := f.branch(entry(0, node3), entry(2, f.leaf(5)))
		node5 := f.branch(entry(0, node4), entry(1, f.leaf(4)))
		return f.branch(entry(0, node5)).Hash
	default:
		t.Fatalf("no fixture with %d leaves", count)
		return common.EmptyHash
	}
}

// writeLeaves writes the first count leaves into an empty trie and returns
// every intermediate root, starting with the empty one.
func writeLeaves(t *testing.T, store *Store[testKey, string], txn kvstore.WriteTxn, count int) []common.Hash {
	t.Helper()
	root, err := store.WriteEmptyRoot(txn)
	if err != nil {
		t.Fatalf("failed to write empty root: %v", err)
	}
	roots := []common.Hash{root}
	for i := 0; i < count; i++ {
		result, err := store.Write(txn, root, testLeaves[i].key, testLeaves[i].value)
		if err != nil {
			t.Fatalf("failed to write leaf %d: %v", i, err)
		}
		if result.Kind != WriteWritten {
			t.Fatalf("write of leaf %d reported %d, want WriteWritten", i, result.Kind)
		}
		root = result.Root
		roots = append(roots, root)
	}
	return roots
}
