package trie

import (
	"bytes"
	"sort"
	"testing"

	"github.com/meridian-network/meridian/common"
	"pgregory.net/rand"
)

func TestWrite_ReproducesReferenceTries(t *testing.T) {
	store, source := newTestStore(t)
	txn := newWriteTxn(t, source)
	defer txn.Discard()

	roots := writeLeaves(t, store, txn, len(testLeaves))
	for count := 0; count <= len(testLeaves); count++ {
		expected := buildFixture(t, store, txn, count)
		if roots[count] != expected {
			t.Errorf("root after %d writes is %v, want the reference trie root %v", count, roots[count], expected)
		}
	}
}

func TestWrite_EmptyRootHashMatchesStoredEmptyRoot(t *testing.T) {
	store, source := newTestStore(t)
	txn := newWriteTxn(t, source)
	defer txn.Discard()

	root, err := store.WriteEmptyRoot(txn)
	if err != nil {
		t.Fatalf("failed to write empty root: %v", err)
	}
	if root != store.EmptyRootHash() {
		t.Errorf("stored empty root %v differs from EmptyRootHash %v", root, store.EmptyRootHash())
	}
}

func TestRead_FindsEveryLeafUnderEveryIntermediateRoot(t *testing.T) {
	store, source := newTestStore(t)
	txn := newWriteTxn(t, source)
	defer txn.Discard()

	roots := writeLeaves(t, store, txn, len(testLeaves))
	for count, root := range roots {
		for i, leaf := range testLeaves {
			result, err := store.Read(txn, root, leaf.key)
			if err != nil {
				t.Fatalf("read of leaf %d at root %d failed: %v", i, count, err)
			}
			if i < count {
				if result.Kind != ReadFound || result.Value != leaf.value {
					t.Errorf("root %d: leaf %d expected %q, got kind %d value %q", count, i, leaf.value, result.Kind, result.Value)
				}
			} else if result.Kind != ReadNotFound {
				t.Errorf("root %d: leaf %d should not be present yet, got kind %d", count, i, result.Kind)
			}
		}
	}
}

func TestRead_UnknownRootIsReported(t *testing.T) {
	store, source := newTestStore(t)
	txn := newWriteTxn(t, source)
	defer txn.Discard()

	result, err := store.Read(txn, common.HashOf([]byte("no such root")), testLeaves[0].key)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if result.Kind != ReadRootNotFound {
		t.Errorf("expected ReadRootNotFound, got %d", result.Kind)
	}
}

func TestWrite_ExistingPairReportsAlreadyExists(t *testing.T) {
	store, source := newTestStore(t)
	txn := newWriteTxn(t, source)
	defer txn.Discard()

	roots := writeLeaves(t, store, txn, 3)
	for i := 0; i < 3; i++ {
		result, err := store.Write(txn, roots[3], testLeaves[i].key, testLeaves[i].value)
		if err != nil {
			t.Fatalf("rewrite of leaf %d failed: %v", i, err)
		}
		if result.Kind != WriteAlreadyExists {
			t.Errorf("rewrite of leaf %d reported %d, want WriteAlreadyExists", i, result.Kind)
		}
	}
}

func TestWrite_UpdatedValueKeepsOldRootReadable(t *testing.T) {
	store, source := newTestStore(t)
	txn := newWriteTxn(t, source)
	defer txn.Discard()

	roots := writeLeaves(t, store, txn, 2)
	oldRoot := roots[2]
	result, err := store.Write(txn, oldRoot, testLeaves[0].key, "updated")
	if err != nil || result.Kind != WriteWritten {
		t.Fatalf("update failed: kind %d, err %v", result.Kind, err)
	}

	fresh, err := store.Read(txn, result.Root, testLeaves[0].key)
	if err != nil || fresh.Kind != ReadFound || fresh.Value != "updated" {
		t.Errorf("new root does not hold the update: kind %d value %q err %v", fresh.Kind, fresh.Value, err)
	}
	stale, err := store.Read(txn, oldRoot, testLeaves[0].key)
	if err != nil || stale.Kind != ReadFound || stale.Value != testLeaves[0].value {
		t.Errorf("old root lost its value: kind %d value %q err %v", stale.Kind, stale.Value, err)
	}
}

func TestWrite_UnknownRootIsReported(t *testing.T) {
	store, source := newTestStore(t)
	txn := newWriteTxn(t, source)
	defer txn.Discard()

	result, err := store.Write(txn, common.HashOf([]byte("no such root")), testLeaves[0].key, "x")
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if result.Kind != WriteRootNotFound {
		t.Errorf("expected WriteRootNotFound, got %d", result.Kind)
	}
}

func TestPrune_ContractsToTheSmallerReferenceTrie(t *testing.T) {
	store, source := newTestStore(t)
	txn := newWriteTxn(t, source)
	defer txn.Discard()

	roots := writeLeaves(t, store, txn, 2)
	result, err := store.Prune(txn, roots[2], testLeaves[1].key)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if result.Kind != PrunePruned {
		t.Fatalf("prune reported %d, want PrunePruned", result.Kind)
	}
	if expected := buildFixture(t, store, txn, 1); result.Root != expected {
		t.Errorf("pruned root %v does not match the 1-leaf reference trie %v", result.Root, expected)
	}
}

func TestPrune_EachLeafDisappearsOthersRemain(t *testing.T) {
	store, source := newTestStore(t)
	txn := newWriteTxn(t, source)
	defer txn.Discard()

	roots := writeLeaves(t, store, txn, len(testLeaves))
	full := roots[len(testLeaves)]
	for i, victim := range testLeaves {
		result, err := store.Prune(txn, full, victim.key)
		if err != nil || result.Kind != PrunePruned {
			t.Fatalf("prune of leaf %d failed: kind %d, err %v", i, result.Kind, err)
		}
		gone, err := store.Read(txn, result.Root, victim.key)
		if err != nil || gone.Kind != ReadNotFound {
			t.Errorf("leaf %d still readable after prune: kind %d err %v", i, gone.Kind, err)
		}
		for j, other := range testLeaves {
			if j == i {
				continue
			}
			kept, err := store.Read(txn, result.Root, other.key)
			if err != nil || kept.Kind != ReadFound || kept.Value != other.value {
				t.Errorf("prune of leaf %d disturbed leaf %d: kind %d value %q err %v", i, j, kept.Kind, kept.Value, err)
			}
		}
		// the pre-prune root is untouched
		still, err := store.Read(txn, full, victim.key)
		if err != nil || still.Kind != ReadFound {
			t.Errorf("old root lost leaf %d after prune: kind %d err %v", i, still.Kind, err)
		}
	}
}

func TestPrune_MissingKeyAndUnknownRoot(t *testing.T) {
	store, source := newTestStore(t)
	txn := newWriteTxn(t, source)
	defer txn.Discard()

	roots := writeLeaves(t, store, txn, 2)
	result, err := store.Prune(txn, roots[2], testLeaves[5].key)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if result.Kind != PruneDoesNotExist {
		t.Errorf("prune of an absent key reported %d, want PruneDoesNotExist", result.Kind)
	}

	result, err = store.Prune(txn, common.HashOf([]byte("no such root")), testLeaves[0].key)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if result.Kind != PruneRootNotFound {
		t.Errorf("prune at an unknown root reported %d, want PruneRootNotFound", result.Kind)
	}
}

func sortedTestKeys(indices ...int) []testKey {
	keys := make([]testKey, 0, len(indices))
	for _, i := range indices {
		keys = append(keys, testLeaves[i].key)
	}
	sort.Slice(keys, func(a, b int) bool {
		return bytes.Compare(keys[a][:], keys[b][:]) < 0
	})
	return keys
}

func TestKeys_IterateInByteOrder(t *testing.T) {
	store, source := newTestStore(t)
	txn := newWriteTxn(t, source)
	defer txn.Discard()

	roots := writeLeaves(t, store, txn, len(testLeaves))
	got, err := store.Keys(txn, roots[len(testLeaves)]).Collect()
	if err != nil {
		t.Fatalf("key iteration failed: %v", err)
	}
	want := sortedTestKeys(0, 1, 2, 3, 4, 5)
	if len(got) != len(want) {
		t.Fatalf("iterated %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key %d is %v, want %v", i, got[i], want[i])
		}
	}
}

func TestKeys_PrefixRestrictsIteration(t *testing.T) {
	store, source := newTestStore(t)
	txn := newWriteTxn(t, source)
	defer txn.Discard()

	roots := writeLeaves(t, store, txn, len(testLeaves))
	got, err := store.KeysWithPrefix(txn, roots[len(testLeaves)], []byte{0, 0, 0}).Collect()
	if err != nil {
		t.Fatalf("key iteration failed: %v", err)
	}
	// leaves 0, 1, 2, and 3 start with [0,0,0]
	want := sortedTestKeys(0, 1, 2, 3)
	if len(got) != len(want) {
		t.Fatalf("iterated %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key %d is %v, want %v", i, got[i], want[i])
		}
	}
}

func TestKeys_UnknownRootYieldsEmptyIteration(t *testing.T) {
	store, source := newTestStore(t)
	txn := newWriteTxn(t, source)
	defer txn.Discard()

	it := store.Keys(txn, common.HashOf([]byte("no such root")))
	if _, ok := it.Next(); ok {
		t.Errorf("iteration over an unknown root produced a key")
	}
	if err := it.Err(); err != nil {
		t.Errorf("iteration over an unknown root reported an error: %v", err)
	}
}

func TestWrite_RandomizedOrderIndependence(t *testing.T) {
	store, source := newTestStore(t)
	txn := newWriteTxn(t, source)
	defer txn.Discard()

	rng := rand.New(0)
	const numPairs = 200
	keys := make([]testKey, numPairs)
	values := make(map[testKey]string, numPairs)
	for i := range keys {
		var key testKey
		rng.Read(key[:])
		keys[i] = key
		values[key] = string(key[:]) + "-value"
	}

	write := func(order []testKey) common.Hash {
		root, err := store.WriteEmptyRoot(txn)
		if err != nil {
			t.Fatalf("failed to write empty root: %v", err)
		}
		for _, key := range order {
			result, err := store.Write(txn, root, key, values[key])
			if err != nil {
				t.Fatalf("write failed: %v", err)
			}
			if result.Kind == WriteWritten {
				root = result.Root
			}
		}
		return root
	}

	rootA := write(keys)
	shuffled := make([]testKey, len(keys))
	copy(shuffled, keys)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	rootB := write(shuffled)
	if rootA != rootB {
		t.Fatalf("insertion order changed the root: %v vs %v", rootA, rootB)
	}

	for key, value := range values {
		result, err := store.Read(txn, rootA, key)
		if err != nil || result.Kind != ReadFound || result.Value != value {
			t.Fatalf("key %v not readable: kind %d value %q err %v", key, result.Kind, result.Value, err)
		}
	}

	iterated, err := store.Keys(txn, rootA).Collect()
	if err != nil {
		t.Fatalf("key iteration failed: %v", err)
	}
	if len(iterated) != len(values) {
		t.Fatalf("iterated %d keys, want %d", len(iterated), len(values))
	}
	if !sort.SliceIsSorted(iterated, func(a, b int) bool {
		return bytes.Compare(iterated[a][:], iterated[b][:]) < 0
	}) {
		t.Errorf("iterated keys are not in byte order")
	}
}
