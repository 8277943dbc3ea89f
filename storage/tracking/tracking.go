// Package tracking provides the TrackingCopy, the mutable overlay an
// execution works against. It caches reads from an immutable state reader,
// buffers writes and prunes locally, and journals every effect so the
// outcome can be committed, merged into a parent copy, or dropped.
package tracking

import (
	"bytes"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/holiman/uint256"
	"github.com/meridian-network/meridian/storage/state"
	"github.com/meridian-network/meridian/types"
	"golang.org/x/exp/slices"
)

// DefaultReadCacheCapacity bounds the number of clean reader results a
// tracking copy retains. Mutations and prunes are never evicted.
const DefaultReadCacheCapacity = 4096

// TrackingCopy is a forkable read/write view on top of one state reader.
// A single copy is not safe for concurrent use, it belongs to exactly one
// execution thread at a time.
type TrackingCopy struct {
	reader  state.Reader
	reads   *lru.Cache[types.Key, types.StoredValue]
	muts    map[types.Key]types.StoredValue
	prunes  map[types.Key]struct{}
	effects types.Effects
}

// New creates a tracking copy over the given reader. A non-positive cache
// capacity falls back to the default.
func New(reader state.Reader, cacheCapacity int) *TrackingCopy {
	if cacheCapacity <= 0 {
		cacheCapacity = DefaultReadCacheCapacity
	}
	// capacity is positive, lru.New cannot fail
	reads, _ := lru.New[types.Key, types.StoredValue](cacheCapacity)
	return &TrackingCopy{
		reader: reader,
		reads:  reads,
		muts:   map[types.Key]types.StoredValue{},
		prunes: map[types.Key]struct{}{},
	}
}

// Reader returns the immutable reader this copy is stacked on.
func (tc *TrackingCopy) Reader() state.Reader {
	return tc.reader
}

// Read returns the value visible under the key: pending writes shadow the
// reader, pending prunes hide it. Reads are journaled so a commit can
// replay the execution's footprint.
func (tc *TrackingCopy) Read(key types.Key) (types.StoredValue, bool, error) {
	tc.effects = tc.effects.Append(types.IdentityTransform(key))
	return tc.peek(key)
}

// peek is Read without the journal entry.
func (tc *TrackingCopy) peek(key types.Key) (types.StoredValue, bool, error) {
	if _, pruned := tc.prunes[key]; pruned {
		return nil, false, nil
	}
	if value, found := tc.muts[key]; found {
		return value, true, nil
	}
	if value, found := tc.reads.Get(key); found {
		return value, true, nil
	}
	value, found, err := tc.reader.Read(key)
	if err != nil || !found {
		return nil, false, err
	}
	tc.reads.Add(key, value)
	return value, true, nil
}

// Write replaces the value under the key.
func (tc *TrackingCopy) Write(key types.Key, value types.StoredValue) {
	delete(tc.prunes, key)
	tc.muts[key] = value
	tc.effects = tc.effects.Append(types.WriteTransform(key, value))
}

// AddUInt64 journals an additive merge on a u64 counter and, if the key is
// currently readable, applies it to the local view. An add on a missing
// key stays journaled and fails at commit.
func (tc *TrackingCopy) AddUInt64(key types.Key, delta uint64) error {
	transform := types.AddUInt64Transform(key, delta)
	return tc.add(key, transform)
}

// AddUInt256 journals an additive merge on a u256 balance, see AddUInt64.
func (tc *TrackingCopy) AddUInt256(key types.Key, delta *uint256.Int) error {
	transform := types.AddUInt256Transform(key, delta)
	return tc.add(key, transform)
}

func (tc *TrackingCopy) add(key types.Key, transform types.Transform) error {
	current, found, err := tc.peek(key)
	if err != nil {
		return err
	}
	if found {
		merged, err := transform.Apply(current)
		if err != nil {
			return fmt.Errorf("failed to merge add on %v: %w", key, err)
		}
		delete(tc.prunes, key)
		tc.muts[key] = merged
	}
	tc.effects = tc.effects.Append(transform)
	return nil
}

// Prune hides the key from this view and journals the removal.
func (tc *TrackingCopy) Prune(key types.Key) {
	delete(tc.muts, key)
	tc.prunes[key] = struct{}{}
	tc.effects = tc.effects.Append(types.PruneTransform(key))
}

// Keys lists the keys visible under the prefix: the reader's keys plus
// pending writes, minus pending prunes, in canonical byte order.
func (tc *TrackingCopy) Keys(prefix []byte) ([]types.Key, error) {
	base, err := tc.reader.Keys(prefix)
	if err != nil {
		return nil, err
	}
	seen := map[types.Key]struct{}{}
	res := make([]types.Key, 0, len(base))
	for _, key := range base {
		if _, pruned := tc.prunes[key]; pruned {
			continue
		}
		seen[key] = struct{}{}
		res = append(res, key)
	}
	for key := range tc.muts {
		if _, dup := seen[key]; dup {
			continue
		}
		if bytes.HasPrefix(key.Bytes(), prefix) {
			res = append(res, key)
		}
	}
	slices.SortFunc(res, func(a, b types.Key) int {
		return a.Compare(b)
	})
	return res, nil
}

// ReadFirst returns the smallest visible key under the prefix and its
// value.
func (tc *TrackingCopy) ReadFirst(prefix []byte) (types.Key, types.StoredValue, bool, error) {
	keys, err := tc.Keys(prefix)
	if err != nil || len(keys) == 0 {
		return types.Key{}, nil, false, err
	}
	value, found, err := tc.Read(keys[0])
	if err != nil || !found {
		return types.Key{}, nil, false, err
	}
	return keys[0], value, true, nil
}

// Fork2 creates a child copy sharing the reader, with the parent's cached
// view and an empty journal of its own. Child and parent evolve
// independently until the child is merged back with ApplyChanges or
// dropped.
func (tc *TrackingCopy) Fork2() *TrackingCopy {
	reads, _ := lru.New[types.Key, types.StoredValue](tc.reads.Len() + DefaultReadCacheCapacity)
	for _, key := range tc.reads.Keys() {
		if value, found := tc.reads.Peek(key); found {
			reads.Add(key, value)
		}
	}
	muts := make(map[types.Key]types.StoredValue, len(tc.muts))
	for key, value := range tc.muts {
		muts[key] = value
	}
	prunes := make(map[types.Key]struct{}, len(tc.prunes))
	for key := range tc.prunes {
		prunes[key] = struct{}{}
	}
	return &TrackingCopy{reader: tc.reader, reads: reads, muts: muts, prunes: prunes}
}

// ApplyChanges merges a child copy produced by Fork2 back into this copy:
// the child's journal is appended and its pending state overlays the
// parent's.
func (tc *TrackingCopy) ApplyChanges(child *TrackingCopy) {
	tc.effects = append(tc.effects, child.effects...)
	for key, value := range child.muts {
		delete(tc.prunes, key)
		tc.muts[key] = value
	}
	for key := range child.prunes {
		delete(tc.muts, key)
		tc.prunes[key] = struct{}{}
	}
	for _, key := range child.reads.Keys() {
		if value, found := child.reads.Peek(key); found {
			tc.reads.Add(key, value)
		}
	}
}

// Effects returns a copy of the journal accumulated so far.
func (tc *TrackingCopy) Effects() types.Effects {
	return tc.effects.Clone()
}
