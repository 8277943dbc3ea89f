package types

import (
	"fmt"

	"github.com/holiman/uint256"
)

// TransformKind names the effect a transform has on its key.
type TransformKind uint8

const (
	// TransformIdentity records a read without modifying the value.
	TransformIdentity TransformKind = iota
	// TransformWrite replaces the value unconditionally.
	TransformWrite
	// TransformAddUInt64 adds to a CLValue holding a u64.
	TransformAddUInt64
	// TransformAddUInt256 adds to a CLValue holding a u256.
	TransformAddUInt256
	// TransformPrune removes the key from the readable state.
	TransformPrune
)

// Transform is one recorded effect of an execution against a single key.
type Transform struct {
	Key      Key
	Kind     TransformKind
	Value    StoredValue  // set for Write
	Delta64  uint64       // set for AddUInt64
	Delta256 *uint256.Int // set for AddUInt256
}

func IdentityTransform(key Key) Transform {
	return Transform{Key: key, Kind: TransformIdentity}
}

func WriteTransform(key Key, value StoredValue) Transform {
	return Transform{Key: key, Kind: TransformWrite, Value: value}
}

func AddUInt64Transform(key Key, delta uint64) Transform {
	return Transform{Key: key, Kind: TransformAddUInt64, Delta64: delta}
}

func AddUInt256Transform(key Key, delta *uint256.Int) Transform {
	return Transform{Key: key, Kind: TransformAddUInt256, Delta256: delta.Clone()}
}

func PruneTransform(key Key) Transform {
	return Transform{Key: key, Kind: TransformPrune}
}

// Apply resolves the transform against the current value of its key and
// returns the resulting value. It is only defined for the value-producing
// kinds, Write and the Adds. Adding to a value of an incompatible shape
// fails with ErrTypeMismatch.
func (t Transform) Apply(current StoredValue) (StoredValue, error) {
	switch t.Kind {
	case TransformWrite:
		return t.Value, nil
	case TransformAddUInt64:
		cl, ok := current.(*CLValue)
		if !ok {
			return nil, fmt.Errorf("%w: cannot add u64 to value tag %d", ErrTypeMismatch, current.Tag())
		}
		v, err := cl.AsU64()
		if err != nil {
			return nil, err
		}
		return U64Value(v + t.Delta64), nil
	case TransformAddUInt256:
		cl, ok := current.(*CLValue)
		if !ok {
			return nil, fmt.Errorf("%w: cannot add u256 to value tag %d", ErrTypeMismatch, current.Tag())
		}
		v, err := cl.AsU256()
		if err != nil {
			return nil, err
		}
		return U256Value(new(uint256.Int).Add(v, t.Delta256)), nil
	default:
		return nil, fmt.Errorf("transform kind %d does not produce a value", t.Kind)
	}
}

// Effects is the ordered journal of transforms produced by an execution.
// Order is significant, commit replays it sequentially.
type Effects []Transform

func (e Effects) Append(t Transform) Effects {
	return append(e, t)
}

// Clone returns an independent copy of the journal.
func (e Effects) Clone() Effects {
	res := make(Effects, len(e))
	copy(res, e)
	return res
}
