package types

import (
	"bytes"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/meridian-network/meridian/common"
)

// ValueTag identifies the variant of a stored value. The values are part of
// the canonical encoding and must not be reordered.
type ValueTag uint8

const (
	ValueTagCLValue ValueTag = iota
	ValueTagAccount
	ValueTagContractV1
	ValueTagPackage
	ValueTagEntity
	ValueTagByteCode
	ValueTagMessageTopic
	ValueTagRawBytes

	maxValueTag
)

// StoredValue is the closed set of value shapes the global state can hold.
// Consumers dispatch on Tag, an unknown tag during decoding is an error,
// never a silent fallback.
type StoredValue interface {
	Tag() ValueTag
	encodeBody(e *Encoder)
}

// EncodeValue returns the canonical byte form of a stored value. Two values
// are equal exactly if their encodings are equal.
func EncodeValue(v StoredValue) []byte {
	e := NewEncoder()
	e.PutU8(uint8(v.Tag()))
	v.encodeBody(e)
	return e.Bytes()
}

// ValuesEqual compares two stored values by their canonical encoding.
func ValuesEqual(a, b StoredValue) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return bytes.Equal(EncodeValue(a), EncodeValue(b))
}

// DecodeValue parses a canonical value byte form produced by EncodeValue.
func DecodeValue(data []byte) (StoredValue, error) {
	d := NewDecoder(data)
	v := decodeValue(d)
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeValue(d *Decoder) StoredValue {
	tag := ValueTag(d.U8())
	if d.Err() != nil {
		return nil
	}
	switch tag {
	case ValueTagCLValue:
		return &CLValue{Type: CLType(d.U8()), Data: d.Bytes()}
	case ValueTagAccount:
		a := &Account{MainPurse: AddressFromBytes(d.Fixed(AddressLength))}
		count := d.U32()
		for i := uint32(0); i < count && d.Err() == nil; i++ {
			name := d.String()
			key, err := decodeKey(d)
			if err != nil {
				d.fail(err)
				break
			}
			a.NamedKeys = append(a.NamedKeys, NamedKeyEntry{Name: name, Key: key})
		}
		return a
	case ValueTagContractV1:
		c := &ContractV1{WasmHash: common.HashFromBytes(d.Fixed(common.HashLength))}
		count := d.U32()
		for i := uint32(0); i < count && d.Err() == nil; i++ {
			c.EntryPoints = append(c.EntryPoints, d.String())
		}
		return c
	case ValueTagPackage:
		p := &Package{}
		count := d.U32()
		for i := uint32(0); i < count && d.Err() == nil; i++ {
			p.Versions = append(p.Versions, PackageVersion{
				Number:   d.U32(),
				Entity:   AddressFromBytes(d.Fixed(AddressLength)),
				Disabled: d.Bool(),
			})
		}
		return p
	case ValueTagEntity:
		return &Entity{
			Kind:         EntityKind(d.U8()),
			Runtime:      RuntimeKind(d.U8()),
			Package:      AddressFromBytes(d.Fixed(AddressLength)),
			ByteCodeHash: common.HashFromBytes(d.Fixed(common.HashLength)),
			MainPurse:    AddressFromBytes(d.Fixed(AddressLength)),
		}
	case ValueTagByteCode:
		return &ByteCode{Kind: ByteCodeKind(d.U8()), Bytes: d.Bytes()}
	case ValueTagMessageTopic:
		return &MessageTopicSummary{MessageCount: d.U32(), BlockTime: d.U64()}
	case ValueTagRawBytes:
		return &RawBytes{Data: d.Bytes()}
	default:
		d.fail(fmt.Errorf("%w: value tag %d", ErrInvalidTag, tag))
		return nil
	}
}

// ---------------------------------------------------------------------------

// CLType is the simple type tag carried by a CLValue.
type CLType uint8

const (
	CLTypeUnit CLType = iota
	CLTypeU64
	CLTypeU256
	CLTypeString
	CLTypeAny
)

// CLValue is an opaque typed value, the workhorse variant holding balances,
// counters, and user data.
type CLValue struct {
	Type CLType
	Data []byte
}

func (v *CLValue) Tag() ValueTag { return ValueTagCLValue }

func (v *CLValue) encodeBody(e *Encoder) {
	e.PutU8(uint8(v.Type))
	e.PutBytes(v.Data)
}

// U64Value wraps a u64 into a CLValue.
func U64Value(v uint64) *CLValue {
	e := NewEncoder()
	e.PutU64(v)
	return &CLValue{Type: CLTypeU64, Data: e.Bytes()}
}

// AsU64 extracts a u64 from a CLValue of type U64.
func (v *CLValue) AsU64() (uint64, error) {
	if v.Type != CLTypeU64 {
		return 0, fmt.Errorf("%w: expected u64, got type %d", ErrTypeMismatch, v.Type)
	}
	d := NewDecoder(v.Data)
	res := d.U64()
	if err := d.Finish(); err != nil {
		return 0, err
	}
	return res, nil
}

// U256Value wraps an unsigned 256-bit integer into a CLValue. The data is
// the 32-byte little-endian form.
func U256Value(v *uint256.Int) *CLValue {
	data := make([]byte, 32)
	b := v.Bytes32()
	for i := range data {
		data[i] = b[31-i]
	}
	return &CLValue{Type: CLTypeU256, Data: data}
}

// AsU256 extracts an unsigned 256-bit integer from a CLValue of type U256.
func (v *CLValue) AsU256() (*uint256.Int, error) {
	if v.Type != CLTypeU256 {
		return nil, fmt.Errorf("%w: expected u256, got type %d", ErrTypeMismatch, v.Type)
	}
	if len(v.Data) != 32 {
		return nil, fmt.Errorf("%w: u256 payload has %d bytes", ErrTypeMismatch, len(v.Data))
	}
	var be [32]byte
	for i := range be {
		be[i] = v.Data[31-i]
	}
	return new(uint256.Int).SetBytes32(be[:]), nil
}

// StringValue wraps a string into a CLValue.
func StringValue(s string) *CLValue {
	e := NewEncoder()
	e.PutString(s)
	return &CLValue{Type: CLTypeString, Data: e.Bytes()}
}

// ErrTypeMismatch is reported when a CLValue holds a different type than the
// caller expects, or a transform is applied to an incompatible value.
const ErrTypeMismatch = common.ConstError("type mismatch")

// ---------------------------------------------------------------------------

// NamedKeyEntry associates a name with a key under an account or entity.
type NamedKeyEntry struct {
	Name string
	Key  Key
}

// Account is the stored form of a user account.
type Account struct {
	MainPurse Address
	NamedKeys []NamedKeyEntry
}

func (a *Account) Tag() ValueTag { return ValueTagAccount }

func (a *Account) encodeBody(e *Encoder) {
	e.PutFixed(a.MainPurse[:])
	e.PutU32(uint32(len(a.NamedKeys)))
	for _, nk := range a.NamedKeys {
		e.PutString(nk.Name)
		e.PutFixed(nk.Key.Bytes())
	}
}

// ContractV1 is a legacy contract addressed under a hash key, executed by
// the first-generation runtime.
type ContractV1 struct {
	WasmHash    common.Hash
	EntryPoints []string
}

func (c *ContractV1) Tag() ValueTag { return ValueTagContractV1 }

func (c *ContractV1) encodeBody(e *Encoder) {
	e.PutFixed(c.WasmHash[:])
	e.PutU32(uint32(len(c.EntryPoints)))
	for _, ep := range c.EntryPoints {
		e.PutString(ep)
	}
}

// HasEntryPoint reports whether the contract exports the named entry point.
func (c *ContractV1) HasEntryPoint(name string) bool {
	for _, ep := range c.EntryPoints {
		if ep == name {
			return true
		}
	}
	return false
}

// PackageVersion maps a version number to the entity implementing it.
type PackageVersion struct {
	Number   uint32
	Entity   Address
	Disabled bool
}

// Package is a versioned collection of entities sharing one contract
// identity.
type Package struct {
	Versions []PackageVersion
}

func (p *Package) Tag() ValueTag { return ValueTagPackage }

func (p *Package) encodeBody(e *Encoder) {
	e.PutU32(uint32(len(p.Versions)))
	for _, v := range p.Versions {
		e.PutU32(v.Number)
		e.PutFixed(v.Entity[:])
		e.PutBool(v.Disabled)
	}
}

// LatestEnabled returns the entity of the highest enabled version.
func (p *Package) LatestEnabled() (Address, bool) {
	found := false
	var best PackageVersion
	for _, v := range p.Versions {
		if v.Disabled {
			continue
		}
		if !found || v.Number > best.Number {
			best = v
			found = true
		}
	}
	return best.Entity, found
}

// RuntimeKind names the runtime an entity executes under.
type RuntimeKind uint8

const (
	RuntimeV1 RuntimeKind = iota
	RuntimeV2
)

// Entity is an addressable entity, the modern stored form of a contract or
// migrated account.
type Entity struct {
	Kind         EntityKind
	Runtime      RuntimeKind
	Package      Address
	ByteCodeHash common.Hash
	MainPurse    Address
}

func (en *Entity) Tag() ValueTag { return ValueTagEntity }

func (en *Entity) encodeBody(e *Encoder) {
	e.PutU8(uint8(en.Kind))
	e.PutU8(uint8(en.Runtime))
	e.PutFixed(en.Package[:])
	e.PutFixed(en.ByteCodeHash[:])
	e.PutFixed(en.MainPurse[:])
}

// ByteCode is a stored bytecode blob, addressed by the hash of its bytes.
type ByteCode struct {
	Kind  ByteCodeKind
	Bytes []byte
}

func (b *ByteCode) Tag() ValueTag { return ValueTagByteCode }

func (b *ByteCode) encodeBody(e *Encoder) {
	e.PutU8(uint8(b.Kind))
	e.PutBytes(b.Bytes)
}

// MessageTopicSummary tracks how many messages an entity emitted on a topic
// within the current block.
type MessageTopicSummary struct {
	MessageCount uint32
	BlockTime    uint64
}

func (m *MessageTopicSummary) Tag() ValueTag { return ValueTagMessageTopic }

func (m *MessageTopicSummary) encodeBody(e *Encoder) {
	e.PutU32(m.MessageCount)
	e.PutU64(m.BlockTime)
}

// RawBytes is an uninterpreted byte payload.
type RawBytes struct {
	Data []byte
}

func (r *RawBytes) Tag() ValueTag { return ValueTagRawBytes }

func (r *RawBytes) encodeBody(e *Encoder) {
	e.PutBytes(r.Data)
}
