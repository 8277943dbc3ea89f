package types

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AddressLength is the length of all global-state addresses in bytes.
const AddressLength = 32

// Address is a 32-byte address of an account, purse, entity, or package.
type Address [AddressLength]byte

func AddressFromBytes(data []byte) Address {
	var res Address
	copy(res[:], data)
	return res
}

func (a Address) String() string {
	return hexutil.Encode(a[:])
}

// KeyTag identifies the space a key lives in. The values are part of the
// canonical encoding and must not be reordered.
type KeyTag uint8

const (
	KeyTagAccount KeyTag = iota
	KeyTagHash
	KeyTagURef
	KeyTagBalance
	KeyTagSmartContract
	KeyTagAddressableEntity
	KeyTagByteCode
	KeyTagNamedKey
	KeyTagMessage
	KeyTagBidAddr

	maxKeyTag
)

// EntityKind distinguishes the flavors of addressable entities.
type EntityKind uint8

const (
	EntityKindSystem EntityKind = iota
	EntityKindAccount
	EntityKindContract
)

// ByteCodeKind names the runtime a stored bytecode blob targets.
type ByteCodeKind uint8

const (
	ByteCodeKindV1Wasm ByteCodeKind = iota
	ByteCodeKindV2Wasm
)

// Key addresses a single stored value in the global state. Keys are plain
// comparable values, usable as map keys. The zero Key is the account key of
// the zero address.
//
// Kind carries the EntityKind or ByteCodeKind for the tags that have one,
// Extra carries the name digest of a named key or the topic digest of a
// message key. Both are zero for all other tags.
type Key struct {
	Tag     KeyTag
	Kind    uint8
	Address Address
	Extra   [32]byte
}

func AccountKey(addr Address) Key {
	return Key{Tag: KeyTagAccount, Address: addr}
}

// HashKey addresses legacy (pre-entity) contracts and contract packages.
func HashKey(addr Address) Key {
	return Key{Tag: KeyTagHash, Address: addr}
}

func URefKey(addr Address) Key {
	return Key{Tag: KeyTagURef, Address: addr}
}

// BalanceKey addresses the balance of the purse with the given address.
func BalanceKey(purse Address) Key {
	return Key{Tag: KeyTagBalance, Address: purse}
}

func SmartContractKey(addr Address) Key {
	return Key{Tag: KeyTagSmartContract, Address: addr}
}

func EntityKey(kind EntityKind, addr Address) Key {
	return Key{Tag: KeyTagAddressableEntity, Kind: uint8(kind), Address: addr}
}

func ByteCodeKey(kind ByteCodeKind, addr Address) Key {
	return Key{Tag: KeyTagByteCode, Kind: uint8(kind), Address: addr}
}

func NamedKeyKey(entity Address, nameDigest [32]byte) Key {
	return Key{Tag: KeyTagNamedKey, Address: entity, Extra: nameDigest}
}

func MessageKey(entity Address, topicDigest [32]byte) Key {
	return Key{Tag: KeyTagMessage, Address: entity, Extra: topicDigest}
}

func BidAddrKey(addr Address) Key {
	return Key{Tag: KeyTagBidAddr, Address: addr}
}

// hasKind reports whether the tag's encoding carries a kind byte.
func (t KeyTag) hasKind() bool {
	return t == KeyTagAddressableEntity || t == KeyTagByteCode
}

// hasExtra reports whether the tag's encoding carries a second digest.
func (t KeyTag) hasExtra() bool {
	return t == KeyTagNamedKey || t == KeyTagMessage
}

// Bytes returns the canonical byte form of the key. This form is the key's
// path in the state trie and the sort key for pending mutations.
func (k Key) Bytes() []byte {
	e := NewEncoder()
	e.PutU8(uint8(k.Tag))
	if k.Tag.hasKind() {
		e.PutU8(k.Kind)
	}
	e.PutFixed(k.Address[:])
	if k.Tag.hasExtra() {
		e.PutFixed(k.Extra[:])
	}
	return e.Bytes()
}

// DecodeKey parses a canonical key byte form produced by Bytes.
func DecodeKey(data []byte) (Key, error) {
	d := NewDecoder(data)
	k, err := decodeKey(d)
	if err != nil {
		return Key{}, err
	}
	if err := d.Finish(); err != nil {
		return Key{}, err
	}
	return k, nil
}

func decodeKey(d *Decoder) (Key, error) {
	tag := KeyTag(d.U8())
	if d.Err() == nil && tag >= maxKeyTag {
		return Key{}, fmt.Errorf("%w: key tag %d", ErrInvalidTag, tag)
	}
	k := Key{Tag: tag}
	if tag.hasKind() {
		k.Kind = d.U8()
	}
	copy(k.Address[:], d.Fixed(AddressLength))
	if tag.hasExtra() {
		copy(k.Extra[:], d.Fixed(32))
	}
	return k, d.Err()
}

// PrefixByTag is the common prefix of the byte forms of all keys with the
// given tag.
func PrefixByTag(tag KeyTag) []byte {
	return []byte{uint8(tag)}
}

// MessagePrefix is the common prefix of all message keys of one entity.
func MessagePrefix(entity Address) []byte {
	res := []byte{uint8(KeyTagMessage)}
	return append(res, entity[:]...)
}

func (k Key) Equal(other Key) bool {
	return k == other
}

// Compare orders keys by their canonical byte form.
func (k Key) Compare(other Key) int {
	return bytes.Compare(k.Bytes(), other.Bytes())
}

func (k Key) String() string {
	switch k.Tag {
	case KeyTagAccount:
		return fmt.Sprintf("account-%s", k.Address)
	case KeyTagHash:
		return fmt.Sprintf("hash-%s", k.Address)
	case KeyTagURef:
		return fmt.Sprintf("uref-%s", k.Address)
	case KeyTagBalance:
		return fmt.Sprintf("balance-%s", k.Address)
	case KeyTagSmartContract:
		return fmt.Sprintf("contract-%s", k.Address)
	case KeyTagAddressableEntity:
		return fmt.Sprintf("entity-%d-%s", k.Kind, k.Address)
	case KeyTagByteCode:
		return fmt.Sprintf("bytecode-%d-%s", k.Kind, k.Address)
	case KeyTagNamedKey:
		return fmt.Sprintf("named-key-%s-%s", k.Address, hexutil.Encode(k.Extra[:]))
	case KeyTagMessage:
		return fmt.Sprintf("message-%s-%s", k.Address, hexutil.Encode(k.Extra[:]))
	case KeyTagBidAddr:
		return fmt.Sprintf("bid-addr-%s", k.Address)
	default:
		return fmt.Sprintf("key-%d-%s", k.Tag, k.Address)
	}
}
