package types

import (
	"bytes"
	"errors"
	"testing"
)

func testAddress(fill byte) Address {
	var a Address
	for i := range a {
		a[i] = fill
	}
	return a
}

func TestKey_BytesRoundTrip(t *testing.T) {
	digest := [32]byte{1, 2, 3}
	keys := []Key{
		AccountKey(testAddress(1)),
		HashKey(testAddress(2)),
		URefKey(testAddress(3)),
		BalanceKey(testAddress(4)),
		SmartContractKey(testAddress(5)),
		EntityKey(EntityKindContract, testAddress(6)),
		ByteCodeKey(ByteCodeKindV2Wasm, testAddress(7)),
		NamedKeyKey(testAddress(8), digest),
		MessageKey(testAddress(9), digest),
		BidAddrKey(testAddress(10)),
	}
	for _, key := range keys {
		restored, err := DecodeKey(key.Bytes())
		if err != nil {
			t.Fatalf("failed to decode %v: %v", key, err)
		}
		if restored != key {
			t.Errorf("round trip changed %v to %v", key, restored)
		}
	}
}

func TestKey_BytesAreUniquePerTag(t *testing.T) {
	addr := testAddress(1)
	seen := map[string]Key{}
	for _, key := range []Key{
		AccountKey(addr), HashKey(addr), URefKey(addr), BalanceKey(addr),
		SmartContractKey(addr), EntityKey(EntityKindAccount, addr),
		ByteCodeKey(ByteCodeKindV1Wasm, addr), BidAddrKey(addr),
	} {
		form := string(key.Bytes())
		if prev, found := seen[form]; found {
			t.Errorf("keys %v and %v share the byte form", prev, key)
		}
		seen[form] = key
	}
}

func TestKey_KindIsPartOfTheByteForm(t *testing.T) {
	addr := testAddress(1)
	a := EntityKey(EntityKindAccount, addr)
	b := EntityKey(EntityKindContract, addr)
	if bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Errorf("entity kind not reflected in the byte form")
	}
}

func TestDecodeKey_RejectsUnknownTag(t *testing.T) {
	data := append([]byte{200}, make([]byte, AddressLength)...)
	if _, err := DecodeKey(data); !errors.Is(err, ErrInvalidTag) {
		t.Errorf("expected invalid-tag error, got %v", err)
	}
}

func TestDecodeKey_RejectsTruncatedInput(t *testing.T) {
	full := BalanceKey(testAddress(3)).Bytes()
	if _, err := DecodeKey(full[:10]); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("expected unexpected-EOF, got %v", err)
	}
}

func TestDecodeKey_RejectsTrailingBytes(t *testing.T) {
	data := append(AccountKey(testAddress(1)).Bytes(), 0)
	if _, err := DecodeKey(data); !errors.Is(err, ErrTrailingBytes) {
		t.Errorf("expected trailing-bytes error, got %v", err)
	}
}

func TestMessagePrefix_CoversAllTopicsOfAnEntity(t *testing.T) {
	entity := testAddress(5)
	prefix := MessagePrefix(entity)
	key := MessageKey(entity, [32]byte{9})
	if !bytes.HasPrefix(key.Bytes(), prefix) {
		t.Errorf("message key %v does not start with the entity prefix", key)
	}
	other := MessageKey(testAddress(6), [32]byte{9})
	if bytes.HasPrefix(other.Bytes(), prefix) {
		t.Errorf("prefix matches messages of a different entity")
	}
}

func TestKey_CompareFollowsByteForm(t *testing.T) {
	a := AccountKey(testAddress(1))
	b := HashKey(testAddress(0))
	if a.Compare(b) >= 0 {
		t.Errorf("account keys must order before hash keys")
	}
	if a.Compare(a) != 0 {
		t.Errorf("key does not compare equal to itself")
	}
}
