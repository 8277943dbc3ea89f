package common

import (
	"bytes"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/blake2b"
)

// HashLength is the length of a Hash in bytes.
const HashLength = 32

// Hash is a 32-byte blake2b digest identifying trie nodes, bytecode,
// and chunked data in the global state.
type Hash [HashLength]byte

// EmptyHash is the all-zero hash. It is not the hash of any stored data.
var EmptyHash = Hash{}

var hasherPool = sync.Pool{New: func() any {
	h, _ := blake2b.New256(nil)
	return h
}}

// HashOf computes the blake2b-256 digest of the concatenation of the
// given byte slices.
func HashOf(data ...[]byte) Hash {
	hasher := hasherPool.Get().(hashState)
	hasher.Reset()
	for _, d := range data {
		hasher.Write(d)
	}
	var res Hash
	hasher.Sum(res[:0])
	hasherPool.Put(hasher)
	return res
}

type hashState interface {
	Reset()
	Write(in []byte) (int, error)
	Sum(out []byte) []byte
}

// HashFromBytes converts the given slice into a Hash. Slices longer than
// 32 bytes are truncated, shorter ones are zero-padded at the end.
func HashFromBytes(data []byte) Hash {
	var res Hash
	copy(res[:], data)
	return res
}

func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(data []byte) error {
	raw, err := hexutil.Decode(string(data))
	if err != nil {
		return err
	}
	if len(raw) != HashLength {
		return ErrInvalidHashLength
	}
	copy(h[:], raw)
	return nil
}

// ErrInvalidHashLength is reported when decoding text that does not hold
// exactly 32 bytes of hash data.
const ErrInvalidHashLength = ConstError("invalid hash length")

// Compare orders hashes lexicographically.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}
