package trie

import (
	"fmt"

	"github.com/meridian-network/meridian/common"
)

// ChunkSize is the maximum payload of a single chunk, 8 MiB.
const ChunkSize = 8 << 20

// ChunkWithProof is one chunk of a large value together with the Merkle
// path tying it to the value's chunk root. Values that fit a single chunk
// travel whole, the chunk root then equals the chunk's hash and the path
// is empty.
type ChunkWithProof struct {
	ChunkCount int
	Index      int
	Chunk      []byte
	Path       []common.Hash
}

// ChunkCountFor returns the number of chunks a value of the given size
// splits into. The empty value still occupies one (empty) chunk.
func ChunkCountFor(size int) int {
	if size <= ChunkSize {
		return 1
	}
	return (size + ChunkSize - 1) / ChunkSize
}

// chunkHashes computes the leaf hashes of all chunks of the data.
func chunkHashes(data []byte) []common.Hash {
	count := ChunkCountFor(len(data))
	res := make([]common.Hash, 0, count)
	for i := 0; i < count; i++ {
		res = append(res, common.HashOf(chunkAt(data, i)))
	}
	return res
}

func chunkAt(data []byte, index int) []byte {
	start := index * ChunkSize
	end := start + ChunkSize
	if end > len(data) {
		end = len(data)
	}
	return data[start:end]
}

// ChunkRoot computes the Merkle root over the chunk hashes of the data.
// This is the commitment a fetcher verifies individual chunks against.
func ChunkRoot(data []byte) common.Hash {
	return common.MerkleRoot(chunkHashes(data))
}

// ChunkValue extracts the chunk with the given index from the data,
// together with its Merkle path.
func ChunkValue(data []byte, index int) (ChunkWithProof, error) {
	count := ChunkCountFor(len(data))
	if index < 0 || index >= count {
		return ChunkWithProof{}, fmt.Errorf("chunk index %d out of range, value has %d chunks", index, count)
	}
	return ChunkWithProof{
		ChunkCount: count,
		Index:      index,
		Chunk:      chunkAt(data, index),
		Path:       common.MerklePath(chunkHashes(data), index),
	}, nil
}

// Verify reports whether the chunk belongs to a value with the given chunk
// root.
func (c *ChunkWithProof) Verify(root common.Hash) bool {
	got, ok := common.VerifyMerklePath(common.HashOf(c.Chunk), c.ChunkCount, c.Index, c.Path)
	return ok && got == root
}
