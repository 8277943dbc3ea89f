package common

// This file provides a binary Merkle tree over a list of leaf hashes. It is
// used to authenticate individual chunks of large values fetched from the
// global state.
//
// Levels are built pairwise, hashing left||right. A trailing node without a
// sibling is carried up to the next level unchanged.

// MerkleRoot computes the root hash over the given leaf hashes. The root of
// an empty list is EmptyHash, the root of a single leaf is the leaf itself.
func MerkleRoot(leaves []Hash) Hash {
	if len(leaves) == 0 {
		return EmptyHash
	}
	level := make([]Hash, len(leaves))
	copy(level, leaves)
	for len(level) > 1 {
		next := level[:0:len(level)]
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, HashOf(level[i][:], level[i+1][:]))
			} else {
				next = append(next, level[i])
			}
		}
		level = next
	}
	return level[0]
}

// MerklePath collects the sibling hashes needed to recompute the root from
// the leaf at the given index, ordered from the leaf level up.
func MerklePath(leaves []Hash, index int) []Hash {
	if index < 0 || index >= len(leaves) {
		return nil
	}
	level := make([]Hash, len(leaves))
	copy(level, leaves)
	path := []Hash{}
	for len(level) > 1 {
		sibling := index ^ 1
		if sibling < len(level) {
			path = append(path, level[sibling])
		}
		next := level[:0:len(level)]
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, HashOf(level[i][:], level[i+1][:]))
			} else {
				next = append(next, level[i])
			}
		}
		level = next
		index /= 2
	}
	return path
}

// VerifyMerklePath recomputes the root from a leaf hash, its index, the
// total number of leaves, and the sibling path produced by MerklePath.
func VerifyMerklePath(leaf Hash, count, index int, path []Hash) (Hash, bool) {
	if count <= 0 || index < 0 || index >= count {
		return EmptyHash, false
	}
	current := leaf
	pos := 0
	for count > 1 {
		sibling := index ^ 1
		if sibling < count {
			if pos >= len(path) {
				return EmptyHash, false
			}
			if index%2 == 0 {
				current = HashOf(current[:], path[pos][:])
			} else {
				current = HashOf(path[pos][:], current[:])
			}
			pos++
		}
		count = (count + 1) / 2
		index /= 2
	}
	if pos != len(path) {
		return EmptyHash, false
	}
	return current, true
}
