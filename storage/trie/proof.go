package trie

import (
	"bytes"
	"errors"

	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/storage/kvstore"
)

// ProofStepKind names the node shape a proof step stands for.
type ProofStepKind uint8

const (
	// BranchStep is a branch with a hole where the proven subtree hangs.
	BranchStep ProofStepKind = iota
	// ExtensionStep is an extension above the proven subtree.
	ExtensionStep
)

// ProofStep is one node on the path from the proven leaf to the root, with
// the position of the proven subtree left open.
type ProofStep struct {
	Kind ProofStepKind

	// branch step: the hole's index and the remaining children
	HoleIndex byte
	Children  []ChildEntry

	// extension step
	Affix []byte
}

// Proof is a Merkle proof that Key holds Value under some root. The steps
// are ordered from the leaf up. Folding the leaf hash through the steps
// recomputes the root the proof belongs to, so a proof verifies against
// exactly one root.
type Proof[K, V any] struct {
	Key   K
	Value V
	Steps []ProofStep
}

// ReadWithProof looks up the value stored under the key and, if found,
// returns the Merkle proof tying it to the given root.
func (s *Store[K, V]) ReadWithProof(txn kvstore.Reader, root common.Hash, key K) (ReadResult[V], *Proof[K, V], error) {
	path := s.encodeKey(key)
	current, err := s.getNode(txn, root)
	if errors.Is(err, kvstore.ErrNotFound) {
		return ReadResult[V]{Kind: ReadRootNotFound}, nil, nil
	}
	if err != nil {
		return ReadResult[V]{}, nil, err
	}
	var steps []ProofStep
	depth := 0
	for {
		switch current.kind {
		case leafNode:
			if !bytes.Equal(s.encodeKey(current.key), path) {
				return ReadResult[V]{Kind: ReadNotFound}, nil, nil
			}
			// steps were collected root-down, the proof wants them leaf-up
			for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
				steps[i], steps[j] = steps[j], steps[i]
			}
			proof := &Proof[K, V]{Key: current.key, Value: current.value, Steps: steps}
			return ReadResult[V]{Kind: ReadFound, Value: current.value}, proof, nil
		case extensionNode:
			rest := path[depth:]
			if !bytes.HasPrefix(rest, current.affix) {
				return ReadResult[V]{Kind: ReadNotFound}, nil, nil
			}
			steps = append(steps, ProofStep{Kind: ExtensionStep, Affix: current.affix})
			depth += len(current.affix)
			current, err = s.getExisting(txn, current.pointer.Hash)
			if err != nil {
				return ReadResult[V]{}, nil, err
			}
		case branchNode:
			if depth >= len(path) {
				return ReadResult[V]{Kind: ReadNotFound}, nil, nil
			}
			index := path[depth]
			pointer, found := current.child(index)
			if !found {
				return ReadResult[V]{Kind: ReadNotFound}, nil, nil
			}
			steps = append(steps, ProofStep{
				Kind:      BranchStep,
				HoleIndex: index,
				Children:  withChild(current.children, index, Pointer{}, false),
			})
			depth++
			current, err = s.getExisting(txn, pointer.Hash)
			if err != nil {
				return ReadResult[V]{}, nil, err
			}
		}
	}
}

// ComputeProofRoot folds the proof's leaf hash through its steps and
// returns the root hash the proof commits to.
func (s *Store[K, V]) ComputeProofRoot(proof *Proof[K, V]) common.Hash {
	leaf := newLeaf[K, V](proof.Key, proof.Value)
	current := common.HashOf(leaf.encode(s.keys, s.values))
	kind := LeafPointer
	for _, step := range proof.Steps {
		pointer := Pointer{Kind: kind, Hash: current}
		switch step.Kind {
		case BranchStep:
			branch := newBranch[K, V](withChild(step.Children, step.HoleIndex, pointer, true))
			current = common.HashOf(branch.encode(s.keys, s.values))
		case ExtensionStep:
			extension := newExtension[K, V](step.Affix, pointer)
			current = common.HashOf(extension.encode(s.keys, s.values))
		}
		kind = NodePointer
	}
	return current
}

// VerifyProof reports whether the proof commits to the given trusted root.
func (s *Store[K, V]) VerifyProof(proof *Proof[K, V], root common.Hash) bool {
	return s.ComputeProofRoot(proof) == root
}
