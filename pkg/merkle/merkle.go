package merkle

import (
	"fmt"
)

// BuildTree creates a binary merkle tree from an ordered list of record
// strings. Each record is hashed independently to form the leaf level, then
// levels are built bottom-up by pairwise combination until a single root
// remains.
//
// If a level has an odd number of nodes, the last node is paired with
// itself: parent = hash(node || node). Input order is preserved; the caller
// is responsible for supplying records in a deterministic order.
func BuildTree(records []string) (*Tree, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	// Hash all leaves
	leaves := make([]string, len(records))
	for i, record := range records {
		leaves[i] = Hash(record)
	}

	// Build tree levels bottom-up
	levels := make([][]string, 0)
	levels = append(levels, leaves)

	currentLevel := leaves
	for len(currentLevel) > 1 {
		nextLevel := make([]string, 0, (len(currentLevel)+1)/2)

		for i := 0; i < len(currentLevel); i += 2 {
			left := currentLevel[i]

			// If odd number of nodes, duplicate the last one
			right := left
			if i+1 < len(currentLevel) {
				right = currentLevel[i+1]
			}

			nextLevel = append(nextLevel, hashPair(left, right))
		}

		levels = append(levels, nextLevel)
		currentLevel = nextLevel
	}

	if len(currentLevel) != 1 {
		return nil, fmt.Errorf("merkle tree construction failed: final level has %d nodes instead of 1", len(currentLevel))
	}

	return &Tree{
		Leaves: leaves,
		levels: levels,
		root:   currentLevel[0],
	}, nil
}

// Root returns the root hash of the tree.
func (t *Tree) Root() (string, error) {
	if t == nil || t.root == "" {
		return "", ErrTreeNotBuilt
	}
	return t.root, nil
}

// Depth returns the number of levels in the tree, including the leaf level
// and the root level.
func (t *Tree) Depth() int {
	return len(t.levels)
}

// GenerateProof creates an inclusion proof for the leaf at the given index.
// The proof consists of sibling hashes along the path from leaf to root.
//
// A node with no distinct sibling at some level (the dangling node of an
// odd-count level) contributes its own hash as the sibling, mirroring the
// self-pairing used during construction, so verification replays the exact
// combine sequence.
func (t *Tree) GenerateProof(leafIndex int) (*Proof, error) {
	if leafIndex < 0 || leafIndex >= len(t.Leaves) {
		return nil, fmt.Errorf("%w: index %d, tree has %d leaves", ErrInvalidIndex, leafIndex, len(t.Leaves))
	}

	root, err := t.Root()
	if err != nil {
		return nil, err
	}

	siblings := make([]string, 0, len(t.levels)-1)
	index := leafIndex

	// Traverse from leaf to root, collecting sibling hashes
	for level := 0; level < len(t.levels)-1; level++ {
		currentLevel := t.levels[level]

		var siblingIndex int
		if index%2 == 0 {
			// Node is on the left, sibling is on the right
			siblingIndex = index + 1
		} else {
			// Node is on the right, sibling is on the left
			siblingIndex = index - 1
		}

		// Dangling node at an odd-count level pairs with itself
		if siblingIndex >= len(currentLevel) {
			siblingIndex = index
		}

		siblings = append(siblings, currentLevel[siblingIndex])

		// Move to parent index in next level
		index = index / 2
	}

	return &Proof{
		Siblings: siblings,
		Leaf:     t.Leaves[leafIndex],
		Root:     root,
		Index:    leafIndex,
	}, nil
}

// VerifyProof recomputes the root from the proof's leaf hash, index and
// sibling path, and reports whether it matches the proof's claimed root.
//
// This is a pure function with no external state: left/right combine order
// at each level is derived from the index parity alone, so identical proof
// contents always produce the same result.
func VerifyProof(proof *Proof) bool {
	if proof == nil {
		return false
	}

	currentHash := proof.Leaf
	index := proof.Index

	for _, sibling := range proof.Siblings {
		if index%2 == 0 {
			// Current node is on the left, sibling is on the right
			currentHash = hashPair(currentHash, sibling)
		} else {
			// Current node is on the right, sibling is on the left
			currentHash = hashPair(sibling, currentHash)
		}

		index = index / 2
	}

	return currentHash == proof.Root
}

// Validate checks that an externally supplied proof carries all required
// fields. It is called before verification is attempted so that a
// structurally broken payload is reported as malformed rather than as a
// failed verification.
func (p *Proof) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: proof is nil", ErrMalformedProof)
	}
	if p.Leaf == "" {
		return fmt.Errorf("%w: missing leaf hash", ErrMalformedProof)
	}
	if p.Root == "" {
		return fmt.Errorf("%w: missing root hash", ErrMalformedProof)
	}
	if p.Index < 0 {
		return fmt.Errorf("%w: negative leaf index %d", ErrMalformedProof, p.Index)
	}
	return nil
}

// Info returns a diagnostic summary of the tree: leaf count, depth, root
// hash, and a preview of the first 5 leaf hashes.
func (t *Tree) Info() TreeInfo {
	preview := t.Leaves
	if len(preview) > 5 {
		preview = preview[:5]
	}

	return TreeInfo{
		TotalLeaves: len(t.Leaves),
		TreeDepth:   len(t.levels),
		RootHash:    t.root,
		Leaves:      append([]string{}, preview...),
	}
}
