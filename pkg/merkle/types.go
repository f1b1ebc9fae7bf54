package merkle

import "errors"

// Sentinel errors returned by tree construction and proof operations.
// Callers match them with errors.Is; call sites wrap them with context.
var (
	// ErrEmptyInput is returned when a tree is requested over zero records.
	// An empty tree has no root and is explicitly disallowed.
	ErrEmptyInput = errors.New("cannot build merkle tree from empty record list")

	// ErrTreeNotBuilt is returned when the root is requested before
	// construction has completed. Defensive only: BuildTree never returns
	// a tree in this state.
	ErrTreeNotBuilt = errors.New("merkle tree not built")

	// ErrInvalidIndex is returned when a proof is requested for a leaf
	// index outside [0, leaf count).
	ErrInvalidIndex = errors.New("leaf index out of bounds")

	// ErrMalformedProof is returned when an externally supplied proof
	// payload is missing required fields.
	ErrMalformedProof = errors.New("malformed merkle proof")
)

// Tree is a binary merkle tree built over an ordered list of record strings.
// All hashes are hex-encoded SHA-256 digests. The tree is immutable once
// built; callers rebuild from the full record set rather than updating in
// place.
type Tree struct {
	// Leaves contains the leaf hashes in input order. A leaf's position in
	// this slice is its permanent index for proof purposes.
	Leaves []string

	// levels stores all tree levels for proof generation.
	// levels[0] = leaves, levels[len-1] holds the single root node.
	levels [][]string

	root string
}

// Proof is an inclusion proof for a single leaf. The sibling hashes are
// ordered from the leaf level upward; together with the leaf hash and index
// they are sufficient to recompute the root without the full record set.
type Proof struct {
	// Siblings contains the sibling hashes from leaf to root.
	// Siblings[0] is the sibling of the leaf, the last entry is near the root.
	Siblings []string `json:"proof"`

	// Leaf is the hash of the leaf being proven.
	Leaf string `json:"leaf"`

	// Root is the root hash the proof was generated against.
	Root string `json:"root"`

	// Index is the leaf's position in the original record order.
	Index int `json:"index"`
}

// TreeInfo is a diagnostic summary of a built tree. It is not consulted by
// verification logic.
type TreeInfo struct {
	TotalLeaves int    `json:"total_leaves"`
	TreeDepth   int    `json:"tree_depth"`
	RootHash    string `json:"root_hash"`

	// Leaves holds at most the first 5 leaf hashes as a preview.
	Leaves []string `json:"leaves"`
}
