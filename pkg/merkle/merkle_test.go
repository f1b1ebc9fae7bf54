package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// createTestRecords creates n distinct record strings
func createTestRecords(n int) []string {
	records := make([]string, n)
	for i := 0; i < n; i++ {
		records[i] = fmt.Sprintf("record-%d:0xabc%d:1000:1700000000:0xdeadbeef%d", i, i, i)
	}
	return records
}

// sha256hex mirrors the engine's hash primitive for expected-value checks
func sha256hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// TestBuildTree tests tree construction and proof round-trips with various leaf counts
func TestBuildTree(t *testing.T) {
	testCases := []struct {
		name       string
		numRecords int
	}{
		{"Single record", 1},
		{"Two records", 2},
		{"Three records", 3},
		{"Four records (power of 2)", 4},
		{"Seven records", 7},
		{"Eight records (power of 2)", 8},
		{"Fifteen records", 15},
		{"Sixteen records (power of 2)", 16},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			records := createTestRecords(tc.numRecords)
			tree, err := BuildTree(records)
			require.NoError(t, err)
			require.NotNil(t, tree)

			require.Equal(t, tc.numRecords, len(tree.Leaves))

			root, err := tree.Root()
			require.NoError(t, err)
			require.NotEmpty(t, root)

			// Generate and verify proofs for all leaves
			for i := 0; i < tc.numRecords; i++ {
				proof, err := tree.GenerateProof(i)
				require.NoError(t, err)
				require.NotNil(t, proof)
				require.Equal(t, i, proof.Index)
				require.Equal(t, tree.Leaves[i], proof.Leaf)
				require.Equal(t, root, proof.Root)
				require.Equal(t, tree.Depth()-1, len(proof.Siblings))

				require.True(t, VerifyProof(proof), "Proof for leaf %d should be valid", i)
			}
		})
	}
}

// TestBuildTreeEmpty tests that building a tree from no records fails
func TestBuildTreeEmpty(t *testing.T) {
	tree, err := BuildTree([]string{})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrEmptyInput)
	require.Nil(t, tree)

	tree, err = BuildTree(nil)
	require.ErrorIs(t, err, ErrEmptyInput)
	require.Nil(t, tree)
}

// TestSingleLeafTree tests the degenerate one-record tree
func TestSingleLeafTree(t *testing.T) {
	records := []string{"only-record"}
	tree, err := BuildTree(records)
	require.NoError(t, err)

	root, err := tree.Root()
	require.NoError(t, err)

	// Root is the hash of the single leaf, depth is 1, proof is empty
	require.Equal(t, sha256hex("only-record"), root)
	require.Equal(t, 1, tree.Depth())

	proof, err := tree.GenerateProof(0)
	require.NoError(t, err)
	require.Empty(t, proof.Siblings)
	require.True(t, VerifyProof(proof))
}

// TestThreeLeafTree works through the odd-count carry rule by hand:
// level 1 is [hash(A+B), hash(C+C)], the root combines those two, and the
// proof for the dangling leaf C carries C's own hash as its first sibling.
func TestThreeLeafTree(t *testing.T) {
	records := []string{"A", "B", "C"}
	tree, err := BuildTree(records)
	require.NoError(t, err)

	leafA := sha256hex("A")
	leafB := sha256hex("B")
	leafC := sha256hex("C")

	hashAB := sha256hex(leafA + leafB)
	hashCC := sha256hex(leafC + leafC)
	expectedRoot := sha256hex(hashAB + hashCC)

	root, err := tree.Root()
	require.NoError(t, err)
	require.Equal(t, expectedRoot, root)
	require.Equal(t, 3, tree.Depth())

	proof, err := tree.GenerateProof(2)
	require.NoError(t, err)
	require.Equal(t, []string{leafC, hashAB}, proof.Siblings)
	require.Equal(t, leafC, proof.Leaf)
	require.True(t, VerifyProof(proof))
}

// TestProofVerification tests verification with valid and tampered proofs
func TestProofVerification(t *testing.T) {
	records := createTestRecords(4)
	tree, err := BuildTree(records)
	require.NoError(t, err)

	t.Run("Valid proof", func(t *testing.T) {
		proof, err := tree.GenerateProof(0)
		require.NoError(t, err)
		require.True(t, VerifyProof(proof))
	})

	t.Run("Nil proof", func(t *testing.T) {
		require.False(t, VerifyProof(nil))
	})

	t.Run("Tampered root", func(t *testing.T) {
		proof, err := tree.GenerateProof(0)
		require.NoError(t, err)

		proof.Root = flipHexChar(proof.Root)
		require.False(t, VerifyProof(proof))
	})

	t.Run("Tampered leaf", func(t *testing.T) {
		proof, err := tree.GenerateProof(1)
		require.NoError(t, err)

		proof.Leaf = flipHexChar(proof.Leaf)
		require.False(t, VerifyProof(proof))
	})

	t.Run("Tampered sibling", func(t *testing.T) {
		proof, err := tree.GenerateProof(2)
		require.NoError(t, err)
		require.NotEmpty(t, proof.Siblings)

		proof.Siblings[0] = flipHexChar(proof.Siblings[0])
		require.False(t, VerifyProof(proof))
	})

	t.Run("Tampered index", func(t *testing.T) {
		proof, err := tree.GenerateProof(2)
		require.NoError(t, err)

		proof.Index = 3
		require.False(t, VerifyProof(proof))
	})
}

// flipHexChar changes the first character of a hex string to a different hex digit
func flipHexChar(s string) string {
	if s == "" {
		return s
	}
	replacement := byte('0')
	if s[0] == '0' {
		replacement = '1'
	}
	return string(replacement) + s[1:]
}

// TestGenerateProofInvalidIndex tests out-of-bounds proof requests
func TestGenerateProofInvalidIndex(t *testing.T) {
	tree, err := BuildTree(createTestRecords(3))
	require.NoError(t, err)

	for _, index := range []int{-1, 3, 100} {
		proof, err := tree.GenerateProof(index)
		require.ErrorIs(t, err, ErrInvalidIndex, "index %d", index)
		require.Nil(t, proof)
	}
}

// TestTreeDeterminism tests that identical input always yields an identical root
func TestTreeDeterminism(t *testing.T) {
	records := createTestRecords(7)

	first, err := BuildTree(records)
	require.NoError(t, err)
	second, err := BuildTree(records)
	require.NoError(t, err)

	firstRoot, err := first.Root()
	require.NoError(t, err)
	secondRoot, err := second.Root()
	require.NoError(t, err)
	require.Equal(t, firstRoot, secondRoot)
}

// TestTreeOrderSensitivity tests that reordering records changes the root
func TestTreeOrderSensitivity(t *testing.T) {
	records := createTestRecords(4)
	reordered := []string{records[1], records[0], records[2], records[3]}

	original, err := BuildTree(records)
	require.NoError(t, err)
	swapped, err := BuildTree(reordered)
	require.NoError(t, err)

	originalRoot, err := original.Root()
	require.NoError(t, err)
	swappedRoot, err := swapped.Root()
	require.NoError(t, err)
	require.NotEqual(t, originalRoot, swappedRoot)
}

// TestProofValidate tests the malformed-payload checks
func TestProofValidate(t *testing.T) {
	valid := &Proof{
		Siblings: []string{"aa"},
		Leaf:     "bb",
		Root:     "cc",
		Index:    0,
	}
	require.NoError(t, valid.Validate())

	testCases := []struct {
		name  string
		proof *Proof
	}{
		{"Nil proof", nil},
		{"Missing leaf", &Proof{Root: "cc", Index: 0}},
		{"Missing root", &Proof{Leaf: "bb", Index: 0}},
		{"Negative index", &Proof{Leaf: "bb", Root: "cc", Index: -1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.proof.Validate()
			require.ErrorIs(t, err, ErrMalformedProof)
		})
	}

	// Empty sibling list is legal: single-leaf proofs have no siblings
	require.NoError(t, (&Proof{Leaf: "bb", Root: "cc", Index: 0}).Validate())
}

// TestTreeInfo tests the diagnostic summary
func TestTreeInfo(t *testing.T) {
	tree, err := BuildTree(createTestRecords(8))
	require.NoError(t, err)

	info := tree.Info()
	require.Equal(t, 8, info.TotalLeaves)
	require.Equal(t, 4, info.TreeDepth)
	require.Len(t, info.Leaves, 5)
	require.Equal(t, tree.Leaves[:5], info.Leaves)

	root, err := tree.Root()
	require.NoError(t, err)
	require.Equal(t, root, info.RootHash)

	// Small trees preview every leaf
	small, err := BuildTree(createTestRecords(2))
	require.NoError(t, err)
	require.Len(t, small.Info().Leaves, 2)
}

// TestRootNotBuilt tests the defensive zero-value check
func TestRootNotBuilt(t *testing.T) {
	var tree *Tree
	_, err := tree.Root()
	require.ErrorIs(t, err, ErrTreeNotBuilt)

	_, err = (&Tree{}).Root()
	require.ErrorIs(t, err, ErrTreeNotBuilt)
}
