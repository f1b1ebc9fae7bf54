package donations

import (
	"time"

	"github.com/pkg/errors"

	"github.com/kushal2060/charity-ledger-go/pkg/merkle"
	"github.com/kushal2060/charity-ledger-go/pkg/persistence"
)

// Result reports the outcome of end-to-end inclusion verification.
// Verified is the AND of the two independent checks: the proof recomputes
// its own claimed root, and that claimed root matches the charity's current
// tree. A structurally valid proof against a stale root yields
// ProofValid=true, RootMatches=false, Verified=false.
type Result struct {
	Verified     bool             `json:"verified"`
	ProofValid   bool             `json:"proof_valid"`
	RootMatches  bool             `json:"root_matches"`
	CurrentRoot  string           `json:"current_root,omitempty"`
	ProvidedRoot string           `json:"provided_root,omitempty"`
	TreeInfo     *merkle.TreeInfo `json:"tree_info,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// CharityMerkleInfo summarizes a charity's current merkle commitment.
type CharityMerkleInfo struct {
	RootHash        string     `json:"root_hash,omitempty"`
	TotalDonations  int        `json:"total_donations,omitempty"`
	TreeDepth       int        `json:"tree_depth,omitempty"`
	FirstDonationAt *time.Time `json:"created_at,omitempty"`
	Error           string     `json:"error,omitempty"`
}

// BuildCharityTree loads the confirmed donations for a charity in creation
// order and builds their merkle tree. Returns (nil, nil) when the charity
// has no confirmed donations; the tree is rebuilt from scratch on every call
// rather than cached.
func BuildCharityTree(store persistence.IDonationStore, charityID string) (*Tree, error) {
	confirmed, err := store.ListConfirmedDonations(charityID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load confirmed donations")
	}
	if len(confirmed) == 0 {
		return nil, nil
	}

	return BuildTree(confirmed)
}

// VerifyInclusion runs the full two-part verification of a supplied proof
// against a charity's current confirmed donation set: (a) rebuild the
// current tree, (b) statically verify the proof in isolation, (c) compare
// the proof's claimed root against the freshly computed root.
//
// Library-level failures are converted into soft results: a charity with no
// confirmed donations produces a Result carrying an error message, never a
// panic or exception across the boundary. Errors are returned only for
// storage failures.
func VerifyInclusion(store persistence.IDonationStore, charityID string, proof *merkle.Proof) (*Result, error) {
	tree, err := BuildCharityTree(store, charityID)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return &Result{
			Verified: false,
			Error:    "no donations found for this charity",
		}, nil
	}

	currentRoot, err := tree.Root()
	if err != nil {
		return nil, err
	}

	proofValid := merkle.VerifyProof(proof)
	rootMatches := proof.Root == currentRoot

	info := tree.Info()

	return &Result{
		Verified:     proofValid && rootMatches,
		ProofValid:   proofValid,
		RootMatches:  rootMatches,
		CurrentRoot:  currentRoot,
		ProvidedRoot: proof.Root,
		TreeInfo:     &info,
	}, nil
}

// MerkleInfo returns the current merkle commitment summary for a charity.
// A charity with no confirmed donations yields an info object carrying an
// error message instead of tree data.
func MerkleInfo(store persistence.IDonationStore, charityID string) (*CharityMerkleInfo, error) {
	tree, err := BuildCharityTree(store, charityID)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return &CharityMerkleInfo{Error: "no donations found"}, nil
	}

	root, err := tree.Root()
	if err != nil {
		return nil, err
	}

	donationsList := tree.Donations()
	firstDonationAt := donationsList[0].CreatedAt

	return &CharityMerkleInfo{
		RootHash:        root,
		TotalDonations:  len(donationsList),
		TreeDepth:       tree.Info().TreeDepth,
		FirstDonationAt: &firstDonationAt,
	}, nil
}
