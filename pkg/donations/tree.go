// Package donations maps donation records onto the merkle tree engine:
// canonical leaf serialization, proof lookup by donation ID, and end-to-end
// inclusion verification against a charity's live confirmed donation set.
package donations

import (
	"fmt"

	"github.com/kushal2060/charity-ledger-go/pkg/merkle"
	"github.com/kushal2060/charity-ledger-go/pkg/types"
)

// CanonicalString returns the canonical leaf string for a donation:
// id, donor address, amount, Unix creation timestamp and transaction hash,
// colon-delimited in that order. Proof generation and verification both hash
// this exact string, so it must stay byte-identical for the life of the
// record; any later mutation of these fields changes the leaf hash.
func CanonicalString(d *types.Donation) string {
	return fmt.Sprintf("%s:%s:%s:%d:%s", d.ID, d.DonorAddress, d.Amount, d.CreatedAt.Unix(), d.TxHash)
}

// DonationHash returns the canonical leaf hash for a single donation.
func DonationHash(d *types.Donation) string {
	return merkle.Hash(CanonicalString(d))
}

// Tree pairs a merkle tree with the ordered donation set it was built from,
// so proofs can be generated by donation ID rather than leaf index.
type Tree struct {
	merkle    *merkle.Tree
	donations []*types.Donation
}

// BuildTree builds a merkle tree over the donations in the given order.
// The caller supplies the order (creation time for charity trees); it is
// preserved as the permanent leaf order.
func BuildTree(donations []*types.Donation) (*Tree, error) {
	records := make([]string, len(donations))
	for i, d := range donations {
		records[i] = CanonicalString(d)
	}

	tree, err := merkle.BuildTree(records)
	if err != nil {
		return nil, err
	}

	return &Tree{
		merkle:    tree,
		donations: donations,
	}, nil
}

// Root returns the tree's root hash.
func (t *Tree) Root() (string, error) {
	return t.merkle.Root()
}

// Info returns the underlying tree's diagnostic summary.
func (t *Tree) Info() merkle.TreeInfo {
	return t.merkle.Info()
}

// Donations returns the ordered donation set the tree was built from.
func (t *Tree) Donations() []*types.Donation {
	return t.donations
}

// GenerateProof creates an inclusion proof for the donation with the given
// ID. The second return value is false when the donation is not part of the
// tree; that is a soft miss, not an error.
func (t *Tree) GenerateProof(donationID string) (*merkle.Proof, bool, error) {
	for i, d := range t.donations {
		if d.ID == donationID {
			proof, err := t.merkle.GenerateProof(i)
			if err != nil {
				return nil, false, err
			}
			return proof, true, nil
		}
	}
	return nil, false, nil
}

// ProofFromPayload converts an externally supplied proof payload into a
// proof after checking that all required fields are present. Missing fields
// surface as a wrapped merkle.ErrMalformedProof before any verification is
// attempted.
func ProofFromPayload(payload *types.ProofPayload) (*merkle.Proof, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: payload is nil", merkle.ErrMalformedProof)
	}
	if payload.Index == nil {
		return nil, fmt.Errorf("%w: missing leaf index", merkle.ErrMalformedProof)
	}

	proof := &merkle.Proof{
		Siblings: payload.Proof,
		Leaf:     payload.Leaf,
		Root:     payload.Root,
		Index:    *payload.Index,
	}
	if err := proof.Validate(); err != nil {
		return nil, err
	}

	return proof, nil
}
