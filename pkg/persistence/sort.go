package persistence

import (
	"sort"

	"github.com/kushal2060/charity-ledger-go/pkg/types"
)

// SortDonationsByCreation sorts donations in place by creation time
// (ascending), with ID as the tiebreak so equal timestamps still produce a
// stable order. Merkle trees are built over this order, so every backend
// must sort the same way.
func SortDonationsByCreation(donations []*types.Donation) {
	sort.Slice(donations, func(i, j int) bool {
		if !donations[i].CreatedAt.Equal(donations[j].CreatedAt) {
			return donations[i].CreatedAt.Before(donations[j].CreatedAt)
		}
		return donations[i].ID < donations[j].ID
	})
}

// SortCharitiesByCreation sorts charities in place by creation time
// (ascending), with ID as the tiebreak.
func SortCharitiesByCreation(charities []*types.Charity) {
	sort.Slice(charities, func(i, j int) bool {
		if !charities[i].CreatedAt.Equal(charities[j].CreatedAt) {
			return charities[i].CreatedAt.Before(charities[j].CreatedAt)
		}
		return charities[i].ID < charities[j].ID
	})
}
