package persistence

import "github.com/kushal2060/charity-ledger-go/pkg/types"

// DonationFilter narrows ListDonations results. Zero-value fields are
// ignored.
type DonationFilter struct {
	CharityID    string
	DonorAddress string
}

// IDonationStore defines the interface for persisting charities and
// donations. All implementations must be thread-safe: the HTTP layer serves
// requests concurrently.
//
// Lookups return (nil, nil) when the entity does not exist; errors are
// reserved for storage failures.
type IDonationStore interface {
	// Charity Management

	// SaveCharity persists a charity, overwriting any existing entry with
	// the same ID. Used for both creation and field updates.
	SaveCharity(charity *types.Charity) error

	// GetCharity retrieves a charity by ID.
	// Returns nil if the charity doesn't exist, error only on storage failure.
	GetCharity(id string) (*types.Charity, error)

	// ListCharities returns all charities sorted by creation time (ascending).
	// Returns empty slice if none exist, error only on storage failure.
	ListCharities() ([]*types.Charity, error)

	// Donation Management

	// SaveDonation persists a donation, overwriting any existing entry with
	// the same ID. The tx-hash index is updated alongside.
	SaveDonation(donation *types.Donation) error

	// GetDonation retrieves a donation by ID.
	// Returns nil if the donation doesn't exist, error only on storage failure.
	GetDonation(id string) (*types.Donation, error)

	// GetDonationByTxHash retrieves a donation by its transaction hash.
	// Returns nil if no donation carries the hash, error only on storage failure.
	// Used to reject duplicate donation submissions.
	GetDonationByTxHash(txHash string) (*types.Donation, error)

	// ListDonations returns donations matching the filter, sorted by
	// creation time (ascending). A nil filter matches everything.
	ListDonations(filter *DonationFilter) ([]*types.Donation, error)

	// ListConfirmedDonations returns the charity's confirmed donations in
	// creation-time order. This is the ordered sequence merkle trees are
	// built from, so the ordering must be stable across calls.
	ListConfirmedDonations(charityID string) ([]*types.Donation, error)

	// Lifecycle Management

	// Close cleanly shuts down the store.
	// Idempotent - safe to call multiple times.
	// After Close(), all other operations should return errors.
	Close() error

	// HealthCheck verifies the store is operational.
	// Returns nil if healthy, error describing the problem if not.
	// Called during server startup to fail fast.
	HealthCheck() error
}
