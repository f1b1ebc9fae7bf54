package memory

import (
	"fmt"
	"sync"

	"github.com/kushal2060/charity-ledger-go/pkg/persistence"
	"github.com/kushal2060/charity-ledger-go/pkg/types"
)

// MemoryStore is an in-memory implementation of IDonationStore.
// This implementation is intended for TESTING ONLY.
//
// All data is stored in memory and will be lost when the process exits.
// Thread-safe using sync.RWMutex for concurrent access.
// Deep copies data to prevent external mutation.
type MemoryStore struct {
	mu sync.RWMutex

	// Charity storage: id -> Charity
	charities map[string]*types.Charity

	// Donation storage: id -> Donation
	donations map[string]*types.Donation

	// Secondary index: tx hash -> donation id
	txIndex map[string]string

	// Closed flag
	closed bool
}

var _ persistence.IDonationStore = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory store.
// Prints a loud warning since this should only be used for testing.
func NewMemoryStore() *MemoryStore {
	fmt.Println("⚠️  WARNING: Using in-memory persistence - ALL DATA WILL BE LOST ON RESTART")
	fmt.Println("⚠️  This should ONLY be used for testing. Set CHARITY_PERSISTENCE_TYPE=badger for production")

	return &MemoryStore{
		charities: make(map[string]*types.Charity),
		donations: make(map[string]*types.Donation),
		txIndex:   make(map[string]string),
	}
}

// SaveCharity persists a charity.
func (m *MemoryStore) SaveCharity(charity *types.Charity) error {
	if charity == nil {
		return fmt.Errorf("cannot save nil Charity")
	}
	if charity.ID == "" {
		return fmt.Errorf("cannot save Charity with empty ID")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("store is closed")
	}

	m.charities[charity.ID] = copyCharity(charity)
	return nil
}

// GetCharity retrieves a charity by ID.
func (m *MemoryStore) GetCharity(id string) (*types.Charity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("store is closed")
	}

	charity, exists := m.charities[id]
	if !exists {
		return nil, nil // Not found is not an error
	}

	return copyCharity(charity), nil
}

// ListCharities returns all charities sorted by creation time.
func (m *MemoryStore) ListCharities() ([]*types.Charity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("store is closed")
	}

	result := make([]*types.Charity, 0, len(m.charities))
	for _, charity := range m.charities {
		result = append(result, copyCharity(charity))
	}

	persistence.SortCharitiesByCreation(result)
	return result, nil
}

// SaveDonation persists a donation and maintains the tx-hash index.
func (m *MemoryStore) SaveDonation(donation *types.Donation) error {
	if donation == nil {
		return fmt.Errorf("cannot save nil Donation")
	}
	if donation.ID == "" {
		return fmt.Errorf("cannot save Donation with empty ID")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("store is closed")
	}

	// Drop the tx-hash index entry of a previous version if the hash changed
	if existing, ok := m.donations[donation.ID]; ok && existing.TxHash != donation.TxHash {
		delete(m.txIndex, existing.TxHash)
	}

	m.donations[donation.ID] = copyDonation(donation)
	if donation.TxHash != "" {
		m.txIndex[donation.TxHash] = donation.ID
	}

	return nil
}

// GetDonation retrieves a donation by ID.
func (m *MemoryStore) GetDonation(id string) (*types.Donation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("store is closed")
	}

	donation, exists := m.donations[id]
	if !exists {
		return nil, nil // Not found is not an error
	}

	return copyDonation(donation), nil
}

// GetDonationByTxHash retrieves a donation via the tx-hash index.
func (m *MemoryStore) GetDonationByTxHash(txHash string) (*types.Donation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("store is closed")
	}

	id, exists := m.txIndex[txHash]
	if !exists {
		return nil, nil // Not found is not an error
	}

	donation, exists := m.donations[id]
	if !exists {
		return nil, nil
	}

	return copyDonation(donation), nil
}

// ListDonations returns donations matching the filter sorted by creation time.
func (m *MemoryStore) ListDonations(filter *persistence.DonationFilter) ([]*types.Donation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("store is closed")
	}

	result := make([]*types.Donation, 0, len(m.donations))
	for _, donation := range m.donations {
		if filter != nil {
			if filter.CharityID != "" && donation.CharityID != filter.CharityID {
				continue
			}
			if filter.DonorAddress != "" && donation.DonorAddress != filter.DonorAddress {
				continue
			}
		}
		result = append(result, copyDonation(donation))
	}

	persistence.SortDonationsByCreation(result)
	return result, nil
}

// ListConfirmedDonations returns the charity's confirmed donations in
// creation-time order.
func (m *MemoryStore) ListConfirmedDonations(charityID string) ([]*types.Donation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("store is closed")
	}

	result := make([]*types.Donation, 0)
	for _, donation := range m.donations {
		if donation.CharityID == charityID && donation.Confirmed {
			result = append(result, copyDonation(donation))
		}
	}

	persistence.SortDonationsByCreation(result)
	return result, nil
}

// Close marks the store closed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// HealthCheck reports whether the store is usable.
func (m *MemoryStore) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}

// copyCharity returns a deep copy to prevent external mutation.
func copyCharity(charity *types.Charity) *types.Charity {
	copied := *charity
	return &copied
}

// copyDonation returns a deep copy to prevent external mutation.
func copyDonation(donation *types.Donation) *types.Donation {
	copied := *donation
	if donation.ConfirmedAt != nil {
		confirmedAt := *donation.ConfirmedAt
		copied.ConfirmedAt = &confirmedAt
	}
	return &copied
}
