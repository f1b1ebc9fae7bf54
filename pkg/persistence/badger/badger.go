package badger

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kushal2060/charity-ledger-go/pkg/persistence"
	"github.com/kushal2060/charity-ledger-go/pkg/types"
)

// Key prefixes for namespacing
const (
	keyPrefixCharity  = "charity:"
	keyPrefixDonation = "donation:"
	keyPrefixTxIndex  = "txindex:"
	keySchemaVersion  = "metadata:schema_version"

	currentSchemaVersion = "v1"
)

// BadgerStore is a production-ready store implementation using Badger.
// Provides durable, disk-based storage with ACID guarantees.
type BadgerStore struct {
	db       *badgerdb.DB
	logger   *zap.Logger
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

var _ persistence.IDonationStore = (*BadgerStore)(nil)

// NewBadgerStore creates a new Badger-backed store.
// The database is opened at the specified path with SyncWrites enabled for
// durability. A background goroutine is started for garbage collection.
func NewBadgerStore(dataPath string, logger *zap.Logger) (*BadgerStore, error) {
	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve absolute path")
	}

	// Configure Badger for production use
	opts := badgerdb.DefaultOptions(absPath)
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.SyncWrites = true // Ensure durability (fsync on every write)
	opts.CompactL0OnClose = true
	opts.NumVersionsToKeep = 1 // We don't need versioning within Badger

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open badger database at %s", absPath)
	}

	bs := &BadgerStore{
		db:     db,
		logger: logger,
	}

	if err := bs.initSchema(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}

	// Start background GC
	ctx, cancel := context.WithCancel(context.Background())
	bs.gcCancel = cancel
	bs.gcWg.Add(1)
	go bs.runGC(ctx)

	logger.Sugar().Infow("Badger store initialized", "path", absPath)

	return bs, nil
}

// initSchema initializes or validates the schema version
func (b *BadgerStore) initSchema() error {
	return b.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			// First time setup - set schema version
			return txn.Set([]byte(keySchemaVersion), []byte(currentSchemaVersion))
		}
		if err != nil {
			return errors.Wrap(err, "failed to read schema version")
		}

		var existingVersion string
		err = item.Value(func(val []byte) error {
			existingVersion = string(val)
			return nil
		})
		if err != nil {
			return errors.Wrap(err, "failed to read schema version value")
		}

		if existingVersion != currentSchemaVersion {
			return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
		}

		return nil
	})
}

// runGC runs periodic garbage collection in the background
func (b *BadgerStore) runGC(ctx context.Context) {
	defer b.gcWg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Run value log GC with 0.5 discard ratio
			err := b.db.RunValueLogGC(0.5)
			if err != nil && err != badgerdb.ErrNoRewrite {
				b.logger.Sugar().Warnw("Badger GC error", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// SaveCharity persists a charity.
func (b *BadgerStore) SaveCharity(charity *types.Charity) error {
	if charity == nil {
		return fmt.Errorf("cannot save nil Charity")
	}
	if charity.ID == "" {
		return fmt.Errorf("cannot save Charity with empty ID")
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("store is closed")
	}

	data, err := persistence.MarshalCharity(charity)
	if err != nil {
		return errors.Wrap(err, "failed to marshal Charity")
	}

	key := keyPrefixCharity + charity.ID
	return b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// GetCharity retrieves a charity by ID.
func (b *BadgerStore) GetCharity(id string) (*types.Charity, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("store is closed")
	}

	data, err := b.get(keyPrefixCharity + id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load Charity")
	}
	if data == nil {
		return nil, nil // Not found
	}

	charity, err := persistence.UnmarshalCharity(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal Charity")
	}

	return charity, nil
}

// ListCharities returns all charities sorted by creation time.
func (b *BadgerStore) ListCharities() ([]*types.Charity, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("store is closed")
	}

	charities := make([]*types.Charity, 0)

	err := b.iterate(keyPrefixCharity, func(key string, data []byte) {
		charity, err := persistence.UnmarshalCharity(data)
		if err != nil {
			b.logger.Sugar().Warnw("Failed to unmarshal Charity, skipping", "key", key, "error", err)
			return
		}
		charities = append(charities, charity)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list Charities")
	}

	persistence.SortCharitiesByCreation(charities)
	return charities, nil
}

// SaveDonation persists a donation and maintains the tx-hash index.
func (b *BadgerStore) SaveDonation(donation *types.Donation) error {
	if donation == nil {
		return fmt.Errorf("cannot save nil Donation")
	}
	if donation.ID == "" {
		return fmt.Errorf("cannot save Donation with empty ID")
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("store is closed")
	}

	data, err := persistence.MarshalDonation(donation)
	if err != nil {
		return errors.Wrap(err, "failed to marshal Donation")
	}

	return b.db.Update(func(txn *badgerdb.Txn) error {
		if err := txn.Set([]byte(keyPrefixDonation+donation.ID), data); err != nil {
			return err
		}
		if donation.TxHash != "" {
			return txn.Set([]byte(keyPrefixTxIndex+donation.TxHash), []byte(donation.ID))
		}
		return nil
	})
}

// GetDonation retrieves a donation by ID.
func (b *BadgerStore) GetDonation(id string) (*types.Donation, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("store is closed")
	}

	return b.loadDonation(keyPrefixDonation + id)
}

// GetDonationByTxHash retrieves a donation via the tx-hash index.
func (b *BadgerStore) GetDonationByTxHash(txHash string) (*types.Donation, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("store is closed")
	}

	id, err := b.get(keyPrefixTxIndex + txHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tx index entry")
	}
	if id == nil {
		return nil, nil // Not found
	}

	return b.loadDonation(keyPrefixDonation + string(id))
}

// ListDonations returns donations matching the filter sorted by creation time.
func (b *BadgerStore) ListDonations(filter *persistence.DonationFilter) ([]*types.Donation, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("store is closed")
	}

	donations, err := b.scanDonations(func(d *types.Donation) bool {
		if filter == nil {
			return true
		}
		if filter.CharityID != "" && d.CharityID != filter.CharityID {
			return false
		}
		if filter.DonorAddress != "" && d.DonorAddress != filter.DonorAddress {
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	persistence.SortDonationsByCreation(donations)
	return donations, nil
}

// ListConfirmedDonations returns the charity's confirmed donations in
// creation-time order.
func (b *BadgerStore) ListConfirmedDonations(charityID string) ([]*types.Donation, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("store is closed")
	}

	donations, err := b.scanDonations(func(d *types.Donation) bool {
		return d.CharityID == charityID && d.Confirmed
	})
	if err != nil {
		return nil, err
	}

	persistence.SortDonationsByCreation(donations)
	return donations, nil
}

// Close stops background GC and closes the database.
func (b *BadgerStore) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	b.gcCancel()
	b.gcWg.Wait()

	if err := b.db.Close(); err != nil {
		return errors.Wrap(err, "failed to close badger database")
	}

	b.logger.Sugar().Infow("Badger store closed")
	return nil
}

// HealthCheck verifies the database is readable.
func (b *BadgerStore) HealthCheck() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("store is closed")
	}

	return b.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return fmt.Errorf("schema version key missing")
		}
		return err
	})
}

// get returns the raw value for a key, or nil when the key is absent.
func (b *BadgerStore) get(key string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badgerdb.ErrKeyNotFound {
			return nil // Not found is not an error
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...) // Copy value
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// iterate walks all keys with the given prefix and hands each value to fn.
func (b *BadgerStore) iterate(prefix string, fn func(key string, data []byte)) error {
	return b.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			var data []byte
			err := item.Value(func(val []byte) error {
				data = append([]byte{}, val...) // Copy value
				return nil
			})
			if err != nil {
				return errors.Wrap(err, "failed to read value")
			}

			fn(strings.TrimPrefix(string(item.Key()), prefix), data)
		}

		return nil
	})
}

// loadDonation loads and unmarshals a single donation by storage key.
func (b *BadgerStore) loadDonation(key string) (*types.Donation, error) {
	data, err := b.get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load Donation")
	}
	if data == nil {
		return nil, nil // Not found
	}

	donation, err := persistence.UnmarshalDonation(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal Donation")
	}

	return donation, nil
}

// scanDonations iterates all donations and keeps those matching keep.
func (b *BadgerStore) scanDonations(keep func(*types.Donation) bool) ([]*types.Donation, error) {
	donations := make([]*types.Donation, 0)

	err := b.iterate(keyPrefixDonation, func(key string, data []byte) {
		donation, err := persistence.UnmarshalDonation(data)
		if err != nil {
			b.logger.Sugar().Warnw("Failed to unmarshal Donation, skipping", "key", key, "error", err)
			return
		}
		if keep(donation) {
			donations = append(donations, donation)
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan Donations")
	}

	return donations, nil
}
