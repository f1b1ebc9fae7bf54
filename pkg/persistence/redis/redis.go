package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kushal2060/charity-ledger-go/pkg/persistence"
	"github.com/kushal2060/charity-ledger-go/pkg/types"
)

// Key prefixes for namespacing in Redis
const (
	keyPrefixCharity  = "charity:item:"
	keyPrefixDonation = "charity:donation:"
	keyPrefixTxIndex  = "charity:txindex:"
	keySchemaVersion  = "charity:metadata:schema_version"

	currentSchemaVersion = "v1"

	// Key sets for listing operations (Redis doesn't support prefix iteration natively)
	keySetCharities = "charity:items:index"
	keySetDonations = "charity:donations:index"
)

// RedisStore is a production-ready store implementation using Redis.
// Provides durable, distributed storage suitable for cloud-native deployments.
type RedisStore struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string // Custom prefix for all keys
	mu        sync.RWMutex
	closed    bool
}

var _ persistence.IDonationStore = (*RedisStore)(nil)

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address string
	// Password is the optional Redis password
	Password string
	// DB is the Redis database number (0-15)
	DB int
	// KeyPrefix is an optional custom prefix for all keys (for multi-tenant
	// setups). If set, this prefix is prepended to all keys; if empty, keys
	// use the default "charity:" namespace.
	KeyPrefix string
}

// NewRedisStore creates a new Redis-backed store.
func NewRedisStore(cfg *RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}

	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to connect to Redis at %s", cfg.Address)
	}

	rs := &RedisStore{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	if err := rs.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}

	if cfg.KeyPrefix != "" {
		logger.Sugar().Infow("Redis store initialized", "address", cfg.Address, "db", cfg.DB, "key_prefix", cfg.KeyPrefix)
	} else {
		logger.Sugar().Infow("Redis store initialized", "address", cfg.Address, "db", cfg.DB)
	}

	return rs, nil
}

// prefixKey adds the custom key prefix (if configured) to a key
func (r *RedisStore) prefixKey(key string) string {
	if r.keyPrefix == "" {
		return key
	}
	return r.keyPrefix + key
}

// initSchema initializes or validates the schema version
func (r *RedisStore) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	existingVersion, err := r.client.Get(ctx, schemaKey).Result()
	if err == redis.Nil {
		// First time setup - set schema version
		return r.client.Set(ctx, schemaKey, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}

	if existingVersion != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
	}

	return nil
}

// SaveCharity persists a charity.
func (r *RedisStore) SaveCharity(charity *types.Charity) error {
	if charity == nil {
		return fmt.Errorf("cannot save nil Charity")
	}
	if charity.ID == "" {
		return fmt.Errorf("cannot save Charity with empty ID")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("store is closed")
	}

	ctx := context.Background()

	data, err := persistence.MarshalCharity(charity)
	if err != nil {
		return errors.Wrap(err, "failed to marshal Charity")
	}

	// Store in Redis using a pipeline for atomicity
	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.prefixKey(keyPrefixCharity+charity.ID), data, 0)
	pipe.SAdd(ctx, r.prefixKey(keySetCharities), charity.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to save Charity")
	}

	return nil
}

// GetCharity retrieves a charity by ID.
func (r *RedisStore) GetCharity(id string) (*types.Charity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("store is closed")
	}

	ctx := context.Background()

	data, err := r.client.Get(ctx, r.prefixKey(keyPrefixCharity+id)).Bytes()
	if err == redis.Nil {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load Charity")
	}

	charity, err := persistence.UnmarshalCharity(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal Charity")
	}

	return charity, nil
}

// ListCharities returns all charities sorted by creation time.
func (r *RedisStore) ListCharities() ([]*types.Charity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("store is closed")
	}

	ctx := context.Background()

	ids, err := r.client.SMembers(ctx, r.prefixKey(keySetCharities)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list Charity index")
	}

	charities := make([]*types.Charity, 0, len(ids))
	for _, id := range ids {
		data, err := r.client.Get(ctx, r.prefixKey(keyPrefixCharity+id)).Bytes()
		if err == redis.Nil {
			// Index entry without a value, skip
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to load Charity")
		}

		charity, err := persistence.UnmarshalCharity(data)
		if err != nil {
			r.logger.Sugar().Warnw("Failed to unmarshal Charity, skipping", "id", id, "error", err)
			continue
		}
		charities = append(charities, charity)
	}

	persistence.SortCharitiesByCreation(charities)
	return charities, nil
}

// SaveDonation persists a donation and maintains the tx-hash index.
func (r *RedisStore) SaveDonation(donation *types.Donation) error {
	if donation == nil {
		return fmt.Errorf("cannot save nil Donation")
	}
	if donation.ID == "" {
		return fmt.Errorf("cannot save Donation with empty ID")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("store is closed")
	}

	ctx := context.Background()

	data, err := persistence.MarshalDonation(donation)
	if err != nil {
		return errors.Wrap(err, "failed to marshal Donation")
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.prefixKey(keyPrefixDonation+donation.ID), data, 0)
	pipe.SAdd(ctx, r.prefixKey(keySetDonations), donation.ID)
	if donation.TxHash != "" {
		pipe.Set(ctx, r.prefixKey(keyPrefixTxIndex+donation.TxHash), donation.ID, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to save Donation")
	}

	return nil
}

// GetDonation retrieves a donation by ID.
func (r *RedisStore) GetDonation(id string) (*types.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("store is closed")
	}

	return r.loadDonation(context.Background(), id)
}

// GetDonationByTxHash retrieves a donation via the tx-hash index.
func (r *RedisStore) GetDonationByTxHash(txHash string) (*types.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("store is closed")
	}

	ctx := context.Background()

	id, err := r.client.Get(ctx, r.prefixKey(keyPrefixTxIndex+txHash)).Result()
	if err == redis.Nil {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tx index entry")
	}

	return r.loadDonation(ctx, id)
}

// ListDonations returns donations matching the filter sorted by creation time.
func (r *RedisStore) ListDonations(filter *persistence.DonationFilter) ([]*types.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("store is closed")
	}

	donations, err := r.scanDonations(func(d *types.Donation) bool {
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
func (r *RedisStore) ListConfirmedDonations(charityID string) ([]*types.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("store is closed")
	}

	donations, err := r.scanDonations(func(d *types.Donation) bool {
		return d.CharityID == charityID && d.Confirmed
	})
	if err != nil {
		return nil, err
	}

	persistence.SortDonationsByCreation(donations)
	return donations, nil
}

// Close shuts down the Redis client.
func (r *RedisStore) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.client.Close(); err != nil {
		return errors.Wrap(err, "failed to close redis client")
	}

	r.logger.Sugar().Infow("Redis store closed")
	return nil
}

// HealthCheck pings the Redis server.
func (r *RedisStore) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("store is closed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "redis ping failed")
	}
	return nil
}

// loadDonation loads and unmarshals a single donation by ID.
func (r *RedisStore) loadDonation(ctx context.Context, id string) (*types.Donation, error) {
	data, err := r.client.Get(ctx, r.prefixKey(keyPrefixDonation+id)).Bytes()
	if err == redis.Nil {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load Donation")
	}

	donation, err := persistence.UnmarshalDonation(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal Donation")
	}

	return donation, nil
}

// scanDonations loads every indexed donation and keeps those matching keep.
func (r *RedisStore) scanDonations(keep func(*types.Donation) bool) ([]*types.Donation, error) {
	ctx := context.Background()

	ids, err := r.client.SMembers(ctx, r.prefixKey(keySetDonations)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list Donation index")
	}

	donations := make([]*types.Donation, 0, len(ids))
	for _, id := range ids {
		donation, err := r.loadDonation(ctx, id)
		if err != nil {
			return nil, err
		}
		if donation == nil {
			// Index entry without a value, skip
			continue
		}
		if keep(donation) {
			donations = append(donations, donation)
		}
	}

	return donations, nil
}
