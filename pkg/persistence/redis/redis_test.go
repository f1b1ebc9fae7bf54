package redis

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kushal2060/charity-ledger-go/pkg/types"
)

// getTestRedisAddress returns the Redis address for testing.
// Uses REDIS_TEST_ADDRESS env var if set, otherwise defaults to localhost:6379.
func getTestRedisAddress() string {
	if addr := os.Getenv("REDIS_TEST_ADDRESS"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// requireRedis skips the test if Redis is not available. Each test gets a
// unique key prefix so runs don't interfere with each other.
func requireRedis(t *testing.T) *RedisStore {
	t.Helper()

	cfg := &RedisConfig{
		Address:   getTestRedisAddress(),
		DB:        15, // Use DB 15 for tests to avoid conflicts
		KeyPrefix: fmt.Sprintf("test:%s:", uuid.NewString()),
	}

	store, err := NewRedisStore(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Skipf("Redis not available at %s: %v", cfg.Address, err)
		return nil
	}

	return store
}

func testDonation(id, charityID string, createdAt time.Time) *types.Donation {
	return &types.Donation{
		ID:           id,
		CharityID:    charityID,
		DonorAddress: "0x000000000000000000000000000000000000bEEF",
		Amount:       "2500",
		TxHash:       "0xtx-" + id,
		Confirmed:    true,
		CreatedAt:    createdAt,
		ConfirmedAt:  &createdAt,
	}
}

func TestRedisStore_CharityRoundTrip(t *testing.T) {
	store := requireRedis(t)
	defer func() { _ = store.Close() }()

	charity := &types.Charity{
		ID:            "charity-1",
		Name:          "Clean Water Fund",
		WalletAddress: "0x000000000000000000000000000000000000dEaD",
		TargetAmount:  "1000000",
		RaisedAmount:  "0",
		Active:        true,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.SaveCharity(charity))

	loaded, err := store.GetCharity("charity-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, charity.Name, loaded.Name)

	missing, err := store.GetCharity("no-such-charity")
	require.NoError(t, err)
	require.Nil(t, missing)

	charities, err := store.ListCharities()
	require.NoError(t, err)
	require.Len(t, charities, 1)
}

func TestRedisStore_DonationIndexes(t *testing.T) {
	store := requireRedis(t)
	defer func() { _ = store.Close() }()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	first := testDonation("donation-1", "charity-1", base.Add(time.Minute))
	second := testDonation("donation-2", "charity-1", base)
	pending := testDonation("donation-3", "charity-1", base.Add(2*time.Minute))
	pending.Confirmed = false

	for _, d := range []*types.Donation{first, second, pending} {
		require.NoError(t, store.SaveDonation(d))
	}

	byHash, err := store.GetDonationByTxHash("0xtx-donation-1")
	require.NoError(t, err)
	require.NotNil(t, byHash)
	assert.Equal(t, "donation-1", byHash.ID)

	confirmed, err := store.ListConfirmedDonations("charity-1")
	require.NoError(t, err)
	require.Len(t, confirmed, 2)
	assert.Equal(t, "donation-2", confirmed[0].ID)
	assert.Equal(t, "donation-1", confirmed[1].ID)
}

func TestRedisStore_HealthCheckAndClose(t *testing.T) {
	store := requireRedis(t)

	require.NoError(t, store.HealthCheck())

	require.NoError(t, store.Close())
	require.Error(t, store.HealthCheck())
	_, err := store.GetDonation("donation-1")
	require.Error(t, err)

	// Close is idempotent
	require.NoError(t, store.Close())
}
