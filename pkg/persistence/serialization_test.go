package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kushal2060/charity-ledger-go/pkg/types"
)

func TestMarshalCharity_Nil(t *testing.T) {
	_, err := MarshalCharity(nil)
	require.Error(t, err)

	_, err = UnmarshalCharity(nil)
	require.Error(t, err)
}

func TestMarshalDonation_Nil(t *testing.T) {
	_, err := MarshalDonation(nil)
	require.Error(t, err)

	_, err = UnmarshalDonation([]byte{})
	require.Error(t, err)
}

func TestDonationRoundTrip(t *testing.T) {
	confirmedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	donation := &types.Donation{
		ID:           "donation-1",
		CharityID:    "charity-1",
		DonorAddress: "0x000000000000000000000000000000000000bEEF",
		Amount:       "2500",
		TxHash:       "0xtx-1",
		Confirmed:    true,
		CreatedAt:    confirmedAt,
		ConfirmedAt:  &confirmedAt,
	}

	data, err := MarshalDonation(donation)
	require.NoError(t, err)

	loaded, err := UnmarshalDonation(data)
	require.NoError(t, err)
	assert.Equal(t, donation, loaded)

	_, err = UnmarshalDonation([]byte("{not json"))
	require.Error(t, err)
}

func TestSortDonationsByCreation_StableTiebreak(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	donations := []*types.Donation{
		{ID: "donation-b", CreatedAt: at},
		{ID: "donation-a", CreatedAt: at},
		{ID: "donation-c", CreatedAt: at.Add(-time.Minute)},
	}

	SortDonationsByCreation(donations)

	assert.Equal(t, "donation-c", donations[0].ID)
	assert.Equal(t, "donation-a", donations[1].ID)
	assert.Equal(t, "donation-b", donations[2].ID)
}
