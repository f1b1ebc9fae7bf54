package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/kushal2060/charity-ledger-go/pkg/types"
)

// MarshalCharity serializes a Charity to JSON bytes.
func MarshalCharity(charity *types.Charity) ([]byte, error) {
	if charity == nil {
		return nil, fmt.Errorf("cannot marshal nil Charity")
	}

	data, err := json.Marshal(charity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Charity to JSON: %w", err)
	}

	return data, nil
}

// UnmarshalCharity deserializes a Charity from JSON bytes.
func UnmarshalCharity(data []byte) (*types.Charity, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var charity types.Charity
	if err := json.Unmarshal(data, &charity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to Charity: %w", err)
	}

	return &charity, nil
}

// MarshalDonation serializes a Donation to JSON bytes.
func MarshalDonation(donation *types.Donation) ([]byte, error) {
	if donation == nil {
		return nil, fmt.Errorf("cannot marshal nil Donation")
	}

	data, err := json.Marshal(donation)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Donation to JSON: %w", err)
	}

	return data, nil
}

// UnmarshalDonation deserializes a Donation from JSON bytes.
func UnmarshalDonation(data []byte) (*types.Donation, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var donation types.Donation
	if err := json.Unmarshal(data, &donation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to Donation: %w", err)
	}

	return &donation, nil
}
