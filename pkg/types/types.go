package types

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Charity is a registered fundraising campaign. Donations reference a
// charity by ID; the charity's confirmed donation set is what merkle
// commitments are computed over.
type Charity struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	WalletAddress string    `json:"wallet_address"`
	TargetAmount  string    `json:"target_amount"`
	RaisedAmount  string    `json:"raised_amount"`
	Active        bool      `json:"active"`
	OnChainID     string    `json:"on_chain_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Donation is a single on-chain donation to a charity. Amounts are integer
// base-unit (wei) strings so the canonical hashing input stays byte-stable.
//
// CreatedAt is truncated to whole seconds on creation: the canonical leaf
// string embeds the Unix timestamp, and sub-second precision would be lost
// in the round trip.
type Donation struct {
	ID           string     `json:"id"`
	CharityID    string     `json:"charity_id"`
	DonorAddress string     `json:"donor_address"`
	Amount       string     `json:"amount"`
	TxHash       string     `json:"tx_hash"`
	Confirmed    bool       `json:"confirmed"`
	CreatedAt    time.Time  `json:"created_at"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
}

// ValidateAddress checks that s is a well-formed hex Ethereum address.
func ValidateAddress(s string) error {
	if s == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if !common.IsHexAddress(s) {
		return fmt.Errorf("invalid address format: %s", s)
	}
	return nil
}

// ValidateTxHash checks that s is a 32-byte hex transaction hash with the
// 0x prefix.
func ValidateTxHash(s string) error {
	if s == "" {
		return fmt.Errorf("transaction hash cannot be empty")
	}
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("transaction hash must have 0x prefix: %s", s)
	}
	if len(s) != 66 {
		return fmt.Errorf("transaction hash must be 32 bytes (64 hex chars), got %d chars", len(s)-2)
	}
	if _, ok := new(big.Int).SetString(s[2:], 16); !ok {
		return fmt.Errorf("transaction hash is not valid hex: %s", s)
	}
	return nil
}

// ValidateAmount checks that s is a positive integer base-unit amount.
func ValidateAmount(s string) error {
	if s == "" {
		return fmt.Errorf("amount cannot be empty")
	}
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("amount is not a valid integer: %s", s)
	}
	if amount.Sign() <= 0 {
		return fmt.Errorf("amount must be positive, got %s", s)
	}
	return nil
}

// AddAmounts returns the sum of two integer base-unit amount strings.
// An empty string counts as zero.
func AddAmounts(a, b string) (string, error) {
	left, err := parseAmount(a)
	if err != nil {
		return "", err
	}
	right, err := parseAmount(b)
	if err != nil {
		return "", err
	}
	return new(big.Int).Add(left, right).String(), nil
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("amount is not a valid integer: %s", s)
	}
	return amount, nil
}
