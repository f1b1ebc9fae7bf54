package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateAddress(t *testing.T) {
	require.NoError(t, ValidateAddress("0x000000000000000000000000000000000000dEaD"))

	for _, invalid := range []string{"", "0x1234", "not-an-address", "0xZZ00000000000000000000000000000000000000"} {
		require.Error(t, ValidateAddress(invalid), "address %q", invalid)
	}
}

func TestValidateTxHash(t *testing.T) {
	require.NoError(t, ValidateTxHash("0x"+strings.Repeat("ab", 32)))

	testCases := map[string]string{
		"empty":       "",
		"no prefix":   strings.Repeat("ab", 33),
		"too short":   "0x1234",
		"not hex":     "0x" + strings.Repeat("zz", 32),
	}
	for name, invalid := range testCases {
		t.Run(name, func(t *testing.T) {
			require.Error(t, ValidateTxHash(invalid))
		})
	}
}

func TestValidateAmount(t *testing.T) {
	require.NoError(t, ValidateAmount("1"))
	require.NoError(t, ValidateAmount("1000000000000000000"))

	for _, invalid := range []string{"", "0", "-5", "1.5", "abc"} {
		require.Error(t, ValidateAmount(invalid), "amount %q", invalid)
	}
}

func TestAddAmounts(t *testing.T) {
	sum, err := AddAmounts("1000", "2500")
	require.NoError(t, err)
	require.Equal(t, "3500", sum)

	// Empty counts as zero
	sum, err = AddAmounts("", "42")
	require.NoError(t, err)
	require.Equal(t, "42", sum)

	// Values beyond 64 bits
	sum, err = AddAmounts("18446744073709551615", "1")
	require.NoError(t, err)
	require.Equal(t, "18446744073709551616", sum)

	_, err = AddAmounts("abc", "1")
	require.Error(t, err)
}
