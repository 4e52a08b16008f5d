package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinor(t *testing.T) {
	cases := map[string]int64{
		"1.00":   100,
		"12.50":  1250,
		"0.01":   1,
		"8.40":   840,
		"100":    10000,
		"2.345":  235,
		"2.355":  236,
		"-2.345": -235,
		"0.004":  0,
	}
	for in, want := range cases {
		d, err := ParseMajor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, ToMinor(d), in)
	}
}

func TestRoundTripTwoFractionDigits(t *testing.T) {
	for _, in := range []string{"0", "0.01", "1.00", "12.5", "12.50", "999.99", "1234567.89"} {
		d, err := ParseMajor(in)
		require.NoError(t, err)
		back := FromMinor(ToMinor(d))
		assert.True(t, back.Equal(d), "%s came back as %s", in, back)
	}
}

func TestFromMinor(t *testing.T) {
	assert.True(t, FromMinor(1050).Equal(decimal.RequireFromString("10.5")))
	assert.Equal(t, "10.50", FromMinor(1050).StringFixed(MinorScale))
}

func TestParseMajorInvalid(t *testing.T) {
	_, err := ParseMajor("twelve")
	require.Error(t, err)
}
