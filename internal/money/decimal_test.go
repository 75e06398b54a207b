package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	v := decimal.RequireFromString("12.34565")
	assert.Equal(t, "12.3457", Round(v).String())

	neg := decimal.RequireFromString("-12.34565")
	assert.Equal(t, "-12.3457", Round(neg).String())
}

func TestParse(t *testing.T) {
	d, err := Parse("1234.5600")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("1234.56")))

	_, err = Parse("not-a-number")
	assert.Error(t, err)
}

func TestParseOr(t *testing.T) {
	fallback := decimal.NewFromInt(5)
	d, err := ParseOr("", fallback)
	require.NoError(t, err)
	assert.True(t, d.Equal(fallback))
}

func TestPercent(t *testing.T) {
	got := Percent(decimal.NewFromInt(-6000), decimal.NewFromInt(100000))
	assert.Equal(t, "-6", got.String())

	assert.True(t, Percent(decimal.NewFromInt(10), decimal.Zero).IsZero())
}

func TestYen(t *testing.T) {
	assert.Equal(t, "120", Yen(decimal.RequireFromString("120.4999")).String())
	assert.Equal(t, "121", Yen(decimal.RequireFromString("120.5")).String())
}
