package bom

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func header(id int64, effective string, version int, active bool) Header {
	return Header{
		ID:            id,
		OutputID:      10,
		BomType:       TypeRawMaterialProcess,
		EffectiveDate: day(effective),
		Version:       version,
		YieldRate:     decimal.NewFromInt(1),
		IsActive:      active,
	}
}

func TestPickLatestEffectiveDate(t *testing.T) {
	headers := []Header{
		header(1, "2026-01-01", 1, true),
		header(2, "2026-04-01", 1, true),
		header(3, "2026-07-01", 1, true),
	}

	h, ok := pick(headers, day("2026-05-15"))
	require.True(t, ok)
	assert.Equal(t, int64(2), h.ID)
}

func TestPickHighestVersionOnSameDate(t *testing.T) {
	headers := []Header{
		header(1, "2026-04-01", 1, true),
		header(2, "2026-04-01", 3, true),
		header(3, "2026-04-01", 2, true),
	}

	h, ok := pick(headers, day("2026-04-01"))
	require.True(t, ok)
	assert.Equal(t, int64(2), h.ID)
}

func TestPickSkipsInactiveAndFuture(t *testing.T) {
	headers := []Header{
		header(1, "2026-04-01", 2, false),
		header(2, "2026-09-01", 1, true),
		header(3, "2026-02-01", 1, true),
	}

	h, ok := pick(headers, day("2026-05-15"))
	require.True(t, ok)
	assert.Equal(t, int64(3), h.ID)
}

func TestPickNothingEffective(t *testing.T) {
	headers := []Header{
		header(1, "2026-09-01", 1, true),
	}

	_, ok := pick(headers, day("2026-05-15"))
	assert.False(t, ok)
}

func TestRequiredQuantityAppliesLossRate(t *testing.T) {
	line := Line{
		Quantity: decimal.NewFromInt(10),
		LossRate: decimal.RequireFromString("0.2"),
	}
	assert.True(t, line.RequiredQuantity().Equal(decimal.RequireFromString("12.5")),
		"got %s", line.RequiredQuantity())

	line.LossRate = decimal.Zero
	assert.True(t, line.RequiredQuantity().Equal(decimal.NewFromInt(10)))
}

func TestHeaderValidate(t *testing.T) {
	base := Header{
		OutputID:  10,
		BomType:   TypeRawMaterialProcess,
		YieldRate: decimal.RequireFromString("0.95"),
		Lines: []Line{
			{Input: MaterialRef(1), Quantity: decimal.NewFromInt(5), LossRate: decimal.Zero},
		},
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.YieldRate = decimal.Zero
	assert.Error(t, bad.Validate())

	bad = base
	bad.YieldRate = decimal.RequireFromString("1.1")
	assert.Error(t, bad.Validate())

	bad = base
	bad.Lines = []Line{{Input: MaterialRef(1), Quantity: decimal.NewFromInt(5), LossRate: decimal.NewFromInt(1)}}
	assert.Error(t, bad.Validate())
}
