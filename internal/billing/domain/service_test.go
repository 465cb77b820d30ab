package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	now := time.Date(2026, time.September, 15, 13, 30, 0, 0, time.FixedZone("UTC+1", 3600))

	start, end, err := ParseMonth("", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), end)

	start, end, err = ParseMonth("2026-01", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), end)

	_, _, err = ParseMonth("2026-13", now)
	assert.ErrorIs(t, err, ErrInvalidMonth)

	_, _, err = ParseMonth("January", now)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestInvoiceNumber(t *testing.T) {
	start := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	id := snowflake.ID(123456789)

	assert.Equal(t, "INV-123456789-2026-09", InvoiceNumber(id, start))
}

func TestInvoiceItemRemainingCents(t *testing.T) {
	item := InvoiceItem{LineTotalCents: 10000, PaidCents: 2500}
	assert.Equal(t, int64(7500), item.RemainingCents())
}
