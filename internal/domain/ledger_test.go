package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerDefaultsToFalse(t *testing.T) {
	var l Ledger
	assert.False(t, l.Has("2024-05-01", "7", "AI"))

	l = Ledger{"2024-05-01": {}}
	assert.False(t, l.Has("2024-05-01", "7", "AI"))
}

func TestLedgerAddIsIdempotent(t *testing.T) {
	l := Ledger{}
	require.True(t, l.Add("2024-05-01", "7", "AI"))
	require.False(t, l.Add("2024-05-01", "7", "AI"))
	require.True(t, l.Add("2024-05-01", "7", "Web Dev"))

	assert.Equal(t, []string{"AI", "Web Dev"}, l["2024-05-01"]["7"])
	assert.True(t, l.Has("2024-05-01", "7", "AI"))
	assert.False(t, l.Has("2024-05-02", "7", "AI"))
	assert.False(t, l.Has("2024-05-01", "9", "AI"))
}

func TestLedgerPruneBefore(t *testing.T) {
	l := Ledger{
		"2024-04-29": {"7": {"AI"}},
		"2024-04-30": {"7": {"AI"}},
		"2024-05-01": {"9": {"AI"}},
		"legacy":     {"1": {"AI"}},
	}

	removed := l.PruneBefore("2024-05-01")

	assert.Equal(t, 2, removed)
	assert.Contains(t, l, "2024-05-01")
	assert.Contains(t, l, "legacy")
	assert.NotContains(t, l, "2024-04-30")
}

func TestDateKeyUsesLocation(t *testing.T) {
	at := time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*60*60)

	assert.Equal(t, "2024-05-01", DateKey(at, time.UTC))
	assert.Equal(t, "2024-05-02", DateKey(at, tokyo))
}
