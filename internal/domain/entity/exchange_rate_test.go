package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExchangeRateSnapshotIsFresh(t *testing.T) {
	fetched := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	snapshot := &ExchangeRateSnapshot{
		Rates:     Rates{"JPY": 150, "EUR": 1.05},
		Timestamp: fetched.UnixMilli(),
	}
	ttl := 12 * time.Hour

	assert.True(t, snapshot.IsFresh(fetched, ttl))
	assert.True(t, snapshot.IsFresh(fetched.Add(ttl-time.Millisecond), ttl))
	assert.False(t, snapshot.IsFresh(fetched.Add(ttl), ttl))
	assert.False(t, snapshot.IsFresh(fetched.Add(24*time.Hour), ttl))
	assert.Equal(t, fetched, snapshot.FetchedAt().UTC())

	var missing *ExchangeRateSnapshot
	assert.False(t, missing.IsFresh(fetched, ttl))
}

func TestRatesRate(t *testing.T) {
	rates := Rates{"JPY": 150, "EUR": 0}

	rate, ok := rates.Rate("JPY")
	assert.True(t, ok)
	assert.Equal(t, 150.0, rate)

	_, ok = rates.Rate("EUR")
	assert.False(t, ok, "zero rate is not usable")

	_, ok = rates.Rate("USD")
	assert.False(t, ok)
}
