package entity

import (
	"time"
)

// Rates maps an ISO 4217 currency code to the number of units of that
// currency bought by one unit of the reference currency
type Rates map[string]float64

// Rate returns the rate for a currency and whether it is usable for conversion
func (r Rates) Rate(currency string) (float64, bool) {
	rate, ok := r[currency]
	if !ok || rate <= 0 {
		return 0, false
	}
	return rate, true
}

// ExchangeRateSnapshot is the persisted result of one rate provider fetch
type ExchangeRateSnapshot struct {
	Rates     Rates `json:"rates"`
	Timestamp int64 `json:"timestamp"` // epoch millis of the fetch
}

// FetchedAt returns the fetch time of the snapshot
func (s *ExchangeRateSnapshot) FetchedAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// IsFresh reports whether the snapshot is younger than ttl at now
func (s *ExchangeRateSnapshot) IsFresh(now time.Time, ttl time.Duration) bool {
	if s == nil || s.Timestamp == 0 {
		return false
	}
	return now.UnixMilli()-s.Timestamp < ttl.Milliseconds()
}
