package entity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDonationSummaryAdd(t *testing.T) {
	summary := NewDonationSummary()

	// Add more donations than the recent window holds
	for i := 1; i <= 15; i++ {
		summary.Add(DonationRecord{
			Name:            fmt.Sprintf("supporter-%d", i),
			AmountReference: float64(i),
		}, fmt.Sprintf("2024-01-%02dT00:00:00.000Z", i))
	}

	assert.Equal(t, int64(15), summary.SupportersCount)
	assert.Equal(t, 120.0, summary.TotalReference) // 1 + 2 + ... + 15
	assert.Equal(t, "2024-01-15T00:00:00.000Z", summary.LastUpdatedIso)

	// Recent window is capped and newest first
	assert.Len(t, summary.RecentSupporters, MaxRecentSupporters)
	assert.Equal(t, "supporter-15", summary.RecentSupporters[0].Name)
	assert.Equal(t, "supporter-6", summary.RecentSupporters[MaxRecentSupporters-1].Name)
}

func TestDonationSummaryHasTransaction(t *testing.T) {
	summary := NewDonationSummary()
	summary.Add(DonationRecord{Name: "a", AmountReference: 1, TransactionID: "tx-1"}, "now")

	assert.True(t, summary.HasTransaction("tx-1"))
	assert.False(t, summary.HasTransaction("tx-2"))
	assert.False(t, summary.HasTransaction(""))
}
