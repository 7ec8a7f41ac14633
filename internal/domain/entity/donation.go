package entity

// MaxRecentSupporters caps the recent supporter window of a summary
const MaxRecentSupporters = 10

// AnonymousSupporter is used when a donation carries no supporter name
const AnonymousSupporter = "Anonymous"

// OriginalAmount is the donation amount as it was received
type OriginalAmount struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// DonationRecord represents one accepted donation
type DonationRecord struct {
	Name            string         `json:"name"`
	AmountReference float64        `json:"amountReference"`
	Original        OriginalAmount `json:"original"`
	Message         string         `json:"message"`
	Timestamp       string         `json:"timestamp"`
	TransactionID   string         `json:"transactionId,omitempty"`
}

// DonationSummary is the running aggregate of all accepted donations
type DonationSummary struct {
	TotalReference   float64          `json:"totalReference"`
	SupportersCount  int64            `json:"supportersCount"`
	RecentSupporters []DonationRecord `json:"recentSupporters"`
	LastUpdatedIso   string           `json:"lastUpdatedIso,omitempty"`
}

// NewDonationSummary returns the zero summary used before any donation is stored
func NewDonationSummary() *DonationSummary {
	return &DonationSummary{
		RecentSupporters: []DonationRecord{},
	}
}

// Add applies an accepted donation to the summary. The record is
// prepended to the recent window, which keeps only the newest entries.
func (s *DonationSummary) Add(record DonationRecord, updatedIso string) {
	s.TotalReference += record.AmountReference
	s.SupportersCount++
	s.LastUpdatedIso = updatedIso

	recent := make([]DonationRecord, 0, MaxRecentSupporters)
	recent = append(recent, record)
	for _, r := range s.RecentSupporters {
		if len(recent) == MaxRecentSupporters {
			break
		}
		recent = append(recent, r)
	}
	s.RecentSupporters = recent
}

// HasTransaction reports whether a record with the given provider
// transaction id is still in the recent window
func (s *DonationSummary) HasTransaction(transactionID string) bool {
	if transactionID == "" {
		return false
	}
	for _, r := range s.RecentSupporters {
		if r.TransactionID == transactionID {
			return true
		}
	}
	return false
}
