package service

import (
	"context"
	"time"
)

// DonationAcceptedEvent is published after a donation was applied to the summary
type DonationAcceptedEvent struct {
	EventID          string    `json:"event_id"`
	Name             string    `json:"name"`
	AmountReference  float64   `json:"amount_reference"`
	OriginalAmount   float64   `json:"original_amount"`
	OriginalCurrency string    `json:"original_currency"`
	TransactionID    string    `json:"transaction_id,omitempty"`
	SupportersCount  int64     `json:"supporters_count"`
	TotalReference   float64   `json:"total_reference"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing ledger events
type EventPublisher interface {
	PublishDonationAccepted(ctx context.Context, event DonationAcceptedEvent) error
}
