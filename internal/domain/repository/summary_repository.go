package repository

import (
	"context"

	"github.com/damon-houk/donation-ledger/internal/domain/entity"
)

// SummaryRepository defines the interface for the donation summary singleton
type SummaryRepository interface {
	// Load returns the stored summary, or a zero summary when none exists
	Load(ctx context.Context) (*entity.DonationSummary, error)

	// Update atomically applies fn to the stored summary and persists the result.
	// fn may be called more than once if a concurrent writer interferes.
	Update(ctx context.Context, fn func(summary *entity.DonationSummary) error) (*entity.DonationSummary, error)
}
