package db

import (
	"context"
	"fmt"

	"github.com/damon-houk/donation-ledger/internal/domain/entity"
	"github.com/damon-houk/donation-ledger/internal/domain/repository"
)

const (
	// SummaryNamespace holds the donation summary singleton
	SummaryNamespace = "donation-summary"
	summaryKey       = "summary"
)

// BadgerSummaryRepository implements the SummaryRepository interface using BadgerDB
type BadgerSummaryRepository struct {
	ns *Namespace
}

// NewBadgerSummaryRepository creates a new BadgerDB summary repository
func NewBadgerSummaryRepository(store *BadgerStore) repository.SummaryRepository {
	return &BadgerSummaryRepository{ns: store.Namespace(SummaryNamespace)}
}

// Load returns the stored summary, or the zero summary when nothing was written yet
func (r *BadgerSummaryRepository) Load(ctx context.Context) (*entity.DonationSummary, error) {
	summary := entity.NewDonationSummary()
	if _, err := r.ns.Get(ctx, summaryKey, summary); err != nil {
		return nil, fmt.Errorf("failed to load donation summary: %w", err)
	}
	if summary.RecentSupporters == nil {
		summary.RecentSupporters = []entity.DonationRecord{}
	}
	return summary, nil
}

// Update applies fn to the stored summary inside a BadgerDB transaction
func (r *BadgerSummaryRepository) Update(ctx context.Context, fn func(summary *entity.DonationSummary) error) (*entity.DonationSummary, error) {
	return UpdateJSON(ctx, r.ns, summaryKey, entity.NewDonationSummary, fn)
}
