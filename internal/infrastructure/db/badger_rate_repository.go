// Package db internal/infrastructure/db/badger_rate_repository.go
package db

import (
	"context"
	"fmt"

	"github.com/damon-houk/donation-ledger/internal/domain/entity"
	"github.com/damon-houk/donation-ledger/internal/domain/repository"
)

const (
	// RatesNamespace holds the cached exchange rate snapshot
	RatesNamespace = "donation-fx"
	ratesKey       = "rates"
)

// BadgerRateRepository implements the RateSnapshotRepository interface using BadgerDB
type BadgerRateRepository struct {
	ns *Namespace
}

// NewBadgerRateRepository creates a new repository for rate snapshots
func NewBadgerRateRepository(store *BadgerStore) repository.RateSnapshotRepository {
	return &BadgerRateRepository{ns: store.Namespace(RatesNamespace)}
}

// Load returns the stored snapshot or nil when none exists
func (r *BadgerRateRepository) Load(ctx context.Context) (*entity.ExchangeRateSnapshot, error) {
	var snapshot entity.ExchangeRateSnapshot
	found, err := r.ns.Get(ctx, ratesKey, &snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate snapshot: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &snapshot, nil
}

// Save replaces the stored snapshot
func (r *BadgerRateRepository) Save(ctx context.Context, snapshot *entity.ExchangeRateSnapshot) error {
	if err := r.ns.Put(ctx, ratesKey, snapshot); err != nil {
		return fmt.Errorf("failed to save rate snapshot: %w", err)
	}
	return nil
}
