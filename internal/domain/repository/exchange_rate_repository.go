// Package repository declares the storage ports of the donation ledger
package repository

import (
	"context"

	"github.com/damon-houk/donation-ledger/internal/domain/entity"
)

// RateSnapshotRepository defines the interface for persisted exchange rate snapshots
type RateSnapshotRepository interface {
	// Load returns the last stored snapshot, or nil when none was ever stored
	Load(ctx context.Context) (*entity.ExchangeRateSnapshot, error)

	// Save replaces the stored snapshot
	Save(ctx context.Context, snapshot *entity.ExchangeRateSnapshot) error
}
