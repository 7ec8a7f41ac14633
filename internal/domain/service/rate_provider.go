package service

import (
	"context"

	"github.com/damon-houk/donation-ledger/internal/domain/entity"
)

// RateProvider defines the interface for an external FX rate source
type RateProvider interface {
	// FetchRates returns the current rates of symbols against base
	FetchRates(ctx context.Context, base string, symbols []string) (entity.Rates, error)
}

// RateSource yields the best available rates and never fails
type RateSource interface {
	GetRates(ctx context.Context) entity.Rates
}
