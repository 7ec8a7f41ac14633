// internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/damon-houk/donation-ledger/internal/domain/entity"
	"github.com/damon-houk/donation-ledger/internal/domain/service"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/logger"
	"github.com/stretchr/testify/mock"
)

// MockRateSnapshotRepository mocks the RateSnapshotRepository interface
type MockRateSnapshotRepository struct {
	mock.Mock
}

func (m *MockRateSnapshotRepository) Load(ctx context.Context) (*entity.ExchangeRateSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExchangeRateSnapshot), args.Error(1)
}

func (m *MockRateSnapshotRepository) Save(ctx context.Context, snapshot *entity.ExchangeRateSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

// MockSummaryRepository mocks the SummaryRepository interface
type MockSummaryRepository struct {
	mock.Mock
}

func (m *MockSummaryRepository) Load(ctx context.Context) (*entity.DonationSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DonationSummary), args.Error(1)
}

func (m *MockSummaryRepository) Update(ctx context.Context, fn func(summary *entity.DonationSummary) error) (*entity.DonationSummary, error) {
	args := m.Called(ctx, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DonationSummary), args.Error(1)
}

// MockRateProvider mocks the RateProvider interface
type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) FetchRates(ctx context.Context, base string, symbols []string) (entity.Rates, error) {
	args := m.Called(ctx, base, symbols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.Rates), args.Error(1)
}

// MockRateSource mocks the RateSource interface
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) GetRates(ctx context.Context) entity.Rates {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(entity.Rates)
}

// MockEventPublisher mocks the EventPublisher interface
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishDonationAccepted(ctx context.Context, event service.DonationAcceptedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockLogger mocks the logger interface
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	args := m.Called(key, value)
	return args.Get(0).(logger.Logger)
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	args := m.Called(fields)
	return args.Get(0).(logger.Logger)
}
