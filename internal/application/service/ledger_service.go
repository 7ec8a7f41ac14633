// Package service internal/application/service/ledger_service.go
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/damon-houk/donation-ledger/internal/domain/entity"
	"github.com/damon-houk/donation-ledger/internal/domain/repository"
	domainservice "github.com/damon-houk/donation-ledger/internal/domain/service"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/logger"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/metrics"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// isoMillis matches the ISO-8601 form used for every stored timestamp
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Reasons reported for deliveries that are accepted without changing the summary
const (
	IgnoredNonPositiveAmount = "non_positive_amount"
	IgnoredDuplicate         = "duplicate"
)

var errDuplicateDelivery = errors.New("duplicate delivery")

// LedgerConfig configures the donation ledger
type LedgerConfig struct {
	VerificationToken      string
	ReferenceCurrency      string
	DisplayCurrencies      []string
	DefaultDisplayCurrency string
}

// IngestResult describes the outcome of an accepted webhook delivery
type IngestResult struct {
	Ignored bool
	Reason  string
	Record  *entity.DonationRecord
	Summary *entity.DonationSummary
}

// SupporterView is one recent supporter rendered in the display currency
type SupporterView struct {
	Name      string
	Amount    int64
	Currency  string
	Message   string
	Timestamp string
}

// SummaryView is the donation summary rendered in the display currency
type SummaryView struct {
	Currency         string
	TotalAmount      int64
	SupportersCount  int64
	RecentSupporters []SupporterView
	LastUpdatedIso   string
}

// LedgerService ingests donations into the summary and renders it for display
type LedgerService struct {
	cfg       LedgerConfig
	summaries repository.SummaryRepository
	rates     domainservice.RateSource
	publisher domainservice.EventPublisher
	logger    logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewLedgerService creates a new ledger service. publisher may be nil.
func NewLedgerService(cfg LedgerConfig, summaries repository.SummaryRepository, rates domainservice.RateSource, publisher domainservice.EventPublisher, log logger.Logger, m *metrics.Metrics) *LedgerService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if m == nil {
		m = metrics.NewNopMetrics()
	}

	cfg.ReferenceCurrency = strings.ToUpper(cfg.ReferenceCurrency)
	cfg.DefaultDisplayCurrency = strings.ToUpper(cfg.DefaultDisplayCurrency)

	return &LedgerService{
		cfg:       cfg,
		summaries: summaries,
		rates:     rates,
		publisher: publisher,
		logger:    log,
		metrics:   m,
		now:       time.Now,
	}
}

// SetClock replaces the time source
func (s *LedgerService) SetClock(now func() time.Time) {
	s.now = now
}

// Ingest authenticates a webhook delivery, normalizes its amount to the
// reference currency and applies it to the summary. Deliveries without a
// positive amount, and repeated deliveries of a transaction still in the
// recent window, are accepted but leave the summary untouched.
func (s *LedgerService) Ingest(ctx context.Context, payload WebhookPayload) (*IngestResult, error) {
	requestID := middleware.GetRequestID(ctx)

	if s.cfg.VerificationToken == "" {
		s.metrics.DonationsRejectedTotal.WithLabelValues("config").Inc()
		s.logger.Error("Verification token is not configured", map[string]interface{}{
			"request_id": requestID,
		})
		return nil, fmt.Errorf("%w: KOFI_VERIFICATION_TOKEN missing", entity.ErrConfig)
	}

	incoming := payload.firstString(tokenFields, "")
	if subtle.ConstantTimeCompare([]byte(incoming), []byte(s.cfg.VerificationToken)) != 1 {
		s.metrics.DonationsRejectedTotal.WithLabelValues("unauthorized").Inc()
		s.logger.Warn("Webhook rejected: verification token mismatch", map[string]interface{}{
			"request_id": requestID,
		})
		return nil, entity.ErrUnauthorized
	}

	now := s.now().UTC()
	amountRaw := payload.firstString(amountFields, "0")
	currency := strings.ToUpper(strings.TrimSpace(payload.firstString(currencyFields, s.cfg.ReferenceCurrency)))
	if currency == "" {
		currency = s.cfg.ReferenceCurrency
	}

	amount := ParseAmount(amountRaw)
	if !amount.IsPositive() {
		s.metrics.DonationsIgnoredTotal.WithLabelValues(IgnoredNonPositiveAmount).Inc()
		s.logger.Info("Webhook ignored: amount is not positive", map[string]interface{}{
			"request_id": requestID,
			"amount_raw": amountRaw,
		})
		return &IngestResult{Ignored: true, Reason: IgnoredNonPositiveAmount}, nil
	}

	amountReference := s.toReference(ctx, amount, currency)
	originalAmount, _ := amount.Float64()
	referenceAmount, _ := amountReference.Float64()

	record := entity.DonationRecord{
		Name:            payload.firstString(nameFields, entity.AnonymousSupporter),
		AmountReference: referenceAmount,
		Original: entity.OriginalAmount{
			Amount:   originalAmount,
			Currency: currency,
		},
		Message:       payload.firstString(messageFields, ""),
		Timestamp:     payload.firstString(timestampFields, now.Format(isoMillis)),
		TransactionID: payload.firstString(transactionFields, ""),
	}

	summary, err := s.summaries.Update(ctx, func(summary *entity.DonationSummary) error {
		if summary.HasTransaction(record.TransactionID) {
			return errDuplicateDelivery
		}
		summary.Add(record, now.Format(isoMillis))
		return nil
	})
	if errors.Is(err, errDuplicateDelivery) {
		s.metrics.DonationsIgnoredTotal.WithLabelValues(IgnoredDuplicate).Inc()
		s.logger.Info("Webhook ignored: duplicate delivery", map[string]interface{}{
			"request_id":     requestID,
			"transaction_id": record.TransactionID,
		})
		return &IngestResult{Ignored: true, Reason: IgnoredDuplicate}, nil
	}
	if err != nil {
		s.logger.Error("Failed to update donation summary", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("failed to update donation summary: %w", err)
	}

	s.metrics.DonationsAcceptedTotal.WithLabelValues(currency).Inc()
	s.metrics.DonationsAmountTotal.Add(referenceAmount)

	s.logger.Info("Donation recorded", map[string]interface{}{
		"request_id":       requestID,
		"name":             record.Name,
		"original_amount":  originalAmount,
		"currency":         currency,
		"amount_reference": referenceAmount,
		"supporters_count": summary.SupportersCount,
	})

	s.publish(ctx, record, summary, now)

	return &IngestResult{Record: &record, Summary: summary}, nil
}

// toReference converts amount from currency into the reference currency.
// Without a usable rate the amount is kept as is.
func (s *LedgerService) toReference(ctx context.Context, amount decimal.Decimal, currency string) decimal.Decimal {
	if currency == s.cfg.ReferenceCurrency {
		return amount
	}

	rate, ok := s.rates.GetRates(ctx).Rate(currency)
	if !ok {
		s.logger.Warn("No exchange rate for donation currency, storing amount unconverted", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"currency":   currency,
		})
		return amount
	}

	// Rates are reference -> currency, so the inverse applies here
	return amount.Div(decimal.NewFromFloat(rate))
}

func (s *LedgerService) publish(ctx context.Context, record entity.DonationRecord, summary *entity.DonationSummary, now time.Time) {
	if s.publisher == nil {
		return
	}

	event := domainservice.DonationAcceptedEvent{
		EventID:          uuid.New().String(),
		Name:             record.Name,
		AmountReference:  record.AmountReference,
		OriginalAmount:   record.Original.Amount,
		OriginalCurrency: record.Original.Currency,
		TransactionID:    record.TransactionID,
		SupportersCount:  summary.SupportersCount,
		TotalReference:   summary.TotalReference,
		OccurredAt:       now,
	}
	if err := s.publisher.PublishDonationAccepted(ctx, event); err != nil {
		s.logger.Warn("Failed to publish donation event", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"event_id":   event.EventID,
			"error":      err.Error(),
		})
	}
}

// Snapshot renders the summary in the requested display currency.
// Unsupported or empty currencies fall back to the default display currency.
func (s *LedgerService) Snapshot(ctx context.Context, displayCurrency string) (*SummaryView, error) {
	requestID := middleware.GetRequestID(ctx)

	summary, err := s.summaries.Load(ctx)
	if err != nil {
		s.logger.Error("Failed to load donation summary", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("failed to load donation summary: %w", err)
	}

	currency := s.DisplayCurrency(displayCurrency)
	multiplier := decimal.NewFromInt(1)
	if rate, ok := s.rates.GetRates(ctx).Rate(currency); ok {
		multiplier = decimal.NewFromFloat(rate)
	}

	recent := make([]SupporterView, 0, len(summary.RecentSupporters))
	for _, r := range summary.RecentSupporters {
		recent = append(recent, SupporterView{
			Name:      r.Name,
			Amount:    RenderAmount(r.AmountReference, multiplier),
			Currency:  currency,
			Message:   r.Message,
			Timestamp: r.Timestamp,
		})
	}

	lastUpdated := summary.LastUpdatedIso
	if lastUpdated == "" {
		lastUpdated = s.now().UTC().Format(isoMillis)
	}

	s.logger.Debug("Summary rendered", map[string]interface{}{
		"request_id":       requestID,
		"currency":         currency,
		"multiplier":       multiplier.String(),
		"supporters_count": summary.SupportersCount,
	})

	return &SummaryView{
		Currency:         currency,
		TotalAmount:      RenderAmount(summary.TotalReference, multiplier),
		SupportersCount:  summary.SupportersCount,
		RecentSupporters: recent,
		LastUpdatedIso:   lastUpdated,
	}, nil
}

// DisplayCurrency normalizes a requested display currency
func (s *LedgerService) DisplayCurrency(requested string) string {
	code := strings.ToUpper(strings.TrimSpace(requested))
	for _, supported := range s.cfg.DisplayCurrencies {
		if code == strings.ToUpper(supported) {
			return code
		}
	}
	return s.cfg.DefaultDisplayCurrency
}

// RenderAmount converts a reference amount at multiplier and rounds it to whole units
func RenderAmount(amountReference float64, multiplier decimal.Decimal) int64 {
	return decimal.NewFromFloat(amountReference).Mul(multiplier).Round(0).IntPart()
}
