package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/damon-houk/donation-ledger/internal/domain/entity"
	"github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestNamespaceGetPut(t *testing.T) {
	store := NewBadgerStore(openTestDB(t))
	ctx := context.Background()

	fx := store.Namespace(RatesNamespace)
	summary := store.Namespace(SummaryNamespace)

	var got map[string]int
	found, err := fx.Get(ctx, "value", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, fx.Put(ctx, "value", map[string]int{"a": 1}))

	found, err = fx.Get(ctx, "value", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, map[string]int{"a": 1}, got)

	// Same name in another namespace is independent
	found, err = summary.Get(ctx, "value", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNamespaceCanceledContext(t *testing.T) {
	store := NewBadgerStore(openTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Namespace("ns").Put(ctx, "k", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateRepository(t *testing.T) {
	repo := NewBadgerRateRepository(NewBadgerStore(openTestDB(t)))
	ctx := context.Background()

	snapshot, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	fetched := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, &entity.ExchangeRateSnapshot{
		Rates:     entity.Rates{"JPY": 150, "EUR": 1.05},
		Timestamp: fetched.UnixMilli(),
	}))

	// A later save replaces the whole snapshot
	require.NoError(t, repo.Save(ctx, &entity.ExchangeRateSnapshot{
		Rates:     entity.Rates{"JPY": 160},
		Timestamp: fetched.Add(time.Hour).UnixMilli(),
	}))

	snapshot, err = repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, entity.Rates{"JPY": 160}, snapshot.Rates)
	assert.Equal(t, fetched.Add(time.Hour).UnixMilli(), snapshot.Timestamp)
}

func TestSummaryRepository(t *testing.T) {
	repo := NewBadgerSummaryRepository(NewBadgerStore(openTestDB(t)))
	ctx := context.Background()

	t.Run("Zero summary before first write", func(t *testing.T) {
		summary, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0.0, summary.TotalReference)
		assert.Equal(t, int64(0), summary.SupportersCount)
		assert.NotNil(t, summary.RecentSupporters)
		assert.Empty(t, summary.LastUpdatedIso)
	})

	t.Run("Update persists", func(t *testing.T) {
		updated, err := repo.Update(ctx, func(s *entity.DonationSummary) error {
			s.Add(entity.DonationRecord{Name: "Alice", AmountReference: 5}, "2024-03-01T08:00:00.000Z")
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated.SupportersCount)

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, updated, loaded)
	})

	t.Run("Failed update leaves summary unchanged", func(t *testing.T) {
		errStop := errors.New("stop")
		_, err := repo.Update(ctx, func(s *entity.DonationSummary) error {
			s.Add(entity.DonationRecord{Name: "Bob", AmountReference: 7}, "later")
			return errStop
		})
		assert.ErrorIs(t, err, errStop)

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), loaded.SupportersCount)
		assert.Equal(t, 5.0, loaded.TotalReference)
	})
}

func TestSummaryRepositoryConcurrentUpdates(t *testing.T) {
	store := NewBadgerStore(openTestDB(t))
	repo := NewBadgerSummaryRepository(store)
	ctx := context.Background()

	var (
		mu        sync.Mutex
		conflicts int
		succeeded int
	)
	store.OnConflict(func() {
		mu.Lock()
		conflicts++
		mu.Unlock()
	})

	const writers = 8
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, func(s *entity.DonationSummary) error {
				s.Add(entity.DonationRecord{Name: "x", AmountReference: 1}, "now")
				return nil
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Every committed update is reflected, none is lost to a concurrent writer
	summary, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(succeeded), summary.SupportersCount)
	assert.Equal(t, float64(succeeded), summary.TotalReference)
	t.Logf("%d updates committed, %d conflicts retried", succeeded, conflicts)
}
