package payments

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mayadmin/internal/config"
	"mayadmin/internal/istime"
	"mayadmin/internal/types"
)

// --- Mocks ---

type mockProvider struct {
	listPaymentsFn      func(ctx context.Context, count, skip int, from *int64) ([]types.Payment, error)
	listSubscriptionsFn func(ctx context.Context, count, skip int) ([]types.Subscription, error)
	paymentCalls        int
	subscriptionCalls   int
}

func (m *mockProvider) ListPayments(ctx context.Context, count, skip int, from *int64) ([]types.Payment, error) {
	m.paymentCalls++
	return m.listPaymentsFn(ctx, count, skip, from)
}

func (m *mockProvider) ListSubscriptions(ctx context.Context, count, skip int) ([]types.Subscription, error) {
	m.subscriptionCalls++
	return m.listSubscriptionsFn(ctx, count, skip)
}

type mockTiers struct {
	userTypesFn func(ctx context.Context) (map[string]string, error)
}

func (m *mockTiers) UserTypes(ctx context.Context) (map[string]string, error) {
	return m.userTypesFn(ctx)
}

// --- Helpers ---

func testConfig() config.RazorpayConfig {
	return config.RazorpayConfig{
		BatchSize:       100,
		MaxSkip:         10000,
		CacheTTL:        2 * time.Minute,
		IgnoredContacts: []string{"+911111111111", "tester@example.com"},
	}
}

func newTestService(provider *mockProvider, tiers *mockTiers, cfg config.RazorpayConfig) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(provider, tiers, cfg, logger)
}

// singlePage returns a provider function serving one short batch.
func singlePage(items []types.Payment) func(context.Context, int, int, *int64) ([]types.Payment, error) {
	return func(ctx context.Context, count, skip int, from *int64) ([]types.Payment, error) {
		if skip > 0 {
			return nil, nil
		}
		return items, nil
	}
}

func captured(id string, amount int64, createdAt int64, contact, deviceID string) types.Payment {
	return types.Payment{
		ID:        id,
		Amount:    amount,
		Status:    types.PaymentCaptured,
		Captured:  true,
		Contact:   contact,
		CreatedAt: createdAt,
		Notes:     types.PaymentNotes{DeviceID: deviceID},
	}
}

// --- Enumeration ---

func TestAllPayments_EnumeratesUntilShortBatch(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = 2

	full := []types.Payment{{ID: "a"}, {ID: "b"}}
	var skips []int
	provider := &mockProvider{
		listPaymentsFn: func(ctx context.Context, count, skip int, from *int64) ([]types.Payment, error) {
			skips = append(skips, skip)
			assert.Equal(t, 2, count)
			if skip >= 4 {
				return []types.Payment{{ID: "z"}}, nil
			}
			return full, nil
		},
	}
	svc := newTestService(provider, nil, cfg)

	all, err := svc.AllPayments(context.Background(), nil, false)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, []int{0, 2, 4}, skips)
}

func TestAllPayments_StopsAtSkipCeiling(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = 2
	cfg.MaxSkip = 4

	provider := &mockProvider{
		listPaymentsFn: func(ctx context.Context, count, skip int, from *int64) ([]types.Payment, error) {
			return []types.Payment{{ID: "a"}, {ID: "b"}}, nil
		},
	}
	svc := newTestService(provider, nil, cfg)

	all, err := svc.AllPayments(context.Background(), nil, false)
	require.NoError(t, err)
	// Batches at skip 0 and 2; no request is issued once skip reaches the
	// ceiling.
	assert.Equal(t, 2, provider.paymentCalls)
	assert.Len(t, all, 4)
}

func TestAllPayments_PropagatesFromBound(t *testing.T) {
	var gotFrom *int64
	provider := &mockProvider{
		listPaymentsFn: func(ctx context.Context, count, skip int, from *int64) ([]types.Payment, error) {
			gotFrom = from
			return nil, nil
		},
	}
	svc := newTestService(provider, nil, testConfig())

	from := int64(1756300000)
	_, err := svc.AllPayments(context.Background(), &from, false)
	require.NoError(t, err)
	require.NotNil(t, gotFrom)
	assert.Equal(t, from, *gotFrom)
}

func TestAllPayments_NotFilteredByDenylist(t *testing.T) {
	provider := &mockProvider{
		listPaymentsFn: singlePage([]types.Payment{
			captured("pay_1", 100, 1, "+911111111111", ""),
		}),
	}
	svc := newTestService(provider, nil, testConfig())

	all, err := svc.AllPayments(context.Background(), nil, false)
	require.NoError(t, err)
	assert.Len(t, all, 1, "raw enumeration keeps denylisted payments")
}

func TestAllPayments_ProviderErrorPropagates(t *testing.T) {
	upstream := types.NewAppError(types.ErrCodeUpstreamPayments, "boom", errors.New("boom"))
	provider := &mockProvider{
		listPaymentsFn: func(ctx context.Context, count, skip int, from *int64) ([]types.Payment, error) {
			return nil, upstream
		},
	}
	svc := newTestService(provider, nil, testConfig())

	_, err := svc.AllPayments(context.Background(), nil, false)
	assert.ErrorIs(t, err, upstream)
}

// --- Caching ---

func TestAllPayments_Caching(t *testing.T) {
	provider := &mockProvider{
		listPaymentsFn: singlePage([]types.Payment{{ID: "pay_1"}}),
	}
	svc := newTestService(provider, nil, testConfig())
	ctx := context.Background()

	_, err := svc.AllPayments(ctx, nil, false)
	require.NoError(t, err)
	_, err = svc.AllPayments(ctx, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.paymentCalls, "second read is served from cache")

	// A different lower bound is a different cache entry.
	from := int64(100)
	_, err = svc.AllPayments(ctx, &from, false)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.paymentCalls)

	// Forced refresh bypasses a fresh entry.
	_, err = svc.AllPayments(ctx, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 3, provider.paymentCalls)

	// Clearing invalidates everything.
	svc.ClearCache()
	_, err = svc.AllPayments(ctx, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 4, provider.paymentCalls)
}

func TestAllPayments_CacheExpiry(t *testing.T) {
	provider := &mockProvider{
		listPaymentsFn: singlePage([]types.Payment{{ID: "pay_1"}}),
	}
	svc := newTestService(provider, nil, testConfig())

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	svc.payCache.nowFn = func() time.Time { return now }

	ctx := context.Background()
	_, err := svc.AllPayments(ctx, nil, false)
	require.NoError(t, err)

	now = now.Add(3 * time.Minute)
	_, err = svc.AllPayments(ctx, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.paymentCalls, "stale entry is refetched")
}

// --- Stats ---

func TestStats(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	provider := &mockProvider{
		listPaymentsFn: singlePage([]types.Payment{
			captured("pay_1", 19900, now.Unix()-100, "+919999990001", "dev-1"),
			captured("pay_2", 15100, now.Unix()-200, "+919999990002", "dev-2"),
			{ID: "pay_3", Status: types.PaymentFailed, CreatedAt: now.Unix() - 300},
			{ID: "pay_4", Status: types.PaymentCreated, CreatedAt: now.Unix() - 400},
			// Denylisted test contact, invisible to statistics.
			captured("pay_5", 99900, now.Unix()-500, "+911111111111", "dev-3"),
		}),
	}
	svc := newTestService(provider, nil, testConfig())
	svc.nowFn = func() time.Time { return now }

	stats, err := svc.Stats(context.Background(), types.DateRangeAll)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Captured)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 350.00, stats.Revenue)
}

func TestStats_RangePassesLowerBound(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	var gotFrom *int64
	provider := &mockProvider{
		listPaymentsFn: func(ctx context.Context, count, skip int, from *int64) ([]types.Payment, error) {
			gotFrom = from
			return nil, nil
		},
	}
	svc := newTestService(provider, nil, testConfig())
	svc.nowFn = func() time.Time { return now }

	_, err := svc.Stats(context.Background(), types.DateRange7Days)
	require.NoError(t, err)
	require.NotNil(t, gotFrom)
	assert.Equal(t, istime.StartOfDay(now, 7), *gotFrom)
}

// --- Daily stats ---

func TestDailyStats(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	today := istime.StartOfDay(now, 0)
	yesterday := istime.StartOfDay(now, 1)
	dayBefore := istime.StartOfDay(now, 2)

	provider := &mockProvider{
		listPaymentsFn: singlePage([]types.Payment{
			captured("pay_1", 19900, today+100, "+919999990001", "dev-1"),
			captured("pay_2", 10000, yesterday+100, "+919999990002", "dev-2"),
			{ID: "pay_3", Status: types.PaymentFailed, CreatedAt: yesterday + 200},
			captured("pay_4", 5000, dayBefore+100, "+919999990003", "dev-3"),
			// Before the window; the provider would normally not return it.
			captured("pay_5", 77700, dayBefore-100, "+919999990004", "dev-4"),
		}),
	}
	svc := newTestService(provider, nil, testConfig())
	svc.nowFn = func() time.Time { return now }

	series, err := svc.DailyStats(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, series.Dates, 3)
	require.Len(t, series.Captured, 3)
	require.Len(t, series.Failed, 3)
	require.Len(t, series.Revenue, 3)

	// Oldest first.
	assert.Equal(t, istime.DayLabel(dayBefore), series.Dates[0])
	assert.Equal(t, istime.DayLabel(today), series.Dates[2])

	assert.Equal(t, []int{1, 1, 1}, series.Captured)
	assert.Equal(t, []int{0, 1, 0}, series.Failed)
	assert.Equal(t, []float64{50.00, 100.00, 199.00}, series.Revenue)
}

func TestDailyStats_WindowLowerBound(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	var gotFrom *int64
	provider := &mockProvider{
		listPaymentsFn: func(ctx context.Context, count, skip int, from *int64) ([]types.Payment, error) {
			gotFrom = from
			return nil, nil
		},
	}
	svc := newTestService(provider, nil, testConfig())
	svc.nowFn = func() time.Time { return now }

	series, err := svc.DailyStats(context.Background(), 14)
	require.NoError(t, err)
	require.NotNil(t, gotFrom)
	assert.Equal(t, istime.StartOfDay(now, 13), *gotFrom)
	assert.Len(t, series.Dates, 14)
}

// --- Paginated list ---

func TestListPaginated(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	items := make([]types.Payment, 0, 7)
	for i := 0; i < 5; i++ {
		items = append(items, captured(
			string(rune('a'+i)), 100, now.Unix()-int64(i), "+919999990001", "dev-1"))
	}
	items = append(items,
		types.Payment{ID: "failed-1", Status: types.PaymentFailed, CreatedAt: now.Unix() - 100},
		captured("ignored-1", 100, now.Unix()-200, "tester@example.com", "dev-9"),
	)

	provider := &mockProvider{listPaymentsFn: singlePage(items)}
	svc := newTestService(provider, nil, testConfig())
	svc.nowFn = func() time.Time { return now }
	ctx := context.Background()

	t.Run("slices pages and keeps denylisted contacts", func(t *testing.T) {
		page, err := svc.ListPaginated(ctx, types.ListParams{Page: 1, PageSize: 4})
		require.NoError(t, err)
		assert.Equal(t, 7, page.Total)
		assert.Equal(t, 2, page.TotalPages)
		require.Len(t, page.Data, 4)
		assert.Equal(t, "a", page.Data[0].ID)

		// The denylist scopes statistics, not the payment table.
		page, err = svc.ListPaginated(ctx, types.ListParams{Page: 2, PageSize: 4})
		require.NoError(t, err)
		require.Len(t, page.Data, 3)
		assert.Equal(t, "failed-1", page.Data[1].ID)
		assert.Equal(t, "ignored-1", page.Data[2].ID)
	})

	t.Run("status filter", func(t *testing.T) {
		page, err := svc.ListPaginated(ctx, types.ListParams{Status: string(types.PaymentFailed)})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "failed-1", page.Data[0].ID)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		page, err := svc.ListPaginated(ctx, types.ListParams{Page: 99, PageSize: 4})
		require.NoError(t, err)
		assert.Equal(t, 7, page.Total)
		assert.Empty(t, page.Data)
		assert.NotNil(t, page.Data)
	})

	t.Run("repeated reads are stable", func(t *testing.T) {
		first, err := svc.ListPaginated(ctx, types.ListParams{Page: 1, PageSize: 3})
		require.NoError(t, err)
		second, err := svc.ListPaginated(ctx, types.ListParams{Page: 1, PageSize: 3})
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

// --- Paid-but-free ---

func TestPaidFreeUsers(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	provider := &mockProvider{
		listPaymentsFn: singlePage([]types.Payment{
			captured("pay_free", 19900, now.Unix()-10, "+919999990001", "dev-free"),
			captured("pay_premium", 19900, now.Unix()-20, "+919999990002", "dev-premium"),
			captured("pay_unknown", 19900, now.Unix()-30, "+919999990003", "dev-unknown"),
			captured("pay_unlinked", 19900, now.Unix()-40, "+919999990004", ""),
			captured("pay_ignored", 19900, now.Unix()-50, "+911111111111", "dev-free"),
			{ID: "pay_failed", Status: types.PaymentFailed, CreatedAt: now.Unix() - 60,
				Notes: types.PaymentNotes{DeviceID: "dev-free"}},
		}),
	}
	tiers := &mockTiers{
		userTypesFn: func(ctx context.Context) (map[string]string, error) {
			return map[string]string{
				"dev-free":    types.UserTypeFree,
				"dev-premium": types.UserTypePremium,
			}, nil
		},
	}
	svc := newTestService(provider, tiers, testConfig())

	result, err := svc.PaidFreeUsers(context.Background(), false)
	require.NoError(t, err)

	ids := make([]string, 0, len(result))
	for _, p := range result {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"pay_free", "pay_unknown", "pay_unlinked"}, ids)

	assert.Equal(t, types.UserTypeFree, result[0].UserType)
	assert.Equal(t, "", result[1].UserType, "unknown device has no local tier")
	assert.Equal(t, "", result[2].UserType, "unlinked payment has no local tier")
}

func TestPaidFreeUsers_TierLookupErrorPropagates(t *testing.T) {
	provider := &mockProvider{
		listPaymentsFn: singlePage(nil),
	}
	dbErr := types.NewAppError(types.ErrCodeInternalDB, "db down", errors.New("db down"))
	tiers := &mockTiers{
		userTypesFn: func(ctx context.Context) (map[string]string, error) {
			return nil, dbErr
		},
	}
	svc := newTestService(provider, tiers, testConfig())

	_, err := svc.PaidFreeUsers(context.Background(), false)
	assert.ErrorIs(t, err, dbErr)
}
