// Package payments reads payment and subscription data from the payment
// provider and aggregates it for the dashboard. Provider objects are never
// persisted; every consumer works from a TTL-cached in-memory enumeration.
package payments

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"mayadmin/internal/config"
	"mayadmin/internal/istime"
	"mayadmin/internal/types"
)

// ProviderAPI is the subset of the payment provider client the service needs.
type ProviderAPI interface {
	ListPayments(ctx context.Context, count, skip int, from *int64) ([]types.Payment, error)
	ListSubscriptions(ctx context.Context, count, skip int) ([]types.Subscription, error)
}

// DeviceTierLookup resolves device identifiers to their local user tier.
type DeviceTierLookup interface {
	UserTypes(ctx context.Context) (map[string]string, error)
}

// Stats are aggregate payment figures for one date range, computed after
// denylist filtering. Revenue is in rupees (provider amounts are paise).
type Stats struct {
	Total    int     `json:"total"`
	Captured int     `json:"captured"`
	Failed   int     `json:"failed"`
	Revenue  float64 `json:"revenue"`
}

// DailySeries is the per-day payment breakdown as parallel arrays, oldest
// day first, sized to the requested day count.
type DailySeries struct {
	Dates    []string  `json:"dates"`
	Captured []int     `json:"captured"`
	Failed   []int     `json:"failed"`
	Revenue  []float64 `json:"revenue"`
}

// PaidFreePayment is a captured payment whose device has not been promoted to
// premium, or that carries no device link at all. UserType is the device's
// current local tier; empty when the device is unknown or unlinked.
type PaidFreePayment struct {
	types.Payment
	UserType string `json:"user_type"`
}

// Service enumerates provider payments and subscriptions through a TTL cache
// and derives the dashboard's payment statistics from them.
type Service struct {
	provider ProviderAPI
	devices  DeviceTierLookup
	cfg      config.RazorpayConfig
	ignored  map[string]struct{}
	logger   *slog.Logger

	payCache *Cache[[]types.Payment]
	subCache *Cache[map[string]types.DeviceSubscription]
	nowFn    func() time.Time
}

// NewService creates a payment Service. The ignored-contacts denylist and the
// enumeration constants come from cfg.
func NewService(provider ProviderAPI, devices DeviceTierLookup, cfg config.RazorpayConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	ignored := make(map[string]struct{}, len(cfg.IgnoredContacts))
	for _, contact := range cfg.IgnoredContacts {
		ignored[contact] = struct{}{}
	}

	return &Service{
		provider: provider,
		devices:  devices,
		cfg:      cfg,
		ignored:  ignored,
		logger:   logger,
		payCache: NewCache[[]types.Payment](cfg.CacheTTL),
		subCache: NewCache[map[string]types.DeviceSubscription](cfg.CacheTTL),
		nowFn:    time.Now,
	}
}

// AllPayments returns every payment created at or after from (all payments
// when from is nil), newest first as the provider returns them. Results are
// served from the cache unless stale or forceRefresh is set; a refresh
// enumerates the provider in fixed-size batches until a short batch or the
// configured skip ceiling. The result is raw: denylist filtering is applied
// by consumers, not here.
func (s *Service) AllPayments(ctx context.Context, from *int64, forceRefresh bool) ([]types.Payment, error) {
	key := cacheKey(from)
	if !forceRefresh {
		if cached, ok := s.payCache.Get(key); ok {
			s.logger.DebugContext(ctx, "payments cache hit", "key", key, "count", len(cached))
			return cached, nil
		}
	}

	var all []types.Payment
	skip := 0
	for {
		batch, err := s.provider.ListPayments(ctx, s.cfg.BatchSize, skip, from)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < s.cfg.BatchSize {
			break
		}
		skip += s.cfg.BatchSize
		if skip >= s.cfg.MaxSkip {
			s.logger.WarnContext(ctx, "payment enumeration hit skip ceiling; result truncated",
				"max_skip", s.cfg.MaxSkip,
				"fetched", len(all),
			)
			break
		}
	}

	s.payCache.Put(key, all)
	s.logger.InfoContext(ctx, "payments refreshed from provider", "key", key, "count", len(all))
	return all, nil
}

// isIgnored reports whether a payment belongs to a denylisted test contact.
// Matching is exact on contact or email.
func (s *Service) isIgnored(p types.Payment) bool {
	if _, ok := s.ignored[p.Contact]; ok {
		return true
	}
	if _, ok := s.ignored[p.Email]; ok {
		return true
	}
	return false
}

// Stats computes aggregate payment figures for the given date range.
func (s *Service) Stats(ctx context.Context, dateRange types.DateRange) (Stats, error) {
	from := istime.RangeStart(s.nowFn(), dateRange)
	all, err := s.AllPayments(ctx, from, false)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	var paise int64
	for _, p := range all {
		if s.isIgnored(p) {
			continue
		}
		stats.Total++
		switch p.Status {
		case types.PaymentCaptured:
			stats.Captured++
			paise += p.Amount
		case types.PaymentFailed:
			stats.Failed++
		}
	}
	stats.Revenue = float64(paise) / 100
	return stats, nil
}

// DailyStats buckets the last days calendar days of payments into per-day
// counts and revenue. Buckets are IST calendar days [start, end); the current
// day's bucket ends at now.
func (s *Service) DailyStats(ctx context.Context, days int) (DailySeries, error) {
	now := s.nowFn()
	from := istime.StartOfDay(now, days-1)

	all, err := s.AllPayments(ctx, &from, false)
	if err != nil {
		return DailySeries{}, err
	}

	series := DailySeries{
		Dates:    make([]string, 0, days),
		Captured: make([]int, 0, days),
		Failed:   make([]int, 0, days),
		Revenue:  make([]float64, 0, days),
	}

	for i := days - 1; i >= 0; i-- {
		start := istime.StartOfDay(now, i)
		end := now.Unix()
		if i > 0 {
			end = istime.StartOfDay(now, i-1)
		}

		var captured, failed int
		var paise int64
		for _, p := range all {
			if s.isIgnored(p) || p.CreatedAt < start || p.CreatedAt >= end {
				continue
			}
			switch p.Status {
			case types.PaymentCaptured:
				captured++
				paise += p.Amount
			case types.PaymentFailed:
				failed++
			}
		}

		series.Dates = append(series.Dates, istime.DayLabel(start))
		series.Captured = append(series.Captured, captured)
		series.Failed = append(series.Failed, failed)
		series.Revenue = append(series.Revenue, float64(paise)/100)
	}
	return series, nil
}

// ListPaginated returns one page of payments for the parameters' date range,
// optionally restricted to an exact provider status. The listing is raw:
// denylisted test contacts stay visible in the payment table, unlike the
// aggregate statistics. Paging is sliced in memory over the cached
// enumeration; provider order (newest first) is preserved.
func (s *Service) ListPaginated(ctx context.Context, params types.ListParams) (types.Page[types.Payment], error) {
	params = params.Normalize()
	var zero types.Page[types.Payment]

	from := istime.RangeStart(s.nowFn(), params.DateRange)
	all, err := s.AllPayments(ctx, from, false)
	if err != nil {
		return zero, err
	}

	filtered := make([]types.Payment, 0, len(all))
	for _, p := range all {
		if params.Status != "" && params.Status != "all" && string(p.Status) != params.Status {
			continue
		}
		filtered = append(filtered, p)
	}

	total := len(filtered)
	offset := params.Offset()
	if offset > total {
		offset = total
	}
	end := offset + params.PageSize
	if end > total {
		end = total
	}

	return types.NewPage(filtered[offset:end], total, params.Page, params.PageSize), nil
}

// PaidFreeUsers returns captured, non-denylisted payments whose device is not
// premium locally. Payments with no linked device are included for manual
// review. Payment enumeration and the device tier lookup run concurrently.
func (s *Service) PaidFreeUsers(ctx context.Context, forceRefresh bool) ([]PaidFreePayment, error) {
	var all []types.Payment
	var tiers map[string]string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = s.AllPayments(gctx, nil, forceRefresh)
		return err
	})
	g.Go(func() error {
		var err error
		tiers, err = s.devices.UserTypes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := []PaidFreePayment{}
	for _, p := range all {
		if s.isIgnored(p) || p.Status != types.PaymentCaptured {
			continue
		}
		userType := ""
		if p.Notes.DeviceID != "" {
			userType = tiers[p.Notes.DeviceID]
			if userType == types.UserTypePremium {
				continue
			}
		}
		result = append(result, PaidFreePayment{Payment: p, UserType: userType})
	}
	return result, nil
}

// ClearCache drops both the payment and subscription caches. The next read
// for any key goes to the provider.
func (s *Service) ClearCache() {
	s.payCache.Clear()
	s.subCache.Clear()
}
