// Package stats assembles the dashboard's headline numbers and daily time
// series by fanning out over the database aggregates and the payment service.
package stats

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"mayadmin/internal/istime"
	"mayadmin/internal/payments"
)

// maxDailyConcurrency caps the number of in-flight aggregate queries so a
// large day window cannot exhaust the connection pool.
const maxDailyConcurrency = 8

// DeviceCounter is the subset of the device repository the aggregator needs.
type DeviceCounter interface {
	Count(ctx context.Context) (int, error)
	CountCreatedSince(ctx context.Context, ts int64) (int, error)
	CountCreatedBetween(ctx context.Context, start, end int64) (int, error)
	CountPremium(ctx context.Context) (int, error)
}

// SessionCounter is the subset of the session repository the aggregator needs.
type SessionCounter interface {
	Count(ctx context.Context) (int, error)
	CountCreatedSince(ctx context.Context, ts int64) (int, error)
	CountCreatedBetween(ctx context.Context, start, end int64) (int, error)
	SumGenerations(ctx context.Context) (int, error)
	SumGenerationsBetween(ctx context.Context, start, end int64) (int, error)
	SumGenerationsSince(ctx context.Context, ts int64) (int, error)
}

// PaymentAggregator supplies the payment side of the daily report.
type PaymentAggregator interface {
	DailyStats(ctx context.Context, days int) (payments.DailySeries, error)
}

// Summary is the dashboard's headline record. "Today" is the current IST
// calendar day.
type Summary struct {
	TotalDevices     int `json:"total_devices"`
	TotalSessions    int `json:"total_sessions"`
	NewDevicesToday  int `json:"new_devices_today"`
	NewSessionsToday int `json:"new_sessions_today"`
	PremiumUsers     int `json:"premium_users"`
	TotalGenerations int `json:"total_generations"`
	TodayGenerations int `json:"today_generations"`
}

// DailyReport is the combined per-day time series as parallel arrays keyed by
// one date-label sequence, oldest day first. Database figures and payment
// figures are fetched from different sources at slightly different instants;
// the small skew is accepted.
type DailyReport struct {
	Dates       []string  `json:"dates"`
	Devices     []int     `json:"devices"`
	Sessions    []int     `json:"sessions"`
	Generations []int     `json:"generations"`
	Payments    []int     `json:"payments"`
	Revenue     []float64 `json:"revenue"`
}

// Service computes dashboard aggregates.
type Service struct {
	devices  DeviceCounter
	sessions SessionCounter
	payments PaymentAggregator
	logger   *slog.Logger
	nowFn    func() time.Time
}

// NewService creates a stats Service.
func NewService(devices DeviceCounter, sessions SessionCounter, pay PaymentAggregator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		devices:  devices,
		sessions: sessions,
		payments: pay,
		logger:   logger,
		nowFn:    time.Now,
	}
}

// Summary fetches the seven headline aggregates concurrently. Any single
// failure fails the whole summary.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	today := istime.StartOfDay(s.nowFn(), 0)

	var summary Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.devices.Count(gctx)
		summary.TotalDevices = n
		return err
	})
	g.Go(func() error {
		n, err := s.sessions.Count(gctx)
		summary.TotalSessions = n
		return err
	})
	g.Go(func() error {
		n, err := s.devices.CountCreatedSince(gctx, today)
		summary.NewDevicesToday = n
		return err
	})
	g.Go(func() error {
		n, err := s.sessions.CountCreatedSince(gctx, today)
		summary.NewSessionsToday = n
		return err
	})
	g.Go(func() error {
		n, err := s.devices.CountPremium(gctx)
		summary.PremiumUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.sessions.SumGenerations(gctx)
		summary.TotalGenerations = n
		return err
	})
	g.Go(func() error {
		n, err := s.sessions.SumGenerationsSince(gctx, today)
		summary.TodayGenerations = n
		return err
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// Daily builds the combined per-day report for the last days IST calendar
// days. Day buckets are [start, end); the current day's bucket ends at now.
// Each goroutine writes a distinct index, so the arrays need no locking.
func (s *Service) Daily(ctx context.Context, days int) (DailyReport, error) {
	now := s.nowFn()

	report := DailyReport{
		Dates:       make([]string, days),
		Devices:     make([]int, days),
		Sessions:    make([]int, days),
		Generations: make([]int, days),
	}

	var paySeries payments.DailySeries

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxDailyConcurrency)

	g.Go(func() error {
		var err error
		paySeries, err = s.payments.DailyStats(gctx, days)
		return err
	})

	for i := 0; i < days; i++ {
		daysAgo := i
		idx := days - 1 - i
		start := istime.StartOfDay(now, daysAgo)
		end := now.Unix()
		if daysAgo > 0 {
			end = istime.StartOfDay(now, daysAgo-1)
		}

		g.Go(func() error {
			devices, err := s.devices.CountCreatedBetween(gctx, start, end)
			if err != nil {
				return err
			}
			sessions, err := s.sessions.CountCreatedBetween(gctx, start, end)
			if err != nil {
				return err
			}
			generations, err := s.sessions.SumGenerationsBetween(gctx, start, end)
			if err != nil {
				return err
			}

			report.Dates[idx] = istime.DayLabel(start)
			report.Devices[idx] = devices
			report.Sessions[idx] = sessions
			report.Generations[idx] = generations
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return DailyReport{}, err
	}

	report.Payments = paySeries.Captured
	report.Revenue = paySeries.Revenue
	return report, nil
}
