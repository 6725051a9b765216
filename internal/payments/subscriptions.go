package payments

import (
	"context"

	"mayadmin/internal/types"
)

// subscriptionsCacheKey is the single cache key for the reconciled
// subscription map; subscriptions are always enumerated in full.
const subscriptionsCacheKey = "subscriptions"

// SubscriptionsByDevice enumerates every provider subscription and reduces
// them to the latest-created subscription per linked device. Subscriptions
// without a device link are dropped. When two subscriptions for a device
// share a created_at, the one encountered later in provider order wins.
// Results are cached independently of payments under the same TTL.
func (s *Service) SubscriptionsByDevice(ctx context.Context, forceRefresh bool) (map[string]types.DeviceSubscription, error) {
	if !forceRefresh {
		if cached, ok := s.subCache.Get(subscriptionsCacheKey); ok {
			s.logger.DebugContext(ctx, "subscriptions cache hit", "devices", len(cached))
			return cached, nil
		}
	}

	var all []types.Subscription
	skip := 0
	for {
		batch, err := s.provider.ListSubscriptions(ctx, s.cfg.BatchSize, skip)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < s.cfg.BatchSize {
			break
		}
		skip += s.cfg.BatchSize
		if skip >= s.cfg.MaxSkip {
			s.logger.WarnContext(ctx, "subscription enumeration hit skip ceiling; result truncated",
				"max_skip", s.cfg.MaxSkip,
				"fetched", len(all),
			)
			break
		}
	}

	result := make(map[string]types.DeviceSubscription)
	for _, sub := range all {
		deviceID := sub.Notes.DeviceID
		if deviceID == "" {
			continue
		}
		if current, ok := result[deviceID]; ok && sub.CreatedAt < current.CreatedAt {
			continue
		}
		result[deviceID] = types.DeviceSubscription{
			Status:    sub.Status,
			CreatedAt: sub.CreatedAt,
		}
	}

	s.subCache.Put(subscriptionsCacheKey, result)
	s.logger.InfoContext(ctx, "subscriptions refreshed from provider",
		"subscriptions", len(all),
		"devices", len(result),
	)
	return result, nil
}
