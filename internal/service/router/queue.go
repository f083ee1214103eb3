package router

import (
	"context"
	"encoding/json"
	"fmt"

	"toorak_vpn/internal/model"
)

func routeKey(tier model.Tier) string {
	return fmt.Sprintf("route:%s", tier.Normalize())
}

func (r *Router) PutRecordsToRoute(ctx context.Context, tier model.Tier, records []*model.ProtectedRecord) error {
	if r.queue == nil {
		return ErrUnavailable
	}
	vals := make([]any, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		vals = append(vals, data)
	}
	key := routeKey(tier)
	if err := r.queue.RPush(ctx, key, vals...); err != nil {
		return err
	}
	if r.routeTTL > 0 {
		return r.queue.Expire(ctx, key, r.routeTTL)
	}
	return nil
}

// DrainRoute returns and removes every record queued for tier.
func (r *Router) DrainRoute(ctx context.Context, tier model.Tier) ([]*model.ProtectedRecord, error) {
	if r.queue == nil {
		return nil, ErrUnavailable
	}
	vals, err := r.queue.Drain(ctx, routeKey(tier))
	if err != nil {
		return nil, err
	}

	res := make([]*model.ProtectedRecord, 0, len(vals))
	for _, v := range vals {
		var rec model.ProtectedRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, err
		}
		res = append(res, &rec)
	}
	return res, nil
}

// RouteDepths reports how many records wait on each tier's route.
func (r *Router) RouteDepths(ctx context.Context) (map[model.Tier]int64, error) {
	if r.queue == nil {
		return nil, ErrUnavailable
	}
	depths := make(map[model.Tier]int64, len(model.Tiers))
	for _, tier := range model.Tiers {
		n, err := r.queue.LLen(ctx, routeKey(tier))
		if err != nil {
			return nil, err
		}
		depths[tier] = n
	}
	return depths, nil
}
