package quota

import (
	"context"
	"fmt"

	"github.com/FabianHardy/stm-v2-sub000/internal/campaign"
	"github.com/FabianHardy/stm-v2-sub000/internal/customer"
)

// Usage is the consumed quantity of one item, per customer and overall.
// Only non-cancelled orders count.
type Usage struct {
	Customer int
	Global   int
}

type UsageSource interface {
	ItemUsage(ctx context.Context, itemID int64, key customer.Key) (Usage, error)
}

type Availability struct {
	CustomerRemaining Limit `json:"available_for_customer"`
	GlobalRemaining   Limit `json:"available_global"`
	MaxOrderable      Limit `json:"max_orderable"`
	IsOrderable       bool  `json:"is_orderable"`
}

// Ledger computes remaining quota on demand by summing accepted order
// lines. There is no persisted counter: the accepted orders are the single
// source of truth and every call recomputes from them.
type Ledger struct {
	Usage UsageSource
}

func (l *Ledger) Availability(ctx context.Context, item campaign.Item, key customer.Key) (Availability, error) {
	u, err := l.Usage.ItemUsage(ctx, item.ID, key)
	if err != nil {
		return Availability{}, fmt.Errorf("item %s usage: %w", item.Code, err)
	}
	cr := remaining(item.MaxPerCustomer, u.Customer)
	gr := remaining(item.MaxTotal, u.Global)
	mo := cr.Min(gr)
	return Availability{
		CustomerRemaining: cr,
		GlobalRemaining:   gr,
		MaxOrderable:      mo,
		IsOrderable:       mo.Positive(),
	}, nil
}

// HasAnyOrderable short-circuits on the first item with remaining stock.
func (l *Ledger) HasAnyOrderable(ctx context.Context, items []campaign.Item, key customer.Key) (bool, error) {
	for _, it := range items {
		av, err := l.Availability(ctx, it, key)
		if err != nil {
			return false, err
		}
		if av.IsOrderable {
			return true, nil
		}
	}
	return false, nil
}

func remaining(limit *int, used int) Limit {
	if limit == nil {
		return Unbounded()
	}
	left := *limit - used
	if left < 0 {
		left = 0
	}
	return Bounded(left)
}
