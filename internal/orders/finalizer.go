package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/FabianHardy/stm-v2-sub000/internal/campaign"
	"github.com/FabianHardy/stm-v2-sub000/internal/customer"
	"github.com/FabianHardy/stm-v2-sub000/internal/quota"
)

var ErrEmptyCart = errors.New("cart is empty")

// CartEntry is one resolved cart line handed to finalization.
type CartEntry struct {
	Item campaign.Item
	Qty  int
}

type AvailabilitySource interface {
	Availability(ctx context.Context, item campaign.Item, key customer.Key) (quota.Availability, error)
}

type OrderStore interface {
	Finalize(ctx context.Context, o Order, lines []Line, recheck func(context.Context) error) error
}

// Finalizer turns a cart snapshot into a persisted order. This is the only
// place quota consumption becomes real: cart mutations are advisory, the
// final quota check runs inside the store's serialized transaction.
type Finalizer struct {
	Store OrderStore
	Quota AvailabilitySource
	Now   func() time.Time
}

func (f *Finalizer) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now().UTC()
}

func (f *Finalizer) Finalize(ctx context.Context, cmp *campaign.Campaign, key customer.Key, entries []CartEntry) (*Order, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCart
	}

	o := Order{
		ID:             uuid.NewString(),
		CampaignID:     cmp.ID,
		CustomerNumber: key.Number,
		Country:        key.Country,
		Status:         StatusPendingSync,
		CreatedAt:      f.now(),
	}
	lines := make([]Line, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, Line{
			OrderID:     o.ID,
			ItemID:      e.Item.ID,
			ProductCode: e.Item.Code,
			Quantity:    e.Qty,
		})
	}

	recheck := func(ctx context.Context) error {
		for _, e := range entries {
			av, err := f.Quota.Availability(ctx, e.Item, key)
			if err != nil {
				return err
			}
			if !av.IsOrderable {
				return &quota.Rejected{Reason: quota.ReasonNotOrderable, ProductCode: e.Item.Code, MaxOrderable: av.MaxOrderable}
			}
			if !av.MaxOrderable.Allows(e.Qty) {
				return &quota.Rejected{Reason: quota.ReasonQuotaExceeded, ProductCode: e.Item.Code, MaxOrderable: av.MaxOrderable}
			}
		}
		return nil
	}

	if err := f.Store.Finalize(ctx, o, lines, recheck); err != nil {
		return nil, err
	}
	return &o, nil
}
