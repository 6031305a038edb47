package quota

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FabianHardy/stm-v2-sub000/internal/campaign"
	"github.com/FabianHardy/stm-v2-sub000/internal/customer"
)

type fakeUsage struct {
	byItem map[int64]Usage
	calls  int
}

func (f *fakeUsage) ItemUsage(_ context.Context, itemID int64, _ customer.Key) (Usage, error) {
	f.calls++
	return f.byItem[itemID], nil
}

func intp(n int) *int { return &n }

var buyer = customer.Key{Number: "802412", Country: "BE"}

func TestAvailabilityBothBounds(t *testing.T) {
	// max_total 5, max_per_customer 3, customer already has 2 accepted units
	ledger := &Ledger{Usage: &fakeUsage{byItem: map[int64]Usage{
		7: {Customer: 2, Global: 2},
	}}}
	item := campaign.Item{ID: 7, Code: "4711", MaxTotal: intp(5), MaxPerCustomer: intp(3)}

	av, err := ledger.Availability(context.Background(), item, buyer)
	require.NoError(t, err)

	assert.Equal(t, Bounded(1), av.CustomerRemaining)
	assert.Equal(t, Bounded(3), av.GlobalRemaining)
	assert.Equal(t, Bounded(1), av.MaxOrderable)
	assert.True(t, av.IsOrderable)
}

func TestAvailabilityUnbounded(t *testing.T) {
	ledger := &Ledger{Usage: &fakeUsage{byItem: map[int64]Usage{
		7: {Customer: 1000, Global: 100000},
	}}}
	item := campaign.Item{ID: 7, Code: "4711"} // no limits configured

	av, err := ledger.Availability(context.Background(), item, buyer)
	require.NoError(t, err)

	assert.False(t, av.MaxOrderable.IsBounded())
	assert.True(t, av.IsOrderable)
}

func TestAvailabilityNeverNegative(t *testing.T) {
	// usage overshot the limit (pre-existing data); remaining clamps to 0
	ledger := &Ledger{Usage: &fakeUsage{byItem: map[int64]Usage{
		7: {Customer: 9, Global: 9},
	}}}
	item := campaign.Item{ID: 7, Code: "4711", MaxTotal: intp(5), MaxPerCustomer: intp(3)}

	av, err := ledger.Availability(context.Background(), item, buyer)
	require.NoError(t, err)

	assert.Equal(t, Bounded(0), av.CustomerRemaining)
	assert.Equal(t, Bounded(0), av.GlobalRemaining)
	assert.Equal(t, Bounded(0), av.MaxOrderable)
	assert.False(t, av.IsOrderable)
}

func TestGlobalBoundWins(t *testing.T) {
	ledger := &Ledger{Usage: &fakeUsage{byItem: map[int64]Usage{
		7: {Customer: 0, Global: 4},
	}}}
	item := campaign.Item{ID: 7, Code: "4711", MaxTotal: intp(5), MaxPerCustomer: intp(3)}

	av, err := ledger.Availability(context.Background(), item, buyer)
	require.NoError(t, err)

	assert.Equal(t, Bounded(3), av.CustomerRemaining)
	assert.Equal(t, Bounded(1), av.GlobalRemaining)
	assert.Equal(t, Bounded(1), av.MaxOrderable)
}

func TestHasAnyOrderableShortCircuits(t *testing.T) {
	usage := &fakeUsage{byItem: map[int64]Usage{
		1: {Customer: 3, Global: 3}, // exhausted
		2: {Customer: 0, Global: 0}, // open
		3: {Customer: 0, Global: 0}, // never reached
	}}
	ledger := &Ledger{Usage: usage}
	items := []campaign.Item{
		{ID: 1, Code: "a", MaxPerCustomer: intp(3)},
		{ID: 2, Code: "b", MaxTotal: intp(10)},
		{ID: 3, Code: "c"},
	}

	ok, err := ledger.HasAnyOrderable(context.Background(), items, buyer)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, usage.calls)
}

func TestHasAnyOrderableAllExhausted(t *testing.T) {
	ledger := &Ledger{Usage: &fakeUsage{byItem: map[int64]Usage{
		1: {Customer: 5, Global: 5},
	}}}
	items := []campaign.Item{{ID: 1, Code: "a", MaxTotal: intp(5)}}

	ok, err := ledger.HasAnyOrderable(context.Background(), items, buyer)
	require.NoError(t, err)
	assert.False(t, ok)
}
