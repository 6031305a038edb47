package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FabianHardy/stm-v2-sub000/internal/campaign"
	"github.com/FabianHardy/stm-v2-sub000/internal/customer"
	"github.com/FabianHardy/stm-v2-sub000/internal/quota"
)

type memStore struct {
	lines map[string]int
}

func newMemStore() *memStore { return &memStore{lines: map[string]int{}} }

func (m *memStore) Get(_ context.Context, _, _ string) (map[string]int, error) {
	out := make(map[string]int, len(m.lines))
	for k, v := range m.lines {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) SetLine(_ context.Context, _, _, code string, qty int) error {
	m.lines[code] = qty
	return nil
}

func (m *memStore) RemoveLine(_ context.Context, _, _, code string) error {
	delete(m.lines, code)
	return nil
}

func (m *memStore) Clear(_ context.Context, _, _ string) error {
	m.lines = map[string]int{}
	return nil
}

type fixedQuota struct {
	byCode map[string]quota.Availability
}

func (f *fixedQuota) Availability(_ context.Context, item campaign.Item, _ customer.Key) (quota.Availability, error) {
	return f.byCode[item.Code], nil
}

func orderable(max quota.Limit) quota.Availability {
	return quota.Availability{
		CustomerRemaining: max,
		GlobalRemaining:   max,
		MaxOrderable:      max,
		IsOrderable:       max.Positive(),
	}
}

var (
	buyer  = customer.Key{Number: "802412", Country: "BE"}
	itemA  = campaign.Item{ID: 1, Code: "4711", Active: true}
	itemB  = campaign.Item{ID: 2, Code: "0815", Active: true}
	sessID = "sess-1"
	token  = "bf25"
)

func TestAddAccumulates(t *testing.T) {
	store := newMemStore()
	svc := &Service{Store: store, Quota: &fixedQuota{byCode: map[string]quota.Availability{
		"4711": orderable(quota.Unbounded()),
	}}}

	require.NoError(t, svc.Add(context.Background(), sessID, token, itemA, buyer, 2))
	require.NoError(t, svc.Add(context.Background(), sessID, token, itemA, buyer, 3))
	assert.Equal(t, map[string]int{"4711": 5}, store.lines)
}

func TestAddRejectsNonPositiveQty(t *testing.T) {
	svc := &Service{Store: newMemStore(), Quota: &fixedQuota{}}
	assert.ErrorIs(t, svc.Add(context.Background(), sessID, token, itemA, buyer, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, svc.Add(context.Background(), sessID, token, itemA, buyer, -1), ErrInvalidQuantity)
}

func TestAddOverQuotaLeavesCartUntouched(t *testing.T) {
	store := newMemStore()
	store.lines["4711"] = 1
	svc := &Service{Store: store, Quota: &fixedQuota{byCode: map[string]quota.Availability{
		"4711": orderable(quota.Bounded(1)),
	}}}

	err := svc.Add(context.Background(), sessID, token, itemA, buyer, 2)
	var rej *quota.Rejected
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, quota.ReasonQuotaExceeded, rej.Reason)
	assert.Equal(t, "4711", rej.ProductCode)
	assert.Equal(t, quota.Bounded(1), rej.MaxOrderable)
	assert.Equal(t, map[string]int{"4711": 1}, store.lines)
}

func TestAddNotOrderable(t *testing.T) {
	store := newMemStore()
	svc := &Service{Store: store, Quota: &fixedQuota{byCode: map[string]quota.Availability{
		"4711": orderable(quota.Bounded(0)),
	}}}

	err := svc.Add(context.Background(), sessID, token, itemA, buyer, 1)
	var rej *quota.Rejected
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, quota.ReasonNotOrderable, rej.Reason)
	assert.Empty(t, store.lines)
}

func TestSetQuantityReplacesAndRemoves(t *testing.T) {
	store := newMemStore()
	svc := &Service{Store: store, Quota: &fixedQuota{byCode: map[string]quota.Availability{
		"4711": orderable(quota.Bounded(10)),
	}}}

	require.NoError(t, svc.Add(context.Background(), sessID, token, itemA, buyer, 4))
	require.NoError(t, svc.SetQuantity(context.Background(), sessID, token, itemA, buyer, 2))
	assert.Equal(t, map[string]int{"4711": 2}, store.lines)

	require.NoError(t, svc.SetQuantity(context.Background(), sessID, token, itemA, buyer, 0))
	assert.Empty(t, store.lines)
}

func TestSetQuantityIsAbsoluteNotAdditive(t *testing.T) {
	store := newMemStore()
	store.lines["4711"] = 3
	svc := &Service{Store: store, Quota: &fixedQuota{byCode: map[string]quota.Availability{
		"4711": orderable(quota.Bounded(3)),
	}}}

	// set to 3 passes even though 3+3 would not
	require.NoError(t, svc.SetQuantity(context.Background(), sessID, token, itemA, buyer, 3))
	assert.Equal(t, map[string]int{"4711": 3}, store.lines)
}

func TestSnapshotSortsByCode(t *testing.T) {
	store := newMemStore()
	svc := &Service{Store: store, Quota: &fixedQuota{byCode: map[string]quota.Availability{
		"4711": orderable(quota.Unbounded()),
		"0815": orderable(quota.Unbounded()),
	}}}

	require.NoError(t, svc.Add(context.Background(), sessID, token, itemA, buyer, 1))
	require.NoError(t, svc.Add(context.Background(), sessID, token, itemB, buyer, 2))

	lines, err := svc.Snapshot(context.Background(), sessID, token)
	require.NoError(t, err)
	assert.Equal(t, []Line{{ProductCode: "0815", Qty: 2}, {ProductCode: "4711", Qty: 1}}, lines)
}

func TestRemoveAndClear(t *testing.T) {
	store := newMemStore()
	store.lines = map[string]int{"4711": 1, "0815": 2}
	svc := &Service{Store: store, Quota: &fixedQuota{}}

	require.NoError(t, svc.Remove(context.Background(), sessID, token, "4711"))
	assert.Equal(t, map[string]int{"0815": 2}, store.lines)

	require.NoError(t, svc.Clear(context.Background(), sessID, token))
	assert.Empty(t, store.lines)
}

func TestRejectedErrorMessage(t *testing.T) {
	err := &quota.Rejected{Reason: quota.ReasonQuotaExceeded, ProductCode: "4711", MaxOrderable: quota.Bounded(1)}
	assert.True(t, errors.As(error(err), new(*quota.Rejected)))
	assert.Contains(t, err.Error(), "4711")
}
