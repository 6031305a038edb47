package cart

import (
	"context"
	"errors"
	"sort"

	"github.com/FabianHardy/stm-v2-sub000/internal/campaign"
	"github.com/FabianHardy/stm-v2-sub000/internal/customer"
	"github.com/FabianHardy/stm-v2-sub000/internal/quota"
)

type Line struct {
	ProductCode string `json:"product_code"`
	Qty         int    `json:"quantity"`
}

// AvailabilitySource is the fresh-quota view every mutation validates
// against. Implemented by the quota ledger.
type AvailabilitySource interface {
	Availability(ctx context.Context, item campaign.Item, key customer.Key) (quota.Availability, error)
}

// Service applies cart mutations. Every change re-reads availability; a
// rejected mutation leaves the cart untouched.
type Service struct {
	Store Store
	Quota AvailabilitySource
}

var ErrInvalidQuantity = errors.New("quantity must be positive")

// Add increases the line for item by qty (upsert to current+qty).
func (s *Service) Add(ctx context.Context, sessionID, token string, item campaign.Item, key customer.Key, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	lines, err := s.Store.Get(ctx, sessionID, token)
	if err != nil {
		return err
	}
	return s.apply(ctx, sessionID, token, item, key, lines[item.Code]+qty)
}

// SetQuantity replaces the line quantity; qty <= 0 removes the line.
func (s *Service) SetQuantity(ctx context.Context, sessionID, token string, item campaign.Item, key customer.Key, qty int) error {
	if qty <= 0 {
		return s.Store.RemoveLine(ctx, sessionID, token, item.Code)
	}
	return s.apply(ctx, sessionID, token, item, key, qty)
}

func (s *Service) apply(ctx context.Context, sessionID, token string, item campaign.Item, key customer.Key, proposed int) error {
	av, err := s.Quota.Availability(ctx, item, key)
	if err != nil {
		return err
	}
	if !av.IsOrderable {
		return &quota.Rejected{Reason: quota.ReasonNotOrderable, ProductCode: item.Code, MaxOrderable: av.MaxOrderable}
	}
	if !av.MaxOrderable.Allows(proposed) {
		return &quota.Rejected{Reason: quota.ReasonQuotaExceeded, ProductCode: item.Code, MaxOrderable: av.MaxOrderable}
	}
	return s.Store.SetLine(ctx, sessionID, token, item.Code, proposed)
}

func (s *Service) Remove(ctx context.Context, sessionID, token, code string) error {
	return s.Store.RemoveLine(ctx, sessionID, token, code)
}

func (s *Service) Clear(ctx context.Context, sessionID, token string) error {
	return s.Store.Clear(ctx, sessionID, token)
}

// Snapshot returns the cart lines ordered by product code.
func (s *Service) Snapshot(ctx context.Context, sessionID, token string) ([]Line, error) {
	m, err := s.Store.Get(ctx, sessionID, token)
	if err != nil {
		return nil, err
	}
	out := make([]Line, 0, len(m))
	for code, qty := range m {
		out = append(out, Line{ProductCode: code, Qty: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductCode < out[j].ProductCode })
	return out, nil
}
