package campaign

import (
	"context"
	"time"

	"github.com/FabianHardy/stm-v2-sub000/internal/customer"
)

// Source is the campaign read model the gate evaluates against.
type Source interface {
	FindByToken(ctx context.Context, token string) (*Campaign, error)
	ActiveItems(ctx context.Context, campaignID int64) ([]Item, error)
	IsAllowListed(ctx context.Context, campaignID int64, key customer.Key) (bool, error)
}

// OrderableChecker answers whether any active item is still orderable for
// the customer. Implemented by the quota ledger.
type OrderableChecker interface {
	HasAnyOrderable(ctx context.Context, items []Item, key customer.Key) (bool, error)
}

type Credentials struct {
	CustomerNumber string
	Country        string
	Password       string
}

type Decision struct {
	Status   AccessStatus
	Campaign *Campaign
}

// Gate decides whether a visitor may enter a campaign catalog. It is a pure
// read-then-decide evaluation, idempotent and side-effect free.
type Gate struct {
	Campaigns Source
	Directory customer.Directory
	Quota     OrderableChecker
	Now       func() time.Time
}

func (g *Gate) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now().UTC()
}

// Probe checks the campaign window without credentials. Used by the
// unauthenticated landing request.
func (g *Gate) Probe(ctx context.Context, token string) (Decision, error) {
	c, err := g.Campaigns.FindByToken(ctx, token)
	if err != nil {
		return Decision{}, err
	}
	if c == nil {
		return Decision{Status: StatusNotFound}, nil
	}
	return Decision{Status: WindowStatus(c, g.now()), Campaign: c}, nil
}

// Admit runs the full admission evaluation: window, country scope,
// assignment mode, and finally whether any orderable stock remains.
func (g *Gate) Admit(ctx context.Context, token string, cred Credentials) (Decision, error) {
	d, err := g.Probe(ctx, token)
	if err != nil || d.Status != StatusActive {
		return d, err
	}
	c := d.Campaign

	if !c.Country.Admits(cred.Country) {
		return Decision{Status: StatusAccessDenied, Campaign: c}, nil
	}

	key := customer.Key{Number: cred.CustomerNumber, Country: cred.Country}
	rec, err := g.Directory.Lookup(ctx, key)
	if err != nil {
		return Decision{}, err
	}
	if rec == nil {
		return Decision{Status: StatusAccessDenied, Campaign: c}, nil
	}

	switch c.Mode {
	case ModeAutomatic:
		// every identified customer is admitted
	case ModeManual:
		listed, err := g.Campaigns.IsAllowListed(ctx, c.ID, key)
		if err != nil {
			return Decision{}, err
		}
		if !listed {
			return Decision{Status: StatusAccessDenied, Campaign: c}, nil
		}
	case ModeProtected:
		if c.OrderPassword == "" || cred.Password != c.OrderPassword {
			return Decision{Status: StatusAccessDenied, Campaign: c}, nil
		}
	default:
		return Decision{Status: StatusAccessDenied, Campaign: c}, nil
	}

	items, err := g.Campaigns.ActiveItems(ctx, c.ID)
	if err != nil {
		return Decision{}, err
	}
	orderable, err := g.Quota.HasAnyOrderable(ctx, items, key)
	if err != nil {
		return Decision{}, err
	}
	if !orderable {
		return Decision{Status: StatusQuotasExhausted, Campaign: c}, nil
	}
	return Decision{Status: StatusActive, Campaign: c}, nil
}
