package campaign

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FabianHardy/stm-v2-sub000/internal/customer"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) FindByToken(ctx context.Context, token string) (*Campaign, error) {
	var c Campaign
	err := r.DB.QueryRow(ctx, `
		SELECT id, token, name, country, start_date, end_date, active,
		       assignment_mode, COALESCE(order_password, ''), order_type, delivery_date
		FROM campaigns WHERE token = $1`, token,
	).Scan(&c.ID, &c.Token, &c.Name, &c.Country, &c.StartDate, &c.EndDate,
		&c.Active, &c.Mode, &c.OrderPassword, &c.OrderType, &c.DeliveryDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) ActiveItems(ctx context.Context, campaignID int64) ([]Item, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, campaign_id, product_code, label, max_total, max_per_customer, active
		FROM campaign_items
		WHERE campaign_id = $1 AND active
		ORDER BY product_code`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.CampaignID, &it.Code, &it.Label,
			&it.MaxTotal, &it.MaxPerCustomer, &it.Active); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ItemByCode resolves one active item of the campaign; nil when absent.
func (r *Repo) ItemByCode(ctx context.Context, campaignID int64, code string) (*Item, error) {
	var it Item
	err := r.DB.QueryRow(ctx, `
		SELECT id, campaign_id, product_code, label, max_total, max_per_customer, active
		FROM campaign_items
		WHERE campaign_id = $1 AND product_code = $2 AND active`,
		campaignID, code,
	).Scan(&it.ID, &it.CampaignID, &it.Code, &it.Label,
		&it.MaxTotal, &it.MaxPerCustomer, &it.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repo) IsAllowListed(ctx context.Context, campaignID int64, key customer.Key) (bool, error) {
	var n int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM campaign_customers
		WHERE campaign_id = $1 AND customer_number = $2 AND country = $3`,
		campaignID, key.Number, key.Country,
	).Scan(&n)
	return n > 0, err
}
