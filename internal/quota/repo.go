package quota

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FabianHardy/stm-v2-sub000/internal/customer"
)

// PgUsage sums accepted order lines straight from Postgres.
type PgUsage struct{ DB *pgxpool.Pool }

func (r *PgUsage) ItemUsage(ctx context.Context, itemID int64, key customer.Key) (Usage, error) {
	var u Usage
	err := r.DB.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(l.quantity) FILTER (WHERE o.customer_number = $2 AND o.country = $3), 0),
			COALESCE(SUM(l.quantity), 0)
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		WHERE l.item_id = $1 AND o.status <> 'cancelled'`,
		itemID, key.Number, key.Country,
	).Scan(&u.Customer, &u.Global)
	return u, err
}
