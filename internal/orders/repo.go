package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("order not found")

type Repo struct{ DB *pgxpool.Pool }

// Finalize persists the order and its lines in one transaction. A
// per-campaign advisory lock serializes concurrent finalizations so the
// recheck callback observes every committed competitor before the inserts;
// the availability read algorithm itself stays lock-free everywhere else.
func (r *Repo) Finalize(ctx context.Context, o Order, lines []Line, recheck func(context.Context) error) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, o.CampaignID); err != nil {
		return err
	}
	if recheck != nil {
		if err := recheck(ctx); err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, campaign_id, customer_number, country, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.CampaignID, o.CustomerNumber, o.Country, o.Status, o.CreatedAt)
	if err != nil {
		return err
	}

	for _, l := range lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_lines(order_id, item_id, product_code, quantity)
			VALUES ($1, $2, $3, $4)`,
			o.ID, l.ItemID, l.ProductCode, l.Quantity)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// GetExport loads the order with the campaign fields the encoder needs.
func (r *Repo) GetExport(ctx context.Context, orderID string) (*ExportOrder, error) {
	var e ExportOrder
	err := r.DB.QueryRow(ctx, `
		SELECT o.id, o.campaign_id, o.customer_number, o.country, o.status, o.created_at,
		       c.name, c.token, c.order_type, c.delivery_date
		FROM orders o
		JOIN campaigns c ON c.id = o.campaign_id
		WHERE o.id = $1`, orderID,
	).Scan(&e.ID, &e.CampaignID, &e.CustomerNumber, &e.Country, &e.Status, &e.CreatedAt,
		&e.CampaignName, &e.CampaignToken, &e.OrderType, &e.DeliveryDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, item_id, product_code, quantity
		FROM order_lines WHERE order_id = $1 ORDER BY product_code`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.ProductCode, &l.Quantity); err != nil {
			return nil, err
		}
		e.Lines = append(e.Lines, l)
	}
	return &e, rows.Err()
}

// UpdateStatus applies one transition of the order state machine.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, to Status) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var from Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&from)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if from == to {
		return tx.Commit(ctx)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid status transition %s -> %s", from, to)
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, to); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
