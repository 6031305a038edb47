package customer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Key is the external customer identity: (customer number, country) is
// globally unique across the directory.
type Key struct {
	Number  string `json:"customer_number"`
	Country string `json:"country"` // BE | LU
}

type Record struct {
	Key
	Name string `json:"name"`
}

// Directory is the read-only external customer lookup. Lookup returns nil
// when the customer is unknown.
type Directory interface {
	Lookup(ctx context.Context, key Key) (*Record, error)
}

// PgDirectory reads the replicated customers table.
type PgDirectory struct{ DB *pgxpool.Pool }

func (d *PgDirectory) Lookup(ctx context.Context, key Key) (*Record, error) {
	var rec Record
	err := d.DB.QueryRow(ctx, `
		SELECT customer_number, country, name
		FROM customers
		WHERE customer_number = $1 AND country = $2`,
		key.Number, key.Country,
	).Scan(&rec.Number, &rec.Country, &rec.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
