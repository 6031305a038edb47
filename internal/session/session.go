package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/FabianHardy/stm-v2-sub000/internal/customer"
	"github.com/FabianHardy/stm-v2-sub000/internal/redisx"
)

// Session is the identified visitor for one campaign. It exists only after
// a successful admission and expires with the visit.
type Session struct {
	ID             string `json:"-"`
	CampaignToken  string `json:"campaign_token"`
	CustomerNumber string `json:"customer_number"`
	Country        string `json:"country"`
}

func (s *Session) CustomerKey() customer.Key {
	return customer.Key{Number: s.CustomerNumber, Country: s.Country}
}

type Store struct {
	R   *redis.Client
	TTL time.Duration
}

func key(id string) string { return fmt.Sprintf(redisx.KeySession, id) }

// Create stores the session under a fresh uuid token and returns the token.
func (st *Store) Create(ctx context.Context, s Session) (string, error) {
	s.ID = uuid.NewString()
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	if err := st.R.Set(ctx, key(s.ID), b, st.TTL).Err(); err != nil {
		return "", err
	}
	return s.ID, nil
}

// Get returns nil when the session is missing or expired.
func (st *Store) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := st.R.Get(ctx, key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	s.ID = id
	return &s, nil
}

// Touch extends the session lifetime on activity.
func (st *Store) Touch(ctx context.Context, id string) error {
	return st.R.Expire(ctx, key(id), st.TTL).Err()
}
