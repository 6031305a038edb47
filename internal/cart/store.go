package cart

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/FabianHardy/stm-v2-sub000/internal/redisx"
)

// Store holds cart lines per (session, campaign token). A cart lives only
// as long as the visitor session; no other actor touches it.
type Store interface {
	Get(ctx context.Context, sessionID, token string) (map[string]int, error)
	SetLine(ctx context.Context, sessionID, token, code string, qty int) error
	RemoveLine(ctx context.Context, sessionID, token, code string) error
	Clear(ctx context.Context, sessionID, token string) error
}

// RedisStore keeps each cart in a hash product_code => qty with a TTL.
type RedisStore struct {
	R *redis.Client
}

func cartKey(sessionID, token string) string {
	return fmt.Sprintf(redisx.KeyCart, sessionID, token)
}

func (s *RedisStore) Get(ctx context.Context, sessionID, token string) (map[string]int, error) {
	raw, err := s.R.HGetAll(ctx, cartKey(sessionID, token)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(raw))
	for code, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("cart line %s: %w", code, err)
		}
		out[code] = n
	}
	return out, nil
}

func (s *RedisStore) SetLine(ctx context.Context, sessionID, token, code string, qty int) error {
	key := cartKey(sessionID, token)
	if err := s.R.HSet(ctx, key, code, qty).Err(); err != nil {
		return err
	}
	return s.R.Expire(ctx, key, redisx.TTLCart).Err()
}

func (s *RedisStore) RemoveLine(ctx context.Context, sessionID, token, code string) error {
	return s.R.HDel(ctx, cartKey(sessionID, token), code).Err()
}

func (s *RedisStore) Clear(ctx context.Context, sessionID, token string) error {
	return s.R.Del(ctx, cartKey(sessionID, token)).Err()
}
