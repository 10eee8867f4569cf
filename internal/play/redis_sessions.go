package play

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/promogame/backend/internal/games"
)

const (
	sessionKeyPrefix = "play:session:"
	capKeyPrefix     = "instantwin:"
	maxTxRetries     = 5
)

// RedisSessions stores sessions as JSON strings with a sliding TTL.
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessions creates a Redis-backed session store.
func NewRedisSessions(client *redis.Client, ttl time.Duration) *RedisSessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessions{client: client, ttl: ttl}
}

var _ SessionStore = (*RedisSessions)(nil)

func sessionKey(id uuid.UUID) string { return sessionKeyPrefix + id.String() }

// Create stores a new session.
func (r *RedisSessions) Create(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.client.Set(ctx, sessionKey(s.ID), raw, r.ttl).Err()
}

// Get returns the session.
func (r *RedisSessions) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

// Update applies fn inside an optimistic WATCH/MULTI transaction, retrying on conflicts.
func (r *RedisSessions) Update(ctx context.Context, id uuid.UUID, fn func(s *Session) error) (*Session, error) {
	key := sessionKey(id)
	var out *Session
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		var s Session
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}
		if err := fn(&s); err != nil {
			return err
		}
		next, err := json.Marshal(&s)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, r.ttl)
			return nil
		})
		if err == nil {
			out = &s
		}
		return err
	}
	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("update session %s: too much contention", id)
}

// claimScript increments the winner count while it is below the maximum. ARGV[1] <= 0
// means uncapped. A missing key starts from ARGV[2], the count of stored instant wins.
var claimScript = redis.NewScript(`
local max = tonumber(ARGV[1])
redis.call('SET', KEYS[1], ARGV[2], 'NX')
local n = tonumber(redis.call('GET', KEYS[1]))
if max > 0 and n >= max then
	return 0
end
redis.call('INCR', KEYS[1])
return 1
`)

// RedisCap is a WinnerCap shared by every API instance.
type RedisCap struct {
	client *redis.Client
	seed   games.ClaimCounter
}

// NewRedisCap creates a Redis-backed instant-win cap. seed, when set, provides the
// persisted count of a key the first time it is claimed.
func NewRedisCap(client *redis.Client, seed games.ClaimCounter) *RedisCap {
	return &RedisCap{client: client, seed: seed}
}

// TryClaim atomically claims one winner slot under key.
func (c *RedisCap) TryClaim(ctx context.Context, key string, max int) (bool, error) {
	start := 0
	if c.seed != nil {
		exists, err := c.client.Exists(ctx, key).Result()
		if err != nil {
			return false, fmt.Errorf("check winner count: %w", err)
		}
		if exists == 0 {
			if start, err = c.seed(ctx, key); err != nil {
				return false, fmt.Errorf("load winner count: %w", err)
			}
		}
	}
	n, err := claimScript.Run(ctx, c.client, []string{key}, max, start).Int()
	if err != nil {
		return false, fmt.Errorf("run claim script: %w", err)
	}
	return n == 1, nil
}

// InstantWinCounter counts the stored instant wins of the campaign named by a CapKey.
func InstantWinCounter(store Store) games.ClaimCounter {
	return func(ctx context.Context, key string) (int, error) {
		id, err := uuid.Parse(strings.TrimPrefix(key, capKeyPrefix))
		if err != nil {
			return 0, fmt.Errorf("cap key %q: %w", key, err)
		}
		return store.CountInstantWins(ctx, id)
	}
}

// CapKey is the winner counter key of a campaign.
func CapKey(campaignID uuid.UUID) string { return capKeyPrefix + campaignID.String() }
