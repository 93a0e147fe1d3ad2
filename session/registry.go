package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps backend failures so callers can tell an outage
// apart from an absent session.
var ErrRedisUnavailable = errors.New("redis unavailable")

// registerScript admits a token and evicts oldest entries over the cap in one
// atomic step. Returns the evicted members, oldest first.
const registerScript = `
redis.call("ZADD", KEYS[1], ARGV[1], ARGV[2])
local evicted = {}
while redis.call("ZCARD", KEYS[1]) > tonumber(ARGV[3]) do
  local popped = redis.call("ZPOPMIN", KEYS[1], 1)
  if #popped == 0 then
    break
  end
  evicted[#evicted + 1] = popped[1]
end
redis.call("PEXPIRE", KEYS[1], ARGV[4])
return evicted
`

var registerLua = redis.NewScript(registerScript)

// Registry is the per-account session registry. Safe for concurrent use; all
// multi-step mutations are serialized inside Redis.
type Registry struct {
	rdb    redis.UniversalClient
	prefix string
	max    int
	ttl    time.Duration
	now    func() time.Time
}

// NewRegistry creates a registry. prefix namespaces the Redis keys, max is
// the per-account session cap, ttl the absolute session lifetime.
func NewRegistry(rdb redis.UniversalClient, prefix string, max int, ttl time.Duration) *Registry {
	return &Registry{
		rdb:    rdb,
		prefix: prefix,
		max:    max,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (r *Registry) key(accountID string) string {
	return r.prefix + ":" + accountID
}

// Register appends the token to the account's session list. If the list
// overflows the cap, the oldest entries are evicted until exactly max remain;
// the evicted tokens are returned so the caller can audit them.
func (r *Registry) Register(ctx context.Context, accountID, token string) ([]string, error) {
	// Microsecond scores keep eviction order exact when two devices log in
	// within the same millisecond.
	res, err := registerLua.Run(
		ctx,
		r.rdb,
		[]string{r.key(accountID)},
		r.now().UnixMicro(),
		token,
		r.max,
		r.ttl.Milliseconds(),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	parts, ok := res.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: invalid register script response", ErrRedisUnavailable)
	}

	evicted := make([]string, 0, len(parts))
	for _, p := range parts {
		if s, ok := p.(string); ok {
			evicted = append(evicted, s)
		}
	}
	return evicted, nil
}

// Contains reports whether the exact token is a currently valid session for
// the account. Entries past the lifetime are pruned first, so an expired
// session is never reported present.
func (r *Registry) Contains(ctx context.Context, accountID, token string) (bool, error) {
	if err := r.pruneExpired(ctx, accountID); err != nil {
		return false, err
	}

	_, err := r.rdb.ZScore(ctx, r.key(accountID), token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return true, nil
}

// Revoke removes an exact token match. Revoking an absent token is a no-op.
func (r *Registry) Revoke(ctx context.Context, accountID, token string) error {
	if err := r.rdb.ZRem(ctx, r.key(accountID), token).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// RevokeAll removes every session for the account. Used when an account is
// deleted upstream.
func (r *Registry) RevokeAll(ctx context.Context, accountID string) error {
	if err := r.rdb.Del(ctx, r.key(accountID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Count returns the number of currently valid sessions for the account.
func (r *Registry) Count(ctx context.Context, accountID string) (int, error) {
	if err := r.pruneExpired(ctx, accountID); err != nil {
		return 0, err
	}

	n, err := r.rdb.ZCard(ctx, r.key(accountID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return int(n), nil
}

func (r *Registry) pruneExpired(ctx context.Context, accountID string) error {
	cutoff := r.now().Add(-r.ttl).UnixMicro()
	err := r.rdb.ZRemRangeByScore(ctx, r.key(accountID), "-inf", fmt.Sprintf("%d", cutoff)).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
