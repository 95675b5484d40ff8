package redis

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/modules/faucet/datagateway"
	"github.com/gaze-network/stamp-indexer/modules/faucet/internal/entity"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "faucet"

// Repository keeps the claim times in redis as unix milliseconds, expiring with the cooldown. Instances
// behind a load balancer share cooldowns through it.
type Repository struct {
	client redis.Cmdable
	prefix string
}

var _ datagateway.CooldownDataGateway = (*Repository)(nil)

func NewRepository(client redis.Cmdable, prefix string) *Repository {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Repository{
		client: client,
		prefix: prefix,
	}
}

// Key returns the redis key of a tracked claim, `<prefix>:<scope>:<key>`.
func (r *Repository) Key(scope entity.CooldownScope, key string) string {
	return r.prefix + ":" + scope.String() + ":" + key
}

func (r *Repository) GetLastClaim(ctx context.Context, scope entity.CooldownScope, key string) (time.Time, bool, error) {
	ms, err := r.client.Get(ctx, r.Key(scope, key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, errors.Wrap(err, "can't get last claim")
	}
	return time.UnixMilli(ms), true, nil
}

func (r *Repository) SetLastClaim(ctx context.Context, scope entity.CooldownScope, key string, at time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.Key(scope, key), at.UnixMilli(), ttl).Err(); err != nil {
		return errors.Wrap(err, "can't set last claim")
	}
	return nil
}
