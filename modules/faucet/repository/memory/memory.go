package memory

import (
	"context"
	"time"

	"github.com/gaze-network/stamp-indexer/modules/faucet/datagateway"
	"github.com/gaze-network/stamp-indexer/modules/faucet/internal/entity"
	"github.com/puzpuzpuz/xsync/v3"
)

type claim struct {
	at        time.Time
	expiresAt time.Time
}

// Repository keeps the claim times in process memory. Entries are lost on restart.
type Repository struct {
	claims *xsync.MapOf[string, claim]
	now    func() time.Time
}

var _ datagateway.CooldownDataGateway = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{
		claims: xsync.NewMapOf[string, claim](),
		now:    time.Now,
	}
}

func key(scope entity.CooldownScope, key string) string {
	return scope.String() + ":" + key
}

func (r *Repository) GetLastClaim(_ context.Context, scope entity.CooldownScope, k string) (time.Time, bool, error) {
	c, ok := r.claims.Load(key(scope, k))
	if !ok || !r.now().Before(c.expiresAt) {
		return time.Time{}, false, nil
	}
	return c.at, true, nil
}

func (r *Repository) SetLastClaim(_ context.Context, scope entity.CooldownScope, k string, at time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.claims.Store(key(scope, k), claim{at: at, expiresAt: at.Add(ttl)})
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (r *Repository) Sweep(_ context.Context) (int, error) {
	now := r.now()
	removed := 0
	r.claims.Range(func(k string, c claim) bool {
		if !now.Before(c.expiresAt) {
			r.claims.Compute(k, func(current claim, loaded bool) (claim, bool) {
				// a claim stored after the range read is kept
				expired := loaded && !now.Before(current.expiresAt)
				if expired {
					removed++
				}
				return current, expired
			})
		}
		return true
	})
	return removed, nil
}

// Size returns the number of tracked entries, expired ones included.
func (r *Repository) Size() int {
	return r.claims.Size()
}
