package datagateway

import (
	"context"
	"time"

	"github.com/gaze-network/stamp-indexer/modules/faucet/internal/entity"
)

type CooldownDataGateway interface {
	// GetLastClaim returns the time of the last successful claim of key. ok is false when none is tracked.
	GetLastClaim(ctx context.Context, scope entity.CooldownScope, key string) (at time.Time, ok bool, err error)

	// SetLastClaim records a successful claim of key, kept for at least ttl. A non-positive ttl records nothing.
	SetLastClaim(ctx context.Context, scope entity.CooldownScope, key string, at time.Time, ttl time.Duration) error
}
