package usecase

import (
	"context"
	"time"

	"github.com/gaze-network/stamp-indexer/common"
	faucetconfig "github.com/gaze-network/stamp-indexer/modules/faucet/config"
	"github.com/gaze-network/stamp-indexer/modules/faucet/datagateway"
	"github.com/gaze-network/stamp-indexer/pkg/stackstx"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/time/rate"
)

// StacksClient reads account state from and submits transactions to a Stacks node.
type StacksClient interface {
	GetAccountNonce(ctx context.Context, address string) (uint64, error)
	BroadcastTransaction(ctx context.Context, raw []byte) (string, error)
}

// Signer signs the faucet transfers.
type Signer interface {
	Address() string
	SignTokenTransfer(transfer stackstx.TokenTransfer) (*stackstx.Transaction, error)
}

type Usecase struct {
	network    common.Network
	config     faucetconfig.Config
	signer     Signer
	stacks     StacksClient
	cooldownDg datagateway.CooldownDataGateway

	// limiter is nil when the rate limit is disabled
	limiter *rate.Limiter

	// inflight holds the addresses with a claim being sent
	inflight *xsync.MapOf[string, struct{}]

	now func() time.Time
}

// New creates the faucet usecase. signer is nil when no private key is configured, every claim then fails
// with ErrNotConfigured.
func New(network common.Network, config faucetconfig.Config, signer Signer, stacks StacksClient, cooldownDg datagateway.CooldownDataGateway) *Usecase {
	u := &Usecase{
		network:    network,
		config:     config,
		signer:     signer,
		stacks:     stacks,
		cooldownDg: cooldownDg,
		inflight:   xsync.NewMapOf[string, struct{}](),
		now:        time.Now,
	}
	if config.RateLimit.PerSecond > 0 {
		u.limiter = rate.NewLimiter(rate.Limit(config.RateLimit.PerSecond), max(config.RateLimit.Burst, 1))
	}
	return u
}

func (u *Usecase) cooldown() time.Duration {
	return time.Duration(u.config.CooldownMinutes) * time.Minute
}

// ipCooldown follows the address cooldown when unset, a negative value disables it.
func (u *Usecase) ipCooldown() time.Duration {
	switch {
	case u.config.IPCooldownMinutes < 0:
		return 0
	case u.config.IPCooldownMinutes == 0:
		return u.cooldown()
	}
	return time.Duration(u.config.IPCooldownMinutes) * time.Minute
}

// Address returns the faucet wallet address, the configured one first.
func (u *Usecase) Address() string {
	if u.config.Address != "" {
		return u.config.Address
	}
	if u.signer != nil {
		return u.signer.Address()
	}
	return ""
}
