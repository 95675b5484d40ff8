package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common"
	"github.com/gaze-network/stamp-indexer/modules/faucet/internal/entity"
	"github.com/gaze-network/stamp-indexer/pkg/c32"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
	"github.com/gaze-network/stamp-indexer/pkg/metrics"
	"github.com/gaze-network/stamp-indexer/pkg/stacksapi"
	"github.com/gaze-network/stamp-indexer/pkg/stackstx"
)

const transferMemo = "Faucet"

type ClaimRequest struct {
	Address  string
	ClientIP string // empty skips the IP cooldown
}

type ClaimResult struct {
	TxId            string
	AmountSTX       string
	CooldownMinutes int
	NextEligibleAt  time.Time
}

// Claim sends the configured amount to the address. The address and the client IP are put on cooldown only
// when the node accepted the transaction.
func (u *Usecase) Claim(ctx context.Context, req ClaimRequest) (result *ClaimResult, err error) {
	start := time.Now()
	defer func() {
		metrics.FaucetClaims.WithLabelValues(claimOutcome(err)).Inc()
		if err == nil {
			metrics.FaucetClaimDuration.Observe(time.Since(start).Seconds())
		}
	}()

	if !u.config.Enabled {
		return nil, errors.WithStack(ErrFaucetDisabled)
	}
	if u.network == common.NetworkMainnet && !u.config.AllowMainnet {
		return nil, errors.WithStack(ErrMainnetNotAllowed)
	}
	if u.signer == nil {
		return nil, errors.WithStack(ErrNotConfigured)
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, errors.WithStack(ErrAddressRequired)
	}
	if err := u.validateAddress(address); err != nil {
		return nil, errors.WithStack(err)
	}

	if _, loaded := u.inflight.LoadOrStore(address, struct{}{}); loaded {
		return nil, errors.WithStack(ErrClaimInProgress)
	}
	defer u.inflight.Delete(address)

	ctx = logger.WithContext(ctx, slogx.String("recipient", address))
	now := u.now()

	if err := u.checkCooldown(ctx, entity.CooldownScopeAddress, address, u.cooldown(), now); err != nil {
		return nil, errors.WithStack(err)
	}
	if req.ClientIP != "" {
		if err := u.checkCooldown(ctx, entity.CooldownScopeIP, req.ClientIP, u.ipCooldown(), now); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	amount, err := ParseSTXAmount(u.config.AmountSTX)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid faucet amount configuration", slogx.String("amountStx", u.config.AmountSTX), slogx.Error(err))
		return nil, errors.WithStack(err)
	}

	if u.limiter != nil && !u.limiter.Allow() {
		return nil, errors.WithStack(ErrTooManyRequests)
	}

	txId, err := u.send(ctx, address, amount)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	logger.InfoContext(ctx, "Faucet transaction broadcasted", slogx.String("txId", txId), slogx.Uint64("amountMicroStx", amount))

	u.recordClaim(ctx, entity.CooldownScopeAddress, address, u.cooldown(), now)
	if req.ClientIP != "" {
		u.recordClaim(ctx, entity.CooldownScopeIP, req.ClientIP, u.ipCooldown(), now)
	}

	return &ClaimResult{
		TxId:            txId,
		AmountSTX:       u.config.AmountSTX,
		CooldownMinutes: u.config.CooldownMinutes,
		NextEligibleAt:  now.Add(u.cooldown()),
	}, nil
}

// validateAddress accepts standard addresses of the faucet network only.
func (u *Usecase) validateAddress(address string) error {
	version, _, err := c32.DecodeAddress(address)
	if err != nil {
		return errors.Wrapf(ErrInvalidAddress, "%v", err)
	}
	if !u.network.IsAddressVersion(version) {
		return errors.Wrapf(ErrInvalidAddress, "%q is not a %s address", address, u.network)
	}
	return nil
}

func (u *Usecase) checkCooldown(ctx context.Context, scope entity.CooldownScope, key string, cooldown time.Duration, now time.Time) error {
	if cooldown <= 0 {
		return nil
	}
	last, ok, err := u.cooldownDg.GetLastClaim(ctx, scope, key)
	if err != nil {
		return errors.Wrapf(err, "can't get last %s claim", scope)
	}
	if ok && now.Sub(last) < cooldown {
		return &CooldownError{
			Scope:          scope,
			NextEligibleAt: last.Add(cooldown),
		}
	}
	return nil
}

func (u *Usecase) recordClaim(ctx context.Context, scope entity.CooldownScope, key string, cooldown time.Duration, now time.Time) {
	if err := u.cooldownDg.SetLastClaim(ctx, scope, key, now, cooldown); err != nil {
		// the transfer is already broadcasted, the claim stays successful
		logger.WarnContext(ctx, "Failed to record faucet claim", slogx.Stringer("scope", scope), slogx.Error(err))
	}
}

func (u *Usecase) send(ctx context.Context, recipient string, amount uint64) (string, error) {
	nonce, err := u.stacks.GetAccountNonce(ctx, u.signer.Address())
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "can't get faucet account nonce"), ErrSendFailed)
	}

	tx, err := u.signer.SignTokenTransfer(stackstx.TokenTransfer{
		Recipient: recipient,
		Amount:    amount,
		Fee:       u.config.FeeMicroSTX,
		Nonce:     nonce,
		Memo:      transferMemo,
	})
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "can't sign transfer"), ErrSendFailed)
	}

	txId, err := u.stacks.BroadcastTransaction(ctx, tx.Raw)
	if err != nil {
		logger.WarnContext(ctx, "Faucet transaction broadcast failed", slogx.String("txId", tx.TxId), slogx.Error(err))
		if isRejection(err) {
			return "", errors.WithStack(err)
		}
		return "", errors.Mark(errors.Wrap(err, "can't broadcast transaction"), ErrSendFailed)
	}
	if txId == "" {
		txId = tx.TxId
	}
	return txId, nil
}

func isRejection(err error) bool {
	var rejection *stacksapi.BroadcastError
	return errors.As(err, &rejection)
}

func claimOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrSendFailed), isRejection(err):
		return "send_failed"
	default:
		var cooldown *CooldownError
		if errors.As(err, &cooldown) {
			return "cooldown_" + cooldown.Scope.String()
		}
		return "rejected"
	}
}
