package usecase

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/modules/faucet/internal/entity"
)

var (
	ErrFaucetDisabled    = errors.Wrap(errs.Unavailable, "faucet is disabled")
	ErrMainnetNotAllowed = errors.Wrap(errs.Forbidden, "faucet is not enabled on mainnet")
	ErrNotConfigured     = errors.Wrap(errs.Unavailable, "faucet is not configured")
	ErrAddressRequired   = errors.Wrap(errs.InvalidArgument, "address is required")
	ErrInvalidAddress    = errors.Wrap(errs.InvalidArgument, "invalid stacks address")
	ErrInvalidAmount     = errors.Wrap(errs.InvalidArgument, "invalid faucet amount configuration")
	ErrTooManyRequests   = errors.Wrap(errs.TooManyRequests, "too many requests")
	ErrClaimInProgress   = errors.Wrap(errs.Conflict, "a claim for this address is already in progress")

	// ErrSendFailed marks failures while building, signing or submitting the transfer. A rejection by the
	// node is returned as *stacksapi.BroadcastError instead.
	ErrSendFailed = errors.New("failed to send faucet transaction")
)

// CooldownError is returned when the address or client IP claimed too recently.
type CooldownError struct {
	Scope          entity.CooldownScope
	NextEligibleAt time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s cooldown active until %s", e.Scope, e.NextEligibleAt.UTC().Format(time.RFC3339))
}

func (e *CooldownError) Is(target error) bool {
	return target == errs.TooManyRequests
}
