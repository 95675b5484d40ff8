package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/modules/faucet/internal/entity"
	"github.com/gaze-network/stamp-indexer/modules/faucet/usecase"
	"github.com/gaze-network/stamp-indexer/pkg/middleware/requestcontext"
	"github.com/gaze-network/stamp-indexer/pkg/stacksapi"
	"github.com/gofiber/fiber/v2"
)

type claimRequest struct {
	// Address is not typed, a non-string value is treated as missing
	Address any `json:"address"`
}

type claimResponse struct {
	TxId            string `json:"txId"`
	AmountSTX       string `json:"amountStx"`
	CooldownMinutes int    `json:"cooldownMinutes"`
	NextEligibleAt  int64  `json:"nextEligibleAt"`
}

type cooldownResponse struct {
	Error          string `json:"error"`
	NextEligibleAt int64  `json:"nextEligibleAt"`
}

type broadcastFailedResponse struct {
	Error   string                    `json:"error"`
	Details *stacksapi.BroadcastError `json:"details"`
}

type sendFailedResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// claimErrors maps usecase errors to their public message and status, in check order.
var claimErrors = []struct {
	err     error
	message string
	status  int
}{
	{usecase.ErrFaucetDisabled, "Faucet is disabled", http.StatusServiceUnavailable},
	{usecase.ErrMainnetNotAllowed, "Faucet is not enabled on mainnet", http.StatusForbidden},
	{usecase.ErrNotConfigured, "Faucet is not configured", http.StatusInternalServerError},
	{usecase.ErrAddressRequired, "Address is required", http.StatusBadRequest},
	{usecase.ErrInvalidAddress, "Invalid Stacks address", http.StatusBadRequest},
	{usecase.ErrClaimInProgress, "A claim for this address is already in progress", http.StatusConflict},
	{usecase.ErrInvalidAmount, "Invalid faucet amount configuration", http.StatusInternalServerError},
	{usecase.ErrTooManyRequests, "Too many requests", http.StatusTooManyRequests},
}

var cooldownMessages = map[entity.CooldownScope]string{
	entity.CooldownScopeAddress: "Address cooldown active",
	entity.CooldownScopeIP:      "IP cooldown active",
}

func (h *HttpHandler) Claim(ctx *fiber.Ctx) error {
	var req claimRequest
	// a malformed body is handled as a missing address
	_ = json.Unmarshal(ctx.Body(), &req)
	address, _ := req.Address.(string)

	result, err := h.usecase.Claim(ctx.UserContext(), usecase.ClaimRequest{
		Address:  address,
		ClientIP: clientIP(ctx),
	})
	if err != nil {
		return h.claimError(ctx, err)
	}

	return errors.WithStack(ctx.JSON(claimResponse{
		TxId:            result.TxId,
		AmountSTX:       result.AmountSTX,
		CooldownMinutes: result.CooldownMinutes,
		NextEligibleAt:  result.NextEligibleAt.UnixMilli(),
	}))
}

func (h *HttpHandler) claimError(ctx *fiber.Ctx, err error) error {
	for _, e := range claimErrors {
		if errors.Is(err, e.err) {
			return errs.WithPublicStatus(err, e.message, e.status)
		}
	}

	var cooldown *usecase.CooldownError
	if errors.As(err, &cooldown) {
		return errors.WithStack(ctx.Status(http.StatusTooManyRequests).JSON(cooldownResponse{
			Error:          cooldownMessages[cooldown.Scope],
			NextEligibleAt: cooldown.NextEligibleAt.UnixMilli(),
		}))
	}

	var rejection *stacksapi.BroadcastError
	if errors.As(err, &rejection) {
		return errors.WithStack(ctx.Status(http.StatusBadRequest).JSON(broadcastFailedResponse{
			Error:   "Failed to broadcast transaction",
			Details: rejection,
		}))
	}

	if errors.Is(err, usecase.ErrSendFailed) {
		return errors.WithStack(ctx.Status(http.StatusInternalServerError).JSON(sendFailedResponse{
			Error:   "Failed to send faucet transaction",
			Message: err.Error(),
		}))
	}

	return errors.WithStack(err)
}

// clientIP prefers the address resolved by the request context middleware.
func clientIP(ctx *fiber.Ctx) string {
	if ip := requestcontext.GetClientIP(ctx.UserContext()); ip != "" {
		return ip
	}
	if ips := ctx.IPs(); len(ips) > 0 {
		return ips[0]
	}
	return ctx.IP()
}
