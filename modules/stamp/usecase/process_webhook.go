package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/modules/stamp/chainhook"
	"github.com/gaze-network/stamp-indexer/modules/stamp/internal/entity"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
	"github.com/gaze-network/stamp-indexer/pkg/metrics"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const unknownTokenId = "unknown"

// ProcessPayload extracts the calls to the watched contract from a classified payload and processes them
// for the given route.
func (u *Usecase) ProcessPayload(ctx context.Context, route WebhookRoute, payload *chainhook.Payload) (int, error) {
	calls := chainhook.ExtractContractCalls(payload, u.contractId)
	processed, err := u.ProcessWebhook(ctx, route, calls)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return processed, nil
}

// ProcessWebhook keeps the successful calls of the route's method, maps each into an event and appends it
// to the ledger. Other calls are discarded without error. It returns the number of calls processed.
//
// Appends are not transactional: records committed before a failure stay in the ledger.
func (u *Usecase) ProcessWebhook(ctx context.Context, route WebhookRoute, calls []chainhook.ContractCall) (processed int, err error) {
	if !route.IsValid() {
		return 0, errors.Wrapf(errs.InvalidArgument, "unknown webhook route %q", route)
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic while processing %s webhook: %v", route, r)
		}
	}()

	method := route.Method()
	calls = lo.Filter(calls, func(call chainhook.ContractCall, _ int) bool {
		return call.Method == method && call.Success
	})

	ctx = logger.WithContext(ctx, slogx.Stringer("route", route))
	for _, call := range calls {
		if expected := routeArity[route]; len(call.Args) < expected {
			logger.WarnContext(ctx, "Contract call has fewer arguments than expected, missing fields are left empty",
				slogx.String("method", call.Method),
				slogx.String("txId", call.TxId),
				slogx.Int("args", len(call.Args)),
				slogx.Int("expected", expected),
			)
		}

		if err := u.record(ctx, route, call); err != nil {
			return 0, errors.Wrapf(err, "can't record %s call %s", method, call.TxId)
		}
	}

	metrics.WebhookCallsProcessed.WithLabelValues(route.String()).Add(float64(len(calls)))
	return len(calls), nil
}

func (u *Usecase) record(ctx context.Context, route WebhookRoute, call chainhook.ContractCall) error {
	switch route {
	case WebhookRoutePaidMint:
		return u.recordMint(ctx, call, entity.MintEvent{
			Minter:   call.Sender,
			Name:     arg(call, 0),
			URI:      arg(call, 1),
			MintType: entity.MintTypePaid,
		})
	case WebhookRouteFreeMint:
		return u.recordMint(ctx, call, entity.MintEvent{
			Minter:   call.Sender,
			Name:     arg(call, 0),
			URI:      arg(call, 1),
			MintType: entity.MintTypeFree,
		})
	case WebhookRouteOwnerMint:
		return u.recordMint(ctx, call, entity.MintEvent{
			Minter:   lo.Ternary(arg(call, 0) != "", arg(call, 0), call.Sender),
			Name:     arg(call, 1),
			URI:      arg(call, 2),
			MintType: entity.MintTypeOwner,
		})
	case WebhookRouteTransfer:
		appended := u.ledger.AppendTransfer(entity.TransferEvent{
			TokenId:     tokenIdOf(call),
			From:        arg(call, 1),
			To:          arg(call, 2),
			TxId:        call.TxId,
			BlockHeight: call.BlockHeight,
			Timestamp:   call.Timestamp,
		})
		observeAppend(entity.EventKindTransfer, appended)
		return nil
	case WebhookRouteBurn:
		appended := u.ledger.AppendBurn(entity.BurnEvent{
			TokenId:     tokenIdOf(call),
			Owner:       call.Sender,
			TxId:        call.TxId,
			BlockHeight: call.BlockHeight,
			Timestamp:   call.Timestamp,
		})
		observeAppend(entity.EventKindBurn, appended)
		return nil
	}
	return errors.Wrapf(errs.Unsupported, "route %q", route)
}

func (u *Usecase) recordMint(ctx context.Context, call chainhook.ContractCall, mint entity.MintEvent) error {
	mint.TokenId = call.Result
	if mint.TokenId == "" {
		// the synthesized id has no on-chain counterpart
		mint.TokenId = uuid.NewString()
		logger.WarnContext(ctx, "Mint call has no result, token id synthesized",
			slogx.String("txId", call.TxId),
			slogx.String("tokenId", mint.TokenId),
		)
	}
	mint.TxId = call.TxId
	mint.BlockHeight = call.BlockHeight
	mint.Timestamp = call.Timestamp

	appended := u.ledger.AppendMint(mint)
	observeAppend(entity.EventKindMint, appended)
	return nil
}

func observeAppend(kind entity.EventKind, appended bool) {
	if appended {
		metrics.LedgerRecordsAppended.WithLabelValues(string(kind)).Inc()
		return
	}
	metrics.LedgerRecordsDuplicated.WithLabelValues(string(kind)).Inc()
}

// arg returns the i-th positional argument, or empty when the call has fewer arguments.
func arg(call chainhook.ContractCall, i int) string {
	if i < len(call.Args) {
		return call.Args[i]
	}
	return ""
}

// tokenIdOf resolves the token a transfer or burn acts on: the first argument, then the call result.
func tokenIdOf(call chainhook.ContractCall) string {
	if tokenId := arg(call, 0); tokenId != "" {
		return tokenId
	}
	if call.Result != "" {
		return call.Result
	}
	return unknownTokenId
}
