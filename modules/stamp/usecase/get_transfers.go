package usecase

import (
	"context"

	"github.com/gaze-network/stamp-indexer/modules/stamp/internal/entity"
)

// GetTransfers returns transfer records newest first. Limit and offset must be non-negative.
func (u *Usecase) GetTransfers(ctx context.Context, limit, offset int) Page[entity.TransferEvent] {
	transfers := u.ledger.Transfers()
	sortByTimestampDesc(transfers, func(t entity.TransferEvent) int64 { return t.Timestamp })
	return paginate(transfers, limit, offset)
}
