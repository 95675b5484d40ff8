package usecase

import (
	"context"

	"github.com/gaze-network/stamp-indexer/modules/stamp/internal/entity"
)

// GetMints returns mint records newest first. Limit and offset must be non-negative.
func (u *Usecase) GetMints(ctx context.Context, limit, offset int) Page[entity.MintEvent] {
	mints := u.ledger.Mints()
	sortByTimestampDesc(mints, func(m entity.MintEvent) int64 { return m.Timestamp })
	return paginate(mints, limit, offset)
}
