package usecase

import (
	"context"

	"github.com/gaze-network/stamp-indexer/modules/stamp/internal/entity"
	"github.com/samber/lo"
)

// GetRecentActivity returns the newest records across mints, transfers and burns, at most limit of them.
func (u *Usecase) GetRecentActivity(ctx context.Context, limit int) []entity.Activity {
	mints, transfers, burns := u.ledger.Mints(), u.ledger.Transfers(), u.ledger.Burns()

	activities := make([]entity.Activity, 0, len(mints)+len(transfers)+len(burns))
	activities = append(activities, lo.Map(mints, func(m entity.MintEvent, i int) entity.Activity {
		return entity.Activity{Kind: entity.EventKindMint, Mint: &mints[i]}
	})...)
	activities = append(activities, lo.Map(transfers, func(t entity.TransferEvent, i int) entity.Activity {
		return entity.Activity{Kind: entity.EventKindTransfer, Transfer: &transfers[i]}
	})...)
	activities = append(activities, lo.Map(burns, func(b entity.BurnEvent, i int) entity.Activity {
		return entity.Activity{Kind: entity.EventKindBurn, Burn: &burns[i]}
	})...)

	sortByTimestampDesc(activities, entity.Activity.Timestamp)
	return paginate(activities, limit, 0).Data
}
