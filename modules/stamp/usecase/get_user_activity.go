package usecase

import (
	"context"

	"github.com/gaze-network/stamp-indexer/modules/stamp/internal/entity"
	"github.com/samber/lo"
)

type UserActivity struct {
	Address   string
	Mints     []entity.MintEvent
	Transfers []entity.TransferEvent
	Burns     []entity.BurnEvent
}

// GetUserActivity returns the records an address took part in: mints it received, transfers it sent or
// received, and burns of tokens it owned. Records are in append order.
func (u *Usecase) GetUserActivity(ctx context.Context, address string) *UserActivity {
	return &UserActivity{
		Address: address,
		Mints: lo.Filter(u.ledger.Mints(), func(m entity.MintEvent, _ int) bool {
			return m.Minter == address
		}),
		Transfers: lo.Filter(u.ledger.Transfers(), func(t entity.TransferEvent, _ int) bool {
			return t.From == address || t.To == address
		}),
		Burns: lo.Filter(u.ledger.Burns(), func(b entity.BurnEvent, _ int) bool {
			return b.Owner == address
		}),
	}
}
