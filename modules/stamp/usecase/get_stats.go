package usecase

import (
	"context"

	"github.com/gaze-network/stamp-indexer/modules/stamp/internal/entity"
)

func (u *Usecase) GetStats(ctx context.Context) entity.Stats {
	return u.ledger.Stats()
}
