package usecase

import (
	"context"

	"github.com/gaze-network/stamp-indexer/common"
)

type Status struct {
	Enabled         bool
	Network         common.Network
	Address         string
	AmountSTX       string
	CooldownMinutes int
}

func (u *Usecase) GetStatus(_ context.Context) Status {
	return Status{
		Enabled:         u.config.Enabled,
		Network:         u.network,
		Address:         u.Address(),
		AmountSTX:       u.config.AmountSTX,
		CooldownMinutes: u.config.CooldownMinutes,
	}
}
