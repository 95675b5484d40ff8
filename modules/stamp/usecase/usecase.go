package usecase

import (
	"github.com/gaze-network/stamp-indexer/modules/stamp/datagateway"
)

type Usecase struct {
	ledger     datagateway.LedgerDataGateway
	contractId string
}

func New(ledger datagateway.LedgerDataGateway, contractId string) *Usecase {
	return &Usecase{
		ledger:     ledger,
		contractId: contractId,
	}
}
