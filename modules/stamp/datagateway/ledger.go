package datagateway

import (
	"github.com/gaze-network/stamp-indexer/modules/stamp/internal/entity"
)

type LedgerDataGateway interface {
	LedgerReaderDataGateway
	LedgerWriterDataGateway
}

type LedgerReaderDataGateway interface {
	// Mints, Transfers and Burns return copies of each sequence in append order.
	Mints() []entity.MintEvent
	Transfers() []entity.TransferEvent
	Burns() []entity.BurnEvent
	Stats() entity.Stats
}

type LedgerWriterDataGateway interface {
	// AppendMint, AppendTransfer and AppendBurn report false when the record was dropped.
	AppendMint(mint entity.MintEvent) bool
	AppendTransfer(transfer entity.TransferEvent) bool
	AppendBurn(burn entity.BurnEvent) bool
}
