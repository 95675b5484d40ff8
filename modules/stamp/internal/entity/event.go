package entity

type MintType string

const (
	MintTypePaid  MintType = "paid"
	MintTypeFree  MintType = "free"
	MintTypeOwner MintType = "owner"
)

func (t MintType) IsValid() bool {
	switch t {
	case MintTypePaid, MintTypeFree, MintTypeOwner:
		return true
	}
	return false
}

type MintEvent struct {
	TokenId     string
	Minter      string
	Name        string
	URI         string
	MintType    MintType
	TxId        string
	BlockHeight uint64
	// Timestamp block time as reported by the chainhook payload
	Timestamp int64
}

type TransferEvent struct {
	TokenId     string
	From        string
	To          string
	TxId        string
	BlockHeight uint64
	Timestamp   int64
}

type BurnEvent struct {
	TokenId     string
	Owner       string
	TxId        string
	BlockHeight uint64
	Timestamp   int64
}

type EventKind string

const (
	EventKindMint     EventKind = "mint"
	EventKindTransfer EventKind = "transfer"
	EventKindBurn     EventKind = "burn"
)

// Activity is a ledger record of any kind, used by the cross-kind activity feed.
// Exactly one of Mint, Transfer or Burn is set, according to Kind.
type Activity struct {
	Kind     EventKind
	Mint     *MintEvent
	Transfer *TransferEvent
	Burn     *BurnEvent
}

func (a Activity) Timestamp() int64 {
	switch a.Kind {
	case EventKindMint:
		return a.Mint.Timestamp
	case EventKindTransfer:
		return a.Transfer.Timestamp
	case EventKindBurn:
		return a.Burn.Timestamp
	}
	return 0
}
