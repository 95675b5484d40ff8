package entity

// Stats is a point-in-time snapshot of the ledger counters.
type Stats struct {
	TotalMints     uint64
	PaidMints      uint64
	FreeMints      uint64
	OwnerMints     uint64
	TotalTransfers uint64
	TotalBurns     uint64
	// ActiveUsers number of distinct addresses seen as minter, sender, recipient or burner
	ActiveUsers int
}
