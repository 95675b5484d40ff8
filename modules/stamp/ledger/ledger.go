// Package ledger holds the in-memory, append-only log of stamp events and the aggregate statistics derived
// from it. A Ledger is the single source of truth for every read endpoint and lives for the process lifetime.
package ledger

import (
	"sync"

	"github.com/gaze-network/stamp-indexer/modules/stamp/datagateway"
	"github.com/gaze-network/stamp-indexer/modules/stamp/internal/entity"
)

var _ datagateway.LedgerDataGateway = (*Ledger)(nil)

type recordKey struct {
	txId string
	kind entity.EventKind
}

type Option func(*Ledger)

// WithDeduplication makes appends idempotent on (txId, kind): a record whose key was already appended is
// dropped and the stats are left unchanged. Records with an empty txId are never deduplicated.
func WithDeduplication(enabled bool) Option {
	return func(l *Ledger) {
		l.deduplicate = enabled
	}
}

// Ledger is safe for concurrent use. Each append and its stats update happen in one critical section,
// so readers never observe counters that disagree with the sequence lengths.
type Ledger struct {
	mu sync.RWMutex

	mints     []entity.MintEvent
	transfers []entity.TransferEvent
	burns     []entity.BurnEvent

	paidMints   uint64
	freeMints   uint64
	ownerMints  uint64
	activeUsers map[string]struct{}

	deduplicate bool
	seen        map[recordKey]struct{}
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		mints:       make([]entity.MintEvent, 0),
		transfers:   make([]entity.TransferEvent, 0),
		burns:       make([]entity.BurnEvent, 0),
		activeUsers: make(map[string]struct{}),
		seen:        make(map[recordKey]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AppendMint appends a mint record. It reports false when the record was dropped, either as a duplicate or
// because its mint type is unknown.
func (l *Ledger) AppendMint(mint entity.MintEvent) bool {
	if !mint.MintType.IsValid() {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.markSeen(mint.TxId, entity.EventKindMint) {
		return false
	}
	l.mints = append(l.mints, mint)
	switch mint.MintType {
	case entity.MintTypePaid:
		l.paidMints++
	case entity.MintTypeFree:
		l.freeMints++
	case entity.MintTypeOwner:
		l.ownerMints++
	}
	l.addActiveUser(mint.Minter)
	return true
}

// AppendTransfer appends a transfer record. It reports false when the record was dropped as a duplicate.
func (l *Ledger) AppendTransfer(transfer entity.TransferEvent) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.markSeen(transfer.TxId, entity.EventKindTransfer) {
		return false
	}
	l.transfers = append(l.transfers, transfer)
	l.addActiveUser(transfer.From)
	l.addActiveUser(transfer.To)
	return true
}

// AppendBurn appends a burn record. It reports false when the record was dropped as a duplicate.
func (l *Ledger) AppendBurn(burn entity.BurnEvent) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.markSeen(burn.TxId, entity.EventKindBurn) {
		return false
	}
	l.burns = append(l.burns, burn)
	l.addActiveUser(burn.Owner)
	return true
}

// markSeen must be called with l.mu held.
func (l *Ledger) markSeen(txId string, kind entity.EventKind) bool {
	if !l.deduplicate || txId == "" {
		return true
	}
	key := recordKey{txId: txId, kind: kind}
	if _, ok := l.seen[key]; ok {
		return false
	}
	l.seen[key] = struct{}{}
	return true
}

// addActiveUser must be called with l.mu held.
func (l *Ledger) addActiveUser(address string) {
	if address == "" {
		return
	}
	l.activeUsers[address] = struct{}{}
}

// Mints returns a copy of the mint sequence in append order.
func (l *Ledger) Mints() []entity.MintEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append(make([]entity.MintEvent, 0, len(l.mints)), l.mints...)
}

// Transfers returns a copy of the transfer sequence in append order.
func (l *Ledger) Transfers() []entity.TransferEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append(make([]entity.TransferEvent, 0, len(l.transfers)), l.transfers...)
}

// Burns returns a copy of the burn sequence in append order.
func (l *Ledger) Burns() []entity.BurnEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append(make([]entity.BurnEvent, 0, len(l.burns)), l.burns...)
}

func (l *Ledger) Stats() entity.Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return entity.Stats{
		TotalMints:     uint64(len(l.mints)),
		PaidMints:      l.paidMints,
		FreeMints:      l.freeMints,
		OwnerMints:     l.ownerMints,
		TotalTransfers: uint64(len(l.transfers)),
		TotalBurns:     uint64(len(l.burns)),
		ActiveUsers:    len(l.activeUsers),
	}
}
