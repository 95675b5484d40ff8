package ledger

import (
	"fmt"
	"sync"
	"testing"

	"github.com/gaze-network/stamp-indexer/modules/stamp/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertConsistent(t *testing.T, l *Ledger) {
	t.Helper()
	stats := l.Stats()
	assert.Equal(t, stats.TotalMints, stats.PaidMints+stats.FreeMints+stats.OwnerMints)
	assert.Equal(t, stats.TotalMints, uint64(len(l.Mints())))
	assert.Equal(t, stats.TotalTransfers, uint64(len(l.Transfers())))
	assert.Equal(t, stats.TotalBurns, uint64(len(l.Burns())))
}

func TestLedgerAppend(t *testing.T) {
	l := New()

	assert.True(t, l.AppendMint(entity.MintEvent{TokenId: "1", Minter: "SP1", MintType: entity.MintTypePaid, TxId: "0x1"}))
	assert.True(t, l.AppendMint(entity.MintEvent{TokenId: "2", Minter: "SP1", MintType: entity.MintTypeFree, TxId: "0x2"}))
	assert.True(t, l.AppendMint(entity.MintEvent{TokenId: "3", Minter: "SP2", MintType: entity.MintTypeOwner, TxId: "0x3"}))
	assert.True(t, l.AppendTransfer(entity.TransferEvent{TokenId: "1", From: "SP1", To: "SP3", TxId: "0x4"}))
	assert.True(t, l.AppendBurn(entity.BurnEvent{TokenId: "2", Owner: "SP4", TxId: "0x5"}))

	assert.Equal(t, entity.Stats{
		TotalMints:     3,
		PaidMints:      1,
		FreeMints:      1,
		OwnerMints:     1,
		TotalTransfers: 1,
		TotalBurns:     1,
		ActiveUsers:    4,
	}, l.Stats())
	assertConsistent(t, l)

	mints := l.Mints()
	require.Len(t, mints, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{mints[0].TokenId, mints[1].TokenId, mints[2].TokenId})
}

func TestLedgerUnknownMintType(t *testing.T) {
	l := New()
	assert.False(t, l.AppendMint(entity.MintEvent{TokenId: "1", MintType: "airdrop"}))
	assert.Empty(t, l.Mints())
	assertConsistent(t, l)
}

func TestLedgerReadsReturnCopies(t *testing.T) {
	l := New()
	l.AppendMint(entity.MintEvent{TokenId: "1", MintType: entity.MintTypePaid})
	l.AppendTransfer(entity.TransferEvent{TokenId: "1"})
	l.AppendBurn(entity.BurnEvent{TokenId: "1"})

	l.Mints()[0].TokenId = "mutated"
	l.Transfers()[0].TokenId = "mutated"
	l.Burns()[0].TokenId = "mutated"

	assert.Equal(t, "1", l.Mints()[0].TokenId)
	assert.Equal(t, "1", l.Transfers()[0].TokenId)
	assert.Equal(t, "1", l.Burns()[0].TokenId)
}

func TestLedgerActiveUsersNeverDecrease(t *testing.T) {
	l := New()
	previous := 0
	for i := 0; i < 50; i++ {
		addr := fmt.Sprintf("SP%d", i%7)
		switch i % 3 {
		case 0:
			l.AppendMint(entity.MintEvent{Minter: addr, MintType: entity.MintTypeFree})
		case 1:
			l.AppendTransfer(entity.TransferEvent{From: addr, To: fmt.Sprintf("SP%d", i%5)})
		case 2:
			l.AppendBurn(entity.BurnEvent{Owner: addr})
		}
		current := l.Stats().ActiveUsers
		assert.GreaterOrEqual(t, current, previous)
		previous = current
	}
	assert.Equal(t, 7, previous)
}

func TestLedgerEmptyAddressIsNotActive(t *testing.T) {
	l := New()
	l.AppendTransfer(entity.TransferEvent{TokenId: "1", From: "", To: "SP1"})
	assert.Equal(t, 1, l.Stats().ActiveUsers)
}

func TestLedgerDeduplication(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		l := New()
		mint := entity.MintEvent{TokenId: "1", Minter: "SP1", MintType: entity.MintTypePaid, TxId: "0x1"}
		assert.True(t, l.AppendMint(mint))
		assert.True(t, l.AppendMint(mint))
		assert.Equal(t, uint64(2), l.Stats().TotalMints)
		assertConsistent(t, l)
	})

	t.Run("enabled", func(t *testing.T) {
		t.Parallel()
		l := New(WithDeduplication(true))
		mint := entity.MintEvent{TokenId: "1", Minter: "SP1", MintType: entity.MintTypePaid, TxId: "0x1"}
		assert.True(t, l.AppendMint(mint))
		assert.False(t, l.AppendMint(mint))

		// same tx under another kind is a different record
		assert.True(t, l.AppendTransfer(entity.TransferEvent{TokenId: "1", TxId: "0x1"}))
		assert.False(t, l.AppendTransfer(entity.TransferEvent{TokenId: "1", TxId: "0x1"}))
		assert.True(t, l.AppendBurn(entity.BurnEvent{TokenId: "1", TxId: "0x1"}))
		assert.False(t, l.AppendBurn(entity.BurnEvent{TokenId: "1", TxId: "0x1"}))

		// empty tx ids are never collapsed
		assert.True(t, l.AppendBurn(entity.BurnEvent{TokenId: "2"}))
		assert.True(t, l.AppendBurn(entity.BurnEvent{TokenId: "3"}))

		stats := l.Stats()
		assert.Equal(t, uint64(1), stats.TotalMints)
		assert.Equal(t, uint64(1), stats.TotalTransfers)
		assert.Equal(t, uint64(3), stats.TotalBurns)
		assertConsistent(t, l)
	})
}

func TestLedgerConcurrentAppend(t *testing.T) {
	l := New()
	const workers, perWorker = 8, 250

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			types := []entity.MintType{entity.MintTypePaid, entity.MintTypeFree, entity.MintTypeOwner}
			for i := 0; i < perWorker; i++ {
				l.AppendMint(entity.MintEvent{Minter: fmt.Sprintf("SP%d", w), MintType: types[i%len(types)]})
				l.AppendTransfer(entity.TransferEvent{From: fmt.Sprintf("SP%d", w)})
				_ = l.Stats()
			}
		}(w)
	}
	wg.Wait()

	stats := l.Stats()
	assert.Equal(t, uint64(workers*perWorker), stats.TotalMints)
	assert.Equal(t, uint64(workers*perWorker), stats.TotalTransfers)
	assert.Equal(t, workers, stats.ActiveUsers)
	assertConsistent(t, l)
}
