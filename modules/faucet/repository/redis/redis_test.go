package redis

import (
	"context"
	"testing"
	"time"

	"github.com/gaze-network/stamp-indexer/modules/faucet/internal/entity"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryGetLastClaim(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	repo := NewRepository(client, "stamp-indexer:faucet")

	mock.ExpectGet("stamp-indexer:faucet:address:ST1").SetVal("1700000000000")
	at, ok, err := repo.GetLastClaim(ctx, entity.CooldownScopeAddress, "ST1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1_700_000_000_000), at.UnixMilli())

	mock.ExpectGet("stamp-indexer:faucet:ip:10.0.0.1").RedisNil()
	_, ok, err = repo.GetLastClaim(ctx, entity.CooldownScopeIP, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectGet("stamp-indexer:faucet:address:ST2").SetErr(assert.AnError)
	_, _, err = repo.GetLastClaim(ctx, entity.CooldownScopeAddress, "ST2")
	assert.ErrorIs(t, err, assert.AnError)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositorySetLastClaim(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	repo := NewRepository(client, "")
	at := time.UnixMilli(1_700_000_000_000)

	mock.ExpectSet("faucet:address:ST1", at.UnixMilli(), 24*time.Hour).SetVal("OK")
	require.NoError(t, repo.SetLastClaim(ctx, entity.CooldownScopeAddress, "ST1", at, 24*time.Hour))

	// nothing is written without a ttl
	require.NoError(t, repo.SetLastClaim(ctx, entity.CooldownScopeIP, "10.0.0.1", at, 0))

	mock.ExpectSet("faucet:ip:10.0.0.1", at.UnixMilli(), time.Hour).SetErr(assert.AnError)
	assert.ErrorIs(t, repo.SetLastClaim(ctx, entity.CooldownScopeIP, "10.0.0.1", at, time.Hour), assert.AnError)

	assert.NoError(t, mock.ExpectationsWereMet())
}
