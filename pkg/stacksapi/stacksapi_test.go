package stacksapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(server.URL, false)
	require.NoError(t, err)
	return client
}

func TestGetTransaction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		switch r.URL.Path {
		case "/extended/v1/tx/0xabc":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"tx_id":"0xabc","tx_status":"success"}`))
		default:
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("not found"))
		}
	})

	resp, err := client.GetTransaction(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "application/json", resp.ContentType)
	assert.JSONEq(t, `{"tx_id":"0xabc","tx_status":"success"}`, string(resp.Body))

	resp, err = client.GetTransaction(context.Background(), "0xmissing")
	require.NoError(t, err)
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", string(resp.Body))
}

func TestGetTransactionSharesInflightRequests(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.GetTransaction(context.Background(), "0xsame")
			assert.NoError(t, err)
			assert.True(t, resp.IsSuccess())
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.EqualValues(t, 1, hits.Load())
}

func TestGetTransactionUnreachable(t *testing.T) {
	client, err := New("http://127.0.0.1:1", false)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = client.GetTransaction(ctx, "0xabc")
	assert.Error(t, err)
}

func TestGetAccountNonce(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/accounts/ST1G4ZDXED8XM2XJ4Q4GJ7F4PG4EJQ1KKXVPSAX13" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "0", r.URL.Query().Get("proof"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"balance":"0x0000000000000000000000003b9aca00","locked":"0x0","nonce":42}`))
	})

	nonce, err := client.GetAccountNonce(context.Background(), "ST1G4ZDXED8XM2XJ4Q4GJ7F4PG4EJQ1KKXVPSAX13")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), nonce)

	_, err = client.GetAccountNonce(context.Background(), "ST000000000000000000002AMW42H")
	assert.Error(t, err)
}

func TestBroadcastTransaction(t *testing.T) {
	raw := []byte{0x80, 0x00, 0x00, 0x00, 0x01}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/transactions", r.URL.Path)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		if body[len(body)-1] == 0x01 {
			_, _ = w.Write([]byte(`"5d2d58d1c6ba1ca1bd3c2a44ae4e17e9b0f3fbd0e8c5a2d4cfa2d6c0e2f1a3b4"`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"transaction rejected","reason":"BadNonce","reason_data":{"expected":3,"actual":2},"txid":"ff"}`))
	})

	txId, err := client.BroadcastTransaction(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "5d2d58d1c6ba1ca1bd3c2a44ae4e17e9b0f3fbd0e8c5a2d4cfa2d6c0e2f1a3b4", txId)

	_, err = client.BroadcastTransaction(context.Background(), []byte{0x80, 0x02})
	var rejection *BroadcastError
	require.True(t, errors.As(err, &rejection))
	assert.Equal(t, "transaction rejected", rejection.Message)
	assert.Equal(t, "BadNonce", rejection.Reason)
	assert.JSONEq(t, `{"expected":3,"actual":2}`, string(rejection.ReasonData))
	assert.Equal(t, "transaction rejected: transaction rejected: BadNonce", rejection.Error())
}

func TestBroadcastTransactionPlainRejection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("node is syncing\n"))
	})

	_, err := client.BroadcastTransaction(context.Background(), []byte{0x00})
	var rejection *BroadcastError
	require.True(t, errors.As(err, &rejection))
	assert.Equal(t, "node is syncing", rejection.Message)
}
