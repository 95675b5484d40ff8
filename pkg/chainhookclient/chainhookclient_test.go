package chainhookclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gaze-network/stamp-indexer/common"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testTarget = Target{
		ContractId:  "ST1G4ZDXED8XM2XJ4Q4GJ7F4PG4EJQ1KKXVPSAX13.bitcoin-stamp",
		Network:     common.NetworkTestnet,
		ExternalURL: "https://stamps.example.com/",
		AuthToken:   "s3cret",
	}
	testHooks = []Hook{
		{Name: "bitcoin-stamp-paid-mint", Method: "mint", WebhookPath: "/webhooks/paid-mint"},
		{Name: "bitcoin-stamp-transfer", Method: "transfer", WebhookPath: "/webhooks/transfer"},
		{Name: "bitcoin-stamp-burn", Method: "burn", WebhookPath: "/webhooks/burn"},
	}
)

type recordedRequest struct {
	Method string
	Path   string
	Body   []byte
}

type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recorder) record(req *http.Request) []byte {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, recordedRequest{Method: req.Method, Path: req.URL.Path, Body: body})
	return body
}

func (r *recorder) calls(method string) []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedRequest
	for _, req := range r.requests {
		if req.Method == method {
			out = append(out, req)
		}
	}
	return out
}

func TestLocalRegister(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/ping":
			_, _ = w.Write([]byte(`{"status":200}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/chainhooks/bitcoin-stamp-paid-mint":
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodGet && r.URL.Path == "/v1/chainhooks/bitcoin-stamp-transfer":
			_, _ = w.Write([]byte(`{"status":200,"result":{"enabled":true}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/chainhooks/bitcoin-stamp-burn":
			_, _ = w.Write([]byte(`{"status":200,"result":{"enabled":false}}`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	client, err := NewLocal(server.URL, testTarget)
	require.NoError(t, err)
	require.NoError(t, client.Register(context.Background(), testHooks))

	deletes := rec.calls(http.MethodDelete)
	require.Len(t, deletes, 1)
	assert.Equal(t, "/v1/chainhooks/stacks/bitcoin-stamp-burn", deletes[0].Path)

	posts := rec.calls(http.MethodPost)
	require.Len(t, posts, 2)
	assert.Equal(t, "/v1/chainhooks", posts[0].Path)
	assert.JSONEq(t, `{
		"uuid": "bitcoin-stamp-paid-mint",
		"name": "bitcoin-stamp-paid-mint",
		"version": 1,
		"chain": "stacks",
		"networks": {"testnet": {
			"if_this": {"scope": "contract_call", "contract_identifier": "ST1G4ZDXED8XM2XJ4Q4GJ7F4PG4EJQ1KKXVPSAX13.bitcoin-stamp", "method": "mint"},
			"then_that": {"http_post": {"url": "https://stamps.example.com/webhooks/paid-mint", "authorization_header": "Bearer s3cret"}},
			"decode_clarity_values": true,
			"include_contract_abi": false
		}}
	}`, string(posts[0].Body))

	var burn predicate
	require.NoError(t, json.Unmarshal(posts[1].Body, &burn))
	assert.Equal(t, "bitcoin-stamp-burn", burn.UUID)
	assert.Equal(t, "burn", burn.Networks["testnet"].IfThis.Method)
}

func TestLocalRegisterNodeUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewLocal(server.URL, testTarget)
	require.NoError(t, err)
	client.pingTimeout = 200 * time.Millisecond
	client.pingInterval = 50 * time.Millisecond

	err = client.Register(context.Background(), testHooks)
	assert.ErrorIs(t, err, errs.Timeout)
}

func TestNewLocalInvalid(t *testing.T) {
	for _, nodeURL := range []string{"https://api.testnet.hiro.so", "https://API.mainnet.hiro.so/"} {
		_, err := NewLocal(nodeURL, testTarget)
		assert.ErrorIs(t, err, errs.InvalidArgument, nodeURL)
	}

	_, err := NewLocal("http://localhost:20456", Target{ContractId: "SP1.x", Network: "devnet", ExternalURL: "http://localhost"})
	assert.ErrorIs(t, err, errs.Unsupported)

	_, err = NewLocal("http://localhost:20456", Target{Network: common.NetworkTestnet, ExternalURL: "http://localhost"})
	assert.ErrorIs(t, err, errs.InvalidArgument)
}

func TestHiroRegister(t *testing.T) {
	rec := &recorder{}
	existing := make([]Chainhook, 0, 61)
	for i := 0; i < 60; i++ {
		existing = append(existing, Chainhook{UUID: fmt.Sprintf("uuid-%d", i), Definition: ChainhookDefinition{Name: fmt.Sprintf("other-%d", i)}})
	}
	existing = append(existing, Chainhook{UUID: "uuid-burn", Definition: ChainhookDefinition{Name: "bitcoin-stamp-burn"}})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := rec.record(r)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == hiroBasePath:
			assert.Equal(t, "60", r.URL.Query().Get("limit"))
			offset := 0
			_, _ = fmt.Sscan(r.URL.Query().Get("offset"), &offset)
			end := min(offset+hiroPageSize, len(existing))
			_ = json.NewEncoder(w).Encode(listChainhooksResponse{Limit: hiroPageSize, Offset: offset, Total: len(existing), Results: existing[offset:end]})
		case r.Method == http.MethodPost && r.URL.Path == hiroBasePath:
			var definition ChainhookDefinition
			assert.NoError(t, json.Unmarshal(body, &definition))
			_ = json.NewEncoder(w).Encode(Chainhook{UUID: "new-" + definition.Name, Definition: definition})
		case r.Method == http.MethodPatch:
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := NewHiro(server.URL, "key", testTarget)
	require.NoError(t, err)
	require.NoError(t, client.Register(context.Background(), testHooks))

	assert.Len(t, rec.calls(http.MethodGet), 2)

	posts := rec.calls(http.MethodPost)
	require.Len(t, posts, 2)
	assert.JSONEq(t, `{
		"version": "1",
		"name": "bitcoin-stamp-paid-mint",
		"chain": "stacks",
		"network": "testnet",
		"filters": {"events": [{"type": "contract_call", "contract_identifier": "ST1G4ZDXED8XM2XJ4Q4GJ7F4PG4EJQ1KKXVPSAX13.bitcoin-stamp", "function_name": "mint"}]},
		"action": {"type": "http_post", "url": "https://stamps.example.com/webhooks/paid-mint?token=s3cret"},
		"options": {"decode_clarity_values": true, "enable_on_registration": true}
	}`, string(posts[0].Body))

	patches := rec.calls(http.MethodPatch)
	require.Len(t, patches, 2)
	assert.Equal(t, hiroBasePath+"/uuid-burn", patches[0].Path)
	assert.Equal(t, hiroBasePath+"/uuid-burn/enabled", patches[1].Path)
	assert.JSONEq(t, `{"enabled": true}`, string(patches[1].Body))
}

func TestHiroRegisterFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewHiro(server.URL, "key", testTarget)
	require.NoError(t, err)
	assert.Error(t, client.Register(context.Background(), testHooks))

	_, err = NewHiro(server.URL, "", testTarget)
	assert.ErrorIs(t, err, errs.InvalidArgument)
}
