// Package stacksapi is a client of the Stacks node and API endpoints used by the faucet and the transaction proxy.
package stacksapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/pkg/httpclient"
	"github.com/gaze-network/stamp-indexer/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

const service = "stacks_api"

type Client struct {
	httpClient *httpclient.Client
	txGroup    singleflight.Group
}

func New(baseURL string, debug bool) (*Client, error) {
	httpClient, err := httpclient.New(baseURL, httpclient.Config{
		Debug: debug,
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't create http client")
	}
	return &Client{
		httpClient: httpClient,
	}, nil
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.httpClient.BaseURL().String()
}

// RawResponse is an upstream response kept as-is for pass-through.
type RawResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (r RawResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// GetTransaction fetches a transaction from the extended API. Non-2xx responses are not errors, they are returned
// for the caller to relay. Concurrent lookups of the same id share one upstream request.
func (c *Client) GetTransaction(ctx context.Context, txId string) (RawResponse, error) {
	result, err, _ := c.txGroup.Do(txId, func() (any, error) {
		resp, err := c.httpClient.Get(ctx, "/extended/v1/tx/"+txId, httpclient.RequestOptions{
			Header: map[string]string{"Accept": "application/json"},
		})
		if err != nil {
			observe("get_transaction", "error")
			return nil, errors.Wrap(err, "can't send request")
		}
		observe("get_transaction", strconv.Itoa(resp.StatusCode()))

		body, err := resp.BodyUncompressed()
		if err != nil {
			return nil, errors.Wrap(err, "can't read response body")
		}
		return RawResponse{
			StatusCode:  resp.StatusCode(),
			ContentType: string(resp.Header.ContentType()),
			Body:        append([]byte(nil), body...),
		}, nil
	})
	if err != nil {
		return RawResponse{}, errors.WithStack(err)
	}
	return result.(RawResponse), nil
}

type accountResponse struct {
	Nonce   uint64 `json:"nonce"`
	Balance string `json:"balance"`
}

// GetAccountNonce returns the next nonce of an account.
func (c *Client) GetAccountNonce(ctx context.Context, address string) (uint64, error) {
	resp, err := c.httpClient.Get(ctx, "/v2/accounts/"+url.PathEscape(address), httpclient.RequestOptions{
		Query: url.Values{"proof": []string{"0"}},
	})
	if err != nil {
		observe("get_account", "error")
		return 0, errors.Wrap(err, "can't send request")
	}
	observe("get_account", strconv.Itoa(resp.StatusCode()))
	if !resp.IsSuccess() {
		return 0, errors.Errorf("account request failed with status %d: %s", resp.StatusCode(), resp.Body())
	}

	var account accountResponse
	if err := resp.UnmarshalBody(&account); err != nil {
		return 0, errors.WithStack(err)
	}
	return account.Nonce, nil
}

// BroadcastError is a transaction rejected by the node.
type BroadcastError struct {
	Message    string          `json:"error"`
	Reason     string          `json:"reason,omitempty"`
	ReasonData json.RawMessage `json:"reason_data,omitempty"`
	TxId       string          `json:"txid,omitempty"`
}

func (e *BroadcastError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("transaction rejected: %s: %s", e.Message, e.Reason)
	}
	return "transaction rejected: " + e.Message
}

// BroadcastTransaction submits a serialized transaction and returns its id. A rejection is returned as *BroadcastError.
func (c *Client) BroadcastTransaction(ctx context.Context, raw []byte) (string, error) {
	resp, err := c.httpClient.Post(ctx, "/v2/transactions", httpclient.RequestOptions{
		Body:        raw,
		ContentType: "application/octet-stream",
	})
	if err != nil {
		observe("broadcast_transaction", "error")
		return "", errors.Wrap(err, "can't send request")
	}
	observe("broadcast_transaction", strconv.Itoa(resp.StatusCode()))

	body := resp.Body()
	if !resp.IsSuccess() {
		rejection := &BroadcastError{}
		if err := json.Unmarshal(body, rejection); err != nil || rejection.Message == "" {
			rejection = &BroadcastError{Message: strings.TrimSpace(string(body))}
		}
		if rejection.Message == "" {
			rejection.Message = fmt.Sprintf("status %d", resp.StatusCode())
		}
		return "", errors.WithStack(rejection)
	}

	// the node answers with the txid as a JSON string
	var txId string
	if err := json.Unmarshal(body, &txId); err != nil {
		txId = strings.Trim(strings.TrimSpace(string(body)), `"`)
	}
	return strings.TrimPrefix(txId, "0x"), nil
}

func observe(operation, status string) {
	metrics.UpstreamRequests.WithLabelValues(service, operation, status).Inc()
}
