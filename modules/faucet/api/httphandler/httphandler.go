package httphandler

import (
	"context"

	"github.com/gaze-network/stamp-indexer/modules/faucet/usecase"
	"github.com/gaze-network/stamp-indexer/pkg/stacksapi"
)

// TransactionFetcher looks up transactions for the proxy endpoint.
type TransactionFetcher interface {
	GetTransaction(ctx context.Context, txId string) (stacksapi.RawResponse, error)
}

type HttpHandler struct {
	usecase      *usecase.Usecase
	transactions TransactionFetcher
}

func New(usecase *usecase.Usecase, transactions TransactionFetcher) *HttpHandler {
	return &HttpHandler{
		usecase:      usecase,
		transactions: transactions,
	}
}
