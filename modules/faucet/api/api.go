package api

import (
	"github.com/gaze-network/stamp-indexer/modules/faucet/api/httphandler"
	"github.com/gaze-network/stamp-indexer/modules/faucet/usecase"
)

func NewHTTPHandler(usecase *usecase.Usecase, transactions httphandler.TransactionFetcher) *httphandler.HttpHandler {
	return httphandler.New(usecase, transactions)
}
