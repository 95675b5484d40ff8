package api

import (
	"github.com/gaze-network/stamp-indexer/modules/stamp/api/httphandler"
	"github.com/gaze-network/stamp-indexer/modules/stamp/usecase"
)

func NewHTTPHandler(usecase *usecase.Usecase) *httphandler.HttpHandler {
	return httphandler.New(usecase)
}
