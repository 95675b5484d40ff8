package httphandler

import (
	"strconv"

	"github.com/gaze-network/stamp-indexer/modules/stamp/internal/entity"
	"github.com/gaze-network/stamp-indexer/modules/stamp/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type HttpHandler struct {
	usecase *usecase.Usecase
}

func New(usecase *usecase.Usecase) *HttpHandler {
	return &HttpHandler{
		usecase: usecase,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type mintEvent struct {
	TokenId     string `json:"tokenId"`
	Minter      string `json:"minter"`
	Name        string `json:"name"`
	URI         string `json:"uri"`
	MintType    string `json:"mintType"`
	TxId        string `json:"txId"`
	BlockHeight uint64 `json:"blockHeight"`
	Timestamp   int64  `json:"timestamp"`
}

type transferEvent struct {
	TokenId     string `json:"tokenId"`
	From        string `json:"from"`
	To          string `json:"to"`
	TxId        string `json:"txId"`
	BlockHeight uint64 `json:"blockHeight"`
	Timestamp   int64  `json:"timestamp"`
}

type burnEvent struct {
	TokenId     string `json:"tokenId"`
	Owner       string `json:"owner"`
	TxId        string `json:"txId"`
	BlockHeight uint64 `json:"blockHeight"`
	Timestamp   int64  `json:"timestamp"`
}

func mapMintEvent(m entity.MintEvent) mintEvent {
	return mintEvent{
		TokenId:     m.TokenId,
		Minter:      m.Minter,
		Name:        m.Name,
		URI:         m.URI,
		MintType:    string(m.MintType),
		TxId:        m.TxId,
		BlockHeight: m.BlockHeight,
		Timestamp:   m.Timestamp,
	}
}

func mapTransferEvent(t entity.TransferEvent) transferEvent {
	return transferEvent{
		TokenId:     t.TokenId,
		From:        t.From,
		To:          t.To,
		TxId:        t.TxId,
		BlockHeight: t.BlockHeight,
		Timestamp:   t.Timestamp,
	}
}

func mapBurnEvent(b entity.BurnEvent) burnEvent {
	return burnEvent{
		TokenId:     b.TokenId,
		Owner:       b.Owner,
		TxId:        b.TxId,
		BlockHeight: b.BlockHeight,
		Timestamp:   b.Timestamp,
	}
}

func mapMintEvents(mints []entity.MintEvent) []mintEvent {
	return lo.Map(mints, func(m entity.MintEvent, _ int) mintEvent { return mapMintEvent(m) })
}

func mapTransferEvents(transfers []entity.TransferEvent) []transferEvent {
	return lo.Map(transfers, func(t entity.TransferEvent, _ int) transferEvent { return mapTransferEvent(t) })
}

func mapBurnEvents(burns []entity.BurnEvent) []burnEvent {
	return lo.Map(burns, func(b entity.BurnEvent, _ int) burnEvent { return mapBurnEvent(b) })
}

// queryIntOrDefault reads a non-negative integer query parameter. Missing, malformed or negative values
// fall back to the default instead of failing the request.
func queryIntOrDefault(ctx *fiber.Ctx, key string, fallback int) int {
	raw := ctx.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
