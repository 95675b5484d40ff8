package chainhook

// ContractCall is a contract-call transaction against the watched contract, normalized across both
// payload encodings.
type ContractCall struct {
	TxId        string   `json:"txId"`
	BlockHeight uint64   `json:"blockHeight"`
	Timestamp   int64    `json:"timestamp"` // unix seconds, as reported by the block
	Sender      string   `json:"sender"`
	Method      string   `json:"method"`
	Args        []string `json:"args"`
	Result      string   `json:"result"`
	Success     bool     `json:"success"`
}

// blockInfo is the per-block context shared by every transaction in the block.
type blockInfo struct {
	height    uint64
	timestamp int64
}

// txSource is a transaction classified by the encoding it uses to describe a contract call.
type txSource interface {
	// match returns the normalized contract call when the transaction targets contractId.
	match(block blockInfo, contractId string) (ContractCall, bool)
}

type (
	// inlineKindSource describes the call under `metadata.kind` with `type == "ContractCall"`.
	inlineKindSource struct {
		txId     string
		metadata any
		data     any
	}

	// operationsSource describes the call as the first `contract_call` entry of an `operations` list.
	operationsSource struct {
		txId       string
		metadata   any
		operations []any
	}

	// unrecognizedSource is any transaction that is not a contract call in either encoding.
	unrecognizedSource struct{}
)

func classifyTransaction(tx any) txSource {
	txId, _ := stringField(tx, "transaction_identifier", "hash")
	metadata := field(tx, "metadata")

	if kind, _ := stringField(metadata, "kind", "type"); kind == "ContractCall" {
		return inlineKindSource{
			txId:     txId,
			metadata: metadata,
			data:     path(metadata, "kind", "data"),
		}
	}

	if kind, _ := stringField(metadata, "type"); kind == "contract_call" {
		operations, ok := arrayField(tx, "operations")
		if !ok {
			return unrecognizedSource{}
		}
		return operationsSource{
			txId:       txId,
			metadata:   metadata,
			operations: operations,
		}
	}

	return unrecognizedSource{}
}

func (s inlineKindSource) match(block blockInfo, contractId string) (ContractCall, bool) {
	if target, _ := stringField(s.data, "contract_identifier"); target != contractId {
		return ContractCall{}, false
	}
	method, ok := stringField(s.data, "method")
	if !ok {
		return ContractCall{}, false
	}
	sender, _ := stringField(s.metadata, "sender")
	success, _ := field(s.metadata, "success").(bool)

	return ContractCall{
		TxId:        s.txId,
		BlockHeight: block.height,
		Timestamp:   block.timestamp,
		Sender:      sender,
		Method:      method,
		Args:        argsValue(field(s.data, "args")),
		Result:      resultValue(field(s.metadata, "result")),
		Success:     success,
	}, true
}

func (s operationsSource) match(block blockInfo, contractId string) (ContractCall, bool) {
	var op any
	for _, candidate := range s.operations {
		if kind, _ := stringField(candidate, "type"); kind != "contract_call" {
			continue
		}
		if target, _ := stringField(candidate, "metadata", "contract_identifier"); target != contractId {
			continue
		}
		op = candidate
		break
	}
	if op == nil {
		return ContractCall{}, false
	}

	method, ok := stringField(op, "metadata", "function_name")
	if !ok {
		return ContractCall{}, false
	}
	sender, _ := stringField(s.metadata, "sender_address")
	status, _ := stringField(s.metadata, "status")

	return ContractCall{
		TxId:        s.txId,
		BlockHeight: block.height,
		Timestamp:   block.timestamp,
		Sender:      sender,
		Method:      method,
		Args:        argsValue(path(op, "metadata", "args")),
		Result:      resultValue(field(s.metadata, "result")),
		Success:     status == "success",
	}, true
}

func (unrecognizedSource) match(blockInfo, string) (ContractCall, bool) {
	return ContractCall{}, false
}

// ExtractContractCalls returns the calls in p that target contractId, in block order then transaction order.
// Blocks or transactions with missing or mistyped fields are skipped rather than reported.
// At most one call is produced per transaction.
func ExtractContractCalls(p *Payload, contractId string) []ContractCall {
	if p == nil {
		return []ContractCall{}
	}

	calls := make([]ContractCall, 0)
	for _, block := range p.Apply {
		if _, ok := block.(map[string]any); !ok {
			continue
		}
		info := blockInfo{
			height:    uint64Value(path(block, "block_identifier", "index")),
			timestamp: int64Value(field(block, "timestamp")),
		}
		transactions, _ := arrayField(block, "transactions")
		for _, tx := range transactions {
			if call, ok := classifyTransaction(tx).match(info, contractId); ok {
				calls = append(calls, call)
			}
		}
	}
	return calls
}
