// Package chainhook recognizes chainhook webhook payloads and extracts the contract calls they carry.
//
// Two upstream providers deliver materially different shapes: a local Chainhook node posts the bare
// `{"apply": [...]}` form with inline `metadata.kind` transactions, while the hosted Chainhooks service wraps
// the blocks in an `{"event": {"apply": [...]}}` envelope and describes calls as an `operations` list.
// Both are decoded into untyped JSON values and pattern-matched, since neither schema is stable enough to
// bind to structs without losing the tolerance for unknown or partial fields.
package chainhook

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// ErrInvalidPayload is returned when a body matches neither the enveloped nor the bare payload form.
var ErrInvalidPayload = errors.New("invalid payload")

// Payload is a classified chainhook payload: an object holding an `apply` list of blocks.
type Payload struct {
	// Apply is the list of applied blocks, in delivery order. Elements are untyped JSON values.
	Apply []any

	// Enveloped reports whether the payload was unwrapped from an `event` envelope.
	Enveloped bool
}

// Decode parses a raw request body and classifies it. Numbers are kept as [json.Number] so block heights and
// numeric arguments survive without float rounding. Unparseable JSON is reported as [ErrInvalidPayload].
func Decode(body []byte) (*Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.WithSecondaryError(errors.WithStack(ErrInvalidPayload), err)
	}
	return Classify(v)
}

// Classify determines the payload form of an already decoded body, in priority order:
//  1. enveloped: `{"event": {"apply": [...]}}` is unwrapped to the inner event,
//  2. bare: `{"apply": [...]}` is used as-is,
//  3. anything else fails with [ErrInvalidPayload].
//
// The shape of the `apply` elements is not validated here.
func Classify(body any) (*Payload, error) {
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, errors.WithStack(ErrInvalidPayload)
	}

	if event, ok := obj["event"].(map[string]any); ok {
		if apply, ok := event["apply"].([]any); ok {
			return &Payload{Apply: apply, Enveloped: true}, nil
		}
	}

	if apply, ok := obj["apply"].([]any); ok {
		return &Payload{Apply: apply}, nil
	}

	return nil, errors.WithStack(ErrInvalidPayload)
}
