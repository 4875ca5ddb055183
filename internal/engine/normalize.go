package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ppiankov/tavla/internal/model"
)

// ErrUnrecognizedPayload means the engine replied with a shape the
// normalizer does not know. It is not retried differently from other
// failures but is kept distinct for diagnostics.
var ErrUnrecognizedPayload = errors.New("unrecognized engine payload shape")

// wrappedResponse covers object payloads that nest the ranked list under
// an alternate key. Only "moves" and "plays" are recognized; anything else
// is a parse error, not a guess.
type wrappedResponse struct {
	Moves []model.CandidateMove `json:"moves"`
	Plays []model.CandidateMove `json:"plays"`
}

// NormalizeResponse parses an engine payload into a ranked move list.
// The upstream service has two quirks this function absorbs:
//   - the payload is sometimes JSON-encoded twice (a JSON string whose
//     contents are the actual JSON document), and
//   - the ranked list arrives either as a bare array or wrapped in an
//     object under "moves" or "plays".
func NormalizeResponse(payload []byte) (*model.EngineResponse, error) {
	doc, err := unwrapDoubleEncoding(payload)
	if err != nil {
		return nil, err
	}

	// Bare ranked array
	var moves []model.CandidateMove
	if err := json.Unmarshal(doc, &moves); err == nil {
		return &model.EngineResponse{Moves: moves}, nil
	}

	// Object wrapping the array
	var wrapped wrappedResponse
	if err := json.Unmarshal(doc, &wrapped); err == nil {
		if wrapped.Moves != nil {
			return &model.EngineResponse{Moves: wrapped.Moves}, nil
		}
		if wrapped.Plays != nil {
			return &model.EngineResponse{Moves: wrapped.Plays}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnrecognizedPayload, truncate(doc, 120))
}

// unwrapDoubleEncoding re-parses string-typed payloads once.
// json.Unmarshal into a string succeeds only when the document's top-level
// value is a JSON string, which is exactly the double-encoding case.
func unwrapDoubleEncoding(payload []byte) ([]byte, error) {
	var inner string
	if err := json.Unmarshal(payload, &inner); err == nil {
		return []byte(inner), nil
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrUnrecognizedPayload)
	}
	return payload, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
