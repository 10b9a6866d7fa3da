package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is the wire envelope every endpoint responds with. Legacy
// endpoints that predate the envelope return bare objects, bare arrays or
// paginated pages; DecodeEnvelope wraps those into the same structure.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  []string        `json:"errors,omitempty"`
}

// APIError is a request that reached the server but did not succeed.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.StatusCode)
}

// DecodeEnvelope normalizes a response body into an Envelope. Variants are
// tried in a fixed priority order: explicit envelope, paginated page, bare
// array, bare object carrying an id.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &Envelope{Success: true}, nil
	}

	if trimmed[0] == '[' {
		var probe []json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return nil, fmt.Errorf("malformed array response: %w", err)
		}
		return &Envelope{Success: true, Data: trimmed}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}

	if _, ok := fields["success"]; ok {
		var env Envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("malformed envelope: %w", err)
		}
		return &env, nil
	}

	if _, hasItems := fields["items"]; hasItems {
		if _, hasTotal := fields["total"]; hasTotal {
			return &Envelope{Success: true, Data: trimmed}, nil
		}
	}

	if _, ok := fields["id"]; ok {
		return &Envelope{Success: true, Data: trimmed}, nil
	}

	return nil, fmt.Errorf("unrecognized response shape")
}

// Decode unmarshals the envelope payload into dest. A nil payload leaves dest
// untouched.
func (e *Envelope) Decode(dest interface{}) error {
	if len(e.Data) == 0 {
		return nil
	}
	return json.Unmarshal(e.Data, dest)
}
