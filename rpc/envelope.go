package rpc

import (
	"bytes"
	"encoding/json"

	"github.com/juju/errors"
)

// Version is the only jsonrpc field value this package accepts.
const Version = "2.0"

// Request is a decoded JSON-RPC 2.0 request or notification. ID is nil for
// a notification (spec.md section 3: "id absent => notification").
type Request struct {
	Method string
	Params json.RawMessage
	ID     json.RawMessage
}

// IsNotification reports whether the request carries no id, i.e. no
// response is expected.
func (r Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response is a decoded JSON-RPC 2.0 response. Exactly one of Result and
// Error is set.
type Response struct {
	ID     json.RawMessage
	Result json.RawMessage
	Error  *Error
}

type wireRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

type wireResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// EncodeRequest renders r as a JSON-RPC 2.0 request object.
func EncodeRequest(r Request) ([]byte, error) {
	out := wireRequest{
		JSONRPC: Version,
		Method:  r.Method,
		Params:  r.Params,
		ID:      r.ID,
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, errors.Annotate(err, "encode request")
	}
	return data, nil
}

// DecodeRequest parses a JSON-RPC 2.0 request object. A missing or wrong
// "jsonrpc" field is a decode failure per spec.md section 4.A. Absent
// params decode as an empty array, per the same section.
func DecodeRequest(data []byte) (Request, error) {
	var w wireRequest
	if err := json.Unmarshal(data, &w); err != nil {
		return Request{}, NewParseError(err.Error())
	}
	if w.JSONRPC != Version {
		return Request{}, NewInvalidRequestError(`missing or invalid "jsonrpc" field`)
	}
	if w.Method == "" {
		return Request{}, NewInvalidRequestError(`missing "method" field`)
	}
	if len(w.Params) == 0 {
		w.Params = json.RawMessage("[]")
	}
	return Request{Method: w.Method, Params: w.Params, ID: w.ID}, nil
}

// EncodeResponse renders r as a JSON-RPC 2.0 response object.
func EncodeResponse(r Response) ([]byte, error) {
	out := wireResponse{
		JSONRPC: Version,
		ID:      r.ID,
		Result:  r.Result,
		Error:   r.Error,
	}
	if len(out.ID) == 0 {
		out.ID = json.RawMessage("null")
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, errors.Annotate(err, "encode response")
	}
	return data, nil
}

// DecodeResponse parses a JSON-RPC 2.0 response object.
func DecodeResponse(data []byte) (Response, error) {
	var w wireResponse
	if err := json.Unmarshal(data, &w); err != nil {
		return Response{}, NewParseError(err.Error())
	}
	if w.JSONRPC != Version {
		return Response{}, NewInvalidRequestError(`missing or invalid "jsonrpc" field`)
	}
	if (len(w.Result) == 0) == (w.Error == nil) {
		return Response{}, NewInvalidRequestError(`exactly one of "result" or "error" must be present`)
	}
	return Response{ID: w.ID, Result: w.Result, Error: w.Error}, nil
}

// LooksLikeResponse reports whether a raw frame has the shape of a response
// (has "id" and one of "result"/"error") rather than a request (has
// "method"). Used by the router (spec.md section 4.G) to classify inbound
// frames without fully decoding them first.
func LooksLikeResponse(data []byte) bool {
	var probe struct {
		Method json.RawMessage `json:"method"`
		Result json.RawMessage `json:"result"`
		Error  json.RawMessage `json:"error"`
		ID     json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	if len(probe.Method) > 0 {
		return false
	}
	return len(probe.ID) > 0 && (len(probe.Result) > 0 || len(probe.Error) > 0)
}

// LooksLikeRequest reports whether a raw frame has a "method" field.
func LooksLikeRequest(data []byte) bool {
	var probe struct {
		Method json.RawMessage `json:"method"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return len(probe.Method) > 0
}

// NormalizeID returns a comparable string key for a raw JSON id, preserving
// the exact scalar bytes so ids round-trip (spec.md section 8: decode(encode(R)) == R).
func NormalizeID(raw json.RawMessage) string {
	return string(bytes.TrimSpace(raw))
}
