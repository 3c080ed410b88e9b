package rpcclient

import (
	"encoding/json"
	"time"
)

// PendingCall tracks an in-flight request awaiting its response, per
// spec.md section 4.E. It is keyed by the normalized id the request was
// sent with; ch receives the raw response frame that OnResponse delivers
// asynchronously (e.g. from a WebSocket transport), or nil when Close fails
// the call. A synchronous transport (HTTP) fills OutgoingRequest.ResponseBody
// instead and never uses ch.
type PendingCall struct {
	ID      json.RawMessage
	Method  string
	Created time.Time

	ch chan []byte
}
