// Package httptransport implements the HTTP half of spec.md section 4.F:
// a one-shot request/response client transport plugin and a matching
// server-side http.Handler. HTTP has no reverse channel, so an endpoint's
// ReverseClientFactory is never invoked for requests that arrive here
// (spec.md section 4.G only applies to the duplex router).
package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/doxysoft/jsonrpc-bidirectional/plugin"
	"github.com/doxysoft/jsonrpc-bidirectional/rpc"
)

// ClientPlugin builds the client-side transport plugin: its MakeRequest
// hook POSTs the encoded request to endpointURL and fills
// out.ResponseBody synchronously, per spec.md section 4.E step 4 ("for
// HTTP transport, makeRequest performs a request/response round trip and
// provides responseBody synchronously").
func ClientPlugin(endpointURL string, httpClient *http.Client) plugin.ClientPlugin {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return plugin.ClientPlugin{
		Name: "http-transport",
		MakeRequest: func(ctx context.Context, out *plugin.OutgoingRequest) error {
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(out.RequestBody))
			if err != nil {
				return rpc.NewTransportError(err)
			}
			httpReq.Header.Set("Content-Type", "application/json")

			httpResp, err := httpClient.Do(httpReq)
			if err != nil {
				return rpc.NewTransportError(err)
			}
			defer httpResp.Body.Close()

			body, err := io.ReadAll(httpResp.Body)
			if err != nil {
				return rpc.NewTransportError(err)
			}

			if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
				if !looksLikeEnvelope(body) {
					return rpc.NewTransportError(fmt.Errorf("http %d: %s", httpResp.StatusCode, body))
				}
			}
			out.ResponseBody = body
			return nil
		},
	}
}

// looksLikeEnvelope reports whether body is a JSON-RPC 2.0 response
// object, so a non-2xx status whose body is still a well-formed error
// envelope (as a server other than this package's Handler may send; the
// Handler itself answers every envelope with a 2xx status) is not
// mistaken for a bare transport failure.
func looksLikeEnvelope(body []byte) bool {
	var probe struct {
		JSONRPC string `json:"jsonrpc"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}
	return probe.JSONRPC == rpc.Version
}
