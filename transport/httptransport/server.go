package httptransport

import (
	"io"
	"net/http"

	"github.com/doxysoft/jsonrpc-bidirectional/rpcserver"
)

// Handler adapts server to net/http: it reads the request body, runs it
// through server.ProcessRequest at endpointPath, and writes the response
// body back (or 204 with no body for a notification). The *http.Request
// is passed through as the server's transportContext so plugins can
// inspect headers (e.g. an Authorization header an authenticate plugin
// checks), grounded on the teacher's websocketServer/httpContext pattern
// of handing the raw *http.Request down into request-scoped handling
// (apiserver/websocket.go, apiserver/pubsub.go).
func Handler(server *rpcserver.Server, endpointPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "cannot read request body", http.StatusBadRequest)
			return
		}

		out, err := server.ProcessRequest(r.Context(), body, endpointPath, r)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if out == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(out)
	}
}
