package endpoint

import (
	"context"
	"encoding/json"

	"github.com/doxysoft/jsonrpc-bidirectional/plugin"
	"github.com/doxysoft/jsonrpc-bidirectional/rpc"
)

// Dispatch resolves ir.Envelope.Method on e and invokes it, returning the
// raw JSON result on success or an *rpc.Error on failure, per spec.md
// section 4.C's dispatch rules.
func (e *Endpoint) Dispatch(ctx context.Context, ir *plugin.IncomingRequest) (json.RawMessage, error) {
	m, ok := e.lookup(ir.Envelope.Method)
	if !ok {
		return nil, rpc.NewMethodNotFoundError(ir.Envelope.Method)
	}
	return m.call(ctx, ir, ir.Envelope.Params)
}
