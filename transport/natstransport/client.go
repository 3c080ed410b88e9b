// Package natstransport maps the transport-plugin layer of spec.md
// section 4.F onto NATS request-reply: a client MakeRequest hook that
// performs a synchronous nc.Request per call, and a server-side
// subscriber that feeds each inbound message through the server core and
// publishes the reply to the message's reply subject.
//
// It is grounded on more0ai-registry's pkg/commsutil (connection setup)
// and pkg/events.CommsPublisher (publish-with-encoded-payload pattern),
// the pack's only user of github.com/nats-io/nats.go; that package only
// ever fires one-way change events, so the request-reply half used here
// is new but built the same way — a thin wrapper that encodes, sends, and
// logs failures at the same log level commsutil does.
package natstransport

import (
	"context"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/doxysoft/jsonrpc-bidirectional/plugin"
	"github.com/doxysoft/jsonrpc-bidirectional/rpc"
)

// ClientPlugin builds a client transport plugin whose MakeRequest sends
// out.RequestBody as a NATS request on subject and waits up to timeout
// for the reply, filling out.ResponseBody synchronously (spec.md section
// 4.F). A notification still publishes, but nc.Request waits for a reply
// that will never come for a fire-and-forget call, so notifications use
// nc.Publish instead; the client core recognizes a notification by the
// envelope carrying no id and never inspects ResponseBody for one.
func ClientPlugin(nc *nats.Conn, subject string, timeout time.Duration) plugin.ClientPlugin {
	return plugin.ClientPlugin{
		Name: "nats-transport",
		MakeRequest: func(ctx context.Context, out *plugin.OutgoingRequest) error {
			if len(out.Envelope.ID) == 0 {
				if err := nc.Publish(subject, out.RequestBody); err != nil {
					return rpc.NewTransportError(err)
				}
				return nil
			}

			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			msg, err := nc.RequestWithContext(ctx, subject, out.RequestBody)
			if err != nil {
				return rpc.NewTransportError(err)
			}
			out.ResponseBody = msg.Data
			return nil
		},
	}
}
