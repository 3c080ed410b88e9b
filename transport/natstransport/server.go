package natstransport

import (
	"context"

	"github.com/juju/loggo/v2"
	nats "github.com/nats-io/nats.go"

	"github.com/doxysoft/jsonrpc-bidirectional/rpcserver"
)

var logger = loggo.GetLogger("duplexrpc.natstransport")

// Subscribe feeds every message received on subject through
// server.ProcessRequest at endpointPath and, for a request (not a
// notification), publishes the response to the message's reply subject.
// The *nats.Msg is passed through as the transportContext, the same way
// httptransport.Handler passes through the *http.Request, so plugins can
// inspect NATS-specific metadata (subject, headers) if they need to.
// Grounded on more0ai-registry/pkg/commsutil.Connect's subscription setup
// and internal/server/server.go's request-handling loop over a live
// connection.
func Subscribe(nc *nats.Conn, subject, endpointPath string, server *rpcserver.Server) (*nats.Subscription, error) {
	return nc.Subscribe(subject, func(msg *nats.Msg) {
		out, err := server.ProcessRequest(context.Background(), msg.Data, endpointPath, msg)
		if err != nil {
			logger.Errorf("natstransport: subject %q: processing request: %v", subject, err)
			return
		}
		if out == nil {
			return // notification: no reply to publish
		}
		if msg.Reply == "" {
			logger.Debugf("natstransport: subject %q: request carried no reply subject, dropping response", subject)
			return
		}
		if err := nc.Publish(msg.Reply, out); err != nil {
			logger.Errorf("natstransport: subject %q: publishing reply: %v", subject, err)
		}
	})
}
