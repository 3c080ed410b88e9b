package plugin

import (
	"context"
	"runtime/debug"

	"github.com/juju/loggo/v2"
	"github.com/rs/xid"

	"github.com/doxysoft/jsonrpc-bidirectional/rpc/jsoncodec"
)

const traceIDContextKey = "duplexrpc.traceID"

// LoggingServerPlugin builds a server plugin that logs each request and
// its reply, redacting params at Debug level and showing them in full only
// at Trace level. This is the teacher's apiserver/observer/request_notifier.go
// ServerRequest/ServerReply pattern reimplemented as a plugin instead of a
// bespoke rpc.Observer, and stamps a compact xid-based trace id (spec.md's
// SPEC_FULL domain-stack entry for github.com/rs/xid) onto the request for
// correlating the two log lines.
func LoggingServerPlugin(logger loggo.Logger) ServerPlugin {
	return ServerPlugin{
		Name: "logging",
		Authenticate: func(ctx context.Context, ir *IncomingRequest) error {
			ir.Set(traceIDContextKey, xid.New().String())
			traceID, _ := ir.Get(traceIDContextKey)
			if logger.IsTraceEnabled() {
				logger.Tracef("<- [%v] %s", traceID, jsoncodec.DumpRequest(ir.Envelope.Method, ir.Envelope.ID, ir.Envelope.Params))
			} else {
				logger.Debugf("<- [%v] %s", traceID, jsoncodec.DumpRequest(ir.Envelope.Method, ir.Envelope.ID, "<redacted>"))
			}
			return nil
		},
		Response: func(ctx context.Context, ir *IncomingRequest) error {
			traceID, _ := ir.Get(traceIDContextKey)
			if ir.Response == nil {
				logger.Debugf("-> [%v] %s (notification, no reply)", traceID, ir.Envelope.Method)
				return nil
			}
			if ir.Response.Error != nil {
				logger.Debugf("-> [%v] %s error=%s", traceID, ir.Envelope.Method, ir.Response.Error.Message)
			} else {
				logger.Debugf("-> [%v] %s ok", traceID, ir.Envelope.Method)
			}
			return nil
		},
	}
}

// DebugStackServerPlugin is an opt-in exceptionCatch hook that attaches a
// stack trace to the error's Data field, implementing spec.md section
// 4.C's "data MAY include a stack only when a debug-mode plugin is
// installed".
func DebugStackServerPlugin() ServerPlugin {
	return ServerPlugin{
		Name: "debug-stack",
		ExceptionCatch: func(ctx context.Context, ir *IncomingRequest, err error) error {
			ir.Set("duplexrpc.stack", string(debug.Stack()))
			return err
		},
	}
}
