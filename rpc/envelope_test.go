package rpc_test

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/doxysoft/jsonrpc-bidirectional/rpc"
)

func TestEncodeDecodeRequestRoundTrip(t *testing.T) {
	c := qt.New(t)

	in := rpc.Request{
		Method: "divide",
		Params: json.RawMessage(`[6,2]`),
		ID:     json.RawMessage(`1`),
	}
	data, err := rpc.EncodeRequest(in)
	c.Assert(err, qt.IsNil)

	out, err := rpc.DecodeRequest(data)
	c.Assert(err, qt.IsNil)
	c.Assert(out.Method, qt.Equals, in.Method)
	c.Assert(string(out.Params), qt.Equals, string(in.Params))
	c.Assert(string(out.ID), qt.Equals, string(in.ID))
	c.Assert(out.IsNotification(), qt.IsFalse)
}

func TestDecodeRequestMissingParamsDefaultsToEmptyArray(t *testing.T) {
	c := qt.New(t)

	req, err := rpc.DecodeRequest([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	c.Assert(err, qt.IsNil)
	c.Assert(string(req.Params), qt.Equals, "[]")
}

func TestDecodeRequestWithoutIDIsNotification(t *testing.T) {
	c := qt.New(t)

	req, err := rpc.DecodeRequest([]byte(`{"jsonrpc":"2.0","method":"log","params":["x"]}`))
	c.Assert(err, qt.IsNil)
	c.Assert(req.IsNotification(), qt.IsTrue)
}

func TestDecodeRequestRejectsMissingJSONRPCField(t *testing.T) {
	c := qt.New(t)

	_, err := rpc.DecodeRequest([]byte(`{"id":1,"method":"ping"}`))
	c.Assert(err, qt.Not(qt.IsNil))
	var rpcErr *rpc.Error
	c.Assert(err, qt.ErrorAs, &rpcErr)
	c.Assert(rpcErr.Code, qt.Equals, rpc.CodeInvalidRequest)
}

func TestDecodeRequestRejectsMalformedJSON(t *testing.T) {
	c := qt.New(t)

	_, err := rpc.DecodeRequest([]byte(`{not json`))
	c.Assert(err, qt.Not(qt.IsNil))
	var rpcErr *rpc.Error
	c.Assert(err, qt.ErrorAs, &rpcErr)
	c.Assert(rpcErr.Code, qt.Equals, rpc.CodeParseError)
}

func TestEncodeDecodeResponseRoundTrip(t *testing.T) {
	c := qt.New(t)

	in := rpc.Response{ID: json.RawMessage(`1`), Result: json.RawMessage(`3`)}
	data, err := rpc.EncodeResponse(in)
	c.Assert(err, qt.IsNil)

	out, err := rpc.DecodeResponse(data)
	c.Assert(err, qt.IsNil)
	c.Assert(string(out.ID), qt.Equals, "1")
	c.Assert(string(out.Result), qt.Equals, "3")
	c.Assert(out.Error, qt.Equals, (*rpc.Error)(nil))
}

func TestDecodeResponseRejectsBothResultAndError(t *testing.T) {
	c := qt.New(t)

	_, err := rpc.DecodeResponse([]byte(`{"jsonrpc":"2.0","id":1,"result":3,"error":{"code":1,"message":"x"}}`))
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestLooksLikeRequestAndResponse(t *testing.T) {
	c := qt.New(t)

	c.Assert(rpc.LooksLikeRequest([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)), qt.IsTrue)
	c.Assert(rpc.LooksLikeResponse([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)), qt.IsFalse)
	c.Assert(rpc.LooksLikeResponse([]byte(`{"jsonrpc":"2.0","id":1,"result":3}`)), qt.IsTrue)
	c.Assert(rpc.LooksLikeRequest([]byte(`{"jsonrpc":"2.0","id":1,"result":3}`)), qt.IsFalse)
}
