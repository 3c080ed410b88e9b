// Package rpc implements the JSON-RPC 2.0 wire codec and the error-kind
// vocabulary shared by the client, server and router packages. It does not
// itself know about transports, connections or endpoints; see the
// rpcserver, rpcclient and router packages for those.
package rpc
