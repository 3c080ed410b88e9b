package rpc

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/juju/errors"
)

// Standard JSON-RPC 2.0 error codes (spec.md section 4.A).
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeAuthentication    = -32001
	CodeAuthorization     = -32002
	CodeTransport         = -32003
	CodeConnectionClosed  = -32004
	CodeTimeout           = -32005
)

// Kind is one of the abstract error kinds enumerated in spec.md section 7.
type Kind string

const (
	KindParse            Kind = "parse"
	KindInvalidRequest   Kind = "invalid-request"
	KindMethodNotFound   Kind = "method-not-found"
	KindInvalidParams    Kind = "invalid-params"
	KindInternal         Kind = "internal"
	KindAuthentication   Kind = "authentication"
	KindAuthorization    Kind = "authorization"
	KindTransport        Kind = "transport"
	KindConnectionClosed Kind = "connection-closed"
	KindTimeout          Kind = "timeout"
	KindApplicationDefined Kind = "application-defined"
)

// Error is a JSON-RPC 2.0 error object, extended with a stable Kind so
// callers can branch on error category without parsing Message. Kind is
// not part of the wire format: an Error decoded by DecodeResponse (for
// example one a remote server sent back to rpcclient.Call) has an empty
// Kind, and only Code tells its category. Its ErrorCode method has the
// ErrorCoder shape of the teacher's rpc.RequestError /
// apiserver.ErrorCoder (rpc/client.go, apiserver/facade/registry.go).
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Kind    Kind            `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// ErrorCode implements the ErrorCoder interface used throughout the
// teacher's rpc and apiserver packages for uniform error-code reporting.
func (e *Error) ErrorCode() string {
	return strconv.Itoa(e.Code)
}

// WithData attaches structured data to the error and returns it, for
// chaining at the construction site.
func (e *Error) WithData(data any) *Error {
	raw, err := json.Marshal(data)
	if err != nil {
		return e
	}
	e.Data = raw
	return e
}

func newError(kind Kind, code int, message string) *Error {
	return &Error{Code: code, Message: message, Kind: kind}
}

func NewParseError(message string) *Error {
	return newError(KindParse, CodeParseError, message)
}

func NewInvalidRequestError(message string) *Error {
	return newError(KindInvalidRequest, CodeInvalidRequest, message)
}

func NewMethodNotFoundError(method string) *Error {
	return newError(KindMethodNotFound, CodeMethodNotFound, fmt.Sprintf("method not found: %s", method))
}

func NewInvalidParamsError(message string) *Error {
	return newError(KindInvalidParams, CodeInvalidParams, message)
}

// NewInternalError wraps an arbitrary handler failure. The message is taken
// from err directly; per spec.md section 4.C a stack is only attached to
// Data when a debug-mode plugin installs one.
func NewInternalError(err error) *Error {
	return newError(KindInternal, CodeInternalError, errors.Cause(err).Error())
}

func NewAuthenticationError(message string) *Error {
	return newError(KindAuthentication, CodeAuthentication, message)
}

func NewAuthorizationError(message string) *Error {
	return newError(KindAuthorization, CodeAuthorization, message)
}

func NewTransportError(err error) *Error {
	return newError(KindTransport, CodeTransport, errors.Cause(err).Error())
}

func NewConnectionClosedError() *Error {
	return newError(KindConnectionClosed, CodeConnectionClosed, "connection is closed")
}

func NewTimeoutError(method string) *Error {
	return newError(KindTimeout, CodeTimeout, fmt.Sprintf("call to %q timed out", method))
}

// NewApplicationError builds an application-defined error outside the
// reserved -32768..-32000 range (spec.md section 4.A).
func NewApplicationError(code int, message string) *Error {
	return newError(KindApplicationDefined, code, message)
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error, and
// KindInternal otherwise.
func KindOf(err error) Kind {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Kind
	}
	return KindInternal
}
