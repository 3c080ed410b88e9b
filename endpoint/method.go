package endpoint

import (
	"context"
	"encoding/json"
	"reflect"
	"strconv"

	"github.com/juju/errors"

	"github.com/doxysoft/jsonrpc-bidirectional/plugin"
	"github.com/doxysoft/jsonrpc-bidirectional/rpc"
)

var (
	incomingRequestType = reflect.TypeOf((*plugin.IncomingRequest)(nil))
	errorType           = reflect.TypeOf((*error)(nil)).Elem()
	contextType         = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// method holds the reflection data needed to invoke a registered handler,
// grounded on the teacher's rpc.action (rpc/server.go's methods/action.call)
// and mnehpets-oneserve/jsonrpc.rpcMethod.
type method struct {
	fn         reflect.Value
	paramType  reflect.Type // nil if the handler takes no params struct
	hasContext bool
	hasResult  bool
	hasError   bool

	fieldNames   []string // json-tag (or field) name per field, for object binding
	fieldIndexes []int    // struct field index per position, for array binding
}

func newMethod(name string, handler any) (*method, error) {
	v := reflect.ValueOf(handler)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, errors.New("handler must be a function")
	}

	in := t.NumIn()
	if in < 1 {
		return nil, errors.New("handler must accept *plugin.IncomingRequest as its first argument")
	}
	if t.In(0) != incomingRequestType {
		return nil, errors.New("handler's first argument must be *plugin.IncomingRequest")
	}

	m := &method{fn: v}

	nextIn := 1
	if nextIn < in && t.In(nextIn) == contextType {
		m.hasContext = true
		nextIn++
	}
	switch in - nextIn {
	case 0:
		// no params struct
	case 1:
		pt := t.In(nextIn)
		if pt.Kind() != reflect.Struct {
			return nil, errors.New("handler's params argument must be a struct")
		}
		m.paramType = pt
		m.fieldNames, m.fieldIndexes = fieldBindings(pt)
	default:
		return nil, errors.New("handler must take at most one params struct after *plugin.IncomingRequest")
	}

	out := t.NumOut()
	switch out {
	case 0:
	case 1:
		if t.Out(0) == errorType {
			m.hasError = true
		} else {
			m.hasResult = true
		}
	case 2:
		if t.Out(1) != errorType {
			return nil, errors.New("handler's second return value must be error")
		}
		m.hasResult = true
		m.hasError = true
	default:
		return nil, errors.New("handler must return at most (result, error)")
	}
	return m, nil
}

// fieldBindings returns, for each exported field of paramType in
// declaration order, the name used for object-keyed binding (json tag name
// if present, else the Go field name) and the field's index. Declaration
// order is also what array-keyed binding uses (spec.md section 4.C).
func fieldBindings(paramType reflect.Type) ([]string, []int) {
	var names []string
	var indexes []int
	for i := 0; i < paramType.NumField(); i++ {
		f := paramType.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag := f.Tag.Get("json"); tag != "" && tag != "-" {
			if idx := indexOfComma(tag); idx >= 0 {
				tag = tag[:idx]
			}
			if tag != "" {
				name = tag
			}
		}
		names = append(names, name)
		indexes = append(indexes, i)
	}
	return names, indexes
}

func indexOfComma(s string) int {
	for i, r := range s {
		if r == ',' {
			return i
		}
	}
	return -1
}

// bindParams decodes rawParams (a JSON array or object, per spec.md
// section 3) into a new value of the method's param struct type.
// Positional arrays bind by field declaration order; named objects bind
// by field name/json tag, with missing fields left at their zero value
// (spec.md's "implementation-defined undefined sentinel") and unknown
// object keys ignored.
func (m *method) bindParams(rawParams json.RawMessage) (reflect.Value, error) {
	if m.paramType == nil {
		return reflect.Value{}, nil
	}
	paramPtr := reflect.New(m.paramType)

	trimmed := trimLeadingSpace(rawParams)
	switch {
	case len(trimmed) == 0 || string(trimmed) == "null":
		// no params supplied; all fields stay zero-valued.
	case trimmed[0] == '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return reflect.Value{}, rpc.NewInvalidParamsError("params must be a JSON array")
		}
		if len(elems) > len(m.fieldIndexes) {
			return reflect.Value{}, rpc.NewInvalidParamsError("too many positional params")
		}
		for i, raw := range elems {
			field := paramPtr.Elem().Field(m.fieldIndexes[i])
			if err := json.Unmarshal(raw, field.Addr().Interface()); err != nil {
				return reflect.Value{}, rpc.NewInvalidParamsError("invalid positional param at index " + strconv.Itoa(i))
			}
		}
	case trimmed[0] == '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return reflect.Value{}, rpc.NewInvalidParamsError("params must be a JSON object")
		}
		for i, name := range m.fieldNames {
			raw, ok := obj[name]
			if !ok {
				continue // missing param keeps the zero-value sentinel
			}
			field := paramPtr.Elem().Field(m.fieldIndexes[i])
			if err := json.Unmarshal(raw, field.Addr().Interface()); err != nil {
				return reflect.Value{}, rpc.NewInvalidParamsError("invalid param " + name)
			}
		}
		// extra object keys are ignored, per spec.md section 4.C.
	default:
		return reflect.Value{}, rpc.NewInvalidParamsError("params must be a JSON array or object")
	}
	return paramPtr.Elem(), nil
}

// call invokes the handler with ir as the first argument and the bound
// params (if any), applying spec.md section 4.C's error-mapping rule:
// a returned *rpc.Error is passed through verbatim, anything else becomes
// an internal error.
func (m *method) call(ctx context.Context, ir *plugin.IncomingRequest, rawParams json.RawMessage) (json.RawMessage, error) {
	paramValue, err := m.bindParams(rawParams)
	if err != nil {
		return nil, err
	}

	args := make([]reflect.Value, 0, 3)
	args = append(args, reflect.ValueOf(ir))
	if m.hasContext {
		args = append(args, reflect.ValueOf(ctx))
	}
	if m.paramType != nil {
		args = append(args, paramValue)
	}

	results := m.fn.Call(args)

	var resultValue reflect.Value
	idx := 0
	if m.hasResult {
		resultValue = results[idx]
		idx++
	}
	if m.hasError {
		if errValue := results[idx]; !errValue.IsNil() {
			handlerErr := errValue.Interface().(error)
			var rpcErr *rpc.Error
			if errors.As(handlerErr, &rpcErr) {
				return nil, rpcErr
			}
			return nil, rpc.NewInternalError(handlerErr)
		}
	}
	if !m.hasResult {
		return json.RawMessage("null"), nil
	}
	data, err := json.Marshal(resultValue.Interface())
	if err != nil {
		return nil, rpc.NewInternalError(err)
	}
	return data, nil
}

func trimLeadingSpace(b []byte) []byte {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == '\t' || b[i] == '\n' || b[i] == '\r') {
		i++
	}
	return b[i:]
}
