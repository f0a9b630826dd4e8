package hostvm

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/hostbridge"
)

func (vm *VM) TypeOf(env hostbridge.Env, v hostbridge.Value) (hostbridge.ValueType, hostbridge.Code) {
	st, code := vm.begin(OpTypeOf, env)
	if code != hostbridge.CodeOK {
		return 0, vm.finish(st, code)
	}
	o, code := vm.value(env, v)
	if code != hostbridge.CodeOK {
		return 0, vm.finish(st, code)
	}
	return o.typ, vm.finish(st, hostbridge.CodeOK)
}

// FunctionName returns the name of a function; anonymous functions have
// an empty name.
func (vm *VM) FunctionName(env hostbridge.Env, fn hostbridge.Value) (string, hostbridge.Code) {
	st, code := vm.begin(OpFunctionName, env)
	if code != hostbridge.CodeOK {
		return "", vm.finish(st, code)
	}
	o, code := vm.value(env, fn)
	if code != hostbridge.CodeOK {
		return "", vm.finish(st, code)
	}
	if o.typ != hostbridge.TypeFunction {
		return "", vm.finish(st, hostbridge.CodeFunctionExpected)
	}
	return o.str, vm.finish(st, hostbridge.CodeOK)
}

// CoerceToString converts v the way String(v) does. Symbols throw a
// TypeError.
func (vm *VM) CoerceToString(env hostbridge.Env, v hostbridge.Value) (string, hostbridge.Code) {
	st, code := vm.begin(OpCoerceToString, env)
	if code != hostbridge.CodeOK {
		return "", vm.finish(st, code)
	}
	o, code := vm.value(env, v)
	if code != hostbridge.CodeOK {
		return "", vm.finish(st, code)
	}
	var s string
	switch o.typ {
	case hostbridge.TypeUndefined:
		s = "undefined"
	case hostbridge.TypeNull:
		s = "null"
	case hostbridge.TypeBoolean:
		s = strconv.FormatBool(o.b)
	case hostbridge.TypeNumber:
		s = formatNumber(o.num)
	case hostbridge.TypeString, hostbridge.TypeBigInt:
		s = o.str
	case hostbridge.TypeSymbol:
		return "", vm.finish(st, vm.throwNew(st, env, KindTypeError, "Cannot convert a Symbol value to a string"))
	case hostbridge.TypeFunction:
		s = "function " + o.str + "() { [native code] }"
	default:
		switch {
		case o.errKind != "" && o.str != "":
			s = o.errKind + ": " + o.str
		case o.errKind != "":
			s = o.errKind
		default:
			s = "[object Object]"
		}
	}
	return s, vm.finish(st, hostbridge.CodeOK)
}

// Stringify renders v as JSON. Values JSON cannot represent render as
// "undefined"; cycles and bigints throw a TypeError.
func (vm *VM) Stringify(env hostbridge.Env, v hostbridge.Value) (string, hostbridge.Code) {
	st, code := vm.begin(OpStringify, env)
	if code != hostbridge.CodeOK {
		return "", vm.finish(st, code)
	}
	if _, code := vm.value(env, v); code != hostbridge.CodeOK {
		return "", vm.finish(st, code)
	}
	var b strings.Builder
	w := &jsonWriter{vm: vm, env: env, seen: make(map[hostbridge.Value]bool), b: &b}
	emitted, failure := w.write(v)
	if failure != "" {
		return "", vm.finish(st, vm.throwNew(st, env, KindTypeError, failure))
	}
	if !emitted {
		return "undefined", vm.finish(st, hostbridge.CodeOK)
	}
	return b.String(), vm.finish(st, hostbridge.CodeOK)
}

// StrictEquals compares two values with === semantics.
func (vm *VM) StrictEquals(env hostbridge.Env, a, b hostbridge.Value) (bool, hostbridge.Code) {
	st, code := vm.begin(OpStrictEquals, env)
	if code != hostbridge.CodeOK {
		return false, vm.finish(st, code)
	}
	x, code := vm.value(env, a)
	if code != hostbridge.CodeOK {
		return false, vm.finish(st, code)
	}
	y, code := vm.value(env, b)
	if code != hostbridge.CodeOK {
		return false, vm.finish(st, code)
	}
	return strictEquals(a, b, x, y), vm.finish(st, hostbridge.CodeOK)
}

func strictEquals(a, b hostbridge.Value, x, y *object) bool {
	if x.typ != y.typ {
		return false
	}
	switch x.typ {
	case hostbridge.TypeUndefined, hostbridge.TypeNull:
		return true
	case hostbridge.TypeBoolean:
		return x.b == y.b
	case hostbridge.TypeNumber:
		return x.num == y.num
	case hostbridge.TypeString, hostbridge.TypeBigInt:
		return x.str == y.str
	default:
		return a == b
	}
}

type jsonWriter struct {
	vm   *VM
	seen map[hostbridge.Value]bool
	b    *strings.Builder
	env  hostbridge.Env
}

// write appends v and reports whether anything was emitted. A non-empty
// failure is the message of the TypeError to throw.
func (w *jsonWriter) write(v hostbridge.Value) (emitted bool, failure string) {
	o, code := w.vm.value(w.env, v)
	if code != hostbridge.CodeOK {
		return false, ""
	}
	switch o.typ {
	case hostbridge.TypeUndefined, hostbridge.TypeFunction, hostbridge.TypeSymbol, hostbridge.TypeExternal:
		return false, ""
	case hostbridge.TypeNull:
		w.b.WriteString("null")
	case hostbridge.TypeBoolean:
		w.b.WriteString(strconv.FormatBool(o.b))
	case hostbridge.TypeNumber:
		if math.IsNaN(o.num) || math.IsInf(o.num, 0) {
			w.b.WriteString("null")
		} else {
			w.b.WriteString(formatNumber(o.num))
		}
	case hostbridge.TypeString:
		w.b.WriteString(quote(o.str))
	case hostbridge.TypeBigInt:
		return false, "Do not know how to serialize a BigInt"
	default:
		if w.seen[v] {
			return false, "Converting circular structure to JSON"
		}
		w.seen[v] = true
		defer delete(w.seen, v)

		w.vm.mu.Lock()
		props := append([]property(nil), o.props...)
		w.vm.mu.Unlock()

		w.b.WriteByte('{')
		first := true
		for _, p := range props {
			mark := w.b.Len()
			if !first {
				w.b.WriteByte(',')
			}
			w.b.WriteString(quote(p.key))
			w.b.WriteByte(':')
			ok, failure := w.write(p.value)
			if failure != "" {
				return false, failure
			}
			if !ok {
				s := w.b.String()[:mark]
				w.b.Reset()
				w.b.WriteString(s)
				continue
			}
			first = false
		}
		w.b.WriteByte('}')
	}
	return true, ""
}

func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if a := math.Abs(f); a >= 1e-6 && a < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
