package hostvm

import (
	"math/big"

	"github.com/wippyai/hostbridge"
)

// Error kinds of host error objects.
const (
	KindError       = "Error"
	KindTypeError   = "TypeError"
	KindRangeError  = "RangeError"
	KindSyntaxError = "SyntaxError"
)

type property struct {
	key   string
	value hostbridge.Value
}

type object struct {
	fn      Func
	str     string
	errKind string
	props   []property
	num     float64
	env     hostbridge.Env
	typ     hostbridge.ValueType
	b       bool
}

func (o *object) get(key string) (hostbridge.Value, bool) {
	for _, p := range o.props {
		if p.key == key {
			return p.value, true
		}
	}
	return 0, false
}

func (o *object) set(key string, v hostbridge.Value) {
	for i := range o.props {
		if o.props[i].key == key {
			o.props[i].value = v
			return
		}
	}
	o.props = append(o.props, property{key: key, value: v})
}

// ErrorObject describes a host error object.
type ErrorObject struct {
	Kind    string
	Message string
	Code    string
	HasCode bool
}

// Undefined returns the undefined singleton of env.
func (vm *VM) Undefined(env hostbridge.Env) hostbridge.Value {
	st, ok := vm.env(env)
	if !ok {
		return 0
	}
	return st.undefined
}

// Null returns the null singleton of env.
func (vm *VM) Null(env hostbridge.Env) hostbridge.Value {
	st, ok := vm.env(env)
	if !ok {
		return 0
	}
	return st.null
}

// String creates a string value.
func (vm *VM) String(env hostbridge.Env, s string) hostbridge.Value {
	if _, ok := vm.env(env); !ok {
		return 0
	}
	return vm.alloc(env, &object{typ: hostbridge.TypeString, str: s})
}

// Number creates a number value.
func (vm *VM) Number(env hostbridge.Env, f float64) hostbridge.Value {
	if _, ok := vm.env(env); !ok {
		return 0
	}
	return vm.alloc(env, &object{typ: hostbridge.TypeNumber, num: f})
}

// Bool creates a boolean value.
func (vm *VM) Bool(env hostbridge.Env, b bool) hostbridge.Value {
	if _, ok := vm.env(env); !ok {
		return 0
	}
	return vm.alloc(env, &object{typ: hostbridge.TypeBoolean, b: b})
}

// BigInt creates a bigint value.
func (vm *VM) BigInt(env hostbridge.Env, n *big.Int) hostbridge.Value {
	if _, ok := vm.env(env); !ok || n == nil {
		return 0
	}
	return vm.alloc(env, &object{typ: hostbridge.TypeBigInt, str: n.String()})
}

// Symbol creates a symbol with the given description.
func (vm *VM) Symbol(env hostbridge.Env, description string) hostbridge.Value {
	if _, ok := vm.env(env); !ok {
		return 0
	}
	return vm.alloc(env, &object{typ: hostbridge.TypeSymbol, str: description})
}

// NewObject creates an empty plain object.
func (vm *VM) NewObject(env hostbridge.Env) hostbridge.Value {
	if _, ok := vm.env(env); !ok {
		return 0
	}
	return vm.alloc(env, &object{typ: hostbridge.TypeObject})
}

// SetProperty sets an own enumerable property on an object.
func (vm *VM) SetProperty(env hostbridge.Env, obj hostbridge.Value, key string, v hostbridge.Value) hostbridge.Code {
	o, code := vm.value(env, obj)
	if code != hostbridge.CodeOK {
		return code
	}
	if o.typ != hostbridge.TypeObject && o.typ != hostbridge.TypeFunction {
		return hostbridge.CodeObjectExpected
	}
	if _, code := vm.value(env, v); code != hostbridge.CodeOK {
		return code
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	o.set(key, v)
	return hostbridge.CodeOK
}

// Property returns an own property of an object.
func (vm *VM) Property(env hostbridge.Env, obj hostbridge.Value, key string) (hostbridge.Value, bool) {
	o, code := vm.value(env, obj)
	if code != hostbridge.CodeOK {
		return 0, false
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return o.get(key)
}

// NewFunction creates a function value backed by fn. An empty name makes
// an anonymous function.
func (vm *VM) NewFunction(env hostbridge.Env, name string, fn Func) hostbridge.Value {
	if _, ok := vm.env(env); !ok || fn == nil {
		return 0
	}
	return vm.alloc(env, &object{typ: hostbridge.TypeFunction, str: name, fn: fn})
}

// NewError creates an error object of the given kind, as host code
// evaluating `new TypeError(msg)` would.
func (vm *VM) NewError(env hostbridge.Env, kind, msg string) hostbridge.Value {
	if _, ok := vm.env(env); !ok {
		return 0
	}
	return vm.alloc(env, &object{typ: hostbridge.TypeObject, errKind: kind, str: msg})
}

// ErrorObject reports whether v is an error object and describes it.
func (vm *VM) ErrorObject(env hostbridge.Env, v hostbridge.Value) (ErrorObject, bool) {
	o, code := vm.value(env, v)
	if code != hostbridge.CodeOK || o.errKind == "" {
		return ErrorObject{}, false
	}
	info := ErrorObject{Kind: o.errKind, Message: o.str}
	vm.mu.Lock()
	cv, ok := o.get("code")
	vm.mu.Unlock()
	if ok {
		if c, code := vm.value(env, cv); code == hostbridge.CodeOK && c.typ == hostbridge.TypeString {
			info.Code, info.HasCode = c.str, true
		}
	}
	return info, true
}

// StringValue returns the contents of a string value.
func (vm *VM) StringValue(env hostbridge.Env, v hostbridge.Value) (string, bool) {
	o, code := vm.value(env, v)
	if code != hostbridge.CodeOK || o.typ != hostbridge.TypeString {
		return "", false
	}
	return o.str, true
}
