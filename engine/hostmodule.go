package engine

import (
	"bytes"
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/hostbridge"
)

// nulTerminated is the length value marking a NUL-terminated string.
const nulTerminated = 0xFFFFFFFF

type hostFunc struct {
	fn     api.GoModuleFunc
	name   string
	params []string
}

// hostFuncs returns the host functions exposed to guests. Each decodes its
// i32 parameters, calls the ABI and stores the status in stack[0].
func (e *WazeroEngine) hostFuncs() []hostFunc {
	abi := e.abi
	funcs := []hostFunc{
		{name: "napi_create_string_utf8", params: []string{"env", "str", "length", "result"}, fn: wrap(func(mod api.Module, p []uint32) hostbridge.Code {
			data, ok := readString(mod, p[1], p[2])
			if !ok {
				return hostbridge.CodeInvalidArg
			}
			return writeHandle(mod, p[3], func() (uint32, hostbridge.Code) {
				v, code := abi.CreateStringUTF8(hostbridge.Env(p[0]), data)
				return uint32(v), code
			})
		})},
		errorFunc("napi_create_error", abi.CreateError),
		errorFunc("napi_create_type_error", abi.CreateTypeError),
		errorFunc("napi_create_range_error", abi.CreateRangeError),
		errorFunc("napi_create_syntax_error", abi.CreateSyntaxError),
		{name: "napi_throw", params: []string{"env", "error"}, fn: wrap(func(_ api.Module, p []uint32) hostbridge.Code {
			return abi.Throw(hostbridge.Env(p[0]), hostbridge.Value(p[1]))
		})},
		{name: "napi_is_exception_pending", params: []string{"env", "result"}, fn: wrap(func(mod api.Module, p []uint32) hostbridge.Code {
			mem := mod.Memory()
			if p[1] == 0 || mem == nil {
				return hostbridge.CodeInvalidArg
			}
			pending, code := abi.IsExceptionPending(hostbridge.Env(p[0]))
			if code != hostbridge.CodeOK {
				return code
			}
			var b byte
			if pending {
				b = 1
			}
			if !mem.WriteByte(p[1], b) {
				return hostbridge.CodeInvalidArg
			}
			return hostbridge.CodeOK
		})},
		{name: "napi_get_and_clear_last_exception", params: []string{"env", "result"}, fn: wrap(func(mod api.Module, p []uint32) hostbridge.Code {
			return writeHandle(mod, p[1], func() (uint32, hostbridge.Code) {
				v, code := abi.GetAndClearLastException(hostbridge.Env(p[0]))
				return uint32(v), code
			})
		})},
		{name: "napi_create_reference", params: []string{"env", "value", "initial_refcount", "result"}, fn: wrap(func(mod api.Module, p []uint32) hostbridge.Code {
			return writeHandle(mod, p[3], func() (uint32, hostbridge.Code) {
				r, code := abi.CreateReference(hostbridge.Env(p[0]), hostbridge.Value(p[1]), p[2])
				return uint32(r), code
			})
		})},
		{name: "napi_delete_reference", params: []string{"env", "ref"}, fn: wrap(func(_ api.Module, p []uint32) hostbridge.Code {
			return abi.DeleteReference(hostbridge.Env(p[0]), hostbridge.Ref(p[1]))
		})},
		{name: "napi_get_reference_value", params: []string{"env", "ref", "result"}, fn: wrap(func(mod api.Module, p []uint32) hostbridge.Code {
			return writeHandle(mod, p[2], func() (uint32, hostbridge.Code) {
				v, code := abi.GetReferenceValue(hostbridge.Env(p[0]), hostbridge.Ref(p[1]))
				return uint32(v), code
			})
		})},
	}

	if ins, ok := abi.(hostbridge.Inspector); ok {
		funcs = append(funcs, hostFunc{name: "napi_typeof", params: []string{"env", "value", "result"}, fn: wrap(func(mod api.Module, p []uint32) hostbridge.Code {
			return writeHandle(mod, p[2], func() (uint32, hostbridge.Code) {
				t, code := ins.TypeOf(hostbridge.Env(p[0]), hostbridge.Value(p[1]))
				return uint32(t), code
			})
		})})
	}
	return funcs
}

func errorFunc(name string, create func(hostbridge.Env, hostbridge.Value, hostbridge.Value) (hostbridge.Value, hostbridge.Code)) hostFunc {
	return hostFunc{name: name, params: []string{"env", "code", "msg", "result"}, fn: wrap(func(mod api.Module, p []uint32) hostbridge.Code {
		return writeHandle(mod, p[3], func() (uint32, hostbridge.Code) {
			v, code := create(hostbridge.Env(p[0]), hostbridge.Value(p[1]), hostbridge.Value(p[2]))
			return uint32(v), code
		})
	})}
}

// wrap adapts a status-returning handler to the wazero stack convention.
func wrap(h func(mod api.Module, params []uint32) hostbridge.Code) api.GoModuleFunc {
	return func(_ context.Context, mod api.Module, stack []uint64) {
		params := make([]uint32, len(stack))
		for i, s := range stack {
			params[i] = api.DecodeU32(s)
		}
		stack[0] = api.EncodeI32(int32(h(mod, params)))
	}
}

// writeHandle runs call and stores its handle at ptr. A NULL ptr or a
// missing memory fails before call runs.
func writeHandle(mod api.Module, ptr uint32, call func() (uint32, hostbridge.Code)) hostbridge.Code {
	mem := mod.Memory()
	if ptr == 0 || mem == nil {
		return hostbridge.CodeInvalidArg
	}
	if _, ok := mem.ReadUint32Le(ptr); !ok {
		return hostbridge.CodeInvalidArg
	}
	h, code := call()
	if code != hostbridge.CodeOK {
		return code
	}
	mem.WriteUint32Le(ptr, h)
	return hostbridge.CodeOK
}

// readString copies a guest string. length nulTerminated scans for NUL.
func readString(mod api.Module, ptr, length uint32) ([]byte, bool) {
	mem := mod.Memory()
	if mem == nil || (ptr == 0 && length != 0) {
		return nil, false
	}
	if length == nulTerminated {
		if ptr >= mem.Size() {
			return nil, false
		}
		rest, ok := mem.Read(ptr, mem.Size()-ptr)
		if !ok {
			return nil, false
		}
		n := bytes.IndexByte(rest, 0)
		if n < 0 {
			return nil, false
		}
		length = uint32(n)
	}
	if length == 0 {
		return []byte{}, true
	}
	data, ok := mem.Read(ptr, length)
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}
