package engine

// Hand-assembled guest module used by the tests. It imports four host
// functions from the "napi" module and exports:
//
//	ok(env)               returns 0
//	fail_invalid_arg(env) returns 1 without throwing
//	throw_value(env, v)   throws v, returns 10
//	throw_error(env)      throws Error{code: "E_BOOM", message: "boom"}, returns 10
//	trap(env)             executes unreachable
//	typeof_into(env, v)   writes typeof v at address 60, returns the status
//
// Memory holds "boom" (NUL-terminated) at 16 and "E_BOOM" at 32.

const (
	opUnreachable = 0x00
	opEnd         = 0x0B
	opCall        = 0x10
	opDrop        = 0x1A
	opLocalGet    = 0x20
	opI32Load     = 0x28
	opI32Const    = 0x41
	valI32        = 0x7F
	typeFunc      = 0x60
)

func uleb(n uint32) []byte {
	var out []byte
	for {
		b := byte(n & 0x7F)
		n >>= 7
		if n != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func wasmName(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func vector(items ...[]byte) []byte {
	return concat(append([][]byte{uleb(uint32(len(items)))}, items...)...)
}

func section(id byte, payload []byte) []byte {
	return concat([]byte{id}, uleb(uint32(len(payload))), payload)
}

func funcType(params int) []byte {
	out := []byte{typeFunc, byte(params)}
	for range params {
		out = append(out, valI32)
	}
	return append(out, 1, valI32)
}

func body(code ...byte) []byte {
	b := append([]byte{0x00}, code...)
	b = append(b, opEnd)
	return append(uleb(uint32(len(b))), b...)
}

func guestModule(module string) []byte {
	const (
		t4 = 0 // (i32 x4) -> i32
		t2 = 1 // (i32 x2) -> i32
		t1 = 2 // (i32) -> i32
		t3 = 3 // (i32 x3) -> i32
	)
	const (
		fnCreateString = 0
		fnCreateError  = 1
		fnThrow        = 2
		fnTypeOf       = 3
	)

	types := section(1, vector(funcType(4), funcType(2), funcType(1), funcType(3)))
	imports := section(2, vector(
		concat(wasmName(module), wasmName("napi_create_string_utf8"), []byte{0x00, t4}),
		concat(wasmName(module), wasmName("napi_create_error"), []byte{0x00, t4}),
		concat(wasmName(module), wasmName("napi_throw"), []byte{0x00, t2}),
		concat(wasmName(module), wasmName("napi_typeof"), []byte{0x00, t3}),
	))
	funcs := section(3, vector([]byte{t1}, []byte{t1}, []byte{t2}, []byte{t1}, []byte{t1}, []byte{t2}))
	memory := section(5, vector([]byte{0x00, 0x01}))
	exports := section(7, vector(
		concat(wasmName("memory"), []byte{0x02, 0}),
		concat(wasmName("ok"), []byte{0x00, 4}),
		concat(wasmName("fail_invalid_arg"), []byte{0x00, 5}),
		concat(wasmName("throw_value"), []byte{0x00, 6}),
		concat(wasmName("throw_error"), []byte{0x00, 7}),
		concat(wasmName("trap"), []byte{0x00, 8}),
		concat(wasmName("typeof_into"), []byte{0x00, 9}),
	))
	code := section(10, vector(
		body(opI32Const, 0),
		body(opI32Const, 1),
		body(
			opLocalGet, 0, opLocalGet, 1, opCall, fnThrow, opDrop,
			opI32Const, 10,
		),
		body(
			// message: create_string(env, 16, -1, 48)
			opLocalGet, 0, opI32Const, 16, opI32Const, 0x7F, opI32Const, 48, opCall, fnCreateString, opDrop,
			// code: create_string(env, 32, 6, 52)
			opLocalGet, 0, opI32Const, 32, opI32Const, 6, opI32Const, 52, opCall, fnCreateString, opDrop,
			// create_error(env, [52], [48], 56)
			opLocalGet, 0,
			opI32Const, 52, opI32Load, 2, 0,
			opI32Const, 48, opI32Load, 2, 0,
			opI32Const, 56, opCall, fnCreateError, opDrop,
			// throw(env, [56])
			opLocalGet, 0, opI32Const, 56, opI32Load, 2, 0, opCall, fnThrow, opDrop,
			opI32Const, 10,
		),
		body(opUnreachable),
		body(opLocalGet, 0, opLocalGet, 1, opI32Const, 60, opCall, fnTypeOf),
	))
	data := section(11, vector(
		concat([]byte{0x00, opI32Const, 16, opEnd}, wasmName("boom")),
		concat([]byte{0x00, opI32Const, 32, opEnd}, wasmName("E_BOOM")),
	))

	return concat([]byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}, types, imports, funcs, memory, exports, code, data)
}
