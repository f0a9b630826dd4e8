// Package engine runs native extension functions compiled to WebAssembly.
//
// The engine wraps wazero and exposes a hostbridge.ABI to guest modules as
// a host module (named "napi" by default) using the emnapi calling
// convention: every handle is an i32, every function returns a status code,
// and results are written through out-pointers into guest memory.
//
// # Architecture
//
//	WazeroEngine   - owns the wazero runtime and the napi host module
//	WazeroModule   - a compiled guest module
//	WazeroInstance - a running guest with native functions to call
//
// # Native Calls
//
// A native function exported by the guest takes an env handle plus i32
// arguments and returns a status code. CallNative is the boundary step:
//
//	inst.CallNative(ctx, env, "parse", arg)
//
// A non-ok status is resolved with errors.CheckPendingException, so an
// exception the guest raised keeps its identity, and the resulting error
// is thrown back into env before CallNative returns it. A guest trap is
// thrown as a GenericFailure.
//
// # Host Functions
//
//	napi_create_string_utf8(env, str, length, result)    length -1 = NUL-terminated
//	napi_create_error(env, code, msg, result)            also _type_, _range_, _syntax_
//	napi_throw(env, error)
//	napi_is_exception_pending(env, result)               writes one byte
//	napi_get_and_clear_last_exception(env, result)
//	napi_create_reference(env, value, initial, result)
//	napi_delete_reference(env, ref)
//	napi_get_reference_value(env, ref, result)
//	napi_typeof(env, value, result)                      only if the ABI is an Inspector
//
// A zero result pointer or an out-of-bounds access yields InvalidArg.
package engine
