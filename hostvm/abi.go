package hostvm

import (
	"strings"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/resource"
)

// CreateStringUTF8 creates a string. Invalid sequences are replaced with
// U+FFFD.
func (vm *VM) CreateStringUTF8(env hostbridge.Env, b []byte) (hostbridge.Value, hostbridge.Code) {
	st, code := vm.begin(OpCreateString, env)
	if code != hostbridge.CodeOK {
		return 0, vm.finish(st, code)
	}
	s := strings.ToValidUTF8(string(b), "\uFFFD")
	v := vm.alloc(env, &object{typ: hostbridge.TypeString, str: s})
	return v, vm.finish(st, hostbridge.CodeOK)
}

func (vm *VM) CreateError(env hostbridge.Env, code, msg hostbridge.Value) (hostbridge.Value, hostbridge.Code) {
	return vm.createError(OpCreateError, KindError, env, code, msg)
}

func (vm *VM) CreateTypeError(env hostbridge.Env, code, msg hostbridge.Value) (hostbridge.Value, hostbridge.Code) {
	return vm.createError(OpCreateTypeError, KindTypeError, env, code, msg)
}

func (vm *VM) CreateRangeError(env hostbridge.Env, code, msg hostbridge.Value) (hostbridge.Value, hostbridge.Code) {
	return vm.createError(OpCreateRangeError, KindRangeError, env, code, msg)
}

func (vm *VM) CreateSyntaxError(env hostbridge.Env, code, msg hostbridge.Value) (hostbridge.Value, hostbridge.Code) {
	return vm.createError(OpCreateSyntaxError, KindSyntaxError, env, code, msg)
}

func (vm *VM) createError(op, kind string, env hostbridge.Env, code, msg hostbridge.Value) (hostbridge.Value, hostbridge.Code) {
	st, status := vm.begin(op, env)
	if status != hostbridge.CodeOK {
		return 0, vm.finish(st, status)
	}
	m, status := vm.value(env, msg)
	if status != hostbridge.CodeOK {
		return 0, vm.finish(st, status)
	}
	if m.typ != hostbridge.TypeString {
		return 0, vm.finish(st, hostbridge.CodeStringExpected)
	}
	o := &object{typ: hostbridge.TypeObject, errKind: kind, str: m.str}
	if code != 0 {
		c, status := vm.value(env, code)
		if status != hostbridge.CodeOK {
			return 0, vm.finish(st, status)
		}
		if c.typ != hostbridge.TypeString {
			return 0, vm.finish(st, hostbridge.CodeStringExpected)
		}
		o.set("code", code)
	}
	return vm.alloc(env, o), vm.finish(st, hostbridge.CodeOK)
}

// Throw makes v the pending exception. It fails with PendingException if
// one is already pending.
func (vm *VM) Throw(env hostbridge.Env, v hostbridge.Value) hostbridge.Code {
	st, code := vm.begin(OpThrow, env)
	if code != hostbridge.CodeOK {
		return vm.finish(st, code)
	}
	if _, code := vm.value(env, v); code != hostbridge.CodeOK {
		return vm.finish(st, code)
	}
	vm.mu.Lock()
	if st.hasPending {
		vm.mu.Unlock()
		return vm.finish(st, hostbridge.CodePendingException)
	}
	st.pending, st.hasPending = v, true
	vm.mu.Unlock()
	return vm.finish(st, hostbridge.CodeOK)
}

func (vm *VM) IsExceptionPending(env hostbridge.Env) (bool, hostbridge.Code) {
	st, code := vm.begin(OpIsExceptionPending, env)
	if code != hostbridge.CodeOK {
		return false, vm.finish(st, code)
	}
	vm.mu.Lock()
	pending := st.hasPending
	vm.mu.Unlock()
	return pending, vm.finish(st, hostbridge.CodeOK)
}

// GetAndClearLastException returns the pending exception and clears it.
// Without one it returns undefined.
func (vm *VM) GetAndClearLastException(env hostbridge.Env) (hostbridge.Value, hostbridge.Code) {
	st, code := vm.begin(OpGetAndClearLastException, env)
	if code != hostbridge.CodeOK {
		return 0, vm.finish(st, code)
	}
	vm.mu.Lock()
	v := st.undefined
	if st.hasPending {
		v = st.pending
		st.pending, st.hasPending = 0, false
	}
	vm.mu.Unlock()
	return v, vm.finish(st, hostbridge.CodeOK)
}

// CreateReference creates a persistent reference. A positive initial count
// keeps the value alive across Sweep.
func (vm *VM) CreateReference(env hostbridge.Env, v hostbridge.Value, initial uint32) (hostbridge.Ref, hostbridge.Code) {
	st, code := vm.begin(OpCreateReference, env)
	if code != hostbridge.CodeOK {
		return 0, vm.finish(st, code)
	}
	if _, code := vm.value(env, v); code != hostbridge.CodeOK {
		return 0, vm.finish(st, code)
	}
	if vm.opts.MaxReferences > 0 && vm.References() >= vm.opts.MaxReferences {
		return 0, vm.finish(st, hostbridge.CodeGenericFailure)
	}
	r := hostbridge.Ref(vm.table.Insert(TypeIDRef, &reference{env: env, value: v, count: initial}))
	if r == 0 {
		return 0, vm.finish(st, hostbridge.CodeGenericFailure)
	}
	if initial > 0 {
		vm.table.Retain(resource.Handle(v))
	}
	return r, vm.finish(st, hostbridge.CodeOK)
}

func (vm *VM) DeleteReference(env hostbridge.Env, r hostbridge.Ref) hostbridge.Code {
	st, code := vm.begin(OpDeleteReference, env)
	if code != hostbridge.CodeOK {
		return vm.finish(st, code)
	}
	ref, code := vm.reference(env, r)
	if code != hostbridge.CodeOK {
		return vm.finish(st, code)
	}
	if ref.count > 0 {
		vm.table.Release(resource.Handle(ref.value))
	}
	vm.table.Remove(resource.Handle(r))
	return vm.finish(st, hostbridge.CodeOK)
}

// GetReferenceValue returns the referenced value, or 0 if a weak
// reference outlived it.
func (vm *VM) GetReferenceValue(env hostbridge.Env, r hostbridge.Ref) (hostbridge.Value, hostbridge.Code) {
	st, code := vm.begin(OpGetReferenceValue, env)
	if code != hostbridge.CodeOK {
		return 0, vm.finish(st, code)
	}
	ref, code := vm.reference(env, r)
	if code != hostbridge.CodeOK {
		return 0, vm.finish(st, code)
	}
	if _, code := vm.value(env, ref.value); code != hostbridge.CodeOK {
		return 0, vm.finish(st, hostbridge.CodeOK)
	}
	return ref.value, vm.finish(st, hostbridge.CodeOK)
}

// LastErrorInfo returns the outcome of the previous call on env. It does
// not overwrite that record itself.
func (vm *VM) LastErrorInfo(env hostbridge.Env) (hostbridge.ErrorInfo, hostbridge.Code) {
	st, code := vm.begin(OpLastErrorInfo, env)
	if code != hostbridge.CodeOK {
		return hostbridge.ErrorInfo{}, code
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	info := st.last
	info.Message = append([]byte(nil), st.last.Message...)
	return info, hostbridge.CodeOK
}

// Call invokes a function value. If the callback leaves an exception
// pending the call fails with PendingException.
func (vm *VM) Call(env hostbridge.Env, fn hostbridge.Value, args ...hostbridge.Value) (hostbridge.Value, hostbridge.Code) {
	st, code := vm.begin(OpCall, env)
	if code != hostbridge.CodeOK {
		return 0, vm.finish(st, code)
	}
	o, code := vm.value(env, fn)
	if code != hostbridge.CodeOK {
		return 0, vm.finish(st, code)
	}
	if o.typ != hostbridge.TypeFunction {
		return 0, vm.finish(st, hostbridge.CodeFunctionExpected)
	}
	result, code := o.fn(env, args)
	vm.mu.Lock()
	pending := st.hasPending
	vm.mu.Unlock()
	if pending {
		return 0, vm.finish(st, hostbridge.CodePendingException)
	}
	if code != hostbridge.CodeOK {
		return 0, vm.finish(st, code)
	}
	if result == 0 {
		result = st.undefined
	}
	return result, vm.finish(st, hostbridge.CodeOK)
}
