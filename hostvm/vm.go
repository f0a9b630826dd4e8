package hostvm

import (
	"errors"
	"sync"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/resource"
)

// Type IDs of the entries kept in the handle table.
const (
	TypeIDEnv uint32 = iota + 1
	TypeIDValue
	TypeIDRef
)

// ABI operation names, used by the call ledger and FailNext.
const (
	OpCreateString             = "create_string_utf8"
	OpCreateError              = "create_error"
	OpCreateTypeError          = "create_type_error"
	OpCreateRangeError         = "create_range_error"
	OpCreateSyntaxError        = "create_syntax_error"
	OpThrow                    = "throw"
	OpIsExceptionPending       = "is_exception_pending"
	OpGetAndClearLastException = "get_and_clear_last_exception"
	OpCreateReference          = "create_reference"
	OpDeleteReference          = "delete_reference"
	OpGetReferenceValue        = "get_reference_value"
	OpLastErrorInfo            = "get_last_error_info"
	OpTypeOf                   = "typeof"
	OpFunctionName             = "function_name"
	OpCoerceToString           = "coerce_to_string"
	OpStringify                = "json_stringify"
	OpStrictEquals             = "strict_equals"
	OpCall                     = "call_function"
)

// ErrUnknownEnv is returned by CloseEnv for an env that does not exist.
var ErrUnknownEnv = errors.New("hostvm: unknown env")

// Options configures a VM.
type Options struct {
	// MaxReferences caps live persistent references; 0 means unlimited.
	MaxReferences int
}

// Func is the Go implementation of a host function. A callback that throws
// leaves the exception pending in env; Call then reports PendingException.
type Func func(env hostbridge.Env, args []hostbridge.Value) (hostbridge.Value, hostbridge.Code)

// VM is an in-memory host runtime.
type VM struct {
	table  *resource.UnifiedTable
	calls  map[string]int
	faults map[string]hostbridge.Code
	opts   Options
	mu     sync.Mutex
}

type envState struct {
	last       hostbridge.ErrorInfo
	undefined  hostbridge.Value
	null       hostbridge.Value
	pending    hostbridge.Value
	hasPending bool
}

type reference struct {
	env   hostbridge.Env
	value hostbridge.Value
	count uint32
}

var (
	_ hostbridge.ABI       = (*VM)(nil)
	_ hostbridge.Inspector = (*VM)(nil)
)

// New creates a VM with default options.
func New() *VM {
	return NewWithOptions(nil)
}

// NewWithOptions creates a VM with custom options.
func NewWithOptions(opts *Options) *VM {
	vm := &VM{
		table:  resource.NewTable(),
		calls:  make(map[string]int),
		faults: make(map[string]hostbridge.Code),
	}
	if opts != nil {
		vm.opts = *opts
	}
	return vm
}

// NewEnv creates an execution context.
func (vm *VM) NewEnv() hostbridge.Env {
	st := &envState{}
	env := hostbridge.Env(vm.table.Insert(TypeIDEnv, st))
	if env == 0 {
		return 0
	}
	st.undefined = vm.alloc(env, &object{typ: hostbridge.TypeUndefined})
	st.null = vm.alloc(env, &object{typ: hostbridge.TypeNull})
	return env
}

// CloseEnv drops every value and reference belonging to env, retained or not.
func (vm *VM) CloseEnv(env hostbridge.Env) error {
	if _, ok := vm.env(env); !ok {
		return ErrUnknownEnv
	}
	var refs, values []resource.Handle
	vm.table.Each(func(h resource.Handle, typeID uint32, v any) bool {
		switch e := v.(type) {
		case *reference:
			if e.env == env {
				refs = append(refs, h)
			}
		case *object:
			if e.env == env {
				values = append(values, h)
			}
		}
		return true
	})
	for _, h := range refs {
		vm.table.Remove(h)
	}
	for _, h := range values {
		for {
			if _, ok := vm.table.Release(h); !ok {
				break
			}
		}
		vm.table.Remove(h)
	}
	vm.table.Remove(resource.Handle(env))
	return nil
}

// Close releases every handle. The VM is unusable afterwards.
func (vm *VM) Close() error {
	return vm.table.Close()
}

// Subscribe registers an observer for handle lifecycle events.
func (vm *VM) Subscribe(o resource.Observer) {
	vm.table.Subscribe(o)
}

// Unsubscribe removes an observer.
func (vm *VM) Unsubscribe(o resource.Observer) {
	vm.table.Unsubscribe(o)
}

// FailNext makes the next call of op fail with code.
func (vm *VM) FailNext(op string, code hostbridge.Code) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.faults[op] = code
}

// Calls returns how many times op was called.
func (vm *VM) Calls(op string) int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.calls[op]
}

// TotalCalls returns the number of ABI calls made so far.
func (vm *VM) TotalCalls() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	n := 0
	for _, c := range vm.calls {
		n += c
	}
	return n
}

// ResetCalls clears the call ledger.
func (vm *VM) ResetCalls() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	clear(vm.calls)
}

// Pending returns the pending exception of env without clearing it.
func (vm *VM) Pending(env hostbridge.Env) (hostbridge.Value, bool) {
	st, ok := vm.env(env)
	if !ok {
		return 0, false
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return st.pending, st.hasPending
}

// RetainCount returns how many strong references keep v alive.
func (vm *VM) RetainCount(v hostbridge.Value) uint32 {
	n, _ := vm.table.Count(resource.Handle(v))
	return n
}

// References returns the number of live persistent references.
func (vm *VM) References() int {
	n := 0
	vm.table.Each(func(_ resource.Handle, typeID uint32, _ any) bool {
		if typeID == TypeIDRef {
			n++
		}
		return true
	})
	return n
}

// Sweep ends the current handle scope of env. Values reachable from a
// retained value, the pending exception or a singleton survive, following
// object properties; everything else is dropped. It returns the number of
// values dropped.
func (vm *VM) Sweep(env hostbridge.Env) int {
	st, ok := vm.env(env)
	if !ok {
		return 0
	}

	objects := make(map[hostbridge.Value]*object)
	vm.table.Each(func(h resource.Handle, _ uint32, v any) bool {
		if o, ok := v.(*object); ok && o.env == env {
			objects[hostbridge.Value(h)] = o
		}
		return true
	})

	roots := []hostbridge.Value{st.undefined, st.null}
	for v := range objects {
		if vm.RetainCount(v) > 0 {
			roots = append(roots, v)
		}
	}

	vm.mu.Lock()
	if st.hasPending {
		roots = append(roots, st.pending)
	}
	reached := make(map[hostbridge.Value]bool, len(roots))
	for stack := roots; len(stack) > 0; {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[v] {
			continue
		}
		reached[v] = true
		if o, ok := objects[v]; ok {
			for _, p := range o.props {
				stack = append(stack, p.value)
			}
		}
	}
	vm.mu.Unlock()

	dropped := 0
	for v := range objects {
		if reached[v] {
			continue
		}
		if _, ok := vm.table.Remove(resource.Handle(v)); ok {
			dropped++
		}
	}
	return dropped
}

func (vm *VM) env(env hostbridge.Env) (*envState, bool) {
	v, ok := vm.table.GetTyped(resource.Handle(env), TypeIDEnv)
	if !ok {
		return nil, false
	}
	return v.(*envState), true
}

func (vm *VM) alloc(env hostbridge.Env, o *object) hostbridge.Value {
	o.env = env
	return hostbridge.Value(vm.table.Insert(TypeIDValue, o))
}

func (vm *VM) value(env hostbridge.Env, v hostbridge.Value) (*object, hostbridge.Code) {
	raw, ok := vm.table.GetTyped(resource.Handle(v), TypeIDValue)
	if !ok {
		return nil, hostbridge.CodeInvalidArg
	}
	o := raw.(*object)
	if o.env != env {
		return nil, hostbridge.CodeInvalidArg
	}
	return o, hostbridge.CodeOK
}

func (vm *VM) reference(env hostbridge.Env, r hostbridge.Ref) (*reference, hostbridge.Code) {
	raw, ok := vm.table.GetTyped(resource.Handle(r), TypeIDRef)
	if !ok {
		return nil, hostbridge.CodeInvalidArg
	}
	ref := raw.(*reference)
	if ref.env != env {
		return nil, hostbridge.CodeInvalidArg
	}
	return ref, hostbridge.CodeOK
}

// begin records a call of op and validates env. A non-ok code means the
// call must fail with it; st may still be set so the failure is recorded.
func (vm *VM) begin(op string, env hostbridge.Env) (*envState, hostbridge.Code) {
	vm.mu.Lock()
	vm.calls[op]++
	fault, faulted := vm.faults[op]
	if faulted {
		delete(vm.faults, op)
	}
	vm.mu.Unlock()

	st, ok := vm.env(env)
	if !ok {
		return nil, hostbridge.CodeInvalidArg
	}
	if faulted {
		return st, fault
	}
	return st, hostbridge.CodeOK
}

// finish records code as the last error of st and returns it.
func (vm *VM) finish(st *envState, code hostbridge.Code) hostbridge.Code {
	if st == nil {
		return code
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	st.last = hostbridge.ErrorInfo{ErrorCode: code}
	if code != hostbridge.CodeOK {
		st.last.Message = []byte(codeMessage(code))
	}
	return code
}

// throwNew creates an error object and makes it pending, as the host does
// when one of its own operations throws.
func (vm *VM) throwNew(st *envState, env hostbridge.Env, kind, msg string) hostbridge.Code {
	v := vm.NewError(env, kind, msg)
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if !st.hasPending {
		st.pending, st.hasPending = v, true
	}
	return hostbridge.CodePendingException
}
