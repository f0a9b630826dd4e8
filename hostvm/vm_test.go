package hostvm

import (
	"math"
	"math/big"
	"testing"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/resource"
)

func newEnv(t *testing.T) (*VM, hostbridge.Env) {
	t.Helper()
	vm := New()
	t.Cleanup(func() { vm.Close() })
	env := vm.NewEnv()
	if env == 0 {
		t.Fatal("NewEnv returned 0")
	}
	return vm, env
}

func TestThrowAndClear(t *testing.T) {
	vm, env := newEnv(t)
	boom := vm.NewError(env, KindError, "boom")

	if code := vm.Throw(env, boom); code != hostbridge.CodeOK {
		t.Fatalf("Throw = %v, want OK", code)
	}
	pending, code := vm.IsExceptionPending(env)
	if code != hostbridge.CodeOK || !pending {
		t.Fatalf("IsExceptionPending = %v, %v", pending, code)
	}
	if code := vm.Throw(env, vm.String(env, "second")); code != hostbridge.CodePendingException {
		t.Errorf("second Throw = %v, want PendingException", code)
	}

	got, code := vm.GetAndClearLastException(env)
	if code != hostbridge.CodeOK || got != boom {
		t.Fatalf("GetAndClearLastException = %v, %v, want %v", got, code, boom)
	}
	if _, ok := vm.Pending(env); ok {
		t.Error("exception still pending after clear")
	}

	got, _ = vm.GetAndClearLastException(env)
	if got != vm.Undefined(env) {
		t.Errorf("clear without pending = %v, want undefined", got)
	}
}

func TestCreateError(t *testing.T) {
	vm, env := newEnv(t)
	msg, _ := vm.CreateStringUTF8(env, []byte("bad range"))
	code, _ := vm.CreateStringUTF8(env, []byte("E_RANGE"))

	tests := []struct {
		name   string
		create func(hostbridge.Env, hostbridge.Value, hostbridge.Value) (hostbridge.Value, hostbridge.Code)
		kind   string
	}{
		{"error", vm.CreateError, KindError},
		{"type", vm.CreateTypeError, KindTypeError},
		{"range", vm.CreateRangeError, KindRangeError},
		{"syntax", vm.CreateSyntaxError, KindSyntaxError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, status := tt.create(env, code, msg)
			if status != hostbridge.CodeOK {
				t.Fatalf("create = %v", status)
			}
			info, ok := vm.ErrorObject(env, v)
			if !ok {
				t.Fatal("not an error object")
			}
			if info.Kind != tt.kind || info.Message != "bad range" || info.Code != "E_RANGE" {
				t.Errorf("ErrorObject = %+v", info)
			}
		})
	}

	v, status := vm.CreateError(env, 0, msg)
	if status != hostbridge.CodeOK {
		t.Fatalf("CreateError without code = %v", status)
	}
	if info, _ := vm.ErrorObject(env, v); info.HasCode {
		t.Errorf("HasCode = true, want false")
	}

	if _, status := vm.CreateError(env, 0, vm.Number(env, 1)); status != hostbridge.CodeStringExpected {
		t.Errorf("non-string message = %v, want StringExpected", status)
	}
}

func TestLastErrorInfo(t *testing.T) {
	vm, env := newEnv(t)

	vm.Throw(env, 999)
	info, code := vm.LastErrorInfo(env)
	if code != hostbridge.CodeOK {
		t.Fatalf("LastErrorInfo = %v", code)
	}
	if info.ErrorCode != hostbridge.CodeInvalidArg || string(info.Message) != "Invalid argument" {
		t.Errorf("info = %v %q", info.ErrorCode, info.Message)
	}

	vm.IsExceptionPending(env)
	info, _ = vm.LastErrorInfo(env)
	if info.ErrorCode != hostbridge.CodeOK || len(info.Message) != 0 {
		t.Errorf("after success info = %v %q", info.ErrorCode, info.Message)
	}
}

func TestReferencesSurviveSweep(t *testing.T) {
	vm, env := newEnv(t)
	kept := vm.String(env, "kept")
	weak := vm.String(env, "weak")
	loose := vm.String(env, "loose")

	strong, code := vm.CreateReference(env, kept, 1)
	if code != hostbridge.CodeOK {
		t.Fatalf("CreateReference = %v", code)
	}
	weakRef, _ := vm.CreateReference(env, weak, 0)
	if n := vm.RetainCount(kept); n != 1 {
		t.Errorf("RetainCount = %d, want 1", n)
	}

	if n := vm.Sweep(env); n != 2 {
		t.Errorf("Sweep dropped %d, want 2", n)
	}
	if _, ok := vm.StringValue(env, loose); ok {
		t.Error("unreferenced value survived Sweep")
	}

	got, code := vm.GetReferenceValue(env, strong)
	if code != hostbridge.CodeOK || got != kept {
		t.Errorf("GetReferenceValue(strong) = %v, %v", got, code)
	}
	got, code = vm.GetReferenceValue(env, weakRef)
	if code != hostbridge.CodeOK || got != 0 {
		t.Errorf("GetReferenceValue(weak) = %v, %v, want 0", got, code)
	}

	if code := vm.DeleteReference(env, strong); code != hostbridge.CodeOK {
		t.Fatalf("DeleteReference = %v", code)
	}
	if code := vm.DeleteReference(env, strong); code != hostbridge.CodeInvalidArg {
		t.Errorf("second DeleteReference = %v, want InvalidArg", code)
	}
	if n := vm.RetainCount(kept); n != 0 {
		t.Errorf("RetainCount after delete = %d, want 0", n)
	}
	if vm.References() != 1 {
		t.Errorf("References = %d, want 1", vm.References())
	}
}

func TestSweepKeepsPending(t *testing.T) {
	vm, env := newEnv(t)
	boom := vm.NewError(env, KindError, "boom")
	vm.Throw(env, boom)
	vm.Sweep(env)
	if _, ok := vm.ErrorObject(env, boom); !ok {
		t.Error("pending exception dropped by Sweep")
	}
}

func TestSweepKeepsReachableProperties(t *testing.T) {
	tests := []struct {
		name string
		root func(*VM, hostbridge.Env, hostbridge.Value)
	}{
		{"retained", func(vm *VM, env hostbridge.Env, v hostbridge.Value) {
			vm.CreateReference(env, v, 1)
		}},
		{"pending", func(vm *VM, env hostbridge.Env, v hostbridge.Value) {
			vm.Throw(env, v)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm, env := newEnv(t)
			msg := vm.String(env, "bad")
			code := vm.String(env, "E_BAD")
			v, status := vm.CreateError(env, code, msg)
			if status != hostbridge.CodeOK {
				t.Fatalf("CreateError = %v", status)
			}
			tt.root(vm, env, v)

			vm.Sweep(env)

			info, ok := vm.ErrorObject(env, v)
			if !ok {
				t.Fatal("error object dropped by Sweep")
			}
			if !info.HasCode || info.Code != "E_BAD" {
				t.Errorf("ErrorObject = %+v, want code E_BAD", info)
			}
			if _, ok := vm.StringValue(env, msg); ok {
				t.Error("unreachable message string survived Sweep")
			}
		})
	}
}

func TestSweepKeepsNestedObjects(t *testing.T) {
	vm, env := newEnv(t)
	outer := vm.NewObject(env)
	inner := vm.NewObject(env)
	vm.SetProperty(env, inner, "n", vm.Number(env, 7))
	vm.SetProperty(env, outer, "inner", inner)
	vm.SetProperty(env, outer, "self", outer)
	vm.CreateReference(env, outer, 1)
	stray := vm.String(env, "stray")

	if got := vm.Sweep(env); got != 1 {
		t.Errorf("Sweep = %d, want 1", got)
	}
	if _, ok := vm.StringValue(env, stray); ok {
		t.Error("stray string survived Sweep")
	}
	s, code := vm.Stringify(env, mustProperty(t, vm, env, outer, "inner"))
	if code != hostbridge.CodeOK || s != `{"n":7}` {
		t.Errorf("Stringify = %q, %v, want {\"n\":7}", s, code)
	}
}

func mustProperty(t *testing.T, vm *VM, env hostbridge.Env, obj hostbridge.Value, key string) hostbridge.Value {
	t.Helper()
	v, ok := vm.Property(env, obj, key)
	if !ok {
		t.Fatalf("property %q missing", key)
	}
	return v
}

func TestEnvAffinity(t *testing.T) {
	vm := New()
	defer vm.Close()
	a, b := vm.NewEnv(), vm.NewEnv()
	v := vm.String(a, "x")

	if code := vm.Throw(b, v); code != hostbridge.CodeInvalidArg {
		t.Errorf("Throw from other env = %v, want InvalidArg", code)
	}
	r, _ := vm.CreateReference(a, v, 1)
	if code := vm.DeleteReference(b, r); code != hostbridge.CodeInvalidArg {
		t.Errorf("DeleteReference from other env = %v, want InvalidArg", code)
	}
	if _, code := vm.IsExceptionPending(0); code != hostbridge.CodeInvalidArg {
		t.Errorf("env 0 = %v, want InvalidArg", code)
	}
}

func TestCloseEnv(t *testing.T) {
	vm := New()
	defer vm.Close()
	env := vm.NewEnv()
	v := vm.String(env, "x")
	vm.CreateReference(env, v, 1)

	if err := vm.CloseEnv(env); err != nil {
		t.Fatalf("CloseEnv: %v", err)
	}
	if vm.References() != 0 {
		t.Errorf("References = %d, want 0", vm.References())
	}
	if err := vm.CloseEnv(env); err != ErrUnknownEnv {
		t.Errorf("second CloseEnv = %v, want ErrUnknownEnv", err)
	}
}

func TestFailNextAndLedger(t *testing.T) {
	vm, env := newEnv(t)
	vm.FailNext(OpCreateReference, hostbridge.CodeGenericFailure)

	v := vm.String(env, "x")
	if _, code := vm.CreateReference(env, v, 1); code != hostbridge.CodeGenericFailure {
		t.Errorf("faulted CreateReference = %v, want GenericFailure", code)
	}
	if _, code := vm.CreateReference(env, v, 1); code != hostbridge.CodeOK {
		t.Errorf("next CreateReference = %v, want OK", code)
	}
	if n := vm.Calls(OpCreateReference); n != 2 {
		t.Errorf("Calls = %d, want 2", n)
	}
	if n := vm.TotalCalls(); n != 2 {
		t.Errorf("TotalCalls = %d, want 2", n)
	}
	vm.ResetCalls()
	if n := vm.TotalCalls(); n != 0 {
		t.Errorf("TotalCalls after reset = %d", n)
	}
}

func TestMaxReferences(t *testing.T) {
	vm := NewWithOptions(&Options{MaxReferences: 1})
	defer vm.Close()
	env := vm.NewEnv()
	v := vm.String(env, "x")
	if _, code := vm.CreateReference(env, v, 1); code != hostbridge.CodeOK {
		t.Fatalf("first = %v", code)
	}
	if _, code := vm.CreateReference(env, v, 1); code != hostbridge.CodeGenericFailure {
		t.Errorf("over limit = %v, want GenericFailure", code)
	}
}

func TestCall(t *testing.T) {
	vm, env := newEnv(t)
	thrower := vm.NewFunction(env, "thrower", func(env hostbridge.Env, _ []hostbridge.Value) (hostbridge.Value, hostbridge.Code) {
		return 0, vm.Throw(env, vm.NewError(env, KindTypeError, "nope"))
	})
	echo := vm.NewFunction(env, "echo", func(_ hostbridge.Env, args []hostbridge.Value) (hostbridge.Value, hostbridge.Code) {
		return args[0], hostbridge.CodeOK
	})

	arg := vm.String(env, "hi")
	got, code := vm.Call(env, echo, arg)
	if code != hostbridge.CodeOK || got != arg {
		t.Errorf("Call(echo) = %v, %v", got, code)
	}

	if _, code := vm.Call(env, thrower); code != hostbridge.CodePendingException {
		t.Errorf("Call(thrower) = %v, want PendingException", code)
	}
	exc, _ := vm.GetAndClearLastException(env)
	if info, ok := vm.ErrorObject(env, exc); !ok || info.Kind != KindTypeError {
		t.Errorf("thrown = %+v", info)
	}

	if _, code := vm.Call(env, arg); code != hostbridge.CodeFunctionExpected {
		t.Errorf("Call(string) = %v, want FunctionExpected", code)
	}
}

func TestStringify(t *testing.T) {
	vm, env := newEnv(t)

	obj := vm.NewObject(env)
	vm.SetProperty(env, obj, "a", vm.Number(env, 1))
	vm.SetProperty(env, obj, "b", vm.String(env, "<x>"))
	vm.SetProperty(env, obj, "skip", vm.Undefined(env))
	vm.SetProperty(env, obj, "n", vm.Null(env))
	nested := vm.NewObject(env)
	vm.SetProperty(env, nested, "ok", vm.Bool(env, true))
	vm.SetProperty(env, obj, "c", nested)

	tests := []struct {
		name string
		v    hostbridge.Value
		want string
	}{
		{"object", obj, `{"a":1,"b":"<x>","n":null,"c":{"ok":true}}`},
		{"empty", vm.NewObject(env), `{}`},
		{"undefined", vm.Undefined(env), "undefined"},
		{"nan", vm.Number(env, math.NaN()), "null"},
		{"fraction", vm.Number(env, 1.5), "1.5"},
		{"error", vm.NewError(env, KindError, "hidden"), `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, code := vm.Stringify(env, tt.v)
			if code != hostbridge.CodeOK {
				t.Fatalf("Stringify = %v", code)
			}
			if got != tt.want {
				t.Errorf("Stringify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStringifyThrows(t *testing.T) {
	vm, env := newEnv(t)
	cyclic := vm.NewObject(env)
	vm.SetProperty(env, cyclic, "self", cyclic)

	if _, code := vm.Stringify(env, cyclic); code != hostbridge.CodePendingException {
		t.Fatalf("cyclic = %v, want PendingException", code)
	}
	exc, _ := vm.GetAndClearLastException(env)
	info, _ := vm.ErrorObject(env, exc)
	if info.Kind != KindTypeError || info.Message != "Converting circular structure to JSON" {
		t.Errorf("thrown = %+v", info)
	}

	if _, code := vm.Stringify(env, vm.BigInt(env, big.NewInt(7))); code != hostbridge.CodePendingException {
		t.Errorf("bigint = %v, want PendingException", code)
	}
}

func TestCoerceToString(t *testing.T) {
	vm, env := newEnv(t)
	tests := []struct {
		v    hostbridge.Value
		want string
	}{
		{vm.Number(env, 42), "42"},
		{vm.Number(env, -0.25), "-0.25"},
		{vm.Bool(env, false), "false"},
		{vm.Null(env), "null"},
		{vm.Undefined(env), "undefined"},
		{vm.BigInt(env, big.NewInt(12345678901)), "12345678901"},
		{vm.NewObject(env), "[object Object]"},
		{vm.NewError(env, KindRangeError, "too big"), "RangeError: too big"},
	}
	for _, tt := range tests {
		got, code := vm.CoerceToString(env, tt.v)
		if code != hostbridge.CodeOK || got != tt.want {
			t.Errorf("CoerceToString = %q, %v, want %q", got, code, tt.want)
		}
	}

	if _, code := vm.CoerceToString(env, vm.Symbol(env, "s")); code != hostbridge.CodePendingException {
		t.Errorf("symbol = %v, want PendingException", code)
	}
}

func TestStrictEquals(t *testing.T) {
	vm, env := newEnv(t)
	o := vm.NewObject(env)
	tests := []struct {
		name string
		a, b hostbridge.Value
		want bool
	}{
		{"same object", o, o, true},
		{"distinct objects", o, vm.NewObject(env), false},
		{"equal strings", vm.String(env, "x"), vm.String(env, "x"), true},
		{"string vs number", vm.String(env, "1"), vm.Number(env, 1), false},
		{"nan", vm.Number(env, math.NaN()), vm.Number(env, math.NaN()), false},
		{"null", vm.Null(env), vm.Null(env), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, code := vm.StrictEquals(env, tt.a, tt.b)
			if code != hostbridge.CodeOK || got != tt.want {
				t.Errorf("StrictEquals = %v, %v, want %v", got, code, tt.want)
			}
		})
	}
}

func TestFunctionName(t *testing.T) {
	vm, env := newEnv(t)
	noop := func(hostbridge.Env, []hostbridge.Value) (hostbridge.Value, hostbridge.Code) { return 0, hostbridge.CodeOK }

	name, code := vm.FunctionName(env, vm.NewFunction(env, "handler", noop))
	if code != hostbridge.CodeOK || name != "handler" {
		t.Errorf("FunctionName = %q, %v", name, code)
	}
	name, _ = vm.FunctionName(env, vm.NewFunction(env, "", noop))
	if name != "" {
		t.Errorf("anonymous FunctionName = %q", name)
	}
	if _, code := vm.FunctionName(env, vm.Null(env)); code != hostbridge.CodeFunctionExpected {
		t.Errorf("FunctionName(null) = %v", code)
	}
}

func TestSubscribe(t *testing.T) {
	vm, env := newEnv(t)
	var retained, released int
	obs := resource.ObserverFunc(func(e resource.Event) {
		switch e.Type {
		case resource.EventRetained:
			retained++
		case resource.EventReleased:
			released++
		}
	})
	vm.Subscribe(obs)

	r, _ := vm.CreateReference(env, vm.String(env, "x"), 1)
	vm.DeleteReference(env, r)
	if retained != 1 || released != 1 {
		t.Errorf("retained=%d released=%d, want 1/1", retained, released)
	}
}

func TestCreateStringInvalidUTF8(t *testing.T) {
	vm, env := newEnv(t)
	v, code := vm.CreateStringUTF8(env, []byte{'a', 0xff, 'b'})
	if code != hostbridge.CodeOK {
		t.Fatalf("CreateStringUTF8 = %v", code)
	}
	if s, _ := vm.StringValue(env, v); s != "a\uFFFDb" {
		t.Errorf("string = %q", s)
	}
}

func TestWeakReferenceAfterSlotReuse(t *testing.T) {
	vm, env := newEnv(t)
	r, _ := vm.CreateReference(env, vm.String(env, "gone"), 0)
	vm.Sweep(env)
	vm.String(env, "newcomer")

	got, code := vm.GetReferenceValue(env, r)
	if code != hostbridge.CodeOK || got != 0 {
		t.Errorf("GetReferenceValue = %v, %v, want 0", got, code)
	}
}
