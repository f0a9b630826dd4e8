package errors

import (
	"testing"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/hostvm"
)

func TestMaterializeKinds(t *testing.T) {
	vm, env := newVM(t)
	err := New(StatusInvalidArg, "bad input")

	tests := []struct {
		throwable Throwable
		kind      string
	}{
		{NewJSError(err), hostvm.KindError},
		{NewJSTypeError(err), hostvm.KindTypeError},
		{NewJSRangeError(err), hostvm.KindRangeError},
		{NewJSSyntaxError(err), hostvm.KindSyntaxError},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			v, merr := tt.throwable.Materialize(vm, env)
			if merr != nil {
				t.Fatalf("Materialize: %v", merr)
			}
			info, ok := vm.ErrorObject(env, v)
			if !ok {
				t.Fatal("not an error object")
			}
			if info.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", info.Kind, tt.kind)
			}
			if info.Code != "InvalidArg" || info.Message != "bad input" {
				t.Errorf("code/message = %q/%q", info.Code, info.Message)
			}
			if tt.throwable.Kind().String() != tt.kind {
				t.Errorf("ThrowableKind = %v, want %s", tt.throwable.Kind(), tt.kind)
			}
		})
	}
}

func TestNewThrowable(t *testing.T) {
	err := FromStatus(StatusGenericFailure)
	for _, kind := range []ThrowableKind{KindError, KindTypeError, KindRangeError, KindSyntaxError} {
		th := NewThrowable(err, kind)
		if th.Kind() != kind {
			t.Errorf("NewThrowable(%v).Kind() = %v", kind, th.Kind())
		}
		if th.Err() != err {
			t.Errorf("NewThrowable(%v).Err() lost the error", kind)
		}
	}
	if got := NewThrowable(err, ThrowableKind(9)).Kind(); got != KindError {
		t.Errorf("unknown kind = %v, want Error", got)
	}
}

func TestMaterializeEmptyReason(t *testing.T) {
	vm, env := newVM(t)
	v, err := NewJSError(FromStatus(StatusGenericFailure)).Materialize(vm, env)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	info, _ := vm.ErrorObject(env, v)
	if info.Code != "GenericFailure" || info.Message != "" {
		t.Errorf("code/message = %q/%q", info.Code, info.Message)
	}
}

func TestThrowPreservesIdentity(t *testing.T) {
	vm, env := newVM(t)
	original := vm.NewError(env, hostvm.KindRangeError, "out of range")
	e := FromValue(vm, env, original)
	defer e.Release()

	// The retained value wins over the throwable's kind.
	if err := NewJSTypeError(e).Throw(vm, env); err != nil {
		t.Fatalf("Throw: %v", err)
	}
	pending, ok := vm.Pending(env)
	if !ok {
		t.Fatal("nothing pending")
	}
	same, code := vm.StrictEquals(env, pending, original)
	if code != hostbridge.CodeOK || !same {
		t.Error("thrown value is not the original exception")
	}
	if n := vm.Calls(hostvm.OpCreateTypeError); n != 0 {
		t.Errorf("CreateTypeError calls = %d, want 0", n)
	}
}

func TestThrowSkipsPendingException(t *testing.T) {
	vm, env := newVM(t)
	first := vm.NewError(env, hostvm.KindError, "first")
	vm.Throw(env, first)
	vm.ResetCalls()

	if err := NewJSError(New(StatusPendingException, "x")).Throw(vm, env); err != nil {
		t.Fatalf("Throw: %v", err)
	}
	if n := vm.TotalCalls(); n != 0 {
		t.Errorf("TotalCalls = %d, want 0", n)
	}
	if pending, _ := vm.Pending(env); pending != first {
		t.Error("pending exception was replaced")
	}
}

func TestThrowFailure(t *testing.T) {
	vm, env := newVM(t)
	vm.FailNext(hostvm.OpCreateError, hostbridge.CodeGenericFailure)

	err := NewJSError(New(StatusInvalidArg, "x")).Throw(vm, env)
	if err == nil {
		t.Fatal("Throw succeeded despite constructor failure")
	}
	if e := FromError(err); e.Status != StatusGenericFailure {
		t.Errorf("status = %v, want GenericFailure", e.Status)
	}
	if _, ok := vm.Pending(env); ok {
		t.Error("exception pending after failed materialization")
	}
}

func TestUnknown(t *testing.T) {
	vm, env := newVM(t)
	u, err := NewJSSyntaxError(New(StatusInvalidArg, "parse")).Unknown(vm, env)
	if err != nil {
		t.Fatalf("Unknown: %v", err)
	}
	if u.Env != env {
		t.Errorf("Env = %v, want %v", u.Env, env)
	}
	if info, _ := vm.ErrorObject(env, u.Value); info.Kind != hostvm.KindSyntaxError {
		t.Errorf("Kind = %q", info.Kind)
	}
}

func TestRaise(t *testing.T) {
	vm, env := newVM(t)

	err := Raise(vm, env, New(StatusInvalidArg, "expected a string"))
	if err == nil || err.Error() != "InvalidArg, expected a string" {
		t.Errorf("Raise = %v", err)
	}
	exc, _ := vm.GetAndClearLastException(env)
	info, _ := vm.ErrorObject(env, exc)
	if info.Kind != hostvm.KindError || info.Code != "InvalidArg" {
		t.Errorf("thrown = %+v", info)
	}

	if err := Raise(vm, env, nil); err != nil {
		t.Errorf("Raise(nil) = %v", err)
	}
}

func TestRaiseRetainedReleases(t *testing.T) {
	vm, env := newVM(t)
	boom := vm.NewError(env, hostvm.KindError, "boom")
	e := FromValue(vm, env, boom)

	Raise(vm, env, e)
	if e.Retained() {
		t.Error("Raise did not release the retained value")
	}
	if pending, _ := vm.Pending(env); pending != boom {
		t.Error("Raise did not rethrow the original value")
	}
	if vm.References() != 0 {
		t.Errorf("References = %d, want 0", vm.References())
	}
}
