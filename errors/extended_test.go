package errors

import (
	"testing"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/hostvm"
)

func TestNewExtendedErrorInfo(t *testing.T) {
	info, err := NewExtendedErrorInfo(hostbridge.ErrorInfo{
		Message:         []byte("A string was expected"),
		EngineErrorCode: 7,
		ErrorCode:       hostbridge.CodeStringExpected,
	})
	if err != nil {
		t.Fatalf("NewExtendedErrorInfo: %v", err)
	}
	if info.ErrorCode != StatusStringExpected || info.EngineErrorCode != 7 {
		t.Errorf("info = %+v", info)
	}
	if got := info.Err().Error(); got != "StringExpected, A string was expected" {
		t.Errorf("Err() = %q", got)
	}

	_, err = NewExtendedErrorInfo(hostbridge.ErrorInfo{Message: []byte{0xc3, 0x28}})
	if e := FromError(err); e == nil || e.Status != StatusGenericFailure {
		t.Errorf("invalid utf-8 err = %v, want GenericFailure", err)
	}
}

func TestLastError(t *testing.T) {
	vm, env := newVM(t)
	if _, code := vm.CreateError(env, 0, vm.Number(env, 1)); code != hostbridge.CodeStringExpected {
		t.Fatalf("CreateError = %v", code)
	}
	info, err := LastError(vm, env)
	if err != nil {
		t.Fatalf("LastError: %v", err)
	}
	if info.ErrorCode != StatusStringExpected || info.Message != "A string was expected" {
		t.Errorf("info = %+v", info)
	}

	vm.FailNext(hostvm.OpLastErrorInfo, hostbridge.CodeInvalidArg)
	if _, err := LastError(vm, env); err == nil {
		t.Error("LastError succeeded despite failure")
	}
}
