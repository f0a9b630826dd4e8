package errors

import (
	stderrors "errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge"
)

// ErrEnvMismatch is the cause of errors returned when a retained exception
// is dereferenced under an Env other than the one it was captured in.
var ErrEnvMismatch = stderrors.New("retained exception used outside its execution context")

// retained pairs a persistent reference with the Env it belongs to.
type retained struct {
	abi hostbridge.ABI
	env hostbridge.Env
	ref hostbridge.Ref
}

// Error is the unified error value of the binding layer.
//
// When an Error retains a host value, that value is authoritative and
// Status and Reason are only fallback text. Errors must not be copied;
// share the pointer or call Clone.
//
// An Error may be handed between goroutines as data. Materializing,
// throwing, cloning or releasing a retained Error must happen on the
// goroutine owning its Env.
type Error struct {
	cause  error
	held   atomic.Pointer[retained]
	Reason string
	Status Status
}

// New creates a self-contained error.
func New(status Status, reason string) *Error {
	return &Error{Status: status, Reason: reason}
}

// Newf creates a self-contained error with a formatted reason.
func Newf(status Status, format string, args ...any) *Error {
	return &Error{Status: status, Reason: fmt.Sprintf(format, args...)}
}

// FromStatus creates an error with an empty reason.
func FromStatus(status Status) *Error {
	return &Error{Status: status}
}

// FromReason creates a GenericFailure error.
func FromReason(reason string) *Error {
	return &Error{Status: StatusGenericFailure, Reason: reason}
}

// Wrap creates an error carrying cause as its Go cause.
func Wrap(status Status, cause error, reason string) *Error {
	return &Error{Status: status, Reason: reason, cause: cause}
}

// FromValue wraps a host value, typically a thrown exception, by creating a
// persistent reference to it. The result must be released with Release.
//
// If the reference cannot be created the result degrades to a
// GenericFailure with an empty reason and retains nothing.
func FromValue(abi hostbridge.ABI, env hostbridge.Env, v hostbridge.Value) *Error {
	ref, code := abi.CreateReference(env, v, 1)
	if code != hostbridge.CodeOK {
		Logger().Debug("create error reference failed",
			zap.Uint32("env", uint32(env)),
			zap.Uint32("value", uint32(v)),
			zap.Stringer("status", StatusFromCode(code)))
		return FromStatus(StatusGenericFailure)
	}
	e := &Error{Status: StatusGenericFailure}
	e.held.Store(&retained{abi: abi, env: env, ref: ref})
	return e
}

// FromUnknown is FromValue for an opaque value.
func FromUnknown(abi hostbridge.ABI, u hostbridge.Unknown) *Error {
	return FromValue(abi, u.Env, u.Value)
}

// Retained reports whether e holds a host value.
func (e *Error) Retained() bool {
	return e.held.Load() != nil
}

// Env returns the execution context of the retained value, if any.
func (e *Error) Env() (hostbridge.Env, bool) {
	r := e.held.Load()
	if r == nil {
		return 0, false
	}
	return r.env, true
}

// Release deletes the persistent reference held by e. Only the first call
// reaches the host; later calls and calls on self-contained errors do nothing.
//
// A failed delete means the host's reference bookkeeping is corrupt and
// Release panics.
func (e *Error) Release() {
	if e == nil {
		return
	}
	r := e.held.Swap(nil)
	if r == nil {
		return
	}
	if code := r.abi.DeleteReference(r.env, r.ref); code != hostbridge.CodeOK {
		status := StatusFromCode(code)
		Logger().Error("delete error reference failed",
			zap.Uint32("env", uint32(r.env)),
			zap.Uint32("ref", uint32(r.ref)),
			zap.Stringer("status", status))
		panic(fmt.Sprintf("errors: delete error reference failed: %s", status))
	}
}

// Clone returns an independent copy of e. A retained value gets a second
// persistent reference, so each copy is released on its own.
func (e *Error) Clone() (*Error, error) {
	c := &Error{Status: e.Status, Reason: e.Reason, cause: e.cause}
	r := e.held.Load()
	if r == nil {
		return c, nil
	}
	v, code := r.abi.GetReferenceValue(r.env, r.ref)
	if err := CheckStatusf(code, "resolve retained exception"); err != nil {
		return nil, err
	}
	ref, code := r.abi.CreateReference(r.env, v, 1)
	if err := CheckStatusf(code, "clone retained exception"); err != nil {
		return nil, err
	}
	c.held.Store(&retained{abi: r.abi, env: r.env, ref: ref})
	return c, nil
}

// resolve returns the retained value of e under env. ok is false when e is
// self-contained.
func (e *Error) resolve(env hostbridge.Env) (v hostbridge.Value, ok bool, err error) {
	r := e.held.Load()
	if r == nil {
		return 0, false, nil
	}
	if r.env != env {
		return 0, true, Wrap(StatusInvalidArg, ErrEnvMismatch, ErrEnvMismatch.Error())
	}
	v, code := r.abi.GetReferenceValue(env, r.ref)
	if err := CheckStatusf(code, "get error from reference"); err != nil {
		return 0, true, err
	}
	return v, true, nil
}

// Value converts e to a host value: the retained value when present,
// otherwise a newly created generic error object.
func (e *Error) Value(abi hostbridge.ABI, env hostbridge.Env) (hostbridge.Value, error) {
	return NewJSError(e).Materialize(abi, env)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Reason != "" {
		return e.Status.String() + ", " + e.Reason
	}
	return e.Status.String()
}

// Unwrap returns the underlying native error, if any
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same status
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok && t != nil {
		return e.Status == t.Status
	}
	return false
}
