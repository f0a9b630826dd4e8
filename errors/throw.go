package errors

import (
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge"
)

// ThrowableKind selects the host constructor used to materialize an error.
type ThrowableKind uint8

const (
	KindError ThrowableKind = iota
	KindTypeError
	KindRangeError
	KindSyntaxError
)

var kindNames = [...]string{
	KindError:       "Error",
	KindTypeError:   "TypeError",
	KindRangeError:  "RangeError",
	KindSyntaxError: "SyntaxError",
}

func (k ThrowableKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

type constructor func(abi hostbridge.ABI, env hostbridge.Env, code, msg hostbridge.Value) (hostbridge.Value, hostbridge.Code)

var constructors = [...]constructor{
	KindError:       hostbridge.ABI.CreateError,
	KindTypeError:   hostbridge.ABI.CreateTypeError,
	KindRangeError:  hostbridge.ABI.CreateRangeError,
	KindSyntaxError: hostbridge.ABI.CreateSyntaxError,
}

// Throwable is an error prepared for delivery to the host as an exception.
type Throwable interface {
	// Kind reports which host constructor builds the exception.
	Kind() ThrowableKind

	// Err returns the wrapped error.
	Err() *Error

	// Materialize returns the host exception object.
	Materialize(abi hostbridge.ABI, env hostbridge.Env) (hostbridge.Value, error)

	// Throw materializes the exception and makes it pending in env.
	Throw(abi hostbridge.ABI, env hostbridge.Env) error

	// Unknown materializes the exception as an opaque value.
	Unknown(abi hostbridge.ABI, env hostbridge.Env) (hostbridge.Unknown, error)
}

type throwable struct {
	err  *Error
	kind ThrowableKind
}

func newThrowable(err *Error, kind ThrowableKind) throwable {
	if err == nil {
		err = FromStatus(StatusGenericFailure)
	}
	return throwable{err: err, kind: kind}
}

func (t throwable) Kind() ThrowableKind { return t.kind }

func (t throwable) Err() *Error { return t.err }

// Materialize returns the retained value unchanged when there is one.
// Otherwise it builds a new exception whose code is the status name and
// whose message is the reason.
func (t throwable) Materialize(abi hostbridge.ABI, env hostbridge.Env) (hostbridge.Value, error) {
	if v, ok, err := t.err.resolve(env); ok {
		return v, err
	}

	code, c := abi.CreateStringUTF8(env, []byte(t.err.Status.String()))
	if err := CheckStatusf(c, "create %s code", t.kind); err != nil {
		return 0, err
	}
	msg, c := abi.CreateStringUTF8(env, []byte(t.err.Reason))
	if err := CheckStatusf(c, "create %s message", t.kind); err != nil {
		return 0, err
	}
	v, c := constructors[t.kind](abi, env, code, msg)
	if err := CheckStatusf(c, "create %s", t.kind); err != nil {
		return 0, err
	}
	return v, nil
}

// Throw does nothing for PendingException errors: the host already holds
// an exception and throwing again would replace it.
func (t throwable) Throw(abi hostbridge.ABI, env hostbridge.Env) error {
	if t.err.Status == StatusPendingException {
		return nil
	}
	v, err := t.Materialize(abi, env)
	if err != nil {
		return err
	}
	if err := CheckStatusf(abi.Throw(env, v), "throw %s", t.kind); err != nil {
		Logger().Warn("throw failed",
			zap.Stringer("kind", t.kind),
			zap.Stringer("status", t.err.Status),
			zap.String("reason", t.err.Reason),
			zap.Error(err))
		return err
	}
	return nil
}

func (t throwable) Unknown(abi hostbridge.ABI, env hostbridge.Env) (hostbridge.Unknown, error) {
	v, err := t.Materialize(abi, env)
	if err != nil {
		return hostbridge.Unknown{}, err
	}
	return hostbridge.Unknown{Env: env, Value: v}, nil
}

// JSError materializes as a generic host Error.
type JSError struct{ throwable }

// JSTypeError materializes as a host TypeError.
type JSTypeError struct{ throwable }

// JSRangeError materializes as a host RangeError.
type JSRangeError struct{ throwable }

// JSSyntaxError materializes as a host SyntaxError.
type JSSyntaxError struct{ throwable }

func NewJSError(err *Error) JSError { return JSError{newThrowable(err, KindError)} }

func NewJSTypeError(err *Error) JSTypeError { return JSTypeError{newThrowable(err, KindTypeError)} }

func NewJSRangeError(err *Error) JSRangeError { return JSRangeError{newThrowable(err, KindRangeError)} }

func NewJSSyntaxError(err *Error) JSSyntaxError {
	return JSSyntaxError{newThrowable(err, KindSyntaxError)}
}

// NewThrowable wraps err in the variant selected by kind.
func NewThrowable(err *Error, kind ThrowableKind) Throwable {
	switch kind {
	case KindTypeError:
		return NewJSTypeError(err)
	case KindRangeError:
		return NewJSRangeError(err)
	case KindSyntaxError:
		return NewJSSyntaxError(err)
	default:
		return NewJSError(err)
	}
}

// Raise is the boundary step for a failed native call: it converts err,
// throws it into env as a generic Error and releases any retained value.
// It returns the converted error, or the throw failure if throwing failed.
func Raise(abi hostbridge.ABI, env hostbridge.Env, err error) error {
	if err == nil {
		return nil
	}
	e := FromError(err)
	defer e.Release()
	if terr := NewJSError(e).Throw(abi, env); terr != nil {
		return terr
	}
	Logger().Debug("raised native failure",
		zap.Uint32("env", uint32(env)),
		zap.Stringer("status", e.Status),
		zap.Bool("retained", e.Retained()))
	return e
}
