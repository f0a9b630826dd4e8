package errors

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge"
)

// CheckStatus turns a raw ABI result into an error with an empty reason.
func CheckStatus(code hostbridge.Code) error {
	if code == hostbridge.CodeOK {
		return nil
	}
	return FromStatus(StatusFromCode(code))
}

// CheckStatusf turns a raw ABI result into an error with a formatted reason.
func CheckStatusf(code hostbridge.Code, format string, args ...any) error {
	if code == hostbridge.CodeOK {
		return nil
	}
	return Newf(StatusFromCode(code), format, args...)
}

// CheckStatusAndType is CheckStatusf for argument validation: on failure the
// offending value is described (see DescribeValue) and substituted for the
// single %s in format.
func CheckStatusAndType(ins hostbridge.Inspector, env hostbridge.Env, code hostbridge.Code, v hostbridge.Value, format string) error {
	if code == hostbridge.CodeOK {
		return nil
	}
	desc, err := DescribeValue(ins, env, v)
	if err != nil {
		return err
	}
	return New(StatusFromCode(code), fmt.Sprintf(format, desc))
}

// CheckPendingException turns a raw ABI result into an error. When the
// result says an exception is pending, exactly one exception is taken from
// env and returned as a retained error, preserving its identity. Callers
// must return the error immediately.
func CheckPendingException(abi hostbridge.ABI, env hostbridge.Env, code hostbridge.Code) error {
	return checkPending(abi, env, code, "")
}

// CheckPendingExceptionf is CheckPendingException with a formatted reason
// for non-exception failures.
func CheckPendingExceptionf(abi hostbridge.ABI, env hostbridge.Env, code hostbridge.Code, format string, args ...any) error {
	if code == hostbridge.CodeOK {
		return nil
	}
	return checkPending(abi, env, code, fmt.Sprintf(format, args...))
}

func checkPending(abi hostbridge.ABI, env hostbridge.Env, code hostbridge.Code, reason string) error {
	switch code {
	case hostbridge.CodeOK:
		return nil
	case hostbridge.CodePendingException:
		v, c := abi.GetAndClearLastException(env)
		if c != hostbridge.CodeOK {
			// The exception is still pending; PendingException keeps it from
			// being overwritten by a later throw.
			Logger().Warn("get and clear last exception failed",
				zap.Uint32("env", uint32(env)),
				zap.Stringer("status", StatusFromCode(c)))
			return Newf(StatusPendingException, "get and clear last exception: %s", StatusFromCode(c))
		}
		e := FromValue(abi, env, v)
		if e.Retained() {
			e.Reason = reason
		}
		return e
	default:
		return New(StatusFromCode(code), reason)
	}
}
