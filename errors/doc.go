// Package errors provides the unified error value of the binding layer.
//
// An Error either stands on its own (a Status plus a reason) or retains a
// host-thrown value through a persistent reference. Retained errors are the
// authoritative form: materializing or throwing one hands back the exact
// host value that was captured, so host-side identity survives any number
// of native frames.
//
// Every ABI status is classified by the closed Status taxonomy:
//
//	err := errors.CheckStatus(code)                       // plain status check
//	err := errors.CheckPendingException(abi, env, code)   // captures a thrown value
//	err := errors.CheckStatusAndType(ins, env, code, v, "expect string, got %s")
//
// At the boundary back to the host an error is thrown through one of the
// four throwable variants:
//
//	errors.NewJSError(err).Throw(abi, env)
//	errors.NewJSTypeError(err).Throw(abi, env)
//	errors.NewJSRangeError(err).Throw(abi, env)
//	errors.NewJSSyntaxError(err).Throw(abi, env)
//
// Errors that retain a host value must be released exactly once:
//
//	defer err.Release()
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
