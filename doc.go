// Package hostbridge provides the error-bridging core of a native-extension
// binding layer.
//
// A native extension talks to a managed host runtime through a small ABI
// that reports failures as numeric status codes, while the host itself
// raises and propagates thrown exception objects. This module reconciles
// the two models into one error value that native code can propagate and
// that can be turned back into a host exception at the boundary.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	hostbridge/          Root package with the host ABI surface and handle types
//	├── errors/          Error value, status taxonomy, throwables, check combinators
//	├── resource/        Reference-counted handle table implementation
//	├── hostvm/          In-memory host runtime implementing the ABI
//	├── engine/          wazero integration exposing the ABI to WASM guests
//	└── cmd/napistat/    CLI for inspecting statuses and thrown exceptions
//
// # Quick Start
//
// Turn a failed ABI call into an error, propagate it, throw it at the boundary:
//
//	func readName(abi hostbridge.ABI, env hostbridge.Env) error {
//	    v, code := abi.CreateStringUTF8(env, []byte("name"))
//	    if err := errors.CheckPendingException(abi, env, code); err != nil {
//	        return err
//	    }
//	    _ = v
//	    return nil
//	}
//
//	// At the boundary, throw the failure into env and release it.
//	if err := readName(abi, env); err != nil {
//	    errors.Raise(abi, env, err)
//	}
//
// # Thread Safety
//
// Handles are plain integers and may be moved between goroutines as data.
// Every call that dereferences a handle must run on the goroutine that owns
// the handle's execution context; the core performs no locking of its own.
//
// # Retained Exceptions
//
// An error created from a host value holds a persistent reference to it.
// That reference is released exactly once by Error.Release. Forgetting to
// call Release leaks the value inside the host runtime.
package hostbridge
