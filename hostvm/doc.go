// Package hostvm provides an in-memory host runtime implementing
// hostbridge.ABI and hostbridge.Inspector.
//
// The VM models the parts of a managed host that the error core talks to:
// execution contexts with a single pending-exception slot, primitive and
// object values, error objects of the four standard kinds, functions whose
// callbacks may throw, and persistent references that keep values alive.
//
//	vm := hostvm.New()
//	defer vm.Close()
//
//	env := vm.NewEnv()
//	boom := vm.NewError(env, hostvm.KindError, "boom")
//	vm.Throw(env, boom)
//
// Every handle is stored in a resource.UnifiedTable. Values stay alive
// until Sweep (the end of a handle scope) or CloseEnv; a value held by a
// persistent reference survives Sweep.
//
// For tests the VM keeps a ledger of ABI calls (Calls, TotalCalls) and can
// fail the next call of an operation with a chosen code (FailNext).
package hostvm
