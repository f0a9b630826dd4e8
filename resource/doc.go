// Package resource provides reference-counted handle tables.
//
// Host runtimes hand out small integer handles for values, persistent
// references and execution contexts. This package maps those handles to Go
// values and tracks how many holders keep each entry alive.
//
// # Handle Table
//
// The UnifiedTable maps integer handles to Go values:
//
//	table := resource.NewTable()
//
//	// Insert a value, get a handle
//	handle := table.Insert(typeID, myValue)
//
//	// Retrieve value by handle
//	value, ok := table.Get(handle)
//
//	// Remove and get value
//	value, ok := table.Remove(handle)
//
// # Retention
//
// An entry with a non-zero retention count cannot be removed:
//
//	table.Retain(handle)       // count 1
//	table.Remove(handle)       // fails, entry is retained
//	table.Release(handle)      // count 0
//	table.Remove(handle)       // succeeds
//
// # Stale Handles
//
// Slots are reused after Remove, but each reuse bumps the slot's
// generation, which is encoded in the handle. A handle kept past its
// entry's removal stops resolving instead of aliasing the new entry.
// Once a slot's generation is exhausted the slot is retired and never
// handed out again.
//
// # Type Safety
//
// Handles are typed - each kind of entry gets a unique type ID:
//
//	value, ok := table.GetTyped(handle, ValueTypeID) // ok
//	value, ok := table.GetTyped(handle, RefTypeID)   // !ok
//
// # Observers
//
// Register observers to track lifecycle events:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    if e.Type == resource.EventDropped {
//	        log.Printf("handle %d dropped", e.Handle)
//	    }
//	}))
//
// Entries are not garbage collected. The owner must call Remove, or Close
// to drop everything at once.
package resource
