package resource

// Handle is an opaque reference to an entry in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Event types for lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
	EventRetained
	EventReleased
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	case EventRetained:
		return "retained"
	case EventReleased:
		return "released"
	}
	return "unknown"
}

// Event represents a lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	TypeID uint32
	Count  uint32 // retention count after the event
	Type   EventType
}

// Observer receives notifications about lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }

// Backend provides the underlying storage mechanism for entries.
type Backend interface {
	// Create stores a value and returns a handle.
	Create(typeID uint32, value any) (Handle, error)

	// Get retrieves a value by handle.
	Get(handle Handle) (any, bool)

	// Drop removes an entry and returns (value, true) if it was dropped.
	// Returns (nil, false) if handle is invalid or the entry is retained.
	Drop(handle Handle) (any, bool)

	// Close releases all entries held by the backend.
	Close() error
}

// CountingBackend extends Backend with retention counting.
type CountingBackend interface {
	Backend

	// Retain increments the retention count and returns the new count.
	Retain(handle Handle) (uint32, bool)

	// Release decrements the retention count and returns the new count.
	Release(handle Handle) (uint32, bool)

	// Count returns the current retention count.
	Count(handle Handle) (uint32, bool)
}

// Table manages entries with type information and observer support.
type Table interface {
	// Insert adds a value and returns its handle.
	Insert(typeID uint32, value any) Handle

	// Get retrieves a value by handle.
	Get(handle Handle) (any, bool)

	// GetTyped retrieves a value only if it matches the expected type.
	GetTyped(handle Handle, typeID uint32) (any, bool)

	// Remove drops an entry and returns (value, true) if it was dropped.
	Remove(handle Handle) (any, bool)

	// Retain increments the retention count of an entry.
	Retain(handle Handle) (uint32, bool)

	// Release decrements the retention count of an entry.
	Release(handle Handle) (uint32, bool)

	// Subscribe adds an observer for lifecycle events.
	Subscribe(Observer)

	// Unsubscribe removes an observer.
	Unsubscribe(Observer)

	// Len returns the number of live entries.
	Len() int

	// Clear drops all unretained entries.
	Clear()

	// Close releases all entries and stops accepting operations.
	Close() error
}

// Dropper is optionally implemented by values that need cleanup.
type Dropper interface {
	Drop()
}
