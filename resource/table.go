package resource

import (
	"sync"
)

// UnifiedTable implements the Table interface using a LocalBackend for storage.
type UnifiedTable struct {
	backend   *LocalBackend
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
	closeMu   sync.RWMutex
}

// NewTable creates a new unified table with a LocalBackend.
func NewTable() *UnifiedTable {
	return &UnifiedTable{
		backend: NewLocalBackend(),
	}
}

// Insert adds a value and returns its handle, or 0 once the table is closed.
func (t *UnifiedTable) Insert(typeID uint32, value any) Handle {
	t.closeMu.RLock()
	if t.closed {
		t.closeMu.RUnlock()
		return 0
	}
	t.closeMu.RUnlock()

	handle, err := t.backend.Create(typeID, value)
	if err != nil {
		return 0
	}

	t.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})

	return handle
}

// Get retrieves a value by handle.
func (t *UnifiedTable) Get(handle Handle) (any, bool) {
	return t.backend.Get(handle)
}

// GetTyped retrieves a value only if it matches the expected type.
func (t *UnifiedTable) GetTyped(handle Handle, typeID uint32) (any, bool) {
	actualTypeID, ok := t.backend.TypeID(handle)
	if !ok || actualTypeID != typeID {
		return nil, false
	}
	return t.backend.Get(handle)
}

// Remove drops an unretained entry and returns (value, true) if it was dropped.
func (t *UnifiedTable) Remove(handle Handle) (any, bool) {
	typeID, _ := t.backend.TypeID(handle)
	value, ok := t.backend.Drop(handle)
	if !ok {
		return nil, false
	}

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:   EventDropped,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})

	return value, true
}

// Retain increments the retention count of an entry.
func (t *UnifiedTable) Retain(handle Handle) (uint32, bool) {
	count, ok := t.backend.Retain(handle)
	if !ok {
		return 0, false
	}
	typeID, _ := t.backend.TypeID(handle)
	t.notify(Event{
		Type:   EventRetained,
		Handle: handle,
		TypeID: typeID,
		Count:  count,
	})
	return count, true
}

// Release decrements the retention count of an entry.
func (t *UnifiedTable) Release(handle Handle) (uint32, bool) {
	count, ok := t.backend.Release(handle)
	if !ok {
		return 0, false
	}
	typeID, _ := t.backend.TypeID(handle)
	t.notify(Event{
		Type:   EventReleased,
		Handle: handle,
		TypeID: typeID,
		Count:  count,
	})
	return count, true
}

// Count returns the retention count of an entry.
func (t *UnifiedTable) Count(handle Handle) (uint32, bool) {
	return t.backend.Count(handle)
}

// Subscribe adds an observer for lifecycle events.
func (t *UnifiedTable) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *UnifiedTable) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live entries.
func (t *UnifiedTable) Len() int {
	return t.backend.Len()
}

// Each iterates over all live entries.
func (t *UnifiedTable) Each(fn func(Handle, uint32, any) bool) {
	t.backend.Each(fn)
}

// Clear drops all unretained entries.
func (t *UnifiedTable) Clear() {
	// Collect handles first to avoid holding lock during Remove
	var handles []Handle
	t.backend.Each(func(h Handle, typeID uint32, value any) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Remove(h)
	}
}

// Close releases all entries and stops accepting operations.
func (t *UnifiedTable) Close() error {
	t.closeMu.Lock()
	t.closed = true
	t.closeMu.Unlock()

	return t.backend.Close()
}

// Backend returns the underlying backend.
func (t *UnifiedTable) Backend() CountingBackend {
	return t.backend
}

func (t *UnifiedTable) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
