package resource

import (
	"errors"
	"sync"
)

var (
	ErrClosed   = errors.New("resource backend closed")
	ErrRetained = errors.New("cannot drop retained entry")
	ErrFull     = errors.New("resource backend full")
)

// A handle packs a 1-based slot index in its low bits and the slot's
// generation in its high bits. Dropping an entry bumps the generation, so
// a stale handle never resolves to the entry that later reuses its slot.
// A slot whose generation is exhausted is retired instead of reused.
const (
	slotBits = 24
	slotMask = 1<<slotBits - 1
	maxSlots = slotMask

	maxGeneration = 1<<(32-slotBits) - 1
)

func makeHandle(slot int, gen uint8) Handle {
	return Handle(uint32(gen)<<slotBits | uint32(slot+1))
}

// SlotOf returns the 0-based slot index encoded in h.
func SlotOf(h Handle) int {
	return int(h&slotMask) - 1
}

// GenerationOf returns the slot generation encoded in h.
func GenerationOf(h Handle) uint8 {
	return uint8(h >> slotBits)
}

// LocalBackend is an in-memory backend with retention counting.
// Implements both Backend and CountingBackend interfaces.
type LocalBackend struct {
	entries  []entry
	freeList []int
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	value  any
	typeID uint32
	count  uint32
	gen    uint8
	valid  bool
}

// NewLocalBackend creates a new in-memory backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		entries:  make([]entry, 0, 64),
		freeList: make([]int, 0, 16),
	}
}

// Create stores a value and returns a handle.
func (b *LocalBackend) Create(typeID uint32, value any) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	if n := len(b.freeList); n > 0 {
		slot := b.freeList[n-1]
		b.freeList = b.freeList[:n-1]
		e := &b.entries[slot]
		*e = entry{typeID: typeID, value: value, gen: e.gen, valid: true}
		return makeHandle(slot, e.gen), nil
	}

	if len(b.entries) >= maxSlots {
		return 0, ErrFull
	}
	b.entries = append(b.entries, entry{typeID: typeID, value: value, valid: true})
	return makeHandle(len(b.entries)-1, 0), nil
}

// lookup returns the live entry for handle. Callers hold b.mu.
func (b *LocalBackend) lookup(handle Handle) *entry {
	slot := SlotOf(handle)
	if slot < 0 || slot >= len(b.entries) {
		return nil
	}
	e := &b.entries[slot]
	if !e.valid || e.gen != GenerationOf(handle) {
		return nil
	}
	return e
}

// Get retrieves a value by handle.
func (b *LocalBackend) Get(handle Handle) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e := b.lookup(handle)
	if e == nil {
		return nil, false
	}
	return e.value, true
}

// Drop removes an entry and returns (value, true) if it was dropped.
func (b *LocalBackend) Drop(handle Handle) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.lookup(handle)
	if e == nil || e.count > 0 {
		return nil, false
	}

	value := e.value
	if e.gen == maxGeneration {
		// Retired: reusing the slot would wrap the generation and let
		// stale handles resolve again.
		*e = entry{gen: e.gen}
		return value, true
	}
	*e = entry{gen: e.gen + 1}
	b.freeList = append(b.freeList, SlotOf(handle))

	return value, true
}

// Close releases all entries, retained or not.
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for i := range b.entries {
		if b.entries[i].valid {
			if d, ok := b.entries[i].value.(Dropper); ok {
				d.Drop()
			}
			b.entries[i] = entry{}
		}
	}

	b.entries = nil
	b.freeList = nil
	return nil
}

// Retain increments the retention count for a handle.
func (b *LocalBackend) Retain(handle Handle) (uint32, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.lookup(handle)
	if e == nil {
		return 0, false
	}
	e.count++
	return e.count, true
}

// Release decrements the retention count for a handle.
func (b *LocalBackend) Release(handle Handle) (uint32, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.lookup(handle)
	if e == nil || e.count == 0 {
		return 0, false
	}
	e.count--
	return e.count, true
}

// Count returns the retention count for a handle.
func (b *LocalBackend) Count(handle Handle) (uint32, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e := b.lookup(handle)
	if e == nil {
		return 0, false
	}
	return e.count, true
}

// TypeID returns the type ID for a handle.
func (b *LocalBackend) TypeID(handle Handle) (uint32, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e := b.lookup(handle)
	if e == nil {
		return 0, false
	}
	return e.typeID, true
}

// Len returns the number of live entries.
func (b *LocalBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, e := range b.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Each iterates over all live entries.
func (b *LocalBackend) Each(fn func(Handle, uint32, any) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i, e := range b.entries {
		if e.valid {
			if !fn(makeHandle(i, e.gen), e.typeID, e.value) {
				break
			}
		}
	}
}
