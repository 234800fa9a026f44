package renderer

import (
	"fmt"
	"sync"
)

// An Arena tracks allocations against a fixed byte budget. Named regions can
// be resized; the arena fails any request that would exceed its capacity.
type Arena struct {
	sync.Mutex

	capacity uint64
	used     uint64
	regions  map[string]uint64
}

// Create an arena with the given capacity in bytes.
func NewArena(capacity uint64) *Arena {
	return &Arena{
		capacity: capacity,
		regions:  make(map[string]uint64),
	}
}

// Reserve size bytes for the named region, replacing any previous reservation
// under the same name.
func (a *Arena) Reserve(name string, size uint64) error {
	a.Lock()
	defer a.Unlock()

	prev := a.regions[name]
	if a.used-prev+size > a.capacity {
		return fmt.Errorf("%w: region %q needs %d bytes; %d of %d bytes in use", ErrArenaExhausted, name, size, a.used-prev, a.capacity)
	}
	a.used = a.used - prev + size
	a.regions[name] = size
	return nil
}

// Release the named region.
func (a *Arena) Release(name string) {
	a.Lock()
	defer a.Unlock()
	a.used -= a.regions[name]
	delete(a.regions, name)
}

// Get the arena capacity in bytes.
func (a *Arena) Capacity() uint64 {
	return a.capacity
}

// Get the number of reserved bytes.
func (a *Arena) Used() uint64 {
	a.Lock()
	defer a.Unlock()
	return a.used
}
