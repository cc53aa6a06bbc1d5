package entity

import (
	"sync"

	"github.com/lst-cpp-project-2025-2026/parklogic/internal/vehicle"
)

// Handle identifies a vehicle by slot and generation. A handle is valid only
// while the slot's generation matches; removal bumps the generation.
type Handle struct {
	Slot int
	Gen  uint32
}

type slotEntry struct {
	gen uint32
	veh *vehicle.Vehicle
}

// Registry tracks live vehicles. The simulation is single-threaded, but the
// registry keeps a mutex so telemetry readers can snapshot it safely.
type Registry struct {
	mu    sync.Mutex
	slots []slotEntry
	free  []int
	count int
}

// NewRegistry builds an empty vehicle registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add stores a vehicle and returns its handle.
func (r *Registry) Add(v *vehicle.Vehicle) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	var slot int
	if n := len(r.free); n > 0 {
		slot = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		slot = len(r.slots)
		r.slots = append(r.slots, slotEntry{})
	}
	r.slots[slot].veh = v
	r.count++
	return Handle{Slot: slot, Gen: r.slots[slot].gen}
}

// Get returns the vehicle for a handle, or false if the handle is stale or
// never existed.
func (r *Registry) Get(h Handle) (*vehicle.Vehicle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h.Slot < 0 || h.Slot >= len(r.slots) {
		return nil, false
	}
	e := r.slots[h.Slot]
	if e.veh == nil || e.gen != h.Gen {
		return nil, false
	}
	return e.veh, true
}

// Remove despawns the vehicle behind a handle. The slot's generation is
// bumped so outstanding handles go stale immediately.
func (r *Registry) Remove(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h.Slot < 0 || h.Slot >= len(r.slots) {
		return false
	}
	e := &r.slots[h.Slot]
	if e.veh == nil || e.gen != h.Gen {
		return false
	}
	e.veh = nil
	e.gen++
	r.free = append(r.free, h.Slot)
	r.count--
	return true
}

// Len returns the number of live vehicles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Vehicles returns a snapshot of the live vehicles in slot order.
func (r *Registry) Vehicles() []*vehicle.Vehicle {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*vehicle.Vehicle, 0, r.count)
	for _, e := range r.slots {
		if e.veh != nil {
			out = append(out, e.veh)
		}
	}
	return out
}

// ForEach visits every live vehicle in slot order.
func (r *Registry) ForEach(fn func(Handle, *vehicle.Vehicle)) {
	r.mu.Lock()
	snapshot := make([]struct {
		h Handle
		v *vehicle.Vehicle
	}, 0, r.count)
	for i, e := range r.slots {
		if e.veh != nil {
			snapshot = append(snapshot, struct {
				h Handle
				v *vehicle.Vehicle
			}{Handle{Slot: i, Gen: e.gen}, e.veh})
		}
	}
	r.mu.Unlock()

	for _, s := range snapshot {
		fn(s.h, s.v)
	}
}
