// Package entity owns the module and vehicle collections. Modules live in a
// single arena and reference each other by index; vehicles are tracked by a
// slot + generation handle so a despawned-then-reused slot can never be
// mistaken for the original vehicle.
package entity

import (
	"math"

	"github.com/lst-cpp-project-2025-2026/parklogic/internal/module"
)

// Arena is the owned module collection. Modules are appended once at load
// time and never removed; all parent links are indices into the arena.
type Arena struct {
	modules []*module.Module
}

// NewArena wraps a generated module list.
func NewArena(mods []*module.Module) *Arena {
	return &Arena{modules: mods}
}

// Len returns the number of modules.
func (a *Arena) Len() int {
	return len(a.modules)
}

// Module returns the module at the given index, or nil if out of range.
func (a *Arena) Module(i int) *module.Module {
	if i < 0 || i >= len(a.modules) {
		return nil
	}
	return a.modules[i]
}

// Modules returns the arena contents for read-only enumeration.
func (a *Arena) Modules() []*module.Module {
	return a.modules
}

// Facilities returns the indices of all facility modules.
func (a *Arena) Facilities() []int {
	var out []int
	for i, m := range a.modules {
		if m.Kind.IsFacility() {
			out = append(out, i)
		}
	}
	return out
}

// PlainRoads returns the indices of all plain road segments. The off-map
// spawn/exit stubs are always plain roads.
func (a *Arena) PlainRoads() []int {
	var out []int
	for i, m := range a.modules {
		if m.Kind == module.KindRoad {
			out = append(out, i)
		}
	}
	return out
}

// BoundaryStubs returns the indices of the plain road segments forming the
// network's outer ends. An end whose outermost road is not a plain segment
// has no stub there and reports -1.
func (a *Arena) BoundaryStubs() (left, right int) {
	left, right = -1, -1
	for _, i := range a.PlainRoads() {
		m := a.modules[i]
		if left < 0 || m.MinX() < a.modules[left].MinX() {
			left = i
		}
		if right < 0 || m.MaxX() > a.modules[right].MaxX() {
			right = i
		}
	}
	if left < 0 {
		return -1, -1
	}

	const eps = 1e-9
	minX, maxX := a.RoadExtent()
	if a.modules[left].MinX() > minX+eps {
		left = -1
	}
	if a.modules[right].MaxX() < maxX-eps {
		right = -1
	}
	return left, right
}

// RoadExtent returns the horizontal extent covered by road modules, or
// (0, 0) if there are none.
func (a *Arena) RoadExtent() (minX, maxX float64) {
	minX = math.MaxFloat64
	maxX = -math.MaxFloat64
	found := false
	for _, m := range a.modules {
		if !m.Kind.IsRoad() {
			continue
		}
		found = true
		minX = math.Min(minX, m.MinX())
		maxX = math.Max(maxX, m.MaxX())
	}
	if !found {
		return 0, 0
	}
	return minX, maxX
}

// Path returns the legacy parent-recursive waypoint chain for the module at
// the given index: the hosting road's global waypoints followed by the
// module's own. Used as the planner's fallback.
func (a *Arena) Path(i int) []module.Waypoint {
	m := a.Module(i)
	if m == nil {
		return nil
	}
	var path []module.Waypoint
	if m.ParentIndex >= 0 && m.ParentIndex != i {
		path = a.Path(m.ParentIndex)
	}
	return append(path, m.GlobalWaypoints()...)
}
