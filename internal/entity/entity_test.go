package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lst-cpp-project-2025-2026/parklogic/internal/geo"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/module"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/vehicle"
)

func newTestVehicle() *vehicle.Vehicle {
	return vehicle.New(geo.Vec2{}, geo.Vec2{X: 1},
		vehicle.KindCombustion, vehicle.PriorityDistance, 50, true)
}

func TestRegistry_AddAndGet(t *testing.T) {
	r := NewRegistry()
	v := newTestVehicle()

	h := r.Add(v)
	got, ok := r.Get(h)
	require.True(t, ok)
	assert.Same(t, v, got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RemoveInvalidatesHandle(t *testing.T) {
	r := NewRegistry()
	h := r.Add(newTestVehicle())

	require.True(t, r.Remove(h))
	_, ok := r.Get(h)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())

	// Double remove is a no-op.
	assert.False(t, r.Remove(h))
}

func TestRegistry_StaleHandleAfterSlotReuse(t *testing.T) {
	r := NewRegistry()
	old := r.Add(newTestVehicle())
	require.True(t, r.Remove(old))

	// The slot is reused with a bumped generation.
	fresh := r.Add(newTestVehicle())
	assert.Equal(t, old.Slot, fresh.Slot)
	assert.NotEqual(t, old.Gen, fresh.Gen)

	_, ok := r.Get(old)
	assert.False(t, ok, "stale handle must not resolve to the new occupant")
	_, ok = r.Get(fresh)
	assert.True(t, ok)
}

func TestRegistry_VehiclesSnapshot(t *testing.T) {
	r := NewRegistry()
	a := newTestVehicle()
	b := newTestVehicle()
	r.Add(a)
	hb := r.Add(b)
	r.Remove(hb)

	vs := r.Vehicles()
	require.Len(t, vs, 1)
	assert.Same(t, a, vs[0])
}

func TestRegistry_ForEachSkipsRemoved(t *testing.T) {
	r := NewRegistry()
	r.Add(newTestVehicle())
	h := r.Add(newTestVehicle())
	r.Remove(h)

	visits := 0
	r.ForEach(func(h Handle, v *vehicle.Vehicle) {
		visits++
		got, ok := r.Get(h)
		require.True(t, ok)
		assert.Same(t, v, got)
	})
	assert.Equal(t, 1, visits)
}

func TestArena_ModuleOutOfRange(t *testing.T) {
	a := NewArena([]*module.Module{module.New(module.KindRoad, false)})
	assert.Nil(t, a.Module(-1))
	assert.Nil(t, a.Module(1))
	assert.NotNil(t, a.Module(0))
}

func TestArena_FacilitiesAndPlainRoads(t *testing.T) {
	mods := []*module.Module{
		module.New(module.KindRoad, false),
		module.New(module.KindRoadUp, false),
		module.New(module.KindParkingSmall, true),
		module.New(module.KindRoad, false),
	}
	a := NewArena(mods)

	assert.Equal(t, []int{2}, a.Facilities())
	assert.Equal(t, []int{0, 3}, a.PlainRoads())
}

func TestArena_BoundaryStubs(t *testing.T) {
	left := module.New(module.KindRoad, false)
	mid := module.New(module.KindRoadUp, false)
	mid.Origin = geo.Vec2{X: left.MaxX()}
	pad := module.New(module.KindRoad, false)
	pad.Origin = geo.Vec2{X: mid.MaxX()}
	outer := module.New(module.KindRoadUp, false)
	outer.Origin = geo.Vec2{X: pad.MaxX()}

	a := NewArena([]*module.Module{left, mid, pad, outer})
	l, r := a.BoundaryStubs()
	assert.Equal(t, 0, l)
	assert.Equal(t, -1, r, "outermost right road is an entrance, not a stub")

	// Close the right end with a stub.
	stub := module.New(module.KindRoad, false)
	stub.Origin = geo.Vec2{X: outer.MaxX()}
	a = NewArena([]*module.Module{left, mid, pad, outer, stub})
	l, r = a.BoundaryStubs()
	assert.Equal(t, 0, l)
	assert.Equal(t, 4, r)

	// No plain roads at all.
	l, r = NewArena([]*module.Module{module.New(module.KindParkingSmall, false)}).BoundaryStubs()
	assert.Equal(t, -1, l)
	assert.Equal(t, -1, r)
}

func TestArena_RoadExtent(t *testing.T) {
	r1 := module.New(module.KindRoad, false)
	r2 := module.New(module.KindRoad, false)
	r2.Origin = geo.Vec2{X: r1.Width}
	fac := module.New(module.KindParkingSmall, false)
	fac.Origin = geo.Vec2{X: 1000} // facilities do not extend the road span

	a := NewArena([]*module.Module{r1, r2, fac})
	minX, maxX := a.RoadExtent()
	assert.InDelta(t, 0.0, minX, 1e-9)
	assert.InDelta(t, r1.Width*2, maxX, 1e-9)
}

func TestArena_PathIncludesParentChain(t *testing.T) {
	road := module.New(module.KindRoadUp, false)
	fac := module.New(module.KindParkingSmall, true)
	fac.ParentIndex = 0

	a := NewArena([]*module.Module{road, fac})
	path := a.Path(1)

	// Hosting road's waypoint first, then the facility's own.
	require.Len(t, path, 2)
	assert.Equal(t, road.GlobalWaypoints()[0].Position, path[0].Position)
	assert.Equal(t, fac.GlobalWaypoints()[0].Position, path[1].Position)
}
