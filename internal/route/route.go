// Package route turns a facility/spot assignment into an ordered waypoint
// chain. Routes follow right-hand traffic: the lane closer to the bottom of
// the road art carries rightward travel, the upper lane leftward travel.
package route

import (
	"log/slog"
	"math"

	"github.com/lst-cpp-project-2025-2026/parklogic/internal/entity"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/geo"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/module"
)

const (
	// junctionCenterPx is the entrance junction X within an entrance road's
	// art.
	junctionCenterPx = 142.0

	// sideOffsetPx keeps turning vehicles on their side of the junction and
	// driveway.
	sideOffsetPx = 18.0

	// Lane center offsets from the road art's top edge.
	laneOffsetUpPx   = 61.0
	laneOffsetDownPx = 94.0

	// alignPullBack is the straight run-in in front of a spot, meters.
	alignPullBack = 8.0

	// Waypoint tolerances tighten along the approach.
	roadTolerance  = 2.5
	entryTolerance = 1.5
	alignTolerance = 1.0
	spotTolerance  = 0.2

	// Facility interiors are slow zones.
	drivewaySpeedFactor = 0.5
	parkingSpeedFactor  = 0.3

	// ExitMargin is how far beyond the road network an exit route ends.
	// Vehicles past this margin are off the map and despawn.
	ExitMargin = 30.0
)

// Planner builds waypoint chains against a fixed arena.
type Planner struct {
	arena *entity.Arena
	log   *slog.Logger
}

// NewPlanner creates a Planner over the given arena.
func NewPlanner(arena *entity.Arena, log *slog.Logger) *Planner {
	return &Planner{arena: arena, log: log}
}

// laneYPx selects the lane center for a travel direction.
func laneYPx(travelingRight bool) float64 {
	if travelingRight {
		return laneOffsetDownPx
	}
	return laneOffsetUpPx
}

// laneY resolves a lane offset to a world Y using any road's top edge. All
// roads share the spine, so the first one found is as good as any.
func (p *Planner) laneY(lanePx float64) float64 {
	for _, m := range p.arena.Modules() {
		if m.Kind.IsRoad() {
			return m.Origin.Y + geo.P2M(lanePx)
		}
	}
	return geo.P2M(lanePx)
}

// Approach plans the route from a vehicle's current travel direction into
// the given spot: junction turn-in, facility entrance, alignment run-in,
// then the spot itself as a stop waypoint.
func (p *Planner) Approach(facilityIndex int, spot module.Spot, velocity geo.Vec2) []module.Waypoint {
	fac := p.arena.Module(facilityIndex)
	if fac == nil || !fac.Kind.IsFacility() {
		p.log.Error("approach requested for non-facility module", "index", facilityIndex)
		return nil
	}

	travelingRight := velocity.X >= 0
	dir := -1.0
	if travelingRight {
		dir = 1.0
	}

	var path []module.Waypoint

	road := p.arena.Module(fac.ParentIndex)
	if road != nil && road.Kind.IsRoad() {
		// Turn-in point: just short of the junction center, on the lane the
		// vehicle is already driving.
		junction := geo.Vec2{
			X: road.Origin.X + geo.P2M(junctionCenterPx) - dir*geo.P2M(sideOffsetPx),
			Y: road.Origin.Y + geo.P2M(laneYPx(travelingRight)),
		}
		path = append(path, module.NewWaypoint(junction, roadTolerance))

		path = append(path, p.facilityEntry(fac))
	} else {
		// No hosting road on record; fall back to the parent-recursive
		// structural chain.
		p.log.Warn("facility has no hosting road, using structural path",
			"index", facilityIndex, "parent", fac.ParentIndex)
		path = append(path, p.arena.Path(facilityIndex)...)
	}

	path = append(path, p.spotRunIn(fac, spot)...)
	return path
}

// facilityEntry places the driveway waypoint: the facility's structural
// waypoint shifted to the entering vehicle's side of the driveway.
func (p *Planner) facilityEntry(fac *module.Module) module.Waypoint {
	wps := fac.GlobalWaypoints()
	if len(wps) == 0 {
		p.log.Error("facility has no structural waypoint", "kind", fac.Kind.String())
		return module.NewWaypoint(fac.Origin, entryTolerance)
	}

	pos := wps[0].Position
	// Entering a top facility means driving up (-Y); right-hand side of that
	// heading is +X. A bottom facility mirrors it.
	if fac.IsTop {
		pos.X += geo.P2M(sideOffsetPx)
	} else {
		pos.X -= geo.P2M(sideOffsetPx)
	}

	wp := module.NewWaypoint(pos, entryTolerance)
	wp.SpeedFactor = drivewaySpeedFactor
	return wp
}

// spotRunIn produces the final two waypoints: the alignment point in front
// of the spot and the spot itself. The spot waypoint stops the vehicle and
// carries the spot ID and parking heading.
func (p *Planner) spotRunIn(fac *module.Module, spot module.Spot) []module.Waypoint {
	target := fac.Origin.Add(spot.Local)

	// Spot orientation points out of the spot toward the driveway, so the
	// run-in starts on the driveway side and the vehicle parks heading the
	// opposite way.
	align := module.NewWaypoint(
		target.Add(geo.FromAngle(spot.Orientation).Scale(alignPullBack)),
		alignTolerance,
	)
	align.SpeedFactor = parkingSpeedFactor

	stop := module.Waypoint{
		Position:    target,
		Tolerance:   spotTolerance,
		ID:          spot.ID,
		EntryAngle:  spot.Orientation + math.Pi,
		StopAtEnd:   true,
		SpeedFactor: parkingSpeedFactor,
	}

	return []module.Waypoint{align, stop}
}

// Exit plans the route out of a spot and off the map: back out to the
// alignment point, down the driveway, through the junction onto the lane
// for the chosen direction, then past the road network by ExitMargin.
func (p *Planner) Exit(facilityIndex int, spot module.Spot, exitLeft bool) []module.Waypoint {
	fac := p.arena.Module(facilityIndex)
	if fac == nil || !fac.Kind.IsFacility() {
		p.log.Error("exit requested for non-facility module", "index", facilityIndex)
		return nil
	}

	target := fac.Origin.Add(spot.Local)

	var path []module.Waypoint

	align := module.NewWaypoint(
		target.Add(geo.FromAngle(spot.Orientation).Scale(alignPullBack)),
		alignTolerance,
	)
	align.SpeedFactor = parkingSpeedFactor
	path = append(path, align)

	if wps := fac.GlobalWaypoints(); len(wps) > 0 {
		pos := wps[0].Position
		// Leaving mirrors entering: the outbound side of the driveway is
		// the opposite of the entry shift.
		if fac.IsTop {
			pos.X -= geo.P2M(sideOffsetPx)
		} else {
			pos.X += geo.P2M(sideOffsetPx)
		}
		exit := module.NewWaypoint(pos, entryTolerance)
		exit.SpeedFactor = drivewaySpeedFactor
		path = append(path, exit)
	}

	travelingRight := !exitLeft
	dir := -1.0
	if travelingRight {
		dir = 1.0
	}

	if road := p.arena.Module(fac.ParentIndex); road != nil && road.Kind.IsRoad() {
		junction := geo.Vec2{
			X: road.Origin.X + geo.P2M(junctionCenterPx) + dir*geo.P2M(sideOffsetPx),
			Y: road.Origin.Y + geo.P2M(laneYPx(travelingRight)),
		}
		path = append(path, module.NewWaypoint(junction, roadTolerance))
	}

	path = append(path, p.offMap(exitLeft))
	return path
}

// ThroughTraffic plans a single waypoint straight across the map for
// vehicles with no assignment.
func (p *Planner) ThroughTraffic(enteredLeft bool) []module.Waypoint {
	return []module.Waypoint{p.offMap(!enteredLeft)}
}

// SpawnPoint returns the position and velocity for a vehicle entering from
// the chosen side: the outer end of that side's boundary stub, on the lane
// for its travel direction, already at speed. Without a stub on that side
// the road extent stands in.
func (p *Planner) SpawnPoint(enteredLeft bool, speed float64) (pos, vel geo.Vec2) {
	leftStub, rightStub := p.arena.BoundaryStubs()
	minX, maxX := p.arena.RoadExtent()

	if enteredLeft {
		x := minX
		if stub := p.arena.Module(leftStub); stub != nil {
			x = stub.MinX()
		}
		pos = geo.Vec2{X: x, Y: p.laneY(laneYPx(true))}
		vel = geo.Vec2{X: speed}
		return pos, vel
	}
	x := maxX
	if stub := p.arena.Module(rightStub); stub != nil {
		x = stub.MaxX()
	}
	pos = geo.Vec2{X: x, Y: p.laneY(laneYPx(false))}
	vel = geo.Vec2{X: -speed}
	return pos, vel
}

// offMap builds the terminal waypoint past the road network on the correct
// lane for the travel direction.
func (p *Planner) offMap(exitLeft bool) module.Waypoint {
	minX, maxX := p.arena.RoadExtent()

	travelingRight := !exitLeft
	x := maxX + ExitMargin
	if exitLeft {
		x = minX - ExitMargin
	}
	return module.NewWaypoint(
		geo.Vec2{X: x, Y: p.laneY(laneYPx(travelingRight))},
		roadTolerance,
	)
}
