// Package vehicle implements per-vehicle kinematics and the behavior state
// machine. A vehicle consumes an ordered waypoint chain and advances itself
// once per simulation tick; everything else (spawning, facility selection,
// reservations) is driven from the traffic orchestrator.
package vehicle

import (
	"math"
	"math/rand"

	"github.com/lst-cpp-project-2025-2026/parklogic/internal/geo"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/module"
)

// Kind is the vehicle's drivetrain.
type Kind int

const (
	KindCombustion Kind = iota
	KindElectric
)

func (k Kind) String() string {
	if k == KindElectric {
		return "electric"
	}
	return "combustion"
}

// Priority is the facility-choice policy a vehicle spawns with.
type Priority int

const (
	PriorityDistance Priority = iota
	PriorityPrice
)

func (p Priority) String() string {
	if p == PriorityPrice {
		return "price"
	}
	return "distance"
}

// State is the behavior state machine: DRIVING -> ALIGNING -> PARKED ->
// EXITING -> removed.
type State int

const (
	StateDriving State = iota
	StateAligning
	StateParked
	StateExiting
)

func (s State) String() string {
	switch s {
	case StateDriving:
		return "driving"
	case StateAligning:
		return "aligning"
	case StateParked:
		return "parked"
	case StateExiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// Kinematic and steering constants, in meters and seconds.
const (
	DefaultMaxSpeed = 15.0
	DefaultMaxForce = 40.0

	avoidRadius     = 10.0 // neighbor detection range
	brakeForce      = 40.0
	separationForce = 35.0
	brakeMinSpeed   = 1.5 // below this, braking would just jitter

	wanderMinDist = 40.0
	wanderMaxDist = 70.0
)

// Dwell window for plain parking, seconds. Exit readiness is owned by the
// vehicle: it samples a dwell duration when it parks.
const (
	MinDwell = 20.0
	MaxDwell = 60.0
)

// wanderMargin keeps free-roam waypoints off the world border.
var wanderMargin = geo.P2M(50)

// Vehicle owns kinematic state, a behavior state and (for electric
// vehicles) a battery. The parked context references the facility by arena
// index so lifetime is never ambiguous.
type Vehicle struct {
	Position     geo.Vec2
	Velocity     geo.Vec2
	acceleration geo.Vec2

	MaxSpeed float64
	MaxForce float64

	State    State
	Kind     Kind
	Priority Priority

	// Battery percentage in [0, 100]; meaningful for electric vehicles only.
	Battery float64

	// EnteredLeft records the spawn side for the mirrored-entry exit policy.
	EnteredLeft bool

	// Parked context: arena index of the target facility and the reserved
	// spot index. Both are -1 whenever the vehicle holds no reservation.
	FacilityIndex int
	SpotIndex     int

	waypoints []module.Waypoint
	parkedFor float64
	dwell     float64
}

// New builds a vehicle at the given position with the default kinematic
// limits.
func New(pos, vel geo.Vec2, kind Kind, prio Priority, battery float64, enteredLeft bool) *Vehicle {
	return &Vehicle{
		Position:      pos,
		Velocity:      vel,
		MaxSpeed:      DefaultMaxSpeed,
		MaxForce:      DefaultMaxForce,
		State:         StateDriving,
		Kind:          kind,
		Priority:      prio,
		Battery:       clampBattery(battery),
		EnteredLeft:   enteredLeft,
		FacilityIndex: -1,
		SpotIndex:     -1,
	}
}

// SetPath replaces the pending waypoint queue.
func (v *Vehicle) SetPath(wps []module.Waypoint) {
	v.waypoints = append(v.waypoints[:0], wps...)
}

// ClearPath drops all pending waypoints.
func (v *Vehicle) ClearPath() {
	v.waypoints = v.waypoints[:0]
}

// Waypoints returns the pending waypoint queue, head first.
func (v *Vehicle) Waypoints() []module.Waypoint {
	return v.waypoints
}

// HasPath reports whether any waypoint is pending.
func (v *Vehicle) HasPath() bool {
	return len(v.waypoints) > 0
}

// HasAssignment reports whether the vehicle holds a facility target.
func (v *Vehicle) HasAssignment() bool {
	return v.FacilityIndex >= 0
}

// ClearAssignment invalidates the parked context.
func (v *Vehicle) ClearAssignment() {
	v.FacilityIndex = -1
	v.SpotIndex = -1
}

// ApplyForce accumulates a steering force into this tick's acceleration.
func (v *Vehicle) ApplyForce(f geo.Vec2) {
	v.acceleration = v.acceleration.Add(f)
}

// seek steers toward the target at the given speed cap, force-limited.
func (v *Vehicle) seek(target geo.Vec2, speedCap float64) {
	desired := target.Sub(v.Position).Normalize().Scale(speedCap)
	steer := desired.Sub(v.Velocity).Limit(v.MaxForce)
	v.ApplyForce(steer)
}

// Update advances the vehicle by dt seconds: waypoint seeking, local
// avoidance against neighbors, Euler integration, then acceleration reset.
// World bounds clamp the free-roam fallback only.
func (v *Vehicle) Update(dt float64, neighbors []*Vehicle, world module.World, rng *rand.Rand) {
	// Free-roam fallback: only outside the facility-assignment flow.
	if len(v.waypoints) == 0 && v.State == StateDriving && !v.HasAssignment() {
		v.wander(world, rng)
	}

	if len(v.waypoints) > 0 {
		head := v.waypoints[0]
		v.seek(head.Position, v.MaxSpeed*head.SpeedFactor)

		if v.Position.Distance(head.Position) < head.Tolerance {
			v.waypoints = v.waypoints[1:]
			if head.StopAtEnd {
				v.Velocity = geo.Vec2{}
				v.acceleration = geo.Vec2{}
			}
			if len(v.waypoints) == 0 && v.State == StateAligning {
				v.park(rng)
			}
		}
	} else {
		// Drag when idle.
		v.Velocity = v.Velocity.Scale(0.95)
	}

	v.avoid(neighbors)

	v.Velocity = v.Velocity.Add(v.acceleration.Scale(dt)).Limit(v.MaxSpeed)
	v.Position = v.Position.Add(v.Velocity.Scale(dt))
	v.acceleration = geo.Vec2{}
}

// wander queues a random nearby waypoint clamped to the world bounds.
func (v *Vehicle) wander(world module.World, rng *rand.Rand) {
	dist := wanderMinDist + rng.Float64()*(wanderMaxDist-wanderMinDist)
	angle := rng.Float64() * 2 * math.Pi
	next := v.Position.Add(geo.FromAngle(angle).Scale(dist))

	next.X = math.Max(wanderMargin, math.Min(world.Width-wanderMargin, next.X))
	next.Y = math.Max(wanderMargin, math.Min(world.Height-wanderMargin, next.Y))

	v.waypoints = append(v.waypoints, module.NewWaypoint(next, 7.0))
}

// avoid applies braking plus separation against neighbors inside the
// detection range. Parked vehicles neither brake nor push.
func (v *Vehicle) avoid(neighbors []*Vehicle) {
	if v.State == StateParked {
		return
	}
	for _, other := range neighbors {
		if other == v {
			continue
		}
		dist := v.Position.Distance(other.Position)
		if dist >= avoidRadius {
			continue
		}

		if v.Velocity.Length() > brakeMinSpeed {
			heading := v.Velocity.Normalize()
			v.ApplyForce(heading.Scale(-brakeForce))
		}

		push := v.Position.Sub(other.Position).Normalize()
		strength := separationForce * (1.0 - dist/avoidRadius)
		v.ApplyForce(push.Scale(strength))
	}
}

// park enters PARKED and samples the dwell duration for the plain-parking
// exit check.
func (v *Vehicle) park(rng *rand.Rand) {
	v.State = StateParked
	v.Velocity = geo.Vec2{}
	v.acceleration = geo.Vec2{}
	v.parkedFor = 0
	v.dwell = MinDwell + rng.Float64()*(MaxDwell-MinDwell)
}

// TickParked accrues parked time.
func (v *Vehicle) TickParked(dt float64) {
	v.parkedFor += dt
}

// DwellElapsed reports whether the sampled dwell window has run out.
func (v *Vehicle) DwellElapsed() bool {
	return v.parkedFor >= v.dwell
}

// Charge accrues battery at the given rate (percent per second), clamped to
// [0, 100].
func (v *Vehicle) Charge(rate, dt float64) {
	v.Battery = clampBattery(v.Battery + rate*dt)
}

func clampBattery(b float64) float64 {
	return math.Max(0, math.Min(100, b))
}
