package traffic

import (
	"log/slog"
	"math/rand"

	"github.com/lst-cpp-project-2025-2026/parklogic/internal/bus"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/entity"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/module"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/route"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/vehicle"
)

// Params tunes the fleet policy. Battery thresholds are percentages.
type Params struct {
	// Electric vehicles below SeekChargingLow always head for a charger;
	// above SeekChargingHigh never. Between the two the skip probability
	// rises linearly with charge.
	SeekChargingLow  float64
	SeekChargingHigh float64

	// Charging vehicles leave no later than ForceExitBattery. From
	// ExitMinBattery upward they leave early with probability
	// (battery - ExitMinBattery) * ExitProbPerPercent per second.
	ForceExitBattery   float64
	ExitMinBattery     float64
	ExitProbPerPercent float64

	// ChargeRate is battery percent gained per second on a charger.
	ChargeRate float64

	// Fleet mix.
	ElectricShare    float64
	PriceSeekerShare float64

	// SpawnSpeed is the entry speed on the boundary stub.
	SpawnSpeed float64

	// Initial battery is uniform in [BatteryMin, BatteryMax].
	BatteryMin float64
	BatteryMax float64
}

// DefaultParams returns the standard fleet policy.
func DefaultParams() Params {
	return Params{
		SeekChargingLow:    30.0,
		SeekChargingHigh:   80.0,
		ForceExitBattery:   95.0,
		ExitMinBattery:     80.0,
		ExitProbPerPercent: 0.05,
		ChargeRate:         5.0,
		ElectricShare:      0.4,
		PriceSeekerShare:   0.3,
		SpawnSpeed:         vehicle.DefaultMaxSpeed,
		BatteryMin:         10.0,
		BatteryMax:         90.0,
	}
}

// Orchestrator is the fleet-level brain. It owns no vehicle state beyond
// what the registry and the vehicles themselves carry; every decision goes
// out as a bus event.
type Orchestrator struct {
	bus      *bus.Bus
	arena    *entity.Arena
	registry *entity.Registry
	planner  *route.Planner
	rng      *rand.Rand
	log      *slog.Logger
	params   Params
}

// NewOrchestrator wires an Orchestrator onto the bus. It subscribes to
// spawn requests, spawn announcements and the simulation tick.
func NewOrchestrator(
	b *bus.Bus,
	arena *entity.Arena,
	registry *entity.Registry,
	planner *route.Planner,
	rng *rand.Rand,
	log *slog.Logger,
	params Params,
) *Orchestrator {
	o := &Orchestrator{
		bus:      b,
		arena:    arena,
		registry: registry,
		planner:  planner,
		rng:      rng,
		log:      log,
		params:   params,
	}

	b.Subscribe(TopicSpawnRequest, o.onSpawnRequest)
	b.Subscribe(TopicVehicleSpawned, o.onVehicleSpawned)
	b.Subscribe(TopicSimulationTick, o.onTick)

	return o
}

// onSpawnRequest rolls a vehicle blueprint: entry side, drivetrain,
// priority and initial battery.
func (o *Orchestrator) onSpawnRequest(bus.Event) {
	leftStub, rightStub := o.arena.BoundaryStubs()
	if leftStub < 0 && rightStub < 0 {
		o.log.Error("no boundary road stubs, spawn request dropped")
		return
	}

	// A single open end forces the entry side.
	enteredLeft := leftStub >= 0
	if leftStub >= 0 && rightStub >= 0 {
		enteredLeft = o.rng.Intn(2) == 0
	}
	pos, vel := o.planner.SpawnPoint(enteredLeft, o.params.SpawnSpeed)

	kind := vehicle.KindCombustion
	if o.rng.Float64() < o.params.ElectricShare {
		kind = vehicle.KindElectric
	}

	prio := vehicle.PriorityDistance
	if o.rng.Float64() < o.params.PriceSeekerShare {
		prio = vehicle.PriorityPrice
	}

	battery := o.params.BatteryMin +
		o.rng.Float64()*(o.params.BatteryMax-o.params.BatteryMin)

	o.log.Debug("rolled vehicle",
		"kind", kind.String(), "priority", prio.String(),
		"battery", battery, "enteredLeft", enteredLeft)

	o.bus.Publish(TopicVehicleCreate, VehicleCreate{
		Position:    pos,
		Velocity:    vel,
		Kind:        kind,
		Priority:    prio,
		Battery:     battery,
		EnteredLeft: enteredLeft,
	})
}

// onVehicleSpawned assigns the new vehicle a destination: a reserved spot
// in the best matching facility, or a through-traffic route when nothing
// suits it.
func (o *Orchestrator) onVehicleSpawned(e bus.Event) {
	ev, ok := e.Payload.(VehicleSpawned)
	if !ok {
		o.log.Error("unexpected payload on vehicle_spawned", "payload", e.Payload)
		return
	}
	v, ok := o.registry.Get(ev.Handle)
	if !ok {
		o.log.Error("spawned vehicle already gone", "slot", ev.Handle.Slot)
		return
	}

	wantCharging := o.seeksCharging(v)

	facIdx, spotIdx, found := o.selectFacility(v, wantCharging)
	if !found && wantCharging {
		// All chargers taken; a plain spot beats driving off.
		facIdx, spotIdx, found = o.selectFacility(v, false)
	}
	if !found {
		o.log.Debug("no facility available, passing through",
			"kind", v.Kind.String(), "wantCharging", wantCharging)
		o.passThrough(ev.Handle, v)
		return
	}

	fac := o.arena.Module(facIdx)
	if err := fac.SetSpotState(spotIdx, module.SpotReserved); err != nil {
		o.log.Error("reservation failed", "facility", facIdx, "spot", spotIdx, "error", err)
		o.passThrough(ev.Handle, v)
		return
	}

	v.FacilityIndex = facIdx
	v.SpotIndex = spotIdx

	spot, _ := fac.Spot(spotIdx)
	o.log.Info("spot reserved",
		"facility", facIdx, "spot", spotIdx,
		"price", spot.Price, "kind", fac.Kind.String())

	o.bus.Publish(TopicPathAssigned, PathAssigned{
		Handle:    ev.Handle,
		Waypoints: o.planner.Approach(facIdx, spot, v.Velocity),
	})
}

// passThrough sends an unplaceable vehicle straight across the map. The
// far-side waypoint is the whole trip, so the vehicle exits immediately
// and despawns once it runs the route out.
func (o *Orchestrator) passThrough(h entity.Handle, v *vehicle.Vehicle) {
	v.State = vehicle.StateExiting
	o.bus.Publish(TopicPathAssigned, PathAssigned{
		Handle:    h,
		Waypoints: o.planner.ThroughTraffic(v.EnteredLeft),
	})
}

// seeksCharging rolls the charge-seeking decision for electric vehicles.
// The probability of skipping the charger rises linearly from zero at
// SeekChargingLow to one at SeekChargingHigh.
func (o *Orchestrator) seeksCharging(v *vehicle.Vehicle) bool {
	if v.Kind != vehicle.KindElectric {
		return false
	}
	p := o.params
	if v.Battery <= p.SeekChargingLow {
		return true
	}
	if v.Battery >= p.SeekChargingHigh {
		return false
	}
	skip := (v.Battery - p.SeekChargingLow) / (p.SeekChargingHigh - p.SeekChargingLow)
	return o.rng.Float64() >= skip
}

// selectFacility picks a facility with a free spot matching the vehicle's
// need and priority, plus the spot to reserve in it. Price seekers compare
// one randomly sampled free spot per facility; distance seekers take the
// nearest facility and sample the spot afterwards.
func (o *Orchestrator) selectFacility(v *vehicle.Vehicle, wantCharging bool) (facIdx, spotIdx int, found bool) {
	type candidate struct {
		facIdx  int
		spotIdx int
		cost    float64
	}
	var best *candidate

	for _, idx := range o.arena.Facilities() {
		fac := o.arena.Module(idx)
		if fac.Kind.IsCharging() != wantCharging {
			continue
		}
		si, ok := fac.RandomFreeSpotIndex(o.rng)
		if !ok {
			continue
		}

		var cost float64
		if v.Priority == vehicle.PriorityPrice {
			spot, err := fac.Spot(si)
			if err != nil {
				continue
			}
			cost = spot.Price
		} else {
			cost = v.Position.Distance(fac.Origin)
		}

		if best == nil || cost < best.cost {
			best = &candidate{facIdx: idx, spotIdx: si, cost: cost}
		}
	}

	if best == nil {
		return -1, -1, false
	}
	return best.facIdx, best.spotIdx, true
}

// onTick runs per-vehicle maintenance: occupancy bookkeeping, the
// approach-to-alignment switch, charging and dwell exit checks, and
// despawn of vehicles that finished their exit route.
func (o *Orchestrator) onTick(e bus.Event) {
	tick, ok := e.Payload.(SimulationTick)
	if !ok {
		o.log.Error("unexpected payload on sim tick", "payload", e.Payload)
		return
	}

	o.registry.ForEach(func(h entity.Handle, v *vehicle.Vehicle) {
		switch v.State {
		case vehicle.StateDriving:
			// Final approach: the run-in and the spot itself remain.
			if v.HasAssignment() && len(v.Waypoints()) <= 2 && v.HasPath() {
				v.State = vehicle.StateAligning
			}

		case vehicle.StateAligning:
			o.settleOccupancy(v)

		case vehicle.StateParked:
			o.maintainParked(h, v, tick.Dt)

		case vehicle.StateExiting:
			if !v.HasPath() {
				o.despawn(h, v)
			}
		}
	})
}

// settleOccupancy flips a still-reserved spot to occupied once its holder
// has reached the facility. No-op when the parked context is unusable.
func (o *Orchestrator) settleOccupancy(v *vehicle.Vehicle) {
	fac := o.arena.Module(v.FacilityIndex)
	if fac == nil || !fac.Kind.IsFacility() {
		return
	}
	spot, err := fac.Spot(v.SpotIndex)
	if err != nil {
		return
	}
	if spot.State == module.SpotReserved {
		if err := fac.SetSpotState(v.SpotIndex, module.SpotOccupied); err != nil {
			o.log.Error("occupancy transition failed",
				"facility", v.FacilityIndex, "spot", v.SpotIndex, "error", err)
		}
	}
}

// resumeDriving drops an unusable parked context without touching any
// spot; the orphaned reservation cannot be located, so nothing is freed.
func (o *Orchestrator) resumeDriving(v *vehicle.Vehicle) {
	v.State = vehicle.StateDriving
	v.ClearAssignment()
}

// maintainParked settles the reservation into occupancy, then runs the
// stay-or-leave policy for the vehicle's facility type.
func (o *Orchestrator) maintainParked(h entity.Handle, v *vehicle.Vehicle, dt float64) {
	fac := o.arena.Module(v.FacilityIndex)
	if fac == nil || !fac.Kind.IsFacility() {
		o.log.Error("parked vehicle references invalid facility",
			"facility", v.FacilityIndex, "spot", v.SpotIndex)
		o.resumeDriving(v)
		return
	}

	if _, err := fac.Spot(v.SpotIndex); err != nil {
		o.log.Error("parked vehicle references invalid spot",
			"facility", v.FacilityIndex, "spot", v.SpotIndex, "error", err)
		o.resumeDriving(v)
		return
	}

	o.settleOccupancy(v)

	if fac.Kind.IsCharging() && v.Kind == vehicle.KindElectric {
		v.Charge(o.params.ChargeRate, dt)
		if o.shouldLeaveCharger(v, dt) {
			o.release(fac, v)
			o.startExit(h, v, fac)
		}
		return
	}

	v.TickParked(dt)
	if v.DwellElapsed() {
		o.release(fac, v)
		o.startExit(h, v, fac)
	}
}

// shouldLeaveCharger applies the charging exit policy: hard stop at
// ForceExitBattery, probabilistic departure above ExitMinBattery.
func (o *Orchestrator) shouldLeaveCharger(v *vehicle.Vehicle, dt float64) bool {
	p := o.params
	if v.Battery >= p.ForceExitBattery {
		return true
	}
	if v.Battery < p.ExitMinBattery {
		return false
	}
	prob := (v.Battery - p.ExitMinBattery) * p.ExitProbPerPercent * dt
	return o.rng.Float64() < prob
}

// release frees the vehicle's spot.
func (o *Orchestrator) release(fac *module.Module, v *vehicle.Vehicle) {
	if err := fac.SetSpotState(v.SpotIndex, module.SpotFree); err != nil {
		o.log.Error("spot release failed",
			"facility", v.FacilityIndex, "spot", v.SpotIndex, "error", err)
	}
}

// startExit plans the exit route and flips the vehicle to EXITING.
// Distance seekers leave the way they came in; everyone else picks a side
// at random.
func (o *Orchestrator) startExit(h entity.Handle, v *vehicle.Vehicle, fac *module.Module) {
	exitLeft := v.EnteredLeft
	if v.Priority != vehicle.PriorityDistance {
		exitLeft = o.rng.Intn(2) == 0
	}

	var wps []module.Waypoint
	if spot, err := fac.Spot(v.SpotIndex); err == nil {
		wps = o.planner.Exit(v.FacilityIndex, spot, exitLeft)
	}
	if len(wps) == 0 {
		wps = o.planner.ThroughTraffic(!exitLeft)
	}

	v.State = vehicle.StateExiting
	v.ClearAssignment()

	o.log.Info("vehicle exiting", "slot", h.Slot, "exitLeft", exitLeft,
		"battery", v.Battery)

	o.bus.Publish(TopicPathAssigned, PathAssigned{Handle: h, Waypoints: wps})
}

// despawn removes a vehicle that has run out its exit route.
func (o *Orchestrator) despawn(h entity.Handle, v *vehicle.Vehicle) {
	if !o.registry.Remove(h) {
		return
	}
	o.log.Debug("vehicle despawned", "slot", h.Slot, "kind", v.Kind.String())
	o.bus.Publish(TopicVehicleDespawned, VehicleDespawned{Handle: h})
}
