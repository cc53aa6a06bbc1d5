// Package traffic drives vehicle behavior at the fleet level: spawning,
// facility selection, spot reservation and release, and exit policy. It
// communicates exclusively over the event bus so recording and telemetry
// can observe every decision.
package traffic

import (
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/bus"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/entity"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/geo"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/module"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/vehicle"
)

// Bus topics published and consumed by the traffic layer.
const (
	// TopicSpawnRequest asks the orchestrator to roll a new vehicle.
	TopicSpawnRequest bus.Topic = "traffic.spawn_request"

	// TopicVehicleCreate carries a fully rolled vehicle blueprint to
	// whoever owns the registry.
	TopicVehicleCreate bus.Topic = "traffic.vehicle_create"

	// TopicVehicleSpawned announces a registered vehicle; the orchestrator
	// reacts by assigning a facility or through-traffic route.
	TopicVehicleSpawned bus.Topic = "traffic.vehicle_spawned"

	// TopicPathAssigned carries a planned waypoint chain for a vehicle.
	TopicPathAssigned bus.Topic = "traffic.path_assigned"

	// TopicVehicleDespawned announces removal of an off-map vehicle.
	TopicVehicleDespawned bus.Topic = "traffic.vehicle_despawned"

	// TopicSimulationTick is published once per fixed step, before vehicle
	// updates run.
	TopicSimulationTick bus.Topic = "sim.tick"
)

// SpawnRequest asks for one new vehicle. Empty; all rolling happens in the
// orchestrator so the policy lives in one place.
type SpawnRequest struct{}

// VehicleCreate is the blueprint for a vehicle about to enter the world.
type VehicleCreate struct {
	Position    geo.Vec2
	Velocity    geo.Vec2
	Kind        vehicle.Kind
	Priority    vehicle.Priority
	Battery     float64
	EnteredLeft bool
}

// VehicleSpawned announces a vehicle that now exists in the registry.
type VehicleSpawned struct {
	Handle entity.Handle
}

// PathAssigned carries a new route for the vehicle behind Handle.
type PathAssigned struct {
	Handle    entity.Handle
	Waypoints []module.Waypoint
}

// VehicleDespawned announces that the vehicle behind Handle left the map
// and was removed.
type VehicleDespawned struct {
	Handle entity.Handle
}

// SimulationTick carries the fixed-step timing for maintenance handlers.
type SimulationTick struct {
	Tick    uint64
	Dt      float64
	Elapsed float64
}
