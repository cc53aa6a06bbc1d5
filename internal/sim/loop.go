// Package sim runs the fixed-step simulation loop. Each step drains the
// pending spawn queue, publishes the tick for fleet maintenance, then
// advances every vehicle by the same dt. All cross-component work happens
// synchronously inside the step, so the world is always consistent between
// steps.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/lst-cpp-project-2025-2026/parklogic/internal/bus"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/entity"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/module"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/queue"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/traffic"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/vehicle"
)

// Loop owns simulation time. Vehicles, modules and policy live elsewhere;
// the loop only sequences them.
type Loop struct {
	bus      *bus.Bus
	arena    *entity.Arena
	registry *entity.Registry
	world    module.World
	rng      *rand.Rand
	log      *slog.Logger

	dt            float64
	spawnInterval float64
	sinceSpawn    float64

	tick    uint64
	elapsed float64

	// Spawn blueprints queue up during the step's event cascade and
	// materialize at the start of the next step.
	spawns *queue.Queue[traffic.VehicleCreate]

	spawned   metric.Int64Counter
	despawned metric.Int64Counter
}

// NewLoop wires a Loop onto the bus. tickRate is steps per simulated
// second.
func NewLoop(
	b *bus.Bus,
	arena *entity.Arena,
	registry *entity.Registry,
	world module.World,
	rng *rand.Rand,
	log *slog.Logger,
	tickRate float64,
	spawnInterval time.Duration,
) (*Loop, error) {
	if tickRate <= 0 {
		return nil, fmt.Errorf("tick rate must be positive, got %v", tickRate)
	}

	l := &Loop{
		bus:           b,
		arena:         arena,
		registry:      registry,
		world:         world,
		rng:           rng,
		log:           log,
		dt:            1.0 / tickRate,
		spawnInterval: spawnInterval.Seconds(),
		spawns:        queue.New[traffic.VehicleCreate](),
	}

	m := meter()
	var err error
	l.spawned, err = m.Int64Counter(
		"sim.vehicles.spawned",
		metric.WithDescription("Total vehicles that entered the world"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating spawned counter: %w", err)
	}
	l.despawned, err = m.Int64Counter(
		"sim.vehicles.despawned",
		metric.WithDescription("Total vehicles removed after exiting"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating despawned counter: %w", err)
	}

	b.Subscribe(traffic.TopicVehicleCreate, l.onVehicleCreate)
	b.Subscribe(traffic.TopicPathAssigned, l.onPathAssigned)
	b.Subscribe(traffic.TopicVehicleDespawned, func(bus.Event) {
		l.despawned.Add(ctx(), 1)
	})

	return l, nil
}

// onVehicleCreate defers the blueprint to the next step so a spawn never
// mutates the registry mid-cascade.
func (l *Loop) onVehicleCreate(e bus.Event) {
	bp, ok := e.Payload.(traffic.VehicleCreate)
	if !ok {
		l.log.Error("unexpected payload on vehicle_create", "payload", e.Payload)
		return
	}
	l.spawns.Push(bp)
}

// onPathAssigned hands the planned route to the vehicle.
func (l *Loop) onPathAssigned(e bus.Event) {
	ev, ok := e.Payload.(traffic.PathAssigned)
	if !ok {
		l.log.Error("unexpected payload on path_assigned", "payload", e.Payload)
		return
	}
	v, ok := l.registry.Get(ev.Handle)
	if !ok {
		l.log.Debug("path for despawned vehicle dropped", "slot", ev.Handle.Slot)
		return
	}
	v.SetPath(ev.Waypoints)
}

// Step advances the simulation by one fixed dt.
func (l *Loop) Step() {
	l.tick++
	l.elapsed += l.dt

	l.sinceSpawn += l.dt
	for l.spawnInterval > 0 && l.sinceSpawn >= l.spawnInterval {
		l.sinceSpawn -= l.spawnInterval
		l.bus.Publish(traffic.TopicSpawnRequest, traffic.SpawnRequest{})
	}

	for _, bp := range l.spawns.Drain() {
		v := vehicle.New(bp.Position, bp.Velocity, bp.Kind, bp.Priority, bp.Battery, bp.EnteredLeft)
		h := l.registry.Add(v)
		l.spawned.Add(ctx(), 1)
		l.bus.Publish(traffic.TopicVehicleSpawned, traffic.VehicleSpawned{Handle: h})
	}

	l.bus.Publish(traffic.TopicSimulationTick, traffic.SimulationTick{
		Tick:    l.tick,
		Dt:      l.dt,
		Elapsed: l.elapsed,
	})

	vehicles := l.registry.Vehicles()
	for _, v := range vehicles {
		v.Update(l.dt, vehicles, l.world, l.rng)
	}
}

// Run steps the simulation for the given simulated duration or until the
// context is canceled.
func (l *Loop) Run(ctx context.Context, duration time.Duration) error {
	steps := int(duration.Seconds() / l.dt)
	l.log.Info("Simulation starting",
		"steps", steps, "dt", l.dt, "duration", duration.String())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			l.log.Info("Simulation canceled", "tick", l.tick)
			return ctx.Err()
		default:
		}
		l.Step()
	}

	l.log.Info("Simulation finished",
		"ticks", l.tick, "simulatedSeconds", l.elapsed, "liveVehicles", l.registry.Len())
	return nil
}

// Tick returns the current tick counter.
func (l *Loop) Tick() uint64 { return l.tick }

// Elapsed returns simulated seconds since start.
func (l *Loop) Elapsed() float64 { return l.elapsed }
