// Package recorder persists a simulation session: the generated layout,
// every vehicle that entered the world, the notable bus events and the
// per-tick occupancy series. Backends share one interface so memory,
// SQLite and Postgres storage are interchangeable.
package recorder

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/lst-cpp-project-2025-2026/parklogic/internal/bus"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/entity"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/geo"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/influx"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/module"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/traffic"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/vehicle"
)

// Backend is the interface all storage implementations satisfy.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(s *Session) error
	EndSession() error

	// Row recording
	AddVehicle(v *VehicleRow) error
	RecordEvent(e *EventRow) error
	RecordTick(t *TickRow) error
}

// LayoutEntry is one placed module in the session's layout snapshot.
type LayoutEntry struct {
	Kind        string  `json:"kind"`
	IsTop       bool    `json:"isTop"`
	ParentIndex int     `json:"parentIndex"`
	OriginX     float64 `json:"originX"`
	OriginY     float64 `json:"originY"`
	Footprint   string  `json:"footprint"` // WKT ring
}

// EncodeLayout snapshots the placed module list for the session row.
func EncodeLayout(modules []*module.Module) (datatypes.JSON, error) {
	entries := make([]LayoutEntry, len(modules))
	for i, m := range modules {
		entries[i] = LayoutEntry{
			Kind:        m.Kind.String(),
			IsTop:       m.IsTop,
			ParentIndex: m.ParentIndex,
			OriginX:     m.Origin.X,
			OriginY:     m.Origin.Y,
			Footprint:   m.Outline().AsText(),
		}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encoding layout: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// tickSampleEvery throttles occupancy rows to one per simulated second at
// the default 30 Hz tick rate.
const tickSampleEvery = 30

// Recorder subscribes to the bus and forwards what it sees to the backend
// and the optional telemetry sink. It never fails the simulation: storage
// errors are logged and dropped.
type Recorder struct {
	backend  Backend
	arena    *entity.Arena
	registry *entity.Registry
	influx   *influx.Manager // nil when telemetry is disabled
	log      *slog.Logger

	// lastTick stamps vehicle and event rows. Spawn and path events for a
	// tick fire before that tick's SimulationTick, so the stamp lags by
	// one tick at most.
	lastTick uint64
}

// NewRecorder wires a Recorder onto the bus.
func NewRecorder(
	b *bus.Bus,
	backend Backend,
	arena *entity.Arena,
	registry *entity.Registry,
	ifx *influx.Manager,
	log *slog.Logger,
) *Recorder {
	r := &Recorder{
		backend:  backend,
		arena:    arena,
		registry: registry,
		influx:   ifx,
		log:      log,
	}

	b.Subscribe(traffic.TopicVehicleSpawned, r.onVehicleSpawned)
	b.Subscribe(traffic.TopicPathAssigned, r.onPathAssigned)
	b.Subscribe(traffic.TopicVehicleDespawned, r.onVehicleDespawned)
	b.Subscribe(traffic.TopicSimulationTick, r.onTick)

	return r
}

func (r *Recorder) onVehicleSpawned(e bus.Event) {
	ev, ok := e.Payload.(traffic.VehicleSpawned)
	if !ok {
		return
	}
	v, ok := r.registry.Get(ev.Handle)
	if !ok {
		return
	}
	row := &VehicleRow{
		Slot:        ev.Handle.Slot,
		Kind:        v.Kind.String(),
		Priority:    v.Priority.String(),
		EnteredLeft: v.EnteredLeft,
		Battery:     v.Battery,
		SpawnTick:   r.lastTick,
	}
	if err := r.backend.AddVehicle(row); err != nil {
		r.log.Error("recording vehicle failed", "error", err)
	}
}

func (r *Recorder) onPathAssigned(e bus.Event) {
	ev, ok := e.Payload.(traffic.PathAssigned)
	if !ok {
		return
	}
	payload := map[string]any{
		"slot":      ev.Handle.Slot,
		"waypoints": len(ev.Waypoints),
	}
	// Single-waypoint routes have no line to draw.
	if wkt, err := routeWKT(ev.Waypoints); err == nil {
		payload["route"] = wkt
	}
	r.recordEvent(string(e.Topic), payload)
}

// routeWKT flattens a waypoint chain into a WKT line string.
func routeWKT(wps []module.Waypoint) (string, error) {
	pts := make([]geo.Vec2, len(wps))
	for i, wp := range wps {
		pts[i] = wp.Position
	}
	ls, err := geo.Polyline(pts)
	if err != nil {
		return "", err
	}
	return ls.AsText(), nil
}

func (r *Recorder) onVehicleDespawned(e bus.Event) {
	ev, ok := e.Payload.(traffic.VehicleDespawned)
	if !ok {
		return
	}
	r.recordEvent(string(e.Topic), map[string]any{"slot": ev.Handle.Slot})
}

func (r *Recorder) recordEvent(topic string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		r.log.Error("encoding event payload failed", "topic", topic, "error", err)
		return
	}
	if err := r.backend.RecordEvent(&EventRow{Tick: r.lastTick, Topic: topic, Payload: datatypes.JSON(raw)}); err != nil {
		r.log.Error("recording event failed", "topic", topic, "error", err)
	}
}

// onTick samples occupancy across all facilities plus the live vehicle
// count, throttled to tickSampleEvery.
func (r *Recorder) onTick(e bus.Event) {
	tick, ok := e.Payload.(traffic.SimulationTick)
	if !ok {
		return
	}
	r.lastTick = tick.Tick
	if tick.Tick%tickSampleEvery != 0 {
		return
	}

	var counts module.SpotCounts
	for _, idx := range r.arena.Facilities() {
		c := r.arena.Module(idx).Counts()
		counts.Free += c.Free
		counts.Reserved += c.Reserved
		counts.Occupied += c.Occupied
	}
	vehicles := r.registry.Len()

	row := &TickRow{
		Tick:     tick.Tick,
		Elapsed:  tick.Elapsed,
		Vehicles: vehicles,
		Free:     counts.Free,
		Reserved: counts.Reserved,
		Occupied: counts.Occupied,
	}
	if err := r.backend.RecordTick(row); err != nil {
		r.log.Error("recording tick failed", "tick", tick.Tick, "error", err)
	}

	if r.influx != nil {
		r.influx.WriteTick(tick.Tick, tick.Elapsed, vehicles,
			counts.Free, counts.Reserved, counts.Occupied)
	}
}

// ParkedCount is a convenience for session reports.
func ParkedCount(reg *entity.Registry) int {
	n := 0
	for _, v := range reg.Vehicles() {
		if v.State == vehicle.StateParked {
			n++
		}
	}
	return n
}
