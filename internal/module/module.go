// Package module defines the passive building blocks of the road network:
// rectangular modules that snap together through directional attachment
// points, carry structural waypoints, and (for facilities) own a pool of
// parking or charging spots.
package module

import (
	"math"
	"math/rand"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/lst-cpp-project-2025-2026/parklogic/internal/geo"
)

// attachmentMatchTolerance is the maximum distance between two normals for
// them to be considered equal.
const attachmentMatchTolerance = 0.1

// AttachmentPoint is a connection location on a module's perimeter plus the
// outward direction of attachment.
type AttachmentPoint struct {
	Position geo.Vec2 // relative to the module's top-left
	Normal   geo.Vec2 // outward unit normal
}

// Module is a placed building block: a road segment or a facility. Modules
// are created once by the layout generator and never destroyed.
type Module struct {
	Kind   Kind
	IsTop  bool     // facilities only: attached above the hosting road
	Width  float64  // meters
	Height float64  // meters
	Origin geo.Vec2 // world-space top-left, set during generation

	// ParentIndex is the arena index of the road this facility was placed
	// against, or -1 for roads and unplaced facilities.
	ParentIndex int

	attachments []AttachmentPoint
	waypoints   []Waypoint
	spots       []Spot
}

// New builds a module of the given kind. isTop is meaningful for facilities
// only and selects which road edge the facility connects to.
func New(kind Kind, isTop bool) *Module {
	g := kindTable[kind]
	m := &Module{
		Kind:        kind,
		IsTop:       isTop,
		Width:       geo.P2M(g.widthPx),
		Height:      geo.P2M(g.heightPx),
		ParentIndex: -1,
	}

	if kind.IsRoad() {
		m.buildRoad(g)
	} else {
		m.buildFacility(g)
	}
	return m
}

func (m *Module) buildRoad(g kindGeometry) {
	spineY := geo.P2M(roadSpineYPx)

	m.attachments = append(m.attachments,
		AttachmentPoint{Position: geo.Vec2{X: 0, Y: spineY}, Normal: NormalLeft},
		AttachmentPoint{Position: geo.Vec2{X: m.Width, Y: spineY}, Normal: NormalRight},
	)

	switch m.Kind {
	case KindRoad:
		m.addWaypoint(geo.Vec2{X: m.Width / 2, Y: spineY})
		return
	case KindRoadUp:
		m.attachments = append(m.attachments,
			AttachmentPoint{Position: geo.Vec2{X: geo.P2M(g.entrancePx), Y: 0}, Normal: NormalUp})
	case KindRoadDown:
		m.attachments = append(m.attachments,
			AttachmentPoint{Position: geo.Vec2{X: geo.P2M(g.entrancePx), Y: m.Height}, Normal: NormalDown})
	case KindRoadDouble:
		m.attachments = append(m.attachments,
			AttachmentPoint{Position: geo.Vec2{X: geo.P2M(g.entrancePx), Y: 0}, Normal: NormalUp},
			AttachmentPoint{Position: geo.Vec2{X: geo.P2M(g.entrancePx), Y: m.Height}, Normal: NormalDown})
	}
	m.addWaypoint(geo.Vec2{X: geo.P2M(g.entrancePx), Y: spineY})
}

func (m *Module) buildFacility(g kindGeometry) {
	entry := geo.P2M(g.entrancePx)

	// A top facility hangs above an up/double entrance, so its own connector
	// sits on its bottom edge pointing down; a bottom facility mirrors that.
	if m.IsTop {
		m.attachments = append(m.attachments,
			AttachmentPoint{Position: geo.Vec2{X: entry, Y: m.Height}, Normal: NormalDown})
	} else {
		m.attachments = append(m.attachments,
			AttachmentPoint{Position: geo.Vec2{X: entry, Y: 0}, Normal: NormalUp})
	}
	m.addWaypoint(geo.Vec2{X: entry, Y: m.Height / 2})

	m.buildSpots(g, entry)
}

// buildSpots lays the spot pool out in two columns flanking the driveway,
// rows marching away from the attachment edge. Spots face the driveway.
func (m *Module) buildSpots(g kindGeometry, entry float64) {
	const (
		columnOffset = 5.0  // meters off the driveway axis
		rowSpacing   = 6.0  // meters between rows
		edgeInset    = 12.0 // meters from the attachment edge to the first row
	)

	for i := 0; i < g.spotCount; i++ {
		row := i / 2
		left := i%2 == 0

		x := entry + columnOffset
		orientation := math.Pi // right column faces the driveway (-X)
		if left {
			x = entry - columnOffset
			orientation = 0
		}

		y := edgeInset + float64(row)*rowSpacing
		if m.IsTop {
			y = m.Height - edgeInset - float64(row)*rowSpacing
		}

		m.spots = append(m.spots, Spot{
			Local:       geo.Vec2{X: x, Y: y},
			Orientation: orientation,
			ID:          i,
			State:       SpotFree,
		})
	}
}

func (m *Module) addWaypoint(local geo.Vec2) {
	m.waypoints = append(m.waypoints, NewWaypoint(local, 1.0))
}

// AttachmentByNormal returns the attachment point whose normal matches the
// given direction, or false if the module has none.
func (m *Module) AttachmentByNormal(normal geo.Vec2) (AttachmentPoint, bool) {
	for _, ap := range m.attachments {
		if ap.Normal.Distance(normal) < attachmentMatchTolerance {
			return ap, true
		}
	}
	return AttachmentPoint{}, false
}

// Attachments returns the module's attachment table.
func (m *Module) Attachments() []AttachmentPoint {
	return m.attachments
}

// LocalWaypoints returns the structural waypoints relative to the module's
// top-left.
func (m *Module) LocalWaypoints() []Waypoint {
	return m.waypoints
}

// GlobalWaypoints returns the structural waypoints translated into world
// space.
func (m *Module) GlobalWaypoints() []Waypoint {
	global := make([]Waypoint, len(m.waypoints))
	for i, wp := range m.waypoints {
		wp.Position = m.Origin.Add(wp.Position)
		global[i] = wp
	}
	return global
}

// SpotCount returns the number of spots in the facility's pool.
func (m *Module) SpotCount() int {
	return len(m.spots)
}

// Spot returns the spot at the given index.
func (m *Module) Spot(index int) (Spot, error) {
	if index < 0 || index >= len(m.spots) {
		return Spot{}, ErrNoSpot
	}
	return m.spots[index], nil
}

// SpotGlobal returns the world-space position of the spot at the given index.
func (m *Module) SpotGlobal(index int) (geo.Vec2, error) {
	s, err := m.Spot(index)
	if err != nil {
		return geo.Vec2{}, err
	}
	return m.Origin.Add(s.Local), nil
}

// SetSpotState advances the spot's reservation state, enforcing the
// FREE -> RESERVED -> OCCUPIED -> FREE cycle.
func (m *Module) SetSpotState(index int, state SpotState) error {
	if index < 0 || index >= len(m.spots) {
		return ErrNoSpot
	}
	if !validTransition(m.spots[index].State, state) {
		return ErrSpotTransition
	}
	m.spots[index].State = state
	return nil
}

// SetSpotPrice assigns the spot's price; used once at generation time.
func (m *Module) SetSpotPrice(index int, price float64) error {
	if index < 0 || index >= len(m.spots) {
		return ErrNoSpot
	}
	m.spots[index].Price = price
	return nil
}

// Counts aggregates the facility's spot states.
func (m *Module) Counts() SpotCounts {
	var c SpotCounts
	for _, s := range m.spots {
		switch s.State {
		case SpotFree:
			c.Free++
		case SpotReserved:
			c.Reserved++
		case SpotOccupied:
			c.Occupied++
		}
	}
	return c
}

// RandomFreeSpotIndex returns a uniformly random index among the facility's
// free spots, or false if no spot is free.
func (m *Module) RandomFreeSpotIndex(rng *rand.Rand) (int, bool) {
	free := make([]int, 0, len(m.spots))
	for i, s := range m.spots {
		if s.State == SpotFree {
			free = append(free, i)
		}
	}
	if len(free) == 0 {
		return -1, false
	}
	return free[rng.Intn(len(free))], true
}

// MinX returns the module's left world extent.
func (m *Module) MinX() float64 { return m.Origin.X }

// MaxX returns the module's right world extent.
func (m *Module) MaxX() float64 { return m.Origin.X + m.Width }

// Outline returns the module's footprint as a closed world-space ring.
func (m *Module) Outline() geom.LineString {
	return geo.Ring(m.Origin, m.Width, m.Height)
}

// Overlaps reports whether two modules' footprint interiors intersect.
// Touching edges do not count; adjacent modules meet exactly at their
// attachment points.
func (m *Module) Overlaps(o *Module) bool {
	const eps = 1e-6
	if m.MaxX() <= o.MinX()+eps || o.MaxX() <= m.MinX()+eps {
		return false
	}
	if m.Origin.Y+m.Height <= o.Origin.Y+eps || o.Origin.Y+o.Height <= m.Origin.Y+eps {
		return false
	}
	return true
}
