package module

import "github.com/lst-cpp-project-2025-2026/parklogic/internal/geo"

// Waypoint is a single point-with-tolerance in a route. Waypoints are
// immutable once produced by the planner.
type Waypoint struct {
	Position    geo.Vec2 `json:"position"`
	Tolerance   float64  `json:"tolerance"` // radius in meters to consider "reached"
	ID          int      `json:"id"`
	EntryAngle  float64  `json:"entryAngle"` // radians to enter/leave this waypoint
	StopAtEnd   bool     `json:"stopAtEnd"`
	SpeedFactor float64  `json:"speedFactor"` // max-speed factor for the segment ending here
}

// NewWaypoint builds a plain waypoint with the default ID, angle and speed
// factor.
func NewWaypoint(pos geo.Vec2, tolerance float64) Waypoint {
	return Waypoint{
		Position:    pos,
		Tolerance:   tolerance,
		ID:          -1,
		SpeedFactor: 1.0,
	}
}
