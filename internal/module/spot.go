package module

import (
	"errors"

	"github.com/lst-cpp-project-2025-2026/parklogic/internal/geo"
)

// SpotState is the reservation state of a single spot. The only legal
// cycle is FREE -> RESERVED -> OCCUPIED -> FREE.
type SpotState int

const (
	SpotFree SpotState = iota
	SpotReserved
	SpotOccupied
)

func (s SpotState) String() string {
	switch s {
	case SpotFree:
		return "free"
	case SpotReserved:
		return "reserved"
	case SpotOccupied:
		return "occupied"
	default:
		return "unknown"
	}
}

// ErrSpotTransition is returned when a spot state change would skip or
// reverse a step of the reservation cycle.
var ErrSpotTransition = errors.New("invalid spot state transition")

// ErrNoSpot is returned when a spot index is out of range.
var ErrNoSpot = errors.New("no such spot")

// Spot is a single parking or charging location inside a facility. Spots
// belong to exactly one facility and never move.
type Spot struct {
	Local       geo.Vec2 // position relative to the facility's top-left
	Orientation float64  // radians, 0 = facing +X
	ID          int
	Price       float64
	State       SpotState
}

// SpotCounts aggregates a facility's spot states.
type SpotCounts struct {
	Free     int
	Reserved int
	Occupied int
}

func validTransition(from, to SpotState) bool {
	switch from {
	case SpotFree:
		return to == SpotReserved
	case SpotReserved:
		return to == SpotOccupied
	case SpotOccupied:
		return to == SpotFree
	default:
		return false
	}
}
