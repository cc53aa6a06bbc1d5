package module

import "github.com/lst-cpp-project-2025-2026/parklogic/internal/geo"

// Kind is the closed set of module variants. Each kind fixes the footprint,
// the attachment table and the structural waypoints; capability checks are
// tag comparisons, never type assertions.
type Kind int

const (
	KindRoad Kind = iota // plain road segment, no entrance
	KindRoadUp
	KindRoadDown
	KindRoadDouble
	KindParkingSmall
	KindParkingLarge
	KindChargingSmall
	KindChargingLarge
)

func (k Kind) String() string {
	switch k {
	case KindRoad:
		return "road"
	case KindRoadUp:
		return "road_up"
	case KindRoadDown:
		return "road_down"
	case KindRoadDouble:
		return "road_double"
	case KindParkingSmall:
		return "parking_small"
	case KindParkingLarge:
		return "parking_large"
	case KindChargingSmall:
		return "charging_small"
	case KindChargingLarge:
		return "charging_large"
	default:
		return "unknown"
	}
}

// IsRoad reports whether the kind is any road variant.
func (k Kind) IsRoad() bool {
	return k >= KindRoad && k <= KindRoadDouble
}

// IsFacility reports whether the kind is a parking or charging facility.
func (k Kind) IsFacility() bool {
	return k >= KindParkingSmall && k <= KindChargingLarge
}

// IsParking reports whether the kind is a parking facility.
func (k Kind) IsParking() bool {
	return k == KindParkingSmall || k == KindParkingLarge
}

// IsCharging reports whether the kind is a charging facility.
func (k Kind) IsCharging() bool {
	return k == KindChargingSmall || k == KindChargingLarge
}

// HostsTopFacility reports whether the road kind can host a facility above it.
func (k Kind) HostsTopFacility() bool {
	return k == KindRoadUp || k == KindRoadDouble
}

// HostsBottomFacility reports whether the road kind can host a facility below it.
func (k Kind) HostsBottomFacility() bool {
	return k == KindRoadDown || k == KindRoadDouble
}

// kindGeometry declares a kind's fixed geometry in art pixels. The entrance
// axis is the X coordinate of the module's connector: the T-junction center
// for entrance roads, the driveway for facilities.
type kindGeometry struct {
	widthPx    float64
	heightPx   float64
	entrancePx float64
	spotCount  int
}

// Footprints and connector positions measured off the source art.
var kindTable = map[Kind]kindGeometry{
	KindRoad:          {widthPx: 283, heightPx: 155},
	KindRoadUp:        {widthPx: 284, heightPx: 155, entrancePx: 142},
	KindRoadDown:      {widthPx: 284, heightPx: 155, entrancePx: 142},
	KindRoadDouble:    {widthPx: 284, heightPx: 155, entrancePx: 142},
	KindParkingSmall:  {widthPx: 274, heightPx: 330, entrancePx: 218, spotCount: 4},
	KindParkingLarge:  {widthPx: 436, heightPx: 363, entrancePx: 218, spotCount: 8},
	KindChargingSmall: {widthPx: 219, heightPx: 168, entrancePx: 163, spotCount: 2},
	KindChargingLarge: {widthPx: 274, heightPx: 330, entrancePx: 218, spotCount: 4},
}

// roadSpineYPx is the Y coordinate of the left/right attachment points on
// every road asset, measured from the module's top edge.
const roadSpineYPx = 78

// Attachment normals. Two modules connect where one's normal is the exact
// negation of the other's.
var (
	NormalLeft  = geo.Vec2{X: -1, Y: 0}
	NormalRight = geo.Vec2{X: 1, Y: 0}
	NormalUp    = geo.Vec2{X: 0, Y: -1}
	NormalDown  = geo.Vec2{X: 0, Y: 1}
)
