// Package layout procedurally generates the road network: a left-to-right
// spine of road modules with facilities snapped above and below through
// their attachment points. Placement guarantees that no two modules overlap:
// each unit is projected against the rightmost occupied extent and padding
// roads are inserted until its full horizontal span is clear.
package layout

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/lst-cpp-project-2025-2026/parklogic/internal/geo"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/module"
)

// Config sets the facility mix and the per-type spot price ranges.
type Config struct {
	SmallParking  int
	LargeParking  int
	SmallCharging int
	LargeCharging int

	ParkingPriceMin  float64
	ParkingPriceMax  float64
	ChargingPriceMin float64
	ChargingPriceMax float64
}

// DefaultConfig returns a small mixed map.
func DefaultConfig() Config {
	return Config{
		SmallParking:     2,
		LargeParking:     1,
		SmallCharging:    1,
		LargeCharging:    1,
		ParkingPriceMin:  1.0,
		ParkingPriceMax:  5.0,
		ChargingPriceMin: 2.0,
		ChargingPriceMax: 8.0,
	}
}

const (
	// spineStartY anchors the road spine before the final vertical shift.
	spineStartY = 50.0

	// backgroundTileSizePx sizes the display tiling; world bounds round up
	// to a tile multiple.
	backgroundTileSizePx = 256

	// worldHeightPaddingTiles of vertical margin; horizontal margin is zero.
	worldHeightPaddingTiles = 5

	trailingPaddingRoads = 3
)

// Generator builds a placed module list from a Config.
type Generator struct {
	rng *rand.Rand
	log *slog.Logger
}

// New creates a Generator.
func New(rng *rand.Rand, log *slog.Logger) *Generator {
	return &Generator{rng: rng, log: log}
}

// plannedUnit is one entrance road with up to two facilities to snap on.
type plannedUnit struct {
	road   *module.Module
	top    *module.Module
	bottom *module.Module
}

// Generate produces the world bounds and the fully placed module list.
// Facility ParentIndex values reference their hosting road's position in
// the returned slice.
func (g *Generator) Generate(cfg Config) (module.World, []*module.Module) {
	g.log.Info("Generating world",
		"smallParking", cfg.SmallParking, "largeParking", cfg.LargeParking,
		"smallCharging", cfg.SmallCharging, "largeCharging", cfg.LargeCharging)

	plan := g.plan(cfg)
	modules := g.place(plan)
	world := g.normalize(modules)
	modules = g.addBoundaryStubs(modules, world)

	if err := Validate(modules); err != nil {
		// Placement invariant violation; generation bugs only.
		g.log.Error("generated layout violates placement invariants", "error", err)
	}

	return world, modules
}

// plan draws a random unit sequence, consuming the facility pool without
// replacement. Only up/double roads may host a top facility, only
// down/double roads a bottom one.
func (g *Generator) plan(cfg Config) []plannedUnit {
	remaining := cfg
	var plan []plannedUnit

	for remaining.SmallParking > 0 || remaining.LargeParking > 0 ||
		remaining.SmallCharging > 0 || remaining.LargeCharging > 0 {

		var unit plannedUnit
		switch g.rng.Intn(3) {
		case 0:
			unit.road = module.New(module.KindRoadUp, false)
			unit.top = g.drawFacility(&remaining, cfg, true)
		case 1:
			unit.road = module.New(module.KindRoadDown, false)
			unit.bottom = g.drawFacility(&remaining, cfg, false)
		default:
			unit.road = module.New(module.KindRoadDouble, false)
			unit.top = g.drawFacility(&remaining, cfg, true)
			unit.bottom = g.drawFacility(&remaining, cfg, false)
		}
		plan = append(plan, unit)
	}
	return plan
}

// drawFacility picks a facility kind among those still owed, builds it and
// prices its spots. Returns nil when the pool is exhausted.
func (g *Generator) drawFacility(remaining *Config, cfg Config, isTop bool) *module.Module {
	var available []module.Kind
	if remaining.SmallParking > 0 {
		available = append(available, module.KindParkingSmall)
	}
	if remaining.LargeParking > 0 {
		available = append(available, module.KindParkingLarge)
	}
	if remaining.SmallCharging > 0 {
		available = append(available, module.KindChargingSmall)
	}
	if remaining.LargeCharging > 0 {
		available = append(available, module.KindChargingLarge)
	}
	if len(available) == 0 {
		return nil
	}

	kind := available[g.rng.Intn(len(available))]
	switch kind {
	case module.KindParkingSmall:
		remaining.SmallParking--
	case module.KindParkingLarge:
		remaining.LargeParking--
	case module.KindChargingSmall:
		remaining.SmallCharging--
	case module.KindChargingLarge:
		remaining.LargeCharging--
	}

	fac := module.New(kind, isTop)

	priceMin, priceMax := cfg.ParkingPriceMin, cfg.ParkingPriceMax
	if kind.IsCharging() {
		priceMin, priceMax = cfg.ChargingPriceMin, cfg.ChargingPriceMax
	}
	for i := 0; i < fac.SpotCount(); i++ {
		price := priceMin + g.rng.Float64()*(priceMax-priceMin)
		_ = fac.SetSpotPrice(i, math.Round(price*100)/100)
	}

	return fac
}

// place lays the planned units out left to right along the spine, inserting
// padding roads whenever a unit's projected left extent would fall inside
// the previous unit's occupied span.
func (g *Generator) place(plan []plannedUnit) []*module.Module {
	var modules []*module.Module

	currentX := 0.0
	startY := spineStartY
	safeX := currentX // rightmost occupied extent so far

	placePadding := func() {
		road := module.New(module.KindRoad, false)
		left, ok := road.AttachmentByNormal(module.NormalLeft)
		if !ok {
			g.log.Error("padding road missing left attachment point")
			return
		}
		road.Origin = geo.Vec2{X: currentX - left.Position.X, Y: startY - left.Position.Y}
		if right, ok := road.AttachmentByNormal(module.NormalRight); ok {
			currentX = road.Origin.X + right.Position.X
		} else {
			currentX += road.Width
		}
		modules = append(modules, road)
	}

	for _, unit := range plan {
		if unit.road == nil {
			continue
		}
		roadLeft, ok := unit.road.AttachmentByNormal(module.NormalLeft)
		if !ok {
			g.log.Error("road missing left attachment point, skipping unit",
				"kind", unit.road.Kind.String())
			continue
		}

		// Project the unit's horizontal span as if the road attached at
		// currentX, including facility overhang on either side.
		project := func() (roadPos geo.Vec2, leftMin, rightMax float64) {
			roadPos = geo.Vec2{X: currentX - roadLeft.Position.X, Y: startY - roadLeft.Position.Y}
			leftMin, rightMax = currentX, currentX

			if rr, ok := unit.road.AttachmentByNormal(module.NormalRight); ok {
				rightMax = math.Max(rightMax, roadPos.X+rr.Position.X)
			} else {
				rightMax = math.Max(rightMax, roadPos.X+unit.road.Width)
			}

			check := func(fac *module.Module, roadNormal geo.Vec2) {
				if fac == nil {
					return
				}
				ra, ok := unit.road.AttachmentByNormal(roadNormal)
				if !ok {
					return
				}
				fa, ok := fac.AttachmentByNormal(roadNormal.Neg())
				if !ok {
					return
				}
				// Facility world position = connection point in world space
				// minus the facility's own connector offset.
				facPos := roadPos.Add(ra.Position).Sub(fa.Position)
				leftMin = math.Min(leftMin, facPos.X)
				rightMax = math.Max(rightMax, facPos.X+fac.Width)
			}
			check(unit.top, module.NormalUp)
			check(unit.bottom, module.NormalDown)
			return
		}

		roadPos, leftMin, rightMax := project()
		for leftMin < safeX {
			placePadding()
			roadPos, leftMin, rightMax = project()
		}

		unit.road.Origin = roadPos

		var placed []*module.Module
		placeFacility := func(fac *module.Module, roadNormal geo.Vec2) {
			if fac == nil {
				return
			}
			ra, ok := unit.road.AttachmentByNormal(roadNormal)
			if !ok {
				g.log.Error("road missing entrance attachment point",
					"kind", unit.road.Kind.String())
				return
			}
			fa, ok := fac.AttachmentByNormal(roadNormal.Neg())
			if !ok {
				g.log.Error("facility missing connector attachment point",
					"kind", fac.Kind.String())
				return
			}
			fac.Origin = roadPos.Add(ra.Position).Sub(fa.Position)
			modules = append(modules, fac)
			placed = append(placed, fac)
		}

		placeFacility(unit.top, module.NormalUp)
		placeFacility(unit.bottom, module.NormalDown)

		modules = append(modules, unit.road)
		roadIndex := len(modules) - 1
		for _, fac := range placed {
			fac.ParentIndex = roadIndex
		}

		safeX = rightMax
		if rr, ok := unit.road.AttachmentByNormal(module.NormalRight); ok {
			currentX = unit.road.Origin.X + rr.Position.X
		} else {
			currentX += unit.road.Width
		}
	}

	// Trailing padding: clear any rightward facility overhang, then three
	// plain segments so the spine does not end at an entrance.
	for i := 0; i < trailingPaddingRoads; i++ {
		for currentX < safeX {
			placePadding()
		}
		placePadding()
		safeX = currentX
	}

	return modules
}

// normalize computes tile-rounded world bounds and shifts every module so
// the content is flush against the left edge with fixed vertical margin.
func (g *Generator) normalize(modules []*module.Module) module.World {
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, m := range modules {
		minX = math.Min(minX, m.Origin.X)
		minY = math.Min(minY, m.Origin.Y)
		maxX = math.Max(maxX, m.Origin.X+m.Width)
		maxY = math.Max(maxY, m.Origin.Y+m.Height)
	}

	tile := geo.P2M(backgroundTileSizePx)
	yPad := tile * worldHeightPaddingTiles

	contentWidth := maxX - minX
	contentHeight := maxY - minY

	worldWidth := math.Ceil(contentWidth/tile) * tile
	worldHeight := math.Ceil((contentHeight+2*yPad)/tile) * tile

	offsetX := -minX
	offsetY := yPad - minY
	for _, m := range modules {
		m.Origin.X += offsetX
		m.Origin.Y += offsetY
	}

	return module.World{Width: worldWidth, Height: worldHeight, ShowGrid: true}
}

// addBoundaryStubs appends the two off-map plain roads that anchor vehicle
// spawn and exit: one ending at x=0, one starting at the rightmost extent,
// both aligned to the spine.
func (g *Generator) addBoundaryStubs(modules []*module.Module, world module.World) []*module.Module {
	spineY := g.spineY(modules)

	left := module.New(module.KindRoad, false)
	if right, ok := left.AttachmentByNormal(module.NormalRight); ok {
		left.Origin = geo.Vec2{X: -right.Position.X, Y: spineY - right.Position.Y}
	} else {
		left.Origin = geo.Vec2{X: -left.Width, Y: spineY}
	}
	modules = append(modules, left)

	rightmost := -math.MaxFloat64
	for _, m := range modules {
		rightmost = math.Max(rightmost, m.Origin.X+m.Width)
	}

	right := module.New(module.KindRoad, false)
	if l, ok := right.AttachmentByNormal(module.NormalLeft); ok {
		right.Origin = geo.Vec2{X: rightmost - l.Position.X, Y: spineY - l.Position.Y}
	} else {
		right.Origin = geo.Vec2{X: rightmost, Y: spineY}
	}
	modules = append(modules, right)

	return modules
}

// spineY recovers the spine's world Y from any placed road's left
// attachment.
func (g *Generator) spineY(modules []*module.Module) float64 {
	for _, m := range modules {
		if !m.Kind.IsRoad() {
			continue
		}
		if left, ok := m.AttachmentByNormal(module.NormalLeft); ok {
			return m.Origin.Y + left.Position.Y
		}
	}
	return spineStartY
}

// Validate checks the placement invariants: footprint interiors are
// pairwise disjoint, and every facility's connector normal is the exact
// negation of its road's matching attachment normal.
func Validate(modules []*module.Module) error {
	for i := 0; i < len(modules); i++ {
		for j := i + 1; j < len(modules); j++ {
			if modules[i].Overlaps(modules[j]) {
				return fmt.Errorf("modules %d (%s) and %d (%s) overlap",
					i, modules[i].Kind, j, modules[j].Kind)
			}
		}
	}

	for i, m := range modules {
		if !m.Kind.IsFacility() || m.ParentIndex < 0 {
			continue
		}
		if m.ParentIndex >= len(modules) {
			return fmt.Errorf("facility %d parent index %d out of range", i, m.ParentIndex)
		}
		road := modules[m.ParentIndex]

		facNormal := module.NormalUp
		roadNormal := module.NormalDown
		if m.IsTop {
			facNormal, roadNormal = module.NormalDown, module.NormalUp
		}
		fa, ok := m.AttachmentByNormal(facNormal)
		if !ok {
			return fmt.Errorf("facility %d (%s) missing connector attachment", i, m.Kind)
		}
		ra, ok := road.AttachmentByNormal(roadNormal)
		if !ok {
			return fmt.Errorf("road %d (%s) missing entrance attachment", m.ParentIndex, road.Kind)
		}
		if fa.Normal.Add(ra.Normal).Length() > 1e-9 {
			return fmt.Errorf("facility %d attachment normal is not the negation of its road's", i)
		}
		facPoint := m.Origin.Add(fa.Position)
		roadPoint := road.Origin.Add(ra.Position)
		if facPoint.Distance(roadPoint) > 1e-6 {
			return fmt.Errorf("facility %d connector does not coincide with its road's (%v vs %v)",
				i, facPoint, roadPoint)
		}
	}
	return nil
}
