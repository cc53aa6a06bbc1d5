package module

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lst-cpp-project-2025-2026/parklogic/internal/geo"
)

func TestKind_Capabilities(t *testing.T) {
	tests := []struct {
		kind       Kind
		isRoad     bool
		isFacility bool
		isCharging bool
	}{
		{KindRoad, true, false, false},
		{KindRoadUp, true, false, false},
		{KindRoadDown, true, false, false},
		{KindRoadDouble, true, false, false},
		{KindParkingSmall, false, true, false},
		{KindParkingLarge, false, true, false},
		{KindChargingSmall, false, true, true},
		{KindChargingLarge, false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.isRoad, tt.kind.IsRoad())
			assert.Equal(t, tt.isFacility, tt.kind.IsFacility())
			assert.Equal(t, tt.isCharging, tt.kind.IsCharging())
		})
	}
}

func TestNew_RoadGeometry(t *testing.T) {
	road := New(KindRoad, false)
	assert.InDelta(t, geo.P2M(283), road.Width, 1e-9)
	assert.InDelta(t, geo.P2M(155), road.Height, 1e-9)

	entrance := New(KindRoadUp, false)
	assert.InDelta(t, geo.P2M(284), entrance.Width, 1e-9)
}

func TestRoad_Attachments(t *testing.T) {
	road := New(KindRoad, false)

	left, ok := road.AttachmentByNormal(NormalLeft)
	require.True(t, ok)
	assert.InDelta(t, 0.0, left.Position.X, 1e-9)
	assert.InDelta(t, geo.P2M(78), left.Position.Y, 1e-9)

	right, ok := road.AttachmentByNormal(NormalRight)
	require.True(t, ok)
	assert.InDelta(t, road.Width, right.Position.X, 1e-9)
	assert.InDelta(t, geo.P2M(78), right.Position.Y, 1e-9)

	// Plain roads have no vertical entrances.
	_, ok = road.AttachmentByNormal(NormalUp)
	assert.False(t, ok)
	_, ok = road.AttachmentByNormal(NormalDown)
	assert.False(t, ok)
}

func TestEntranceRoad_Attachments(t *testing.T) {
	up := New(KindRoadUp, false)
	top, ok := up.AttachmentByNormal(NormalUp)
	require.True(t, ok)
	assert.InDelta(t, geo.P2M(142), top.Position.X, 1e-9)
	assert.InDelta(t, 0.0, top.Position.Y, 1e-9)
	_, ok = up.AttachmentByNormal(NormalDown)
	assert.False(t, ok)

	double := New(KindRoadDouble, false)
	_, ok = double.AttachmentByNormal(NormalUp)
	assert.True(t, ok)
	bottom, ok := double.AttachmentByNormal(NormalDown)
	require.True(t, ok)
	assert.InDelta(t, double.Height, bottom.Position.Y, 1e-9)
}

func TestFacility_ConnectorMirrorsRoadEntrance(t *testing.T) {
	top := New(KindParkingSmall, true)
	conn, ok := top.AttachmentByNormal(NormalDown)
	require.True(t, ok)
	assert.InDelta(t, geo.P2M(218), conn.Position.X, 1e-9)
	assert.InDelta(t, top.Height, conn.Position.Y, 1e-9)

	bottom := New(KindParkingSmall, false)
	conn, ok = bottom.AttachmentByNormal(NormalUp)
	require.True(t, ok)
	assert.InDelta(t, 0.0, conn.Position.Y, 1e-9)
}

func TestFacility_SpotCounts(t *testing.T) {
	assert.Equal(t, 4, New(KindParkingSmall, false).SpotCount())
	assert.Equal(t, 8, New(KindParkingLarge, false).SpotCount())
	assert.Equal(t, 2, New(KindChargingSmall, false).SpotCount())
	assert.Equal(t, 4, New(KindChargingLarge, false).SpotCount())

	assert.Equal(t, 0, New(KindRoad, false).SpotCount())
}

func TestFacility_StructuralWaypoint(t *testing.T) {
	fac := New(KindChargingSmall, false)
	wps := fac.LocalWaypoints()
	require.Len(t, wps, 1)
	assert.InDelta(t, geo.P2M(163), wps[0].Position.X, 1e-9)
	assert.InDelta(t, fac.Height/2, wps[0].Position.Y, 1e-9)
}

func TestSpot_LifecycleCycle(t *testing.T) {
	fac := New(KindParkingSmall, false)

	require.NoError(t, fac.SetSpotState(0, SpotReserved))
	require.NoError(t, fac.SetSpotState(0, SpotOccupied))
	require.NoError(t, fac.SetSpotState(0, SpotFree))
}

func TestSpot_InvalidTransitions(t *testing.T) {
	fac := New(KindParkingSmall, false)

	// FREE cannot jump straight to OCCUPIED.
	assert.ErrorIs(t, fac.SetSpotState(0, SpotOccupied), ErrSpotTransition)

	require.NoError(t, fac.SetSpotState(0, SpotReserved))
	// RESERVED cannot be re-reserved or released without occupancy.
	assert.ErrorIs(t, fac.SetSpotState(0, SpotReserved), ErrSpotTransition)
	assert.ErrorIs(t, fac.SetSpotState(0, SpotFree), ErrSpotTransition)

	require.NoError(t, fac.SetSpotState(0, SpotOccupied))
	// OCCUPIED only releases.
	assert.ErrorIs(t, fac.SetSpotState(0, SpotReserved), ErrSpotTransition)
}

func TestSpot_OutOfRange(t *testing.T) {
	fac := New(KindParkingSmall, false)
	assert.ErrorIs(t, fac.SetSpotState(99, SpotReserved), ErrNoSpot)
	_, err := fac.Spot(-1)
	assert.ErrorIs(t, err, ErrNoSpot)
	_, err = fac.SpotGlobal(99)
	assert.ErrorIs(t, err, ErrNoSpot)
}

func TestCounts(t *testing.T) {
	fac := New(KindParkingSmall, false)
	require.NoError(t, fac.SetSpotState(0, SpotReserved))
	require.NoError(t, fac.SetSpotState(1, SpotReserved))
	require.NoError(t, fac.SetSpotState(1, SpotOccupied))

	c := fac.Counts()
	assert.Equal(t, 2, c.Free)
	assert.Equal(t, 1, c.Reserved)
	assert.Equal(t, 1, c.Occupied)
}

func TestRandomFreeSpotIndex(t *testing.T) {
	fac := New(KindChargingSmall, false)
	rng := rand.New(rand.NewSource(1))

	require.NoError(t, fac.SetSpotState(0, SpotReserved))
	idx, ok := fac.RandomFreeSpotIndex(rng)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	require.NoError(t, fac.SetSpotState(1, SpotReserved))
	_, ok = fac.RandomFreeSpotIndex(rng)
	assert.False(t, ok)
}

func TestSpotGlobal_TranslatesByOrigin(t *testing.T) {
	fac := New(KindParkingSmall, false)
	fac.Origin = geo.Vec2{X: 100, Y: 200}

	s, err := fac.Spot(0)
	require.NoError(t, err)
	g, err := fac.SpotGlobal(0)
	require.NoError(t, err)
	assert.Equal(t, fac.Origin.Add(s.Local), g)
}

func TestGlobalWaypoints_DoNotMutateLocals(t *testing.T) {
	fac := New(KindParkingSmall, false)
	fac.Origin = geo.Vec2{X: 50, Y: 0}

	local := fac.LocalWaypoints()[0].Position
	_ = fac.GlobalWaypoints()
	assert.Equal(t, local, fac.LocalWaypoints()[0].Position)
}

func TestOverlaps(t *testing.T) {
	a := New(KindRoad, false)
	b := New(KindRoad, false)

	// Side by side, touching edges only.
	b.Origin = geo.Vec2{X: a.Width, Y: 0}
	assert.False(t, a.Overlaps(b))

	// Shifted into a's interior.
	b.Origin = geo.Vec2{X: a.Width - 1, Y: 0}
	assert.True(t, a.Overlaps(b))

	// Same X range, disjoint bands.
	b.Origin = geo.Vec2{X: 0, Y: a.Height + 1}
	assert.False(t, a.Overlaps(b))
}

func TestOutline_IsClosedRing(t *testing.T) {
	m := New(KindParkingLarge, true)
	m.Origin = geo.Vec2{X: 10, Y: 20}

	seq := m.Outline().Coordinates()
	assert.Equal(t, 5, seq.Length())
	assert.Equal(t, seq.GetXY(0), seq.GetXY(4))
}

func TestSpotOrientation_FacesDriveway(t *testing.T) {
	fac := New(KindParkingSmall, false)
	entry := geo.P2M(218)

	for i := 0; i < fac.SpotCount(); i++ {
		s, err := fac.Spot(i)
		require.NoError(t, err)
		if s.Local.X < entry {
			assert.InDelta(t, 0.0, s.Orientation, 1e-9, "left column faces +X")
		} else {
			assert.InDelta(t, math.Pi, s.Orientation, 1e-9, "right column faces -X")
		}
	}
}
