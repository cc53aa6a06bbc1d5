package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestP2M(t *testing.T) {
	assert.InDelta(t, 1.0, P2M(7), 1e-9)
	assert.InDelta(t, 40.428571428571, P2M(283), 1e-9)
	assert.InDelta(t, 0.0, P2M(0), 1e-9)
}

func TestVec2_Arithmetic(t *testing.T) {
	a := Vec2{X: 3, Y: 4}
	b := Vec2{X: 1, Y: -2}

	assert.Equal(t, Vec2{X: 4, Y: 2}, a.Add(b))
	assert.Equal(t, Vec2{X: 2, Y: 6}, a.Sub(b))
	assert.Equal(t, Vec2{X: 6, Y: 8}, a.Scale(2))
	assert.Equal(t, Vec2{X: -3, Y: -4}, a.Neg())
}

func TestVec2_LengthAndDistance(t *testing.T) {
	v := Vec2{X: 3, Y: 4}
	assert.InDelta(t, 5.0, v.Length(), 1e-9)
	assert.InDelta(t, 5.0, Vec2{}.Distance(v), 1e-9)
	assert.InDelta(t, 0.0, v.Distance(v), 1e-9)
}

func TestVec2_Normalize(t *testing.T) {
	v := Vec2{X: 10, Y: 0}
	assert.Equal(t, Vec2{X: 1, Y: 0}, v.Normalize())

	// Zero vector stays zero instead of producing NaN.
	assert.Equal(t, Vec2{}, Vec2{}.Normalize())
}

func TestVec2_Limit(t *testing.T) {
	v := Vec2{X: 6, Y: 8}

	capped := v.Limit(5)
	assert.InDelta(t, 5.0, capped.Length(), 1e-9)

	// Under the cap the vector is untouched.
	assert.Equal(t, v, v.Limit(100))
}

func TestFromAngle(t *testing.T) {
	right := FromAngle(0)
	assert.InDelta(t, 1.0, right.X, 1e-9)
	assert.InDelta(t, 0.0, right.Y, 1e-9)

	down := FromAngle(math.Pi / 2)
	assert.InDelta(t, 0.0, down.X, 1e-9)
	assert.InDelta(t, 1.0, down.Y, 1e-9)

	left := FromAngle(math.Pi)
	assert.InDelta(t, -1.0, left.X, 1e-9)
}

func TestPolyline(t *testing.T) {
	ls, err := Polyline([]Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}})
	assert.NoError(t, err)
	assert.Equal(t, 3, ls.Coordinates().Length())

	_, err = Polyline([]Vec2{{X: 0, Y: 0}})
	assert.Error(t, err)
}

func TestRing_Closed(t *testing.T) {
	ring := Ring(Vec2{X: 2, Y: 3}, 10, 20)
	seq := ring.Coordinates()
	assert.Equal(t, 5, seq.Length())
	assert.Equal(t, seq.GetXY(0), seq.GetXY(4))
}
