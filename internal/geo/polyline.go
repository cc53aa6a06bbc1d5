package geo

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
)

// Polyline builds a geom.LineString from an ordered list of points.
// Used to serialize routes and module outlines as WKT for telemetry.
func Polyline(points []Vec2) (geom.LineString, error) {
	if len(points) < 2 {
		return geom.LineString{}, fmt.Errorf("polyline must have at least 2 points, got %d", len(points))
	}

	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}

	ls, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	if err != nil {
		return geom.LineString{}, fmt.Errorf("building line string: %w", err)
	}
	return ls, nil
}

// Ring builds the closed outline of an axis-aligned rectangle with the given
// top-left origin and size, as a geom.LineString.
func Ring(origin Vec2, width, height float64) geom.LineString {
	flat := []float64{
		origin.X, origin.Y,
		origin.X + width, origin.Y,
		origin.X + width, origin.Y + height,
		origin.X, origin.Y + height,
		origin.X, origin.Y,
	}
	// Five corners of a sized rectangle always form a valid sequence.
	ls, _ := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	return ls
}
