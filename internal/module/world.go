package module

// World describes the generated map bounds. It plays no simulation role
// beyond clamping free-roam waypoints and sizing the display.
type World struct {
	Width    float64
	Height   float64
	ShowGrid bool
}
