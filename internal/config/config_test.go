package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFresh(t *testing.T, dir string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(dir))
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	loadFresh(t, t.TempDir())

	assert.Equal(t, "info", GetString("logLevel"))
	assert.Equal(t, "memory", GetString("storage.type"))
	assert.False(t, GetBool("influx.enabled"))

	sim := GetSimConfig()
	assert.Equal(t, int64(0), sim.Seed)
	assert.Equal(t, 30.0, sim.TickRate)
	assert.Equal(t, "5m", sim.Duration)
	assert.Equal(t, "2s", sim.SpawnInterval)
	assert.Equal(t, 0.4, sim.ElectricShare)
	assert.Equal(t, 0.3, sim.PriceSeekerShare)

	m := GetMapConfig()
	assert.Equal(t, 2, m.SmallParking)
	assert.Equal(t, 1, m.LargeParking)
	assert.Equal(t, 1, m.SmallCharging)
	assert.Equal(t, 1, m.LargeCharging)
	assert.Equal(t, 1.0, m.ParkingPriceMin)
	assert.Equal(t, 5.0, m.ParkingPriceMax)
	assert.Equal(t, 2.0, m.ChargingPriceMin)
	assert.Equal(t, 8.0, m.ChargingPriceMax)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"sim": {"seed": 1234, "spawnInterval": "500ms"},
		"map": {"smallParking": 5},
		"storage": {"type": "sqlite"}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parklogic.cfg.json"), []byte(cfg), 0644))

	loadFresh(t, dir)

	assert.Equal(t, "debug", GetString("logLevel"))
	assert.Equal(t, "sqlite", GetString("storage.type"))

	sim := GetSimConfig()
	assert.Equal(t, int64(1234), sim.Seed)
	assert.Equal(t, "500ms", sim.SpawnInterval)
	// Untouched keys keep their defaults.
	assert.Equal(t, 30.0, sim.TickRate)

	m := GetMapConfig()
	assert.Equal(t, 5, m.SmallParking)
	assert.Equal(t, 1, m.LargeParking)
}

func TestLoad_MalformedFileErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parklogic.cfg.json"), []byte("{not json"), 0644))

	viper.Reset()
	t.Cleanup(viper.Reset)
	assert.Error(t, Load(dir))
}
