package recorder

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedSession(t *testing.T, b *MemoryBackend) *Session {
	t.Helper()
	s := &Session{
		StartedAt:   time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Seed:        42,
		WorldWidth:  300,
		WorldHeight: 120,
	}
	require.NoError(t, b.StartSession(s))
	return s
}

func TestMemoryBackend_SessionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b := NewMemoryBackend(dir)
	require.NoError(t, b.Init())
	defer b.Close()

	s := startedSession(t, b)
	assert.NotZero(t, s.ID)

	require.NoError(t, b.AddVehicle(&VehicleRow{Slot: 3, Kind: "electric", Battery: 55}))
	require.NoError(t, b.RecordEvent(&EventRow{Tick: 7, Topic: "traffic.path_assigned"}))
	require.NoError(t, b.RecordTick(&TickRow{Tick: 30, Elapsed: 1, Vehicles: 2, Free: 4}))

	vehicles := b.Vehicles()
	require.Len(t, vehicles, 1)
	assert.Equal(t, s.ID, vehicles[0].SessionID)
	assert.Equal(t, "electric", vehicles[0].Kind)

	require.Len(t, b.Events(), 1)
	require.Len(t, b.Ticks(), 1)

	require.NoError(t, b.EndSession())
	require.NotNil(t, s.EndedAt)

	path := b.ExportedFilePath()
	require.NotEmpty(t, path)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Session  Session      `json:"session"`
		Vehicles []VehicleRow `json:"vehicles"`
		Events   []EventRow   `json:"events"`
		Ticks    []TickRow    `json:"ticks"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, int64(42), doc.Session.Seed)
	assert.Len(t, doc.Vehicles, 1)
	assert.Len(t, doc.Events, 1)
	assert.Len(t, doc.Ticks, 1)
}

func TestMemoryBackend_EndWithoutSession(t *testing.T) {
	b := NewMemoryBackend(t.TempDir())
	require.NoError(t, b.Init())
	assert.Error(t, b.EndSession())
}

func TestMemoryBackend_NewSessionResetsRows(t *testing.T) {
	b := NewMemoryBackend(t.TempDir())
	require.NoError(t, b.Init())

	startedSession(t, b)
	require.NoError(t, b.AddVehicle(&VehicleRow{Slot: 1}))

	second := &Session{StartedAt: time.Now()}
	require.NoError(t, b.StartSession(second))
	assert.Empty(t, b.Vehicles())
	assert.Empty(t, b.Events())
	assert.Empty(t, b.Ticks())
}

func TestMemoryBackend_ExportPathEmptyBeforeSession(t *testing.T) {
	b := NewMemoryBackend(t.TempDir())
	assert.Empty(t, b.ExportedFilePath())
}
