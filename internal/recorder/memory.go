package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// MemoryBackend stores the session in memory and exports it as one JSON
// file when the session ends.
type MemoryBackend struct {
	outputDir string

	session  *Session
	vehicles []VehicleRow
	events   []EventRow
	ticks    []TickRow

	idCounter uint
	mu        sync.RWMutex
}

// NewMemoryBackend creates a memory backend exporting into outputDir.
func NewMemoryBackend(outputDir string) *MemoryBackend {
	return &MemoryBackend{outputDir: outputDir}
}

// Init initializes the backend.
func (b *MemoryBackend) Init() error {
	return os.MkdirAll(b.outputDir, 0755)
}

// Close cleans up resources.
func (b *MemoryBackend) Close() error {
	return nil
}

// StartSession begins recording a new session.
func (b *MemoryBackend) StartSession(s *Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	s.ID = b.idCounter

	b.session = s
	b.vehicles = nil
	b.events = nil
	b.ticks = nil

	return nil
}

// EndSession finalizes and exports the session data.
func (b *MemoryBackend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return fmt.Errorf("no active session")
	}
	now := time.Now()
	b.session.EndedAt = &now

	return b.exportJSON()
}

// sessionExport is the JSON document written at session end.
type sessionExport struct {
	Session  *Session     `json:"session"`
	Vehicles []VehicleRow `json:"vehicles"`
	Events   []EventRow   `json:"events"`
	Ticks    []TickRow    `json:"ticks"`
}

func (b *MemoryBackend) exportJSON() error {
	doc := sessionExport{
		Session:  b.session,
		Vehicles: b.vehicles,
		Events:   b.events,
		Ticks:    b.ticks,
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session export: %w", err)
	}

	name := fmt.Sprintf("session_%s.json", b.session.StartedAt.Format("20060102_150405"))
	path := filepath.Join(b.outputDir, name)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("writing session export: %w", err)
	}
	return nil
}

// ExportedFilePath returns where the session export lands.
func (b *MemoryBackend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.session == nil {
		return ""
	}
	name := fmt.Sprintf("session_%s.json", b.session.StartedAt.Format("20060102_150405"))
	return filepath.Join(b.outputDir, name)
}

// AddVehicle records a vehicle row.
func (b *MemoryBackend) AddVehicle(v *VehicleRow) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	v.ID = b.idCounter
	if b.session != nil {
		v.SessionID = b.session.ID
	}
	b.vehicles = append(b.vehicles, *v)
	return nil
}

// RecordEvent records an event row.
func (b *MemoryBackend) RecordEvent(e *EventRow) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	e.ID = b.idCounter
	if b.session != nil {
		e.SessionID = b.session.ID
	}
	b.events = append(b.events, *e)
	return nil
}

// RecordTick records an occupancy sample.
func (b *MemoryBackend) RecordTick(t *TickRow) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	t.ID = b.idCounter
	if b.session != nil {
		t.SessionID = b.session.ID
	}
	b.ticks = append(b.ticks, *t)
	return nil
}

// Vehicles returns the recorded vehicle rows.
func (b *MemoryBackend) Vehicles() []VehicleRow {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]VehicleRow(nil), b.vehicles...)
}

// Events returns the recorded event rows.
func (b *MemoryBackend) Events() []EventRow {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]EventRow(nil), b.events...)
}

// Ticks returns the recorded occupancy samples.
func (b *MemoryBackend) Ticks() []TickRow {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]TickRow(nil), b.ticks...)
}
