package recorder

import (
	"time"

	"gorm.io/datatypes"
)

// Session is one simulation run.
type Session struct {
	ID          uint `gorm:"primarykey"`
	StartedAt   time.Time
	EndedAt     *time.Time
	Seed        int64
	WorldWidth  float64
	WorldHeight float64

	// Layout is the placed module list: kind, origin and footprint WKT.
	Layout datatypes.JSON
}

// VehicleRow is one vehicle's lifetime within a session.
type VehicleRow struct {
	ID        uint `gorm:"primarykey"`
	SessionID uint `gorm:"index"`

	Slot        int
	Kind        string
	Priority    string
	EnteredLeft bool
	Battery     float64
	SpawnTick   uint64
}

// EventRow is one bus event worth keeping: reservations, path
// assignments, despawns.
type EventRow struct {
	ID        uint `gorm:"primarykey"`
	SessionID uint `gorm:"index"`

	Tick    uint64
	Topic   string
	Payload datatypes.JSON
}

// TickRow is one occupancy sample.
type TickRow struct {
	ID        uint `gorm:"primarykey"`
	SessionID uint `gorm:"index"`

	Tick     uint64
	Elapsed  float64
	Vehicles int
	Free     int
	Reserved int
	Occupied int
}

// DatabaseModels lists every table the relational backends migrate.
var DatabaseModels = []any{
	&Session{},
	&VehicleRow{},
	&EventRow{},
	&TickRow{},
}
