package recorder

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GormBackend persists rows through a gorm connection. It works against
// SQLite and Postgres alike; dialect selection happens in the database
// manager.
type GormBackend struct {
	db      *gorm.DB
	session *Session
}

// NewGormBackend wraps an open gorm connection.
func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

// Init migrates the schema.
func (b *GormBackend) Init() error {
	if err := b.db.AutoMigrate(DatabaseModels...); err != nil {
		return fmt.Errorf("migrating recorder schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (b *GormBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// StartSession inserts the session row and keeps it for foreign keys.
func (b *GormBackend) StartSession(s *Session) error {
	if err := b.db.Create(s).Error; err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	b.session = s
	return nil
}

// EndSession stamps the session end time.
func (b *GormBackend) EndSession() error {
	if b.session == nil {
		return fmt.Errorf("no active session")
	}
	now := time.Now()
	b.session.EndedAt = &now
	if err := b.db.Save(b.session).Error; err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	return nil
}

// AddVehicle inserts a vehicle row.
func (b *GormBackend) AddVehicle(v *VehicleRow) error {
	if b.session != nil {
		v.SessionID = b.session.ID
	}
	return b.db.Create(v).Error
}

// RecordEvent inserts an event row.
func (b *GormBackend) RecordEvent(e *EventRow) error {
	if b.session != nil {
		e.SessionID = b.session.ID
	}
	return b.db.Create(e).Error
}

// RecordTick inserts an occupancy sample.
func (b *GormBackend) RecordTick(t *TickRow) error {
	if b.session != nil {
		t.SessionID = b.session.ID
	}
	return b.db.Create(t).Error
}
