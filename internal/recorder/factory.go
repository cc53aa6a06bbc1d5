package recorder

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/lst-cpp-project-2025-2026/parklogic/internal/database"
)

// NewBackend creates a storage backend based on configuration. The
// relational variants share the database manager's connection handling,
// including the Postgres-to-SQLite fallback.
func NewBackend(dbm *database.Manager) (Backend, error) {
	switch t := viper.GetString("storage.type"); t {
	case "memory":
		return NewMemoryBackend(viper.GetString("storage.memory.outputDir")), nil
	case "sqlite":
		db, err := dbm.GetSqliteDB(viper.GetString("storage.sqlite.path"))
		if err != nil {
			return nil, fmt.Errorf("opening sqlite backend: %w", err)
		}
		return NewGormBackend(db), nil
	case "postgres":
		if err := dbm.Connect(); err != nil {
			return nil, fmt.Errorf("connecting postgres backend: %w", err)
		}
		return NewGormBackend(dbm.DB), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", t)
	}
}
