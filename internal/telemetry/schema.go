package telemetry

import (
	"database/sql"

	"codeberg.org/mutker/socwatt/internal/errors"
)

// initSchema initializes the database schema for recorded samples
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS samples (
            timestamp INTEGER NOT NULL,
            cpu_energy_mj REAL NOT NULL,
            gpu_energy_mj REAL NOT NULL,
            ane_energy_mj REAL NOT NULL,
            duration_ms INTEGER NOT NULL
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrSchemaInitFailed, err)
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_samples_timestamp ON samples (timestamp)
    `)
	if err != nil {
		return errors.New().Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}
