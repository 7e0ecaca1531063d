package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Detections table - one row per /detect call that captured a frame
		`CREATE TABLE IF NOT EXISTS detections (
			id TEXT PRIMARY KEY,
			alphabet TEXT NOT NULL DEFAULT '',
			hands INTEGER NOT NULL DEFAULT 0,
			features INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_detections_created_at ON detections(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
