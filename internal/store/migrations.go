package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sport profiles added on top of the built-in catalog, stored as TOML documents
		`CREATE TABLE IF NOT EXISTS sport_profiles (
			name TEXT PRIMARY KEY,
			rule TEXT NOT NULL,
			document TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Training sessions - one per room session
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			sport TEXT NOT NULL,
			started_at DATETIME NOT NULL
		)`,

		// Room analyses recorded for a session, newest last
		`CREATE TABLE IF NOT EXISTS room_analyses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			analyzed_at DATETIME NOT NULL,
			detected INTEGER NOT NULL,
			is_room_mode INTEGER NOT NULL,
			safety_score REAL NOT NULL,
			constraints TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_room_analyses_session_id ON room_analyses(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
