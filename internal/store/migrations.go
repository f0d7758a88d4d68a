package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Words table - fill-the-blank word lists, grouped by category
		`CREATE TABLE IF NOT EXISTS words (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL UNIQUE,
			emoji TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT 'general',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Learning materials table - per-sign reference cards shown in the
		// learn pages
		`CREATE TABLE IF NOT EXISTS learning_materials (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL CHECK(category IN ('alphabet', 'number', 'words')),
			class TEXT NOT NULL,
			instruction TEXT NOT NULL DEFAULT '',
			image_path TEXT NOT NULL DEFAULT '',
			subcategory TEXT NOT NULL DEFAULT ''
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_words_category ON words(category)`,
		`CREATE INDEX IF NOT EXISTS idx_learning_materials_category ON learning_materials(category)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
