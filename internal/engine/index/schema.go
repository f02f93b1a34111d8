package index

import (
	"database/sql"
	"fmt"
)

const schemaVersion = 1

func migrateClassSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("read class index schema version: %w", err)
	}

	if version == 0 {
		_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS classes (
  run_id TEXT NOT NULL,
  fqn TEXT NOT NULL,
  file_path TEXT NOT NULL,
  line_number INTEGER NOT NULL DEFAULT 0,
  parent_fqn TEXT NOT NULL DEFAULT '',
  interfaces TEXT NOT NULL DEFAULT '[]',
  PRIMARY KEY (run_id, fqn, file_path)
);
CREATE INDEX IF NOT EXISTS idx_classes_run_fqn ON classes(run_id, fqn);
CREATE INDEX IF NOT EXISTS idx_classes_run_parent ON classes(run_id, parent_fqn);

PRAGMA user_version = 1;
`)
		if err != nil {
			return fmt.Errorf("create v1 class schema: %w", err)
		}
		return nil
	}

	if version > schemaVersion {
		return fmt.Errorf("class index schema version %d is newer than supported %d", version, schemaVersion)
	}
	return nil
}
