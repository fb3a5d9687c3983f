package db

import (
	"fmt"
	"strings"
)

// RunMigrations applies any pending database migrations
func (db *DB) RunMigrations() error {
	if err := db.runRelationMigration(); err != nil {
		return err
	}
	if err := db.runHangNotesMigration(); err != nil {
		return err
	}
	return nil
}

// addColumns adds whichever of the named columns the table is missing
func (db *DB) addColumns(table string, columns map[string]string) (int, error) {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, "'"+name+"'")
	}

	var count int
	err := db.conn.Get(&count, fmt.Sprintf(`
		SELECT COUNT(*)
		FROM pragma_table_info('%s')
		WHERE name IN (%s)
	`, table, strings.Join(names, ", ")))
	if err != nil {
		return 0, fmt.Errorf("checking %s columns: %w", table, err)
	}
	if count == len(columns) {
		return 0, nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for name, def := range columns {
		_, err := tx.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, name, def))
		if err != nil && err.Error() != "duplicate column name: "+name {
			return 0, fmt.Errorf("adding %s column: %w", name, err)
		}
		if err == nil {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing migration: %w", err)
	}
	return added, nil
}

// Databases from before relations and long distance friends existed
func (db *DB) runRelationMigration() error {
	added, err := db.addColumns("friends", map[string]string{
		"relation":      "TEXT",
		"long_distance": "BOOLEAN NOT NULL DEFAULT 0",
	})
	if err != nil {
		return err
	}
	if added > 0 {
		db.log.Info("migration completed", "name", "relation", "columns", added)
	}
	return nil
}

func (db *DB) runHangNotesMigration() error {
	added, err := db.addColumns("hangs", map[string]string{
		"notes": "TEXT",
	})
	if err != nil {
		return err
	}
	if added > 0 {
		db.log.Info("migration completed", "name", "hang notes", "columns", added)
	}
	return nil
}
