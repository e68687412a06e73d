// Package store persists deployment history and encrypted secrets in a
// local sqlite database.
package store

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"
const dbName = "predix-deploy.db"

type Store struct {
	db *sql.DB
}

// Open connects to (and if needed creates) the database under dbPath and
// runs migrations.
func Open(dbPath string) (*Store, error) {
	dbFile := filepath.Join(dbPath, dbName)
	database, err := sql.Open(driverName, dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := database.Exec("PRAGMA foreign_keys = ON"); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := database.Exec("PRAGMA journal_mode = WAL"); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	s := &Store{db: database}
	if err := s.migrate(); err != nil {
		database.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if err := s.createDeploymentsTable(); err != nil {
		return err
	}
	if err := s.createSecretsTable(); err != nil {
		return err
	}
	return nil
}
