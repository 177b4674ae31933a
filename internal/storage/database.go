// internal/storage/database.go
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Driver registration

	"github.com/Annany2002/cvm-baseprep/config"
	"github.com/Annany2002/cvm-baseprep/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// ConnectMetadataDB opens the SQLite database holding the generated tables
// history and ensures its schema exists.
func ConnectMetadataDB(cfg *config.Config) (*sql.DB, error) {
	dbPath := filepath.Join(cfg.MetadataDbDir, cfg.MetadataDbFile)
	customLog.Printf("Storage: Initializing metadata database: %s", dbPath)

	if err := os.MkdirAll(cfg.MetadataDbDir, 0o750); err != nil {
		customLog.Warnf("Storage: Error creating data directory '%s': %v", cfg.MetadataDbDir, err)
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// WAL plus a busy timeout: simulator callbacks write while handlers read.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		customLog.Warnf("Storage: Failed to open metadata db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to open metadata db: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to ping metadata db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to connect to metadata db: %w", err)
	}
	customLog.Println("Storage: Metadata database connection successful.")

	if err = ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sql.DB) error {
	createHistoryTableSQL := `
	CREATE TABLE IF NOT EXISTS generated_tables (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		table_name TEXT NOT NULL,
		status TEXT NOT NULL,
		elapsed_seconds REAL NOT NULL DEFAULT 0,
		parameters TEXT NOT NULL DEFAULT '',
		columns TEXT NOT NULL DEFAULT '[]',
		row_count INTEGER NOT NULL DEFAULT 0,
		completed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(createHistoryTableSQL); err != nil {
		customLog.Warnf("Storage: Failed to create generated_tables table: %v", err)
		return fmt.Errorf("failed to ensure generated_tables table: %w", err)
	}

	createIndexSQL := `CREATE INDEX IF NOT EXISTS idx_generated_tables_name ON generated_tables (table_name);`
	if _, err := db.Exec(createIndexSQL); err != nil {
		customLog.Warnf("Storage: Failed to create generated_tables index: %v", err)
		return fmt.Errorf("failed to ensure generated_tables index: %w", err)
	}
	customLog.Println("Storage: Generated tables history ensured.")
	return nil
}
