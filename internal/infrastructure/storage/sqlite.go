package storage

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// DB соединение с SQLite с блокировкой на запись.
type DB struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// OpenSQLite открывает базу и накатывает схему. Путь ":memory:" даёт базу в памяти.
func OpenSQLite(path string) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Одно соединение: база в памяти живёт, пока оно открыто
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS inspections (
		id TEXT PRIMARY KEY,
		grade TEXT NOT NULL,
		damage_score REAL NOT NULL DEFAULT 0,
		battery_health INTEGER NOT NULL DEFAULT 0,
		screen_condition TEXT NOT NULL,
		back_condition TEXT NOT NULL,
		frame_condition TEXT NOT NULL,
		summary TEXT NOT NULL,
		overall_assessment TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS damages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		inspection_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		type TEXT NOT NULL,
		location TEXT NOT NULL,
		severity TEXT NOT NULL,
		FOREIGN KEY (inspection_id) REFERENCES inspections(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS detections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		inspection_id TEXT NOT NULL,
		view TEXT NOT NULL,
		position INTEGER NOT NULL,
		class_label TEXT NOT NULL,
		confidence REAL NOT NULL,
		x1 REAL NOT NULL,
		y1 REAL NOT NULL,
		x2 REAL NOT NULL,
		y2 REAL NOT NULL,
		mask_area INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (inspection_id) REFERENCES inspections(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS renders (
		inspection_id TEXT NOT NULL,
		view TEXT NOT NULL,
		image BLOB NOT NULL,
		PRIMARY KEY (inspection_id, view),
		FOREIGN KEY (inspection_id) REFERENCES inspections(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_inspections_created_at ON inspections(created_at);
	CREATE INDEX IF NOT EXISTS idx_damages_inspection_id ON damages(inspection_id);
	CREATE INDEX IF NOT EXISTS idx_detections_inspection_id ON detections(inspection_id);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Close закрывает соединение.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn возвращает соединение для репозиториев.
func (db *DB) Conn() *sql.DB {
	return db.conn
}
