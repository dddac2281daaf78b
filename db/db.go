// Package db keeps a local log of sensor readings and transmitted AC
// commands in SQLite. Writes are best-effort: the backend is the system of
// record, this log exists so the device can answer "what happened while
// the broker was down".
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS measurements (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	device_id   TEXT NOT NULL,
	temperature REAL NOT NULL,
	humidity    REAL NOT NULL,
	ts          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_measurements_device_ts ON measurements(device_id, ts);

CREATE TABLE IF NOT EXISTS measurement_averages (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	device_id       TEXT NOT NULL,
	avg_temperature REAL NOT NULL,
	avg_humidity    REAL NOT NULL,
	sample_count    INTEGER NOT NULL,
	ts              TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ac_events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	device_id    TEXT NOT NULL,
	action       TEXT NOT NULL,
	temperature  INTEGER NOT NULL,
	mode         TEXT NOT NULL,
	fan_speed    TEXT NOT NULL,
	triggered_by TEXT,
	ts           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ac_events_device_ts ON ac_events(device_id, ts);
`

// Open opens (creating if necessary) the local log database and ensures
// the schema exists.
func Open(path string) (*sql.DB, error) {
	dbConn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := dbConn.Exec(schema); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return dbConn, nil
}
