package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ferecasa/ac-controller/internal/model"
)

type Measurement struct {
	ID          int64
	DeviceID    string
	Temperature float64
	Humidity    float64
	Timestamp   time.Time
}

type ACEvent struct {
	ID          int64
	DeviceID    string
	Action      string
	Temperature int
	Mode        string
	FanSpeed    string
	TriggeredBy string
	Timestamp   time.Time
}

func InsertMeasurement(dbConn *sql.DB, deviceID string, temp, hum float64, ts time.Time) error {
	_, err := dbConn.Exec(
		`INSERT INTO measurements (device_id, temperature, humidity, ts) VALUES (?, ?, ?, ?)`,
		deviceID, temp, hum, ts.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert measurement: %w", err)
	}
	return nil
}

func InsertAverage(dbConn *sql.DB, deviceID string, temp, hum float64, samples int, ts time.Time) error {
	_, err := dbConn.Exec(
		`INSERT INTO measurement_averages (device_id, avg_temperature, avg_humidity, sample_count, ts) VALUES (?, ?, ?, ?, ?)`,
		deviceID, temp, hum, samples, ts.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert average: %w", err)
	}
	return nil
}

func InsertACEvent(dbConn *sql.DB, deviceID string, st model.DeviceState, triggeredBy string) error {
	_, err := dbConn.Exec(
		`INSERT INTO ac_events (device_id, action, temperature, mode, fan_speed, triggered_by, ts) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		deviceID, st.PowerString(), st.Temperature, string(st.Mode), string(st.Fan), triggeredBy, st.LastTransmitted.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert AC event: %w", err)
	}
	return nil
}

func RecentMeasurements(dbConn *sql.DB, deviceID string, limit int) ([]Measurement, error) {
	rows, err := dbConn.Query(
		`SELECT id, device_id, temperature, humidity, ts FROM measurements WHERE device_id = ? ORDER BY ts DESC LIMIT ?`,
		deviceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	var out []Measurement
	for rows.Next() {
		var m Measurement
		var ts string
		if err := rows.Scan(&m.ID, &m.DeviceID, &m.Temperature, &m.Humidity, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		m.Timestamp = parseTimestamp(ts)
		out = append(out, m)
	}
	return out, rows.Err()
}

func RecentACEvents(dbConn *sql.DB, deviceID string, limit int) ([]ACEvent, error) {
	rows, err := dbConn.Query(
		`SELECT id, device_id, action, temperature, mode, fan_speed, COALESCE(triggered_by, ''), ts FROM ac_events WHERE device_id = ? ORDER BY ts DESC LIMIT ?`,
		deviceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query AC events: %w", err)
	}
	defer rows.Close()

	var out []ACEvent
	for rows.Next() {
		var e ACEvent
		var ts string
		if err := rows.Scan(&e.ID, &e.DeviceID, &e.Action, &e.Temperature, &e.Mode, &e.FanSpeed, &e.TriggeredBy, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan AC event: %w", err)
		}
		e.Timestamp = parseTimestamp(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// parseTimestamp tolerates corrupt ts rows: the row is still returned, with
// a zero timestamp and a warning, so one bad write cannot hide the rest of
// the log.
func parseTimestamp(raw string) time.Time {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		log.Warn().Err(err).Str("ts", raw).Msg("Corrupt timestamp in local log")
	}
	return ts
}
