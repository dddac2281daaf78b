package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferecasa/ac-controller/internal/model"
)

func TestMeasurementRoundTrip(t *testing.T) {
	conn, err := Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, InsertMeasurement(conn, "room_01", 23.4, 55.2, ts))
	require.NoError(t, InsertMeasurement(conn, "room_01", 23.6, 54.8, ts.Add(30*time.Second)))
	require.NoError(t, InsertMeasurement(conn, "room_02", 19.0, 60.0, ts))

	rows, err := RecentMeasurements(conn, "room_01", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest first.
	assert.Equal(t, 23.6, rows[0].Temperature)
	assert.Equal(t, 54.8, rows[0].Humidity)
	assert.Equal(t, "room_01", rows[0].DeviceID)
	assert.True(t, rows[0].Timestamp.After(rows[1].Timestamp))
}

func TestACEventRoundTrip(t *testing.T) {
	conn, err := Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	st := model.DeviceState{
		Power:           true,
		Temperature:     22,
		Mode:            model.ModeHeat,
		Fan:             model.FanLow,
		LastTransmitted: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, InsertACEvent(conn, "room_01", st, "mqtt"))

	events, err := RecentACEvents(conn, "room_01", 5)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "on", events[0].Action)
	assert.Equal(t, 22, events[0].Temperature)
	assert.Equal(t, "heat", events[0].Mode)
	assert.Equal(t, "low", events[0].FanSpeed)
	assert.Equal(t, "mqtt", events[0].TriggeredBy)
	assert.Equal(t, st.LastTransmitted, events[0].Timestamp.UTC())
}

func TestRecentMeasurements_CorruptTimestamp(t *testing.T) {
	conn, err := Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, InsertMeasurement(conn, "room_01", 23.4, 55.2, ts))
	_, err = conn.Exec(
		`INSERT INTO measurements (device_id, temperature, humidity, ts) VALUES (?, ?, ?, ?)`,
		"room_01", 24.0, 50.0, "not-a-timestamp",
	)
	require.NoError(t, err)

	// A corrupt ts row comes back with a zero timestamp instead of hiding
	// the rest of the log behind an error.
	rows, err := RecentMeasurements(conn, "room_01", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var zeroed int
	for _, m := range rows {
		if m.Timestamp.IsZero() {
			zeroed++
		}
	}
	assert.Equal(t, 1, zeroed)
}

func TestInsertAverage(t *testing.T) {
	conn, err := Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	ts := time.Now()
	require.NoError(t, InsertAverage(conn, "room_01", 22.5, 50.1, 10, ts))

	var count int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM measurement_averages`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestOpen_SchemaIsIdempotent(t *testing.T) {
	conn, err := Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	// Re-running the schema against an initialized database is a no-op.
	_, err = conn.Exec(schema)
	assert.NoError(t, err)
}
